package repository

import (
	"database/sql"
	"time"

	"folio/internal/models"
)

// TransactionRepository - работа с таблицей transactions.
// Идентичность транзакции - пара (account_id, external_id):
// повторная синхронизация обновляет запись вместо дубликата.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository создает новый экземпляр репозитория
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Upsert создает транзакцию или обновляет существующую.
// Pending транзакция при повторной синхронизации становится posted.
func (r *TransactionRepository) Upsert(tx *models.Transaction) error {
	query := `
		INSERT INTO transactions (account_id, external_id, posted_at, amount, description, payee, memo, pending)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (account_id, external_id) DO UPDATE
		SET posted_at = EXCLUDED.posted_at,
		    amount = EXCLUDED.amount,
		    description = EXCLUDED.description,
		    payee = EXCLUDED.payee,
		    memo = EXCLUDED.memo,
		    pending = EXCLUDED.pending
		RETURNING id`

	return r.db.QueryRow(
		query,
		tx.AccountID,
		tx.ExternalID,
		tx.PostedAt,
		tx.Amount,
		tx.Description,
		tx.Payee,
		tx.Memo,
		tx.Pending,
	).Scan(&tx.ID)
}

// GetByAccountID возвращает последние транзакции счёта
func (r *TransactionRepository) GetByAccountID(accountID int, limit int) ([]*models.Transaction, error) {
	query := `
		SELECT id, account_id, external_id, posted_at, amount, description, payee, memo, pending
		FROM transactions
		WHERE account_id = $1
		ORDER BY posted_at DESC
		LIMIT $2`

	rows, err := r.db.Query(query, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []*models.Transaction
	for rows.Next() {
		tx := &models.Transaction{}
		err := rows.Scan(
			&tx.ID,
			&tx.AccountID,
			&tx.ExternalID,
			&tx.PostedAt,
			&tx.Amount,
			&tx.Description,
			&tx.Payee,
			&tx.Memo,
			&tx.Pending,
		)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return txs, nil
}

// GetByUserInRange возвращает транзакции всех счетов пользователя за период
func (r *TransactionRepository) GetByUserInRange(userID int, from, to time.Time) ([]*models.Transaction, error) {
	query := `
		SELECT t.id, t.account_id, t.external_id, t.posted_at, t.amount, t.description, t.payee, t.memo, t.pending
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE a.user_id = $1 AND t.posted_at >= $2 AND t.posted_at <= $3
		ORDER BY t.posted_at DESC`

	rows, err := r.db.Query(query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []*models.Transaction
	for rows.Next() {
		tx := &models.Transaction{}
		err := rows.Scan(
			&tx.ID,
			&tx.AccountID,
			&tx.ExternalID,
			&tx.PostedAt,
			&tx.Amount,
			&tx.Description,
			&tx.Payee,
			&tx.Memo,
			&tx.Pending,
		)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return txs, nil
}

// CountByAccountID возвращает количество транзакций счёта
func (r *TransactionRepository) CountByAccountID(accountID int) (int, error) {
	query := `SELECT COUNT(*) FROM transactions WHERE account_id = $1`

	var count int
	err := r.db.QueryRow(query, accountID).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}
