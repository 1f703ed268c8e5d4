package repository

import (
	"database/sql"
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"

	"folio/internal/models"
)

// json - кодек для сериализации metadata в JSONB
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Ошибки репозитория счетов
var (
	ErrAccountNotFound = errors.New("account not found")
)

// AccountRepository - работа с таблицей accounts
type AccountRepository struct {
	db *sql.DB
}

// NewAccountRepository создает новый экземпляр репозитория
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Upsert создает счёт или обновляет существующий по внешнему ключу
// (user_id, provider, external_id). Повторная синхронизация того же
// счёта не плодит дубликатов.
func (r *AccountRepository) Upsert(account *models.Account) error {
	query := `
		INSERT INTO accounts (user_id, provider, name, type, balance_usd, external_id, metadata, last_synced_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, provider, external_id) DO UPDATE
		SET name = EXCLUDED.name,
		    type = EXCLUDED.type,
		    balance_usd = EXCLUDED.balance_usd,
		    metadata = EXCLUDED.metadata,
		    last_synced_at = EXCLUDED.last_synced_at
		RETURNING id, created_at`

	metadata, err := marshalMetadata(account.Metadata)
	if err != nil {
		return err
	}

	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}

	return r.db.QueryRow(
		query,
		account.UserID,
		account.Provider,
		account.Name,
		account.Type,
		account.BalanceUSD,
		account.ExternalID,
		metadata,
		account.LastSyncedAt,
		account.CreatedAt,
	).Scan(&account.ID, &account.CreatedAt)
}

// GetByID возвращает счёт по ID
func (r *AccountRepository) GetByID(id int) (*models.Account, error) {
	query := `
		SELECT id, user_id, provider, name, type, balance_usd, external_id, metadata, last_synced_at, created_at
		FROM accounts
		WHERE id = $1`

	account, err := scanAccount(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	return account, nil
}

// GetByUserID возвращает все счета пользователя
func (r *AccountRepository) GetByUserID(userID int) ([]*models.Account, error) {
	query := `
		SELECT id, user_id, provider, name, type, balance_usd, external_id, metadata, last_synced_at, created_at
		FROM accounts
		WHERE user_id = $1
		ORDER BY provider, name`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return accounts, nil
}

// TotalValue возвращает суммарную стоимость счетов пользователя в USD.
// Счета с неизвестным балансом (NULL) в сумму не входят.
func (r *AccountRepository) TotalValue(userID int) (float64, error) {
	query := `SELECT COALESCE(SUM(balance_usd), 0) FROM accounts WHERE user_id = $1`

	var total float64
	err := r.db.QueryRow(query, userID).Scan(&total)
	if err != nil {
		return 0, err
	}

	return total, nil
}

// CountByUserID возвращает количество счетов пользователя
func (r *AccountRepository) CountByUserID(userID int) (int, error) {
	query := `SELECT COUNT(*) FROM accounts WHERE user_id = $1`

	var count int
	err := r.db.QueryRow(query, userID).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Delete удаляет счёт
func (r *AccountRepository) Delete(id int) error {
	query := `DELETE FROM accounts WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrAccountNotFound
	}

	return nil
}

// scanner покрывает *sql.Row и *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanAccount читает одну строку accounts вместе с разбором metadata
func scanAccount(s scanner) (*models.Account, error) {
	account := &models.Account{}
	var metadata []byte

	err := s.Scan(
		&account.ID,
		&account.UserID,
		&account.Provider,
		&account.Name,
		&account.Type,
		&account.BalanceUSD,
		&account.ExternalID,
		&metadata,
		&account.LastSyncedAt,
		&account.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &account.Metadata); err != nil {
			return nil, err
		}
	}

	return account, nil
}

// marshalMetadata сериализует metadata, nil превращается в пустой объект
func marshalMetadata(m map[string]interface{}) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}
