package repository

import (
	"database/sql"
	"time"

	"folio/internal/models"
)

// SnapshotRepository - работа с таблицей snapshots.
// Снимки балансов append-only: каждая синхронизация добавляет
// новую строку, история никогда не перезаписывается.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository создает новый экземпляр репозитория
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Create добавляет снимок стоимости счёта
func (r *SnapshotRepository) Create(snapshot *models.Snapshot) error {
	query := `
		INSERT INTO snapshots (account_id, value_usd, created_at)
		VALUES ($1, $2, $3)
		RETURNING id`

	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now()
	}

	return r.db.QueryRow(
		query,
		snapshot.AccountID,
		snapshot.ValueUSD,
		snapshot.CreatedAt,
	).Scan(&snapshot.ID)
}

// GetByUserInRange возвращает снимки всех счетов пользователя за период,
// отсортированные по времени
func (r *SnapshotRepository) GetByUserInRange(userID int, from, to time.Time) ([]*models.Snapshot, error) {
	query := `
		SELECT s.id, s.account_id, s.value_usd, s.created_at
		FROM snapshots s
		JOIN accounts a ON a.id = s.account_id
		WHERE a.user_id = $1 AND s.created_at >= $2 AND s.created_at <= $3
		ORDER BY s.created_at`

	return r.querySnapshots(query, userID, from, to)
}

// GetByUserUntil возвращает все снимки пользователя до указанного момента
// без нижней границы: расчёт изменения портфеля ищет baseline-точку
// по всей истории, какой бы старой она ни была.
func (r *SnapshotRepository) GetByUserUntil(userID int, to time.Time) ([]*models.Snapshot, error) {
	query := `
		SELECT s.id, s.account_id, s.value_usd, s.created_at
		FROM snapshots s
		JOIN accounts a ON a.id = s.account_id
		WHERE a.user_id = $1 AND s.created_at <= $2
		ORDER BY s.created_at`

	return r.querySnapshots(query, userID, to)
}

func (r *SnapshotRepository) querySnapshots(query string, args ...interface{}) ([]*models.Snapshot, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []*models.Snapshot
	for rows.Next() {
		snapshot := &models.Snapshot{}
		err := rows.Scan(
			&snapshot.ID,
			&snapshot.AccountID,
			&snapshot.ValueUSD,
			&snapshot.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return snapshots, nil
}

// DeleteOlderThan удаляет снимки старше указанной даты
func (r *SnapshotRepository) DeleteOlderThan(timestamp time.Time) (int64, error) {
	query := `DELETE FROM snapshots WHERE created_at < $1`

	result, err := r.db.Exec(query, timestamp)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
