package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"folio/internal/models"
	"folio/pkg/crypto"
)

// Ошибки репозитория пользователей
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

// UserRepository - работа с таблицей users
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository создает новый экземпляр репозитория
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create создает запись о пользователе
func (r *UserRepository) Create(user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, simplefin_access_url, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	user.CreatedAt = time.Now()

	err := r.db.QueryRow(
		query,
		user.Email,
		user.PasswordHash,
		user.SimpleFINAccessURL,
		user.CreatedAt,
	).Scan(&user.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserAlreadyExists
		}
		return err
	}

	return nil
}

// GetByID возвращает пользователя по ID
func (r *UserRepository) GetByID(id int) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, simplefin_access_url, created_at
		FROM users
		WHERE id = $1`

	user := &models.User{}
	err := r.db.QueryRow(query, id).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.SimpleFINAccessURL,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

// GetByEmail возвращает пользователя по email (email хранится нормализованным)
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, simplefin_access_url, created_at
		FROM users
		WHERE email = $1`

	user := &models.User{}
	err := r.db.QueryRow(query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.SimpleFINAccessURL,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

// GetAll возвращает всех пользователей (для полной синхронизации)
func (r *UserRepository) GetAll() ([]*models.User, error) {
	query := `
		SELECT id, email, password_hash, simplefin_access_url, created_at
		FROM users
		ORDER BY id`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.PasswordHash,
			&user.SimpleFINAccessURL,
			&user.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// UpdateAccessURL сохраняет зашифрованный SimpleFIN access URL пользователя
func (r *UserRepository) UpdateAccessURL(id int, encryptedURL string) error {
	query := `
		UPDATE users
		SET simplefin_access_url = $1
		WHERE id = $2`

	result, err := r.db.Exec(query, encryptedURL, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// Delete удаляет пользователя
func (r *UserRepository) Delete(id int) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// ============ AccessURLSource поверх репозитория ============

// AccessURLStore отдаёт расшифрованные SimpleFIN access URL.
// В БД URL лежит зашифрованным AES-256-GCM, расшифровка только в памяти.
type AccessURLStore struct {
	users         *UserRepository
	encryptionKey []byte
}

// NewAccessURLStore создает хранилище access URL поверх репозитория пользователей
func NewAccessURLStore(users *UserRepository, encryptionKey []byte) *AccessURLStore {
	return &AccessURLStore{
		users:         users,
		encryptionKey: encryptionKey,
	}
}

// AccessURL возвращает расшифрованный access URL пользователя.
// Пустая строка означает, что SimpleFIN для пользователя не подключён.
func (s *AccessURLStore) AccessURL(ctx context.Context, userID int) (string, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return "", err
	}

	if user.SimpleFINAccessURL == "" {
		return "", nil
	}

	plaintext, err := crypto.Decrypt(user.SimpleFINAccessURL, s.encryptionKey)
	if err != nil {
		return "", fmt.Errorf("decrypt access url for user %d: %w", userID, err)
	}

	return plaintext, nil
}
