package service

import (
	"context"
	"time"

	"folio/internal/models"
	"folio/internal/repository"
)

// UserRepositoryInterface определяет интерфейс репозитория пользователей
type UserRepositoryInterface interface {
	Create(user *models.User) error
	GetByID(id int) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetAll() ([]*models.User, error)
	UpdateAccessURL(id int, encryptedURL string) error
	Delete(id int) error
}

// AccountRepositoryInterface определяет интерфейс репозитория счетов
type AccountRepositoryInterface interface {
	Upsert(account *models.Account) error
	GetByID(id int) (*models.Account, error)
	GetByUserID(userID int) ([]*models.Account, error)
	TotalValue(userID int) (float64, error)
	CountByUserID(userID int) (int, error)
	Delete(id int) error
}

// SnapshotRepositoryInterface определяет интерфейс репозитория снимков
type SnapshotRepositoryInterface interface {
	Create(snapshot *models.Snapshot) error
	GetByUserInRange(userID int, from, to time.Time) ([]*models.Snapshot, error)
	GetByUserUntil(userID int, to time.Time) ([]*models.Snapshot, error)
	DeleteOlderThan(timestamp time.Time) (int64, error)
}

// TransactionRepositoryInterface определяет интерфейс репозитория транзакций
type TransactionRepositoryInterface interface {
	Upsert(tx *models.Transaction) error
	GetByAccountID(accountID int, limit int) ([]*models.Transaction, error)
	GetByUserInRange(userID int, from, to time.Time) ([]*models.Transaction, error)
	CountByAccountID(accountID int) (int, error)
}

// Проверяем, что реальные репозитории реализуют интерфейсы
var _ UserRepositoryInterface = (*repository.UserRepository)(nil)
var _ AccountRepositoryInterface = (*repository.AccountRepository)(nil)
var _ SnapshotRepositoryInterface = (*repository.SnapshotRepository)(nil)
var _ TransactionRepositoryInterface = (*repository.TransactionRepository)(nil)

// ============ Интерфейсы сервисов для Dependency Injection ============

// SyncServiceInterface определяет интерфейс сервиса синхронизации
type SyncServiceInterface interface {
	SyncUser(ctx context.Context, userID int) (*models.SyncResult, error)
	SyncAll(ctx context.Context) ([]*models.SyncResult, error)
}

// PortfolioServiceInterface определяет интерфейс сервиса портфеля
type PortfolioServiceInterface interface {
	GetSummary(userID int) (*models.PortfolioSummary, error)
	GetHistory(userID int, from, to time.Time, interval time.Duration) ([]models.PortfolioPoint, error)
	GetAccounts(userID int) ([]*models.Account, error)
}

// AuthServiceInterface определяет интерфейс сервиса аутентификации
type AuthServiceInterface interface {
	SignUp(email, password string) (*models.User, error)
	SignIn(email, password string) (*models.User, error)
	ConnectSimpleFIN(userID int, accessURL string) error
}

// Проверяем, что реальные сервисы реализуют интерфейсы
var _ SyncServiceInterface = (*SyncService)(nil)
var _ PortfolioServiceInterface = (*PortfolioService)(nil)
var _ AuthServiceInterface = (*AuthService)(nil)
var _ SummarySource = (*PortfolioService)(nil)
