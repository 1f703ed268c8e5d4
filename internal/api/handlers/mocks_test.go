package handlers

import (
	"context"
	"errors"
	"sync"
	"time"

	"folio/internal/models"
	"folio/internal/service"
)

// ErrMockDatabase - общая ошибка для симуляции отказа хранилища
var ErrMockDatabase = errors.New("mock database error")

// ============ Mock Sync Service ============

// MockSyncService мок для SyncServiceInterface
type MockSyncService struct {
	results []*models.SyncResult
	syncErr error
	calls   int
	mu      sync.Mutex
}

// NewMockSyncService создает новый мок сервиса синхронизации
func NewMockSyncService() *MockSyncService {
	return &MockSyncService{}
}

func (m *MockSyncService) SetResults(results []*models.SyncResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = results
}

func (m *MockSyncService) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncErr = err
}

func (m *MockSyncService) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockSyncService) SyncUser(ctx context.Context, userID int) (*models.SyncResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.syncErr != nil {
		return nil, m.syncErr
	}
	if len(m.results) > 0 {
		return m.results[0], nil
	}
	return &models.SyncResult{Timestamp: time.Now()}, nil
}

func (m *MockSyncService) SyncAll(ctx context.Context) ([]*models.SyncResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.syncErr != nil {
		return nil, m.syncErr
	}
	return m.results, nil
}

// ============ Mock Portfolio Service ============

// MockPortfolioService мок для PortfolioServiceInterface
type MockPortfolioService struct {
	summary  *models.PortfolioSummary
	history  []models.PortfolioPoint
	accounts []*models.Account
	getErr   error
	mu       sync.RWMutex

	lastInterval time.Duration
}

// NewMockPortfolioService создает новый мок сервиса портфеля
func NewMockPortfolioService() *MockPortfolioService {
	return &MockPortfolioService{
		summary: &models.PortfolioSummary{},
	}
}

func (m *MockPortfolioService) SetSummary(summary *models.PortfolioSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summary = summary
}

func (m *MockPortfolioService) SetHistory(points []models.PortfolioPoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = points
}

func (m *MockPortfolioService) SetAccounts(accounts []*models.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts = accounts
}

func (m *MockPortfolioService) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getErr = err
}

func (m *MockPortfolioService) GetSummary(userID int) (*models.PortfolioSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.summary, nil
}

func (m *MockPortfolioService) GetHistory(userID int, from, to time.Time, interval time.Duration) ([]models.PortfolioPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastInterval = interval
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.history, nil
}

func (m *MockPortfolioService) LastInterval() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastInterval
}

func (m *MockPortfolioService) GetAccounts(userID int) ([]*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.accounts, nil
}

// ============ Mock Auth Service ============

// MockAuthService мок для AuthServiceInterface
type MockAuthService struct {
	users      map[string]*models.User
	signUpErr  error
	signInErr  error
	connectErr error
	nextID     int
	mu         sync.Mutex
}

// NewMockAuthService создает новый мок сервиса аутентификации
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{
		users:  make(map[string]*models.User),
		nextID: 1,
	}
}

func (m *MockAuthService) SetSignUpError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signUpErr = err
}

func (m *MockAuthService) SetSignInError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signInErr = err
}

func (m *MockAuthService) SetConnectError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectErr = err
}

func (m *MockAuthService) SignUp(email, password string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.signUpErr != nil {
		return nil, m.signUpErr
	}

	user := &models.User{
		ID:        m.nextID,
		Email:     email,
		CreatedAt: time.Now(),
	}
	m.nextID++
	m.users[email] = user
	return user, nil
}

func (m *MockAuthService) SignIn(email, password string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.signInErr != nil {
		return nil, m.signInErr
	}

	user, exists := m.users[email]
	if !exists {
		return nil, service.ErrInvalidCredentials
	}
	return user, nil
}

func (m *MockAuthService) ConnectSimpleFIN(userID int, accessURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectErr
}

// ============ Mock Transaction Repository ============

// MockTransactionRepo мок для TransactionRepositoryInterface
type MockTransactionRepo struct {
	txs    map[int][]*models.Transaction
	getErr error
	mu     sync.RWMutex
}

// NewMockTransactionRepo создает новый мок репозитория транзакций
func NewMockTransactionRepo() *MockTransactionRepo {
	return &MockTransactionRepo{
		txs: make(map[int][]*models.Transaction),
	}
}

func (m *MockTransactionRepo) SetTransactions(accountID int, txs []*models.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txs[accountID] = txs
}

func (m *MockTransactionRepo) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getErr = err
}

func (m *MockTransactionRepo) Upsert(tx *models.Transaction) error {
	return nil
}

func (m *MockTransactionRepo) GetByAccountID(accountID int, limit int) ([]*models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getErr != nil {
		return nil, m.getErr
	}

	txs := m.txs[accountID]
	if len(txs) > limit {
		txs = txs[:limit]
	}
	return txs, nil
}

func (m *MockTransactionRepo) GetByUserInRange(userID int, from, to time.Time) ([]*models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getErr != nil {
		return nil, m.getErr
	}

	var result []*models.Transaction
	for _, txs := range m.txs {
		result = append(result, txs...)
	}
	return result, nil
}

func (m *MockTransactionRepo) CountByAccountID(accountID int) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.txs[accountID]), nil
}

// Проверяем соответствие интерфейсам
var _ service.SyncServiceInterface = (*MockSyncService)(nil)
var _ service.PortfolioServiceInterface = (*MockPortfolioService)(nil)
var _ service.AuthServiceInterface = (*MockAuthService)(nil)
var _ service.TransactionRepositoryInterface = (*MockTransactionRepo)(nil)
