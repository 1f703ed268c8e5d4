package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"folio/internal/models"
	"folio/internal/provider"
	"folio/internal/repository"
)

// ============ Mock UserRepository ============

type MockUserRepository struct {
	users  map[int]*models.User
	nextID int

	createErr error
	getErr    error
	updateErr error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[int]*models.User),
		nextID: 1,
	}
}

func (m *MockUserRepository) Create(user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrUserAlreadyExists
		}
	}
	user.ID = m.nextID
	m.nextID++
	user.CreatedAt = time.Now()
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(id int) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if user, exists := m.users[id]; exists {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *MockUserRepository) GetAll() ([]*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	result := make([]*models.User, 0, len(m.users))
	for _, u := range m.users {
		result = append(result, u)
	}
	return result, nil
}

func (m *MockUserRepository) UpdateAccessURL(id int, encryptedURL string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	user, exists := m.users[id]
	if !exists {
		return repository.ErrUserNotFound
	}
	user.SimpleFINAccessURL = encryptedURL
	return nil
}

func (m *MockUserRepository) Delete(id int) error {
	if _, exists := m.users[id]; !exists {
		return repository.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

// ============ Mock AccountRepository ============

type MockAccountRepository struct {
	mu       sync.Mutex
	accounts map[int]*models.Account
	nextID   int

	upsertErr error
	getErr    error
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[int]*models.Account),
		nextID:   1,
	}
}

func (m *MockAccountRepository) Upsert(account *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	for _, a := range m.accounts {
		if a.UserID == account.UserID && a.Provider == account.Provider && a.ExternalID == account.ExternalID {
			account.ID = a.ID
			account.CreatedAt = a.CreatedAt
			m.accounts[a.ID] = account
			return nil
		}
	}
	account.ID = m.nextID
	m.nextID++
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) GetByID(id int) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if account, exists := m.accounts[id]; exists {
		return account, nil
	}
	return nil, repository.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByUserID(userID int) ([]*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	var result []*models.Account
	for _, a := range m.accounts {
		if a.UserID == userID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *MockAccountRepository) TotalValue(userID int) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return 0, m.getErr
	}
	total := 0.0
	for _, a := range m.accounts {
		if a.UserID == userID && a.BalanceUSD != nil {
			total += *a.BalanceUSD
		}
	}
	return total, nil
}

func (m *MockAccountRepository) CountByUserID(userID int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return 0, m.getErr
	}
	count := 0
	for _, a := range m.accounts {
		if a.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (m *MockAccountRepository) Delete(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.accounts[id]; !exists {
		return repository.ErrAccountNotFound
	}
	delete(m.accounts, id)
	return nil
}

// ============ Mock SnapshotRepository ============

type MockSnapshotRepository struct {
	mu        sync.Mutex
	snapshots []*models.Snapshot
	nextID    int

	createErr error
	getErr    error
}

func NewMockSnapshotRepository() *MockSnapshotRepository {
	return &MockSnapshotRepository{nextID: 1}
}

func (m *MockSnapshotRepository) Create(snapshot *models.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	snapshot.ID = m.nextID
	m.nextID++
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now()
	}
	m.snapshots = append(m.snapshots, snapshot)
	return nil
}

func (m *MockSnapshotRepository) GetByUserInRange(userID int, from, to time.Time) ([]*models.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	var result []*models.Snapshot
	for _, s := range m.snapshots {
		if !s.CreatedAt.Before(from) && !s.CreatedAt.After(to) {
			result = append(result, s)
		}
	}
	return result, nil
}

func (m *MockSnapshotRepository) GetByUserUntil(userID int, to time.Time) ([]*models.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	var result []*models.Snapshot
	for _, s := range m.snapshots {
		if !s.CreatedAt.After(to) {
			result = append(result, s)
		}
	}
	return result, nil
}

func (m *MockSnapshotRepository) DeleteOlderThan(timestamp time.Time) (int64, error) {
	return 0, nil
}

// ============ Mock TransactionRepository ============

type MockTransactionRepository struct {
	mu  sync.Mutex
	txs map[string]*models.Transaction

	upsertErr error
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		txs: make(map[string]*models.Transaction),
	}
}

func txKey(accountID int, externalID string) string {
	return fmt.Sprintf("%d/%s", accountID, externalID)
}

func (m *MockTransactionRepository) Upsert(tx *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.txs[txKey(tx.AccountID, tx.ExternalID)] = tx
	return nil
}

func (m *MockTransactionRepository) GetByAccountID(accountID int, limit int) ([]*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*models.Transaction
	for _, tx := range m.txs {
		if tx.AccountID == accountID {
			result = append(result, tx)
		}
	}
	return result, nil
}

func (m *MockTransactionRepository) GetByUserInRange(userID int, from, to time.Time) ([]*models.Transaction, error) {
	return nil, nil
}

func (m *MockTransactionRepository) CountByAccountID(accountID int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, tx := range m.txs {
		if tx.AccountID == accountID {
			count++
		}
	}
	return count, nil
}

// ============ Mock Provider ============

type MockProvider struct {
	name     models.ProviderKind
	accounts []models.AccountData
	err      error

	mu    sync.Mutex
	calls int
}

func (m *MockProvider) Name() models.ProviderKind {
	return m.name
}

func (m *MockProvider) FetchAccounts(ctx context.Context, userID int) ([]models.AccountData, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.accounts, nil
}

var _ provider.Provider = (*MockProvider)(nil)

// ============ Mock SyncBroadcaster ============

type MockBroadcaster struct {
	mu        sync.Mutex
	results   []*models.SyncResult
	summaries []*models.PortfolioSummary
}

func (m *MockBroadcaster) BroadcastSyncResult(result *models.SyncResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, result)
}

func (m *MockBroadcaster) BroadcastPortfolioUpdate(summary *models.PortfolioSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries = append(m.summaries, summary)
}
