package provider

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"folio/internal/models"
)

// simplefin.go - адаптер банковского агрегатора SimpleFIN
//
// SimpleFIN отдаёт все подключённые банковские счета пользователя одним
// запросом GET {accessURL}/accounts. Access URL содержит встроенные
// Basic-credentials и хранится в БД зашифрованным; адаптер получает его
// через AccessURLSource уже расшифрованным.
//
// Особенности протокола:
// - Балансы приходят десятичными строками ("1234.56")
// - balance-date - unix seconds момента "as of"
// - Тип счёта не сообщается: выводится по домену банка, затем по
//   ключевым словам в названии счёта

// json - быстрый drop-in кодек для горячего пути разбора провайдерских ответов
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// AccessURLSource отдаёт расшифрованный SimpleFIN access URL пользователя
type AccessURLSource interface {
	AccessURL(ctx context.Context, userID int) (string, error)
}

// SimpleFIN реализует интерфейс Provider для SimpleFIN Bridge
type SimpleFIN struct {
	transport  *Transport
	accessURLs AccessURLSource
}

// NewSimpleFIN создаёт новый адаптер SimpleFIN
func NewSimpleFIN(transport *Transport, accessURLs AccessURLSource) *SimpleFIN {
	return &SimpleFIN{
		transport:  transport,
		accessURLs: accessURLs,
	}
}

// Name возвращает тип провайдера
func (s *SimpleFIN) Name() models.ProviderKind {
	return models.ProviderSimpleFIN
}

// ============ Провайдерские структуры ответа ============

type simplefinResponse struct {
	Errors   []string           `json:"errors"`
	Accounts []simplefinAccount `json:"accounts"`
}

type simplefinAccount struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Currency     string                 `json:"currency"`
	Balance      string                 `json:"balance"`
	BalanceDate  int64                  `json:"balance-date"`
	Org          simplefinOrg           `json:"org"`
	Transactions []simplefinTransaction `json:"transactions"`
}

type simplefinOrg struct {
	Domain string `json:"domain"`
	Name   string `json:"name"`
}

type simplefinTransaction struct {
	ID          string `json:"id"`
	Posted      int64  `json:"posted"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Payee       string `json:"payee"`
	Memo        string `json:"memo"`
	Pending     bool   `json:"pending"`
}

// FetchAccounts получает счета пользователя из SimpleFIN и нормализует их
func (s *SimpleFIN) FetchAccounts(ctx context.Context, userID int) ([]models.AccountData, error) {
	if s.accessURLs == nil {
		return nil, ErrNotConfigured
	}

	accessURL, err := s.accessURLs.AccessURL(ctx, userID)
	if err != nil {
		return nil, err
	}
	if accessURL == "" {
		// Fail fast до любого сетевого обращения
		return nil, ErrNotConfigured
	}

	url := strings.TrimRight(accessURL, "/") + "/accounts"

	resp, err := s.transport.Do(ctx, http.MethodGet, url, nil, nil, Options{
		Label: "simplefin",
	})
	if err != nil {
		fetchErrors.WithLabelValues(string(models.ProviderSimpleFIN)).Inc()
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fetchErrors.WithLabelValues(string(models.ProviderSimpleFIN)).Inc()
		return nil, StatusError("simplefin", resp)
	}

	var payload simplefinResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	result := make([]models.AccountData, 0, len(payload.Accounts))

	for _, acc := range payload.Accounts {
		result = append(result, s.normalize(userID, acc, now))
	}

	return result, nil
}

// normalize преобразует счёт SimpleFIN в каноническую форму
func (s *SimpleFIN) normalize(userID int, acc simplefinAccount, now time.Time) models.AccountData {
	var balance *float64
	if v, err := strconv.ParseFloat(acc.Balance, 64); err == nil {
		balance = &v
	}

	// Timestamp снапшота: "as of" провайдера либо время синка
	snapshotAt := now
	if acc.BalanceDate > 0 {
		snapshotAt = time.Unix(acc.BalanceDate, 0).UTC()
	}

	txs := make([]models.Transaction, 0, len(acc.Transactions))
	for _, tx := range acc.Transactions {
		amount, _ := strconv.ParseFloat(tx.Amount, 64)
		txs = append(txs, models.Transaction{
			ExternalID:  tx.ID,
			PostedAt:    time.Unix(tx.Posted, 0).UTC(),
			Amount:      amount,
			Description: tx.Description,
			Payee:       tx.Payee,
			Memo:        tx.Memo,
			Pending:     tx.Pending,
		})
	}

	syncedAt := now
	return models.AccountData{
		Account: models.Account{
			UserID:     userID,
			Provider:   models.ProviderSimpleFIN,
			Name:       acc.Name,
			Type:       InferAccountType(acc.Org.Domain, acc.Name),
			BalanceUSD: balance,
			ExternalID: acc.ID,
			Metadata: map[string]interface{}{
				"org_domain": acc.Org.Domain,
				"org_name":   acc.Org.Name,
				"currency":   acc.Currency,
			},
			LastSyncedAt: &syncedAt,
		},
		SnapshotAt:   snapshotAt,
		Transactions: txs,
	}
}

// ============ Определение типа счёта ============

// domainTypeMap - известные домены банков и их типы по умолчанию
var domainTypeMap = map[string]models.AccountType{
	"chase.com":           models.AccountTypeChecking,
	"bankofamerica.com":   models.AccountTypeChecking,
	"wellsfargo.com":      models.AccountTypeChecking,
	"usbank.com":          models.AccountTypeChecking,
	"ally.com":            models.AccountTypeSavings,
	"marcus.com":          models.AccountTypeSavings,
	"synchronybank.com":   models.AccountTypeSavings,
	"capitalone.com":      models.AccountTypeCredit,
	"discover.com":        models.AccountTypeCredit,
	"americanexpress.com": models.AccountTypeCredit,
	"fidelity.com":        models.AccountTypeInvestment,
	"vanguard.com":        models.AccountTypeInvestment,
	"schwab.com":          models.AccountTypeInvestment,
	"robinhood.com":       models.AccountTypeInvestment,
	"coinbase.com":        models.AccountTypeCrypto,
	"kraken.com":          models.AccountTypeCrypto,
}

// InferAccountType выводит канонический тип счёта
//
// Порядок (первое совпадение выигрывает):
//  1. Точное совпадение домена банка
//  2. Ключевые слова в названии счёта:
//     checking / savings / credit|card / investment|brokerage|ira|401k /
//     crypto|bitcoin|ethereum
//  3. Иначе other
//
// Домен сильнее названия: chase.com -> checking независимо от имени счёта.
func InferAccountType(domain, name string) models.AccountType {
	if t, ok := domainTypeMap[strings.ToLower(domain)]; ok {
		return t
	}

	lower := strings.ToLower(name)

	switch {
	case strings.Contains(lower, "checking"):
		return models.AccountTypeChecking
	case strings.Contains(lower, "savings"):
		return models.AccountTypeSavings
	case strings.Contains(lower, "credit") || strings.Contains(lower, "card"):
		return models.AccountTypeCredit
	case strings.Contains(lower, "investment") || strings.Contains(lower, "brokerage") ||
		strings.Contains(lower, "ira") || strings.Contains(lower, "401k"):
		return models.AccountTypeInvestment
	case strings.Contains(lower, "crypto") || strings.Contains(lower, "bitcoin") ||
		strings.Contains(lower, "ethereum"):
		return models.AccountTypeCrypto
	default:
		return models.AccountTypeOther
	}
}
