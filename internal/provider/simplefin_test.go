package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"folio/internal/models"
)

// staticAccessURLs - тестовый AccessURLSource
type staticAccessURLs struct {
	url string
	err error
}

func (s *staticAccessURLs) AccessURL(ctx context.Context, userID int) (string, error) {
	return s.url, s.err
}

const simplefinPayload = `{
	"errors": [],
	"accounts": [
		{
			"id": "ACT-123",
			"name": "Everyday Checking",
			"currency": "USD",
			"balance": "1234.56",
			"balance-date": 1718452800,
			"org": {"domain": "chase.com", "name": "Chase"},
			"transactions": [
				{
					"id": "TRN-1",
					"posted": 1718366400,
					"amount": "-45.30",
					"description": "Grocery Store",
					"payee": "WholeFoods",
					"memo": "",
					"pending": false
				},
				{
					"id": "TRN-2",
					"posted": 1718370000,
					"amount": "2500.00",
					"description": "Payroll",
					"payee": "",
					"memo": "",
					"pending": true
				}
			]
		},
		{
			"id": "ACT-456",
			"name": "401k Retirement",
			"currency": "USD",
			"balance": "98765.43",
			"balance-date": 0,
			"org": {"domain": "unknown-bank.example", "name": "Unknown"},
			"transactions": []
		}
	]
}`

func TestSimpleFIN_FetchAccounts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/accounts" {
			t.Errorf("expected /accounts path, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(simplefinPayload))
	}))
	defer server.Close()

	sf := NewSimpleFIN(newTestTransport(), &staticAccessURLs{url: server.URL})

	accounts, err := sf.FetchAccounts(context.Background(), 7)
	if err != nil {
		t.Fatalf("FetchAccounts failed: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(accounts))
	}

	first := accounts[0]
	if first.Account.UserID != 7 {
		t.Errorf("expected userID 7, got %d", first.Account.UserID)
	}
	if first.Account.Provider != models.ProviderSimpleFIN {
		t.Errorf("expected simplefin provider, got %s", first.Account.Provider)
	}
	if first.Account.ExternalID != "ACT-123" {
		t.Errorf("expected external id ACT-123, got %s", first.Account.ExternalID)
	}
	if first.Account.BalanceUSD == nil || *first.Account.BalanceUSD != 1234.56 {
		t.Errorf("decimal string balance not parsed: %+v", first.Account.BalanceUSD)
	}
	if first.Account.Type != models.AccountTypeChecking {
		t.Errorf("chase.com must map to checking, got %s", first.Account.Type)
	}

	// Снапшот берёт provider-supplied balance-date
	wantSnapshot := time.Unix(1718452800, 0).UTC()
	if !first.SnapshotAt.Equal(wantSnapshot) {
		t.Errorf("snapshot must use balance-date: got %v, want %v", first.SnapshotAt, wantSnapshot)
	}

	if len(first.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(first.Transactions))
	}
	tx := first.Transactions[0]
	if tx.ExternalID != "TRN-1" || tx.Amount != -45.30 || tx.Payee != "WholeFoods" {
		t.Errorf("transaction not normalized: %+v", tx)
	}
	if !first.Transactions[1].Pending {
		t.Error("pending flag lost in normalization")
	}

	// Второй счёт: домен неизвестен, тип по ключевому слову "401k"
	second := accounts[1]
	if second.Account.Type != models.AccountTypeInvestment {
		t.Errorf("401k keyword must map to investment, got %s", second.Account.Type)
	}
	// balance-date не задан: снапшот по времени синка
	if second.SnapshotAt.Before(time.Now().Add(-time.Minute)) {
		t.Errorf("missing balance-date must fall back to sync time, got %v", second.SnapshotAt)
	}
}

func TestSimpleFIN_NotConfigured(t *testing.T) {
	tests := []struct {
		name   string
		source AccessURLSource
	}{
		{"nil source", nil},
		{"empty url", &staticAccessURLs{url: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sf := NewSimpleFIN(newTestTransport(), tt.source)
			_, err := sf.FetchAccounts(context.Background(), 1)
			if !errors.Is(err, ErrNotConfigured) {
				t.Errorf("expected ErrNotConfigured before any network call, got %v", err)
			}
		})
	}
}

func TestSimpleFIN_AccessURLSourceError(t *testing.T) {
	wantErr := errors.New("db down")
	sf := NewSimpleFIN(newTestTransport(), &staticAccessURLs{err: wantErr})

	_, err := sf.FetchAccounts(context.Background(), 1)
	if !errors.Is(err, wantErr) {
		t.Errorf("expected source error to propagate, got %v", err)
	}
}

func TestSimpleFIN_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	sf := NewSimpleFIN(newTestTransport(), &staticAccessURLs{url: server.URL})

	_, err := sf.FetchAccounts(context.Background(), 1)
	if !errors.Is(err, ErrRequestFailed) {
		t.Errorf("expected ErrRequestFailed on 401, got %v", err)
	}
}

func TestInferAccountType(t *testing.T) {
	tests := []struct {
		name    string
		domain  string
		accName string
		want    models.AccountType
	}{
		// Домен сильнее названия
		{"chase is checking", "chase.com", "Some Random Name", models.AccountTypeChecking},
		{"chase beats savings keyword", "chase.com", "My Savings", models.AccountTypeChecking},
		{"fidelity is investment", "fidelity.com", "Whatever", models.AccountTypeInvestment},
		{"coinbase is crypto", "coinbase.com", "Main", models.AccountTypeCrypto},
		{"domain case insensitive", "CHASE.COM", "x", models.AccountTypeChecking},

		// Fallback по ключевым словам
		{"checking keyword", "unknown.example", "Everyday Checking", models.AccountTypeChecking},
		{"savings keyword", "unknown.example", "High Yield Savings", models.AccountTypeSavings},
		{"credit keyword", "unknown.example", "Travel Credit", models.AccountTypeCredit},
		{"card keyword", "unknown.example", "Platinum Card", models.AccountTypeCredit},
		{"401k keyword", "unknown.example", "401k Retirement", models.AccountTypeInvestment},
		{"ira keyword", "unknown.example", "Roth IRA", models.AccountTypeInvestment},
		{"brokerage keyword", "unknown.example", "Brokerage", models.AccountTypeInvestment},
		{"bitcoin keyword", "unknown.example", "Bitcoin Stash", models.AccountTypeCrypto},

		// Нет совпадений
		{"no match is other", "unknown.example", "Mystery Account", models.AccountTypeOther},
		{"empty everything", "", "", models.AccountTypeOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferAccountType(tt.domain, tt.accName); got != tt.want {
				t.Errorf("InferAccountType(%q, %q) = %s, want %s", tt.domain, tt.accName, got, tt.want)
			}
		})
	}
}
