package provider

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// prices.go - клиент price oracle для оценки on-chain активов в USD
//
// Oracle обращается через тот же устойчивый Transport, что и провайдеры:
// публичные price API активно отдают 429, и Retry-After там не редкость.

const (
	coingeckoBaseURL = "https://api.coingecko.com/api/v3"

	// solanaCoinID - идентификатор SOL в системе CoinGecko
	solanaCoinID = "solana"
)

// PriceOracle отдаёт USD цены активов
//
// Отсутствие цены - не ошибка: nil указатель / отсутствие ключа в map
// означает "oracle не знает этот актив". Ошибка возвращается только
// при недоступности самого oracle.
type PriceOracle interface {
	// SolPriceUSD возвращает цену SOL (nil если цена недоступна)
	SolPriceUSD(ctx context.Context) (*float64, error)

	// TokenPricesUSD возвращает цены SPL токенов по mint-адресам.
	// Неизвестные mint'ы в map отсутствуют.
	TokenPricesUSD(ctx context.Context, mints []string) (map[string]float64, error)
}

// CoinGecko реализует PriceOracle поверх публичного CoinGecko API
type CoinGecko struct {
	transport *Transport
	baseURL   string
}

// NewCoinGecko создаёт новый клиент oracle
// baseURL переопределяется в тестах; пустая строка - production API
func NewCoinGecko(transport *Transport, baseURL string) *CoinGecko {
	if baseURL == "" {
		baseURL = coingeckoBaseURL
	}
	return &CoinGecko{
		transport: transport,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// SolPriceUSD получает текущую цену SOL в USD
func (c *CoinGecko) SolPriceUSD(ctx context.Context) (*float64, error) {
	endpoint := c.baseURL + "/simple/price?ids=" + solanaCoinID + "&vs_currencies=usd"

	resp, err := c.transport.Do(ctx, http.MethodGet, endpoint, nil, nil, Options{
		Label:   "price-oracle",
		Timeout: 10 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, StatusError("price-oracle", resp)
	}

	// {"solana": {"usd": 123.45}}
	var payload map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	prices, ok := payload[solanaCoinID]
	if !ok {
		return nil, nil
	}
	price, ok := prices["usd"]
	if !ok {
		return nil, nil
	}
	return &price, nil
}

// TokenPricesUSD получает цены SPL токенов по их mint-адресам
func (c *CoinGecko) TokenPricesUSD(ctx context.Context, mints []string) (map[string]float64, error) {
	if len(mints) == 0 {
		return map[string]float64{}, nil
	}

	endpoint := c.baseURL + "/simple/token_price/solana?contract_addresses=" +
		url.QueryEscape(strings.Join(mints, ",")) + "&vs_currencies=usd"

	resp, err := c.transport.Do(ctx, http.MethodGet, endpoint, nil, nil, Options{
		Label:   "price-oracle",
		Timeout: 10 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, StatusError("price-oracle", resp)
	}

	// {"<mint>": {"usd": 0.98}, ...}
	var payload map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	prices := make(map[string]float64, len(payload))
	for mint, vs := range payload {
		if usd, ok := vs["usd"]; ok {
			prices[mint] = usd
		}
	}
	return prices, nil
}
