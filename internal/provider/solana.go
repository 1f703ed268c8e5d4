package provider

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"folio/internal/models"
)

// solana.go - адаптер on-chain данных Solana кошелька
//
// Читает нативный баланс и SPL token holdings через JSON-RPC
// (getBalance, getTokenAccountsByOwner) и оценивает их в USD через
// price oracle. Обе внешние зависимости ходят через устойчивый Transport.
//
// Политика отсутствующих цен: недоступная цена SOL попадает в metadata
// как null (sol_price_usd / sol_value_usd), НЕ как ноль и НЕ как ошибка
// синхронизации. Неоценённые токены входят в breakdown без value_usd.

const (
	// lamportsPerSol - нативная единица: 1 SOL = 10^9 lamports
	lamportsPerSol = 1_000_000_000

	// splTokenProgramID - адрес SPL Token Program
	splTokenProgramID = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
)

// Solana реализует интерфейс Provider для on-chain кошелька
type Solana struct {
	transport *Transport
	oracle    PriceOracle

	walletAddress string
	rpcEndpoint   string
}

// NewSolana создаёт новый адаптер Solana
func NewSolana(transport *Transport, oracle PriceOracle, walletAddress, rpcEndpoint string) *Solana {
	return &Solana{
		transport:     transport,
		oracle:        oracle,
		walletAddress: walletAddress,
		rpcEndpoint:   rpcEndpoint,
	}
}

// Name возвращает тип провайдера
func (s *Solana) Name() models.ProviderKind {
	return models.ProviderSolana
}

// ============ JSON-RPC структуры ============

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type balanceResponse struct {
	Result struct {
		Value int64 `json:"value"`
	} `json:"result"`
	Error *rpcError `json:"error"`
}

type tokenAccountsResponse struct {
	Result struct {
		Value []struct {
			Account struct {
				Data struct {
					Parsed struct {
						Info struct {
							Mint        string `json:"mint"`
							TokenAmount struct {
								UIAmount float64 `json:"uiAmount"`
								Decimals int     `json:"decimals"`
							} `json:"tokenAmount"`
						} `json:"info"`
					} `json:"parsed"`
				} `json:"data"`
			} `json:"account"`
		} `json:"value"`
	} `json:"result"`
	Error *rpcError `json:"error"`
}

// tokenHolding - один SPL токен кошелька в metadata breakdown
type tokenHolding struct {
	Mint     string   `json:"mint"`
	Amount   float64  `json:"amount"`
	PriceUSD *float64 `json:"price_usd"`
	ValueUSD *float64 `json:"value_usd"`
}

// FetchAccounts читает кошелёк и нормализует его в один канонический счёт
func (s *Solana) FetchAccounts(ctx context.Context, userID int) ([]models.AccountData, error) {
	if s.walletAddress == "" || s.rpcEndpoint == "" {
		// Fail fast до любого сетевого обращения
		return nil, ErrNotConfigured
	}

	solBalance, err := s.fetchSolBalance(ctx)
	if err != nil {
		fetchErrors.WithLabelValues(string(models.ProviderSolana)).Inc()
		return nil, err
	}

	tokens, err := s.fetchTokenHoldings(ctx)
	if err != nil {
		fetchErrors.WithLabelValues(string(models.ProviderSolana)).Inc()
		return nil, err
	}

	// Цены: недоступность oracle деградирует до null цен, не валит синк
	var solPrice *float64
	if s.oracle != nil {
		solPrice, err = s.oracle.SolPriceUSD(ctx)
		if err != nil {
			log.Printf("[solana] sol price unavailable: %v", err)
			solPrice = nil
		}
	}

	tokenPrices := map[string]float64{}
	if s.oracle != nil && len(tokens) > 0 {
		mints := make([]string, 0, len(tokens))
		for _, t := range tokens {
			mints = append(mints, t.Mint)
		}
		tokenPrices, err = s.oracle.TokenPricesUSD(ctx, mints)
		if err != nil {
			log.Printf("[solana] token prices unavailable: %v", err)
			tokenPrices = map[string]float64{}
		}
	}

	// Оценка: SOL value может быть null, токены суммируются по известным ценам
	var solValue *float64
	if solPrice != nil {
		v := solBalance * (*solPrice)
		solValue = &v
	}

	tokensValue := 0.0
	for i := range tokens {
		if price, ok := tokenPrices[tokens[i].Mint]; ok {
			value := tokens[i].Amount * price
			tokens[i].PriceUSD = &price
			tokens[i].ValueUSD = &value
			tokensValue += value
		}
	}

	// Итоговый баланс: сумма оценённых компонент.
	// Если не оценено вообще ничего, баланс неизвестен (null).
	var totalValue *float64
	if solValue != nil || len(tokenPrices) > 0 {
		total := tokensValue
		if solValue != nil {
			total += *solValue
		}
		totalValue = &total
	}

	now := time.Now().UTC()

	account := models.Account{
		UserID:     userID,
		Provider:   models.ProviderSolana,
		Name:       walletDisplayName(s.walletAddress),
		Type:       models.AccountTypeCrypto,
		BalanceUSD: totalValue,
		ExternalID: s.walletAddress,
		Metadata: map[string]interface{}{
			"sol_balance":   solBalance,
			"sol_price_usd": solPrice, // null при недоступной цене
			"sol_value_usd": solValue, // null при недоступной цене
			"tokens":        tokens,
			"token_count":   len(tokens),
		},
		LastSyncedAt: &now,
	}

	return []models.AccountData{{
		Account:    account,
		SnapshotAt: now,
	}}, nil
}

// fetchSolBalance получает нативный баланс кошелька в SOL
func (s *Solana) fetchSolBalance(ctx context.Context) (float64, error) {
	var payload balanceResponse
	if err := s.rpcCall(ctx, "getBalance", []interface{}{s.walletAddress}, &payload); err != nil {
		return 0, err
	}
	if payload.Error != nil {
		return 0, fmt.Errorf("solana rpc error %d: %s", payload.Error.Code, payload.Error.Message)
	}
	return float64(payload.Result.Value) / lamportsPerSol, nil
}

// fetchTokenHoldings получает SPL token holdings кошелька
// Токены с нулевым количеством отбрасываются
func (s *Solana) fetchTokenHoldings(ctx context.Context) ([]tokenHolding, error) {
	params := []interface{}{
		s.walletAddress,
		map[string]string{"programId": splTokenProgramID},
		map[string]string{"encoding": "jsonParsed"},
	}

	var payload tokenAccountsResponse
	if err := s.rpcCall(ctx, "getTokenAccountsByOwner", params, &payload); err != nil {
		return nil, err
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("solana rpc error %d: %s", payload.Error.Code, payload.Error.Message)
	}

	holdings := make([]tokenHolding, 0, len(payload.Result.Value))
	for _, v := range payload.Result.Value {
		info := v.Account.Data.Parsed.Info
		if info.TokenAmount.UIAmount == 0 {
			continue
		}
		holdings = append(holdings, tokenHolding{
			Mint:   info.Mint,
			Amount: info.TokenAmount.UIAmount,
		})
	}
	return holdings, nil
}

// rpcCall выполняет один JSON-RPC запрос через устойчивый транспорт
func (s *Solana) rpcCall(ctx context.Context, method string, params []interface{}, out interface{}) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return err
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")

	resp, err := s.transport.Do(ctx, http.MethodPost, s.rpcEndpoint, header, body, Options{
		Label: "solana-rpc",
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return StatusError("solana-rpc", resp)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// walletDisplayName строит человекочитаемое имя кошелька
// из первых и последних 4 символов адреса
func walletDisplayName(address string) string {
	if len(address) <= 8 {
		return fmt.Sprintf("Solana Wallet (%s)", address)
	}
	return fmt.Sprintf("Solana Wallet (%s...%s)", address[:4], address[len(address)-4:])
}
