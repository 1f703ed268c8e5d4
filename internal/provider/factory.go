package provider

import (
	"fmt"
	"strings"

	"folio/internal/models"
)

// SupportedProviders - список поддерживаемых провайдеров
var SupportedProviders = []models.ProviderKind{
	models.ProviderSimpleFIN,
	models.ProviderSolana,
}

// IsSupported проверяет, поддерживается ли провайдер
func IsSupported(name string) bool {
	kind := models.ProviderKind(strings.ToLower(name))
	for _, supported := range SupportedProviders {
		if kind == supported {
			return true
		}
	}
	return false
}

// Deps - зависимости для конструирования адаптеров
type Deps struct {
	Transport *Transport

	// SimpleFIN
	AccessURLs AccessURLSource

	// Solana
	WalletAddress string
	RPCEndpoint   string
	Oracle        PriceOracle
}

// New создаёт адаптер провайдера по имени
func New(name string, deps Deps) (Provider, error) {
	switch models.ProviderKind(strings.ToLower(name)) {
	case models.ProviderSimpleFIN:
		return NewSimpleFIN(deps.Transport, deps.AccessURLs), nil
	case models.ProviderSolana:
		return NewSolana(deps.Transport, deps.Oracle, deps.WalletAddress, deps.RPCEndpoint), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
}
