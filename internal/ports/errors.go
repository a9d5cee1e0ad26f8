package ports

import "errors"

// Errores estándar de la capa de ingesta. Los adapters envuelven sus errores
// de infraestructura con estos para que el transporte pueda clasificarlos.
var (
	ErrNoCredentials        = errors.New("missing API key or secret")
	ErrExchangeUnavailable  = errors.New("exchange API is unavailable")
	ErrExchangeRejected     = errors.New("exchange API rejected the request")
	ErrAuthenticationFailed = errors.New("exchange authentication failed (check API keys)")
	ErrRateLimited          = errors.New("API rate limit exceeded")
)
