package bybit

import (
	"fmt"

	"github.com/alejandrodnm/spotjournal/internal/ports"
)

// DTOs raw de la API v5 de Bybit. Solo se usan dentro de este paquete.
// La conversión a domain entities se hace en mapping.go.

// envelope es el wrapper común de todas las respuestas v5.
type envelope[T any] struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  T      `json:"result"`
	Time    int64  `json:"time"`
}

// executionList es el result de GET /v5/execution/list.
type executionList struct {
	Category       string         `json:"category"`
	NextPageCursor string         `json:"nextPageCursor"`
	List           []rawExecution `json:"list"`
}

// rawExecution es un fill tal como lo devuelve Bybit: números como strings.
type rawExecution struct {
	Symbol      string `json:"symbol"`
	OrderID     string `json:"orderId"`
	Side        string `json:"side"`
	ExecID      string `json:"execId"`
	ExecPrice   string `json:"execPrice"`
	ExecQty     string `json:"execQty"`
	ExecFee     string `json:"execFee"`
	ExecTime    string `json:"execTime"`
	ExecType    string `json:"execType"`
	FeeCurrency string `json:"feeCurrency"`
	IsMaker     bool   `json:"isMaker"`
}

// Códigos de retCode con significado propio.
const (
	retOK               = 0
	retInvalidAPIKey    = 10003
	retInvalidSignature = 10004
	retPermissionDenied = 10005
	retTooManyVisits    = 10006
)

// APIError es un retCode != 0 devuelto por Bybit con HTTP 200.
type APIError struct {
	Code int
	Msg  string
}

func (e *APIError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = "Bybit API error"
	}
	return fmt.Sprintf("bybit: retCode %d: %s", e.Code, msg)
}

// Unwrap clasifica el retCode en uno de los errores estándar de ports.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case retInvalidAPIKey, retInvalidSignature, retPermissionDenied:
		return ports.ErrAuthenticationFailed
	case retTooManyVisits:
		return ports.ErrRateLimited
	}
	return ports.ErrExchangeRejected
}
