package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Side es el lado de un fill: compra o venta.
type Side string

const (
	SideBuy  Side = "Buy"
	SideSell Side = "Sell"
)

// ParseSide acepta "Buy"/"Sell" sin distinguir mayúsculas.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return SideBuy, nil
	case "sell":
		return SideSell, nil
	}
	return "", fmt.Errorf("unknown side %q", s)
}

// Valid indica si el lado es Buy o Sell.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// Execution es un fill individual reportado por el exchange.
type Execution struct {
	ID        string // execId; puede venir vacío
	Symbol    string // par completo, p.ej. "BTCUSDT"
	Side      Side
	Quantity  decimal.Decimal // unidades del base asset
	Price     decimal.Decimal // precio en quote currency
	Fee       decimal.Decimal // fee en quote currency, 0 si no viene
	Timestamp int64           // ms desde epoch
}

// Time devuelve el timestamp del fill en UTC.
func (e Execution) Time() time.Time {
	return time.UnixMilli(e.Timestamp).UTC()
}

// Token devuelve el base asset del símbolo.
func (e Execution) Token() string {
	return BaseToken(e.Symbol)
}

// quoteSuffixes en orden de prioridad: solo se quita el primero que coincida.
var quoteSuffixes = []string{"USDT", "USDC"}

// BaseToken quita un único sufijo de quote currency (USDT o USDC) del símbolo.
func BaseToken(symbol string) string {
	for _, q := range quoteSuffixes {
		if strings.HasSuffix(symbol, q) {
			return strings.TrimSuffix(symbol, q)
		}
	}
	return symbol
}
