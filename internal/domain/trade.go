package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout es el formato de fecha con resolución de segundos usado en el journal.
const DateLayout = "2006-01-02 15:04:05"

// Trade es un round-trip cerrado por FIFO: compras previas emparejadas con una venta.
type Trade struct {
	ID         string
	Token      string
	Quantity   decimal.Decimal // cantidad realmente emparejada
	EntryPrice decimal.Decimal // media ponderada de los lotes consumidos
	ExitPrice  decimal.Decimal
	SumUSDT    decimal.Decimal // notional de salida = ExitPrice × Quantity
	Commission decimal.Decimal // fee de compra prorrateado + fee de venta prorrateado
	PnLUSDT    decimal.Decimal
	PnLPercent decimal.Decimal
	EntryTime  time.Time // timestamp del primer lote consumido
	ExitTime   time.Time
	Duration   string
}

// EntryDate devuelve la fecha de entrada en UTC con resolución de segundos.
func (t Trade) EntryDate() string {
	return t.EntryTime.UTC().Format(DateLayout)
}

// ExitDate devuelve la fecha de salida en UTC con resolución de segundos.
func (t Trade) ExitDate() string {
	return t.ExitTime.UTC().Format(DateLayout)
}

// IsWin indica si el trade cerró con P&L positivo.
func (t Trade) IsWin() bool {
	return t.PnLUSDT.IsPositive()
}

// Summary son las estadísticas agregadas que se muestran junto a la tabla.
type Summary struct {
	Count     int
	Wins      int
	Losses    int
	AvgProfit decimal.Decimal // media de P&L > 0, 0 si no hay
	AvgLoss   decimal.Decimal // media de P&L < 0, 0 si no hay
	TotalPnL  decimal.Decimal
}

// Summarize calcula media de ganancias, media de pérdidas y P&L total.
// Los trades con P&L exactamente 0 no cuentan ni como ganancia ni como pérdida.
func Summarize(trades []Trade) Summary {
	s := Summary{Count: len(trades)}
	sumWin, sumLoss := decimal.Zero, decimal.Zero
	for _, t := range trades {
		s.TotalPnL = s.TotalPnL.Add(t.PnLUSDT)
		switch t.PnLUSDT.Sign() {
		case 1:
			s.Wins++
			sumWin = sumWin.Add(t.PnLUSDT)
		case -1:
			s.Losses++
			sumLoss = sumLoss.Add(t.PnLUSDT)
		}
	}
	if s.Wins > 0 {
		s.AvgProfit = sumWin.Div(decimal.NewFromInt(int64(s.Wins)))
	}
	if s.Losses > 0 {
		s.AvgLoss = sumLoss.Div(decimal.NewFromInt(int64(s.Losses)))
	}
	return s
}

// WinRate devuelve el porcentaje de trades ganadores (0–100).
func (s Summary) WinRate() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Count) * 100
}
