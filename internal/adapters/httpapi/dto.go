package httpapi

import "github.com/alejandrodnm/spotjournal/internal/domain"

// syncRequest es el body de POST /api/bybit.
type syncRequest struct {
	APIKey    string `json:"apiKey"`
	APISecret string `json:"apiSecret"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type syncResponse struct {
	Trades  []tradeDTO `json:"trades"`
	Summary summaryDTO `json:"summary"`
}

// tradeDTO mantiene los nombres y formatos de campo que espera el frontend:
// sumUsdt con 2 decimales y commission con 4, ambos como string.
type tradeDTO struct {
	ID         string  `json:"id"`
	Token      string  `json:"token"`
	Quantity   float64 `json:"quantity"`
	EntryPrice float64 `json:"entryPrice"`
	ExitPrice  float64 `json:"exitPrice"`
	SumUSDT    string  `json:"sumUsdt"`
	Commission string  `json:"commission"`
	PnLUSDT    float64 `json:"pnlUsdt"`
	PnLPercent float64 `json:"pnlPercent"`
	EntryDate  string  `json:"entryDate"`
	ExitDate   string  `json:"exitDate"`
	Duration   string  `json:"duration"`
}

type summaryDTO struct {
	Count     int     `json:"count"`
	Wins      int     `json:"wins"`
	Losses    int     `json:"losses"`
	AvgProfit float64 `json:"avgProfit"`
	AvgLoss   float64 `json:"avgLoss"`
	TotalPnL  float64 `json:"totalPnL"`
}

func toTradeDTO(t domain.Trade) tradeDTO {
	return tradeDTO{
		ID:         t.ID,
		Token:      t.Token,
		Quantity:   t.Quantity.InexactFloat64(),
		EntryPrice: t.EntryPrice.InexactFloat64(),
		ExitPrice:  t.ExitPrice.InexactFloat64(),
		SumUSDT:    t.SumUSDT.StringFixed(2),
		Commission: t.Commission.StringFixed(4),
		PnLUSDT:    t.PnLUSDT.InexactFloat64(),
		PnLPercent: t.PnLPercent.InexactFloat64(),
		EntryDate:  t.EntryDate(),
		ExitDate:   t.ExitDate(),
		Duration:   t.Duration,
	}
}

func toSummaryDTO(s domain.Summary) summaryDTO {
	return summaryDTO{
		Count:     s.Count,
		Wins:      s.Wins,
		Losses:    s.Losses,
		AvgProfit: s.AvgProfit.InexactFloat64(),
		AvgLoss:   s.AvgLoss.InexactFloat64(),
		TotalPnL:  s.TotalPnL.InexactFloat64(),
	}
}

func newSyncResponse(trades []domain.Trade, s domain.Summary) syncResponse {
	out := syncResponse{Trades: make([]tradeDTO, 0, len(trades)), Summary: toSummaryDTO(s)}
	for _, t := range trades {
		out.Trades = append(out.Trades, toTradeDTO(t))
	}
	return out
}
