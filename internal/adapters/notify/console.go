package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alejandrodnm/spotjournal/internal/domain"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
)

// Console implementa ports.Notifier.
type Console struct {
	out   io.Writer
	dates bool
}

// NewConsole crea un notificador que escribe a stdout.
// Con dates=true la tabla incluye las fechas de entrada y salida.
func NewConsole(dates bool) *Console {
	return &Console{out: os.Stdout, dates: dates}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, dates bool) *Console {
	return &Console{out: w, dates: dates}
}

// NotifyTrades imprime la tabla de trades y el bloque de estadísticas.
func (c *Console) NotifyTrades(_ context.Context, trades []domain.Trade, summary domain.Summary) error {
	if len(trades) == 0 {
		fmt.Fprintf(c.out, "[%s] no trades found\n", time.Now().Format("15:04:05"))
		c.printSummary(summary)
		return nil
	}

	fmt.Fprintf(c.out, "\n[%s] %d trades\n", time.Now().Format("15:04:05"), len(trades))
	if err := c.printTable(trades); err != nil {
		return fmt.Errorf("notify.NotifyTrades: %w", err)
	}
	c.printSummary(summary)
	return nil
}

// PrintSyncRun imprime una línea con el resultado de la última sincronización.
func (c *Console) PrintSyncRun(run domain.SyncRun) {
	status := "ok"
	if !run.OK() {
		status = "error: " + run.Err
	}
	fmt.Fprintf(c.out, "  sync %s  fetched:%d new:%d trades:%d  took:%s  %s\n",
		shortID(run.ID), run.Fetched, run.Stored, run.Trades,
		run.Elapsed().Round(time.Millisecond), status)
}

// printTable imprime una fila por trade, más nuevos primero.
func (c *Console) printTable(trades []domain.Trade) error {
	table := tablewriter.NewWriter(c.out)
	header := []any{"Token", "Qty", "Entry", "Exit", "Sum USDT", "Fee", "PnL", "PnL %", "Duration"}
	if c.dates {
		header = append(header, "Opened", "Closed")
	}
	table.Header(header...)

	for _, t := range trades {
		row := []any{
			t.Token,
			t.Quantity.String(),
			trimPrice(t.EntryPrice),
			t.ExitPrice.String(),
			t.SumUSDT.StringFixed(2),
			t.Commission.StringFixed(4),
			signed(t.PnLUSDT, 2),
			signed(t.PnLPercent, 2) + "%",
			t.Duration,
		}
		if c.dates {
			row = append(row, t.EntryDate(), t.ExitDate())
		}
		if err := table.Append(row...); err != nil {
			return err
		}
	}
	return table.Render()
}

// printSummary imprime media de ganancias, media de pérdidas y P&L total.
func (c *Console) printSummary(s domain.Summary) {
	fmt.Fprintf(c.out, "\n=== SUMMARY (%d trades, %d wins / %d losses, win rate %.1f%%) ===\n",
		s.Count, s.Wins, s.Losses, s.WinRate())
	fmt.Fprintf(c.out, "  Avg profit: %s\n", s.AvgProfit.StringFixed(2))
	fmt.Fprintf(c.out, "  Avg loss:   %s\n", s.AvgLoss.StringFixed(2))
	fmt.Fprintf(c.out, "  Total PnL:  %s\n\n", signed(s.TotalPnL, 2))
}

// --- helpers ---

// signed formatea con places decimales y '+' delante si no es negativo.
func signed(v decimal.Decimal, places int32) string {
	s := v.StringFixed(places)
	if !v.IsNegative() {
		return "+" + s
	}
	return s
}

// trimPrice recorta precios medios con división periódica a 8 decimales.
func trimPrice(v decimal.Decimal) string {
	return v.Round(8).String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
