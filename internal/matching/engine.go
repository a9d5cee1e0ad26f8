// Package matching reconstructs round-trip trades from spot fills using FIFO
// lot accounting. Everything here is pure: no I/O and no state survives a call.
package matching

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/alejandrodnm/spotjournal/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Result is the output of a matching run.
type Result struct {
	// Trades are newest first.
	Trades []domain.Trade
	// Open is the quantity still held in unconsumed lots, per token.
	// Tokens whose lots were fully consumed map to zero.
	Open map[string]decimal.Decimal
}

// Match is Run without the open inventory.
func Match(executions []domain.Execution) ([]domain.Trade, error) {
	res, err := Run(executions)
	if err != nil {
		return nil, err
	}
	return res.Trades, nil
}

// Run validates the whole batch, then replays it in timestamp order.
// Equal timestamps keep their input order. A Sell with no open lots for its
// token produces nothing; a Sell larger than the open inventory is matched
// for what is available and the rest is dropped.
func Run(executions []domain.Execution) (Result, error) {
	for i, e := range executions {
		if err := e.Validate(i); err != nil {
			return Result{}, err
		}
	}

	sorted := slices.Clone(executions)
	slices.SortStableFunc(sorted, func(a, b domain.Execution) int {
		return cmp.Compare(a.Timestamp, b.Timestamp)
	})

	queues := make(map[string]*lotQueue)
	var trades []domain.Trade

	for _, e := range sorted {
		token := e.Token()
		q, ok := queues[token]
		if !ok {
			q = &lotQueue{}
			queues[token] = q
		}

		if e.Side == domain.SideBuy {
			q.push(lot{
				price:        e.Price,
				originalQty:  e.Quantity,
				remainingQty: e.Quantity,
				fee:          e.Fee,
				timestamp:    e.Timestamp,
			})
			continue
		}

		if t, ok := closeSell(q, e, token); ok {
			trades = append(trades, t)
		}
	}

	slices.Reverse(trades)

	open := make(map[string]decimal.Decimal, len(queues))
	for token, q := range queues {
		open[token] = q.remaining()
	}
	return Result{Trades: trades, Open: open}, nil
}

// closeSell consumes lots from the head of q against sell.
// Returns false if nothing could be matched.
func closeSell(q *lotQueue, sell domain.Execution, token string) (domain.Trade, bool) {
	remaining := sell.Quantity
	matched := decimal.Zero
	cost := decimal.Zero
	buyFee := decimal.Zero
	entryTime := sell.Timestamp

	for remaining.IsPositive() && !q.empty() {
		l := q.head()
		take := decimal.Min(remaining, l.remainingQty)
		if matched.IsZero() {
			entryTime = l.timestamp
		}
		cost = cost.Add(l.price.Mul(take))
		buyFee = buyFee.Add(l.feeFor(take))

		l.remainingQty = l.remainingQty.Sub(take)
		remaining = remaining.Sub(take)
		matched = matched.Add(take)

		if !l.remainingQty.IsPositive() {
			q.pop()
		}
	}

	if matched.IsZero() {
		return domain.Trade{}, false
	}

	exitValue := sell.Price.Mul(matched)
	sellFee := sell.Fee.Mul(matched).Div(sell.Quantity)
	commission := buyFee.Add(sellFee)

	pnlPercent := decimal.Zero
	if cost.IsPositive() {
		pnlPercent = exitValue.Sub(cost).Div(cost).Mul(hundred)
	}

	id := sell.ID
	if id == "" {
		id = fmt.Sprintf("%s-%d", token, sell.Timestamp)
	}

	return domain.Trade{
		ID:         id,
		Token:      token,
		Quantity:   matched,
		EntryPrice: cost.Div(matched),
		ExitPrice:  sell.Price,
		SumUSDT:    exitValue,
		Commission: commission,
		PnLUSDT:    exitValue.Sub(cost).Sub(commission),
		PnLPercent: pnlPercent,
		EntryTime:  time.UnixMilli(entryTime).UTC(),
		ExitTime:   sell.Time(),
		Duration:   FormatDuration(sell.Timestamp - entryTime),
	}, true
}
