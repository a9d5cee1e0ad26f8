package matching

import "github.com/shopspring/decimal"

// lot is the unconsumed part of a single Buy fill.
// originalQty never changes; the buy fee is always prorated against it.
type lot struct {
	price        decimal.Decimal
	originalQty  decimal.Decimal
	remainingQty decimal.Decimal
	fee          decimal.Decimal
	timestamp    int64
}

// feeFor returns the share of the lot's fee attributed to qty units.
func (l *lot) feeFor(qty decimal.Decimal) decimal.Decimal {
	return l.fee.Mul(qty).Div(l.originalQty)
}

// lotQueue is a per-token FIFO of open lots, oldest at the head.
type lotQueue struct {
	lots []lot
}

func (q *lotQueue) push(l lot) {
	q.lots = append(q.lots, l)
}

func (q *lotQueue) empty() bool {
	return len(q.lots) == 0
}

func (q *lotQueue) head() *lot {
	return &q.lots[0]
}

func (q *lotQueue) pop() {
	q.lots[0] = lot{}
	q.lots = q.lots[1:]
}

// remaining sums the open quantity across all lots.
func (q *lotQueue) remaining() decimal.Decimal {
	total := decimal.Zero
	for _, l := range q.lots {
		total = total.Add(l.remainingQty)
	}
	return total
}
