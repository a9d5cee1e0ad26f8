package matching_test

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/alejandrodnm/spotjournal/internal/domain"
	"github.com/alejandrodnm/spotjournal/internal/matching"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func buy(symbol, qty, price, fee string, ts int64) domain.Execution {
	return domain.Execution{Symbol: symbol, Side: domain.SideBuy, Quantity: d(qty), Price: d(price), Fee: d(fee), Timestamp: ts}
}

func sell(symbol, qty, price, fee string, ts int64) domain.Execution {
	return domain.Execution{Symbol: symbol, Side: domain.SideSell, Quantity: d(qty), Price: d(price), Fee: d(fee), Timestamp: ts}
}

func withID(e domain.Execution, id string) domain.Execution {
	e.ID = id
	return e
}

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "want %s, got %s", want, got.String())
}

func TestMatch_EndToEnd(t *testing.T) {
	trades, err := matching.Match([]domain.Execution{
		withID(buy("BTCUSDT", "1", "100", "0.1", 0), "b1"),
		withID(sell("BTCUSDT", "1", "110", "0.11", 1000), "s1"),
	})
	require.NoError(t, err)
	require.Len(t, trades, 1)

	tr := trades[0]
	assert.Equal(t, "s1", tr.ID)
	assert.Equal(t, "BTC", tr.Token)
	assertDec(t, "1", tr.Quantity)
	assertDec(t, "100", tr.EntryPrice)
	assertDec(t, "110", tr.ExitPrice)
	assertDec(t, "110", tr.SumUSDT)
	assertDec(t, "0.21", tr.Commission)
	assertDec(t, "9.79", tr.PnLUSDT)
	// Gross of fees: (110 - 100) / 100.
	assertDec(t, "10", tr.PnLPercent)
	assert.Equal(t, "1 seconds", tr.Duration)
	assert.Equal(t, "1970-01-01 00:00:00", tr.EntryDate())
	assert.Equal(t, "1970-01-01 00:00:01", tr.ExitDate())
}

func TestMatch_FIFOAcrossLots(t *testing.T) {
	trades, err := matching.Match([]domain.Execution{
		buy("BTCUSDT", "1", "10", "0", 1),
		buy("BTCUSDT", "1", "20", "0", 2),
		sell("BTCUSDT", "1.5", "30", "0", 3),
	})
	require.NoError(t, err)
	require.Len(t, trades, 1)

	// B1 fully consumed before B2 is touched: (1×10 + 0.5×20) / 1.5.
	assert.InDelta(t, 13.3333333333, trades[0].EntryPrice.InexactFloat64(), 1e-9)
	assertDec(t, "1.5", trades[0].Quantity)
	// Entry time comes from the first lot consumed.
	assert.Equal(t, int64(1), trades[0].EntryTime.UnixMilli())
}

func TestMatch_EntryTimeIsFirstConsumedLot(t *testing.T) {
	trades, err := matching.Match([]domain.Execution{
		buy("ETHUSDT", "1", "10", "0", 0),
		sell("ETHUSDT", "0.5", "11", "0", 1_000),
		buy("ETHUSDT", "1", "12", "0", 60_000),
		sell("ETHUSDT", "1", "13", "0", 120_000),
	})
	require.NoError(t, err)
	require.Len(t, trades, 2)

	// Newest first: the second sell drains the rest of lot 1, then half of lot 2.
	last := trades[0]
	assert.Equal(t, int64(0), last.EntryTime.UnixMilli())
	assert.Equal(t, "2 minutes", last.Duration)
	assertDec(t, "11", last.EntryPrice) // (0.5×10 + 0.5×12) / 1
}

func TestMatch_SellWithoutLotsIsNoop(t *testing.T) {
	trades, err := matching.Match([]domain.Execution{
		sell("BTCUSDT", "1", "100", "0.1", 10),
		buy("ETHUSDT", "1", "100", "0", 20),
		sell("BTCUSDT", "1", "100", "0", 30),
	})
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestMatch_EmptyInput(t *testing.T) {
	res, err := matching.Run(nil)
	require.NoError(t, err)
	assert.Empty(t, res.Trades)
	assert.Empty(t, res.Open)
}

func TestMatch_PartialSellDropsRemainder(t *testing.T) {
	res, err := matching.Run([]domain.Execution{
		buy("SOLUSDC", "1", "100", "0", 0),
		sell("SOLUSDC", "4", "120", "0.4", 5_000),
		sell("SOLUSDC", "1", "130", "0", 6_000),
	})
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)

	tr := res.Trades[0]
	assert.Equal(t, "SOL", tr.Token)
	assertDec(t, "1", tr.Quantity)
	// Sell fee prorated by the matched fraction: 0.4 × 1/4.
	assertDec(t, "0.1", tr.Commission)
	assertDec(t, "19.9", tr.PnLUSDT)
	assertDec(t, "0", res.Open["SOL"])
}

func TestMatch_FeeProportionality(t *testing.T) {
	t.Run("single sell consumes whole lot", func(t *testing.T) {
		trades, err := matching.Match([]domain.Execution{
			buy("BTCUSDT", "2", "10", "1", 0),
			sell("BTCUSDT", "2", "10", "0", 1),
		})
		require.NoError(t, err)
		require.Len(t, trades, 1)
		assertDec(t, "1", trades[0].Commission)
	})

	t.Run("two sells split the lot fee", func(t *testing.T) {
		trades, err := matching.Match([]domain.Execution{
			buy("BTCUSDT", "2", "10", "1", 0),
			sell("BTCUSDT", "1", "10", "0", 1),
			sell("BTCUSDT", "1", "10", "0", 2),
		})
		require.NoError(t, err)
		require.Len(t, trades, 2)
		assertDec(t, "0.5", trades[0].Commission)
		assertDec(t, "0.5", trades[1].Commission)
	})
}

func TestMatch_ReversedOutputOrder(t *testing.T) {
	trades, err := matching.Match([]domain.Execution{
		buy("BTCUSDT", "2", "10", "0", 0),
		withID(sell("BTCUSDT", "1", "11", "0", 100), "S1"),
		withID(sell("BTCUSDT", "1", "12", "0", 200), "S2"),
	})
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "S2", trades[0].ID)
	assert.Equal(t, "S1", trades[1].ID)
}

func TestMatch_SyntheticID(t *testing.T) {
	trades, err := matching.Match([]domain.Execution{
		buy("XRPUSDT", "5", "0.5", "0", 0),
		sell("XRPUSDT", "5", "0.6", "0", 4242),
	})
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "XRP-4242", trades[0].ID)
}

func TestMatch_EqualTimestampsKeepInputOrder(t *testing.T) {
	t.Run("buy before sell matches", func(t *testing.T) {
		trades, err := matching.Match([]domain.Execution{
			buy("BTCUSDT", "1", "10", "0", 500),
			sell("BTCUSDT", "1", "11", "0", 500),
		})
		require.NoError(t, err)
		require.Len(t, trades, 1)
		assert.Equal(t, "0 seconds", trades[0].Duration)
	})

	t.Run("sell before buy is dropped", func(t *testing.T) {
		res, err := matching.Run([]domain.Execution{
			sell("BTCUSDT", "1", "11", "0", 500),
			buy("BTCUSDT", "1", "10", "0", 500),
		})
		require.NoError(t, err)
		assert.Empty(t, res.Trades)
		assertDec(t, "1", res.Open["BTC"])
	})
}

func TestMatch_TokensAreIndependent(t *testing.T) {
	trades, err := matching.Match([]domain.Execution{
		buy("BTCUSDT", "1", "100", "0", 0),
		buy("BTCUSDC", "1", "200", "0", 1),
		buy("ETHUSDT", "1", "10", "0", 2),
		sell("ETHUSDT", "1", "12", "0", 3),
		sell("BTCUSDT", "2", "300", "0", 4),
	})
	require.NoError(t, err)
	require.Len(t, trades, 2)

	// USDT and USDC pairs share the BTC inventory.
	assert.Equal(t, "BTC", trades[0].Token)
	assertDec(t, "150", trades[0].EntryPrice)
	assert.Equal(t, "ETH", trades[1].Token)
	assertDec(t, "10", trades[1].EntryPrice)
}

func TestMatch_LossAndPercent(t *testing.T) {
	trades, err := matching.Match([]domain.Execution{
		buy("ADAUSDT", "10", "2", "0.02", 0),
		sell("ADAUSDT", "10", "1.5", "0.015", 3_600_000),
	})
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assertDec(t, "-5.035", trades[0].PnLUSDT)
	assertDec(t, "-25", trades[0].PnLPercent)
	assert.Equal(t, "1 hours", trades[0].Duration)
}

func TestMatch_ValidationFailsWholeBatch(t *testing.T) {
	bad := buy("BTCUSDT", "0", "100", "0", 2)
	bad.ID = "bad-1"

	trades, err := matching.Match([]domain.Execution{
		buy("BTCUSDT", "1", "100", "0", 0),
		sell("BTCUSDT", "1", "110", "0", 1),
		bad,
	})
	require.Error(t, err)
	assert.Nil(t, trades)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 2, verr.Index)
	assert.Equal(t, "bad-1", verr.ExecutionID)
	assert.Equal(t, "quantity", verr.Field)
	assert.ErrorIs(t, err, domain.ErrInvalidExecution)
}

func TestMatch_DoesNotMutateInput(t *testing.T) {
	in := []domain.Execution{
		sell("BTCUSDT", "1", "110", "0", 10),
		buy("BTCUSDT", "1", "100", "0", 5),
	}
	before := slices.Clone(in)
	_, err := matching.Match(in)
	require.NoError(t, err)
	assert.Equal(t, before, in)
}

// --- properties over generated histories ---

var symbols = []string{"BTCUSDT", "ETHUSDT", "ETHUSDC", "SOLUSDT"}
var quantities = []string{"0.25", "0.5", "1", "1.5", "2", "3.75"}
var prices = []string{"9.5", "10", "11.25", "20", "100"}

// genHistory builds n executions with distinct, increasing timestamps.
func genHistory(r *rand.Rand, n int) []domain.Execution {
	out := make([]domain.Execution, 0, n)
	for i := range n {
		sym := symbols[r.IntN(len(symbols))]
		qty := quantities[r.IntN(len(quantities))]
		price := prices[r.IntN(len(prices))]
		ts := int64(i+1) * 1_000
		if r.IntN(5) < 3 {
			out = append(out, buy(sym, qty, price, "0.01", ts))
		} else {
			out = append(out, sell(sym, qty, price, "0.02", ts))
		}
	}
	return out
}

func TestMatch_Conservation(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for iter := range 50 {
		execs := genHistory(r, 40)

		res, err := matching.Run(execs)
		require.NoError(t, err)

		bought := map[string]decimal.Decimal{}
		for _, e := range execs {
			if e.Side == domain.SideBuy {
				bought[e.Token()] = bought[e.Token()].Add(e.Quantity)
			}
		}
		matched := map[string]decimal.Decimal{}
		for _, tr := range res.Trades {
			matched[tr.Token] = matched[tr.Token].Add(tr.Quantity)
		}

		for token, total := range bought {
			got := matched[token].Add(res.Open[token])
			assert.True(t, total.Equal(got), "iter %d token %s: bought %s, matched+open %s", iter, token, total, got)
		}
	}
}

func TestMatch_ShuffleInvariant(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	for range 20 {
		execs := genHistory(r, 30)
		want, err := matching.Match(execs)
		require.NoError(t, err)

		shuffled := slices.Clone(execs)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got, err := matching.Match(shuffled)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestMatch_TradeInvariants(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 1))
	execs := genHistory(r, 200)
	trades, err := matching.Match(execs)
	require.NoError(t, err)

	for _, tr := range trades {
		assert.True(t, tr.Quantity.IsPositive())
		assert.False(t, tr.EntryTime.After(tr.ExitTime), tr.ID)
		assert.True(t, tr.SumUSDT.Equal(tr.ExitPrice.Mul(tr.Quantity)), tr.ID)
		cost := tr.EntryPrice.Mul(tr.Quantity)
		assert.InDelta(t, tr.SumUSDT.Sub(cost).Sub(tr.Commission).InexactFloat64(), tr.PnLUSDT.InexactFloat64(), 1e-9, tr.ID)
	}
	for i := 1; i < len(trades); i++ {
		assert.False(t, trades[i].ExitTime.After(trades[i-1].ExitTime), "newest first")
	}
}
