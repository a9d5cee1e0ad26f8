package bybit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alejandrodnm/spotjournal/internal/domain"
	"github.com/shopspring/decimal"
)

// toExecution convierte un fill raw en domain.Execution.
// idx es la posición global del fill en la descarga; un campo numérico
// inválido devuelve *domain.ValidationError en lugar de propagar basura.
func toExecution(r rawExecution, idx int) (domain.Execution, error) {
	fail := func(field, reason string) error {
		return &domain.ValidationError{Index: idx, ExecutionID: r.ExecID, Field: field, Reason: reason}
	}

	side, err := domain.ParseSide(r.Side)
	if err != nil {
		return domain.Execution{}, fail("side", err.Error())
	}

	qty, err := parseDecimal(r.ExecQty)
	if err != nil {
		return domain.Execution{}, fail("execQty", err.Error())
	}
	price, err := parseDecimal(r.ExecPrice)
	if err != nil {
		return domain.Execution{}, fail("execPrice", err.Error())
	}

	fee := decimal.Zero
	if strings.TrimSpace(r.ExecFee) != "" {
		fee, err = parseDecimal(r.ExecFee)
		if err != nil {
			return domain.Execution{}, fail("execFee", err.Error())
		}
	}

	ts, err := strconv.ParseInt(strings.TrimSpace(r.ExecTime), 10, 64)
	if err != nil {
		return domain.Execution{}, fail("execTime", fmt.Sprintf("not an integer: %q", r.ExecTime))
	}

	return domain.Execution{
		ID:        r.ExecID,
		Symbol:    r.Symbol,
		Side:      side,
		Quantity:  qty,
		Price:     price,
		Fee:       fee,
		Timestamp: ts,
	}, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a number: %q", s)
	}
	return v, nil
}
