package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidExecution es el error base de cualquier fill mal formado.
var ErrInvalidExecution = errors.New("invalid execution")

// ValidationError identifica el fill que hizo fallar el batch completo.
type ValidationError struct {
	Index       int    // posición en el batch de entrada, -1 si no aplica
	ExecutionID string // execId del fill, puede estar vacío
	Field       string
	Reason      string
}

func (e *ValidationError) Error() string {
	ref := fmt.Sprintf("#%d", e.Index)
	if e.ExecutionID != "" {
		ref += " (" + e.ExecutionID + ")"
	}
	return fmt.Sprintf("execution %s: %s: %s", ref, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidExecution
}

// Validate comprueba los campos requeridos de un fill.
// idx es la posición del fill en su batch, se usa solo para el mensaje.
func (e Execution) Validate(idx int) error {
	fail := func(field, reason string) error {
		return &ValidationError{Index: idx, ExecutionID: e.ID, Field: field, Reason: reason}
	}
	switch {
	case e.Symbol == "":
		return fail("symbol", "empty")
	case !e.Side.Valid():
		return fail("side", fmt.Sprintf("unknown side %q", string(e.Side)))
	case !e.Quantity.IsPositive():
		return fail("quantity", "must be positive, got "+e.Quantity.String())
	case !e.Price.IsPositive():
		return fail("price", "must be positive, got "+e.Price.String())
	case e.Fee.IsNegative():
		return fail("fee", "must not be negative, got "+e.Fee.String())
	case e.Timestamp < 0:
		return fail("timestamp", fmt.Sprintf("must not be negative, got %d", e.Timestamp))
	}
	return nil
}
