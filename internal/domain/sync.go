package domain

import "time"

// SyncRun registra una ejecución de la ingesta: cuántos fills se bajaron,
// cuántos eran nuevos y cuántos trades salieron del matching.
type SyncRun struct {
	ID         string
	Account    string // Credentials.AccountKey de quien lanzó el sync
	StartedAt  time.Time
	FinishedAt time.Time
	Fetched    int
	Stored     int
	Trades     int
	Err        string // vacío si la ejecución terminó bien
}

// Elapsed devuelve la duración de la ejecución.
func (r SyncRun) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// OK indica si la ejecución terminó sin error.
func (r SyncRun) OK() bool {
	return r.Err == ""
}
