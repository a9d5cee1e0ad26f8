// Package httpapi expone el journal por HTTP con el mismo contrato que consume el frontend.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alejandrodnm/spotjournal/internal/domain"
	"github.com/alejandrodnm/spotjournal/internal/journal"
	"github.com/alejandrodnm/spotjournal/internal/ports"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// Syncer es lo mínimo que el handler necesita del journal.
type Syncer interface {
	Sync(ctx context.Context, creds domain.Credentials) (journal.Report, error)
}

// NewRouter arma el engine gin. Si staticDir no está vacío se sirve en "/".
func NewRouter(syncer Syncer, staticDir string) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(
		requestID(),
		accessLog(),
		cors.Default(),
		recoverJSON(),
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.POST("/bybit", syncHandler(syncer))

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, errorResponse{Error: "use POST"})
	})

	if staticDir != "" {
		r.NoRoute(gin.WrapH(http.FileServer(http.Dir(staticDir))))
	}
	return r
}

// NewServer envuelve el handler con los timeouts del servidor.
// El sync puede tardar varios segundos paginando, de ahí el WriteTimeout amplio.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   2 * time.Minute,
		MaxHeaderBytes: 1 << 20,
	}
}

// Serve arranca el servidor y lo apaga limpiamente cuando ctx se cancela.
func Serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("httpapi.Serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("httpapi.Serve: shutdown: %w", err)
	}
	slog.Info("http server stopped")
	return nil
}

func syncHandler(syncer Syncer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req syncRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
			return
		}

		creds := domain.Credentials{APIKey: req.APIKey, APISecret: req.APISecret}
		if creds.Empty() {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "apiKey and apiSecret are required"})
			return
		}

		report, err := syncer.Sync(c.Request.Context(), creds.Trimmed())
		if err != nil {
			status := statusFor(err)
			slog.Warn("sync request failed",
				"request_id", c.GetString(ctxKeyRequestID),
				"status", status,
				"err", err,
			)
			c.JSON(status, errorResponse{Error: err.Error()})
			return
		}

		c.JSON(http.StatusOK, newSyncResponse(report.Trades, report.Summary))
	}
}

// statusFor traduce los errores tipados de las capas inferiores a HTTP.
func statusFor(err error) int {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, ports.ErrNoCredentials):
		return http.StatusBadRequest
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ports.ErrAuthenticationFailed):
		return http.StatusUnauthorized
	case errors.Is(err, ports.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ports.ErrExchangeUnavailable), errors.Is(err, ports.ErrExchangeRejected):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
