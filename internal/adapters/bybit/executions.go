package bybit

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/alejandrodnm/spotjournal/internal/domain"
	"github.com/alejandrodnm/spotjournal/internal/ports"
)

const executionListPath = "/v5/execution/list"

// FetchExecutions descarga todos los fills de la categoría configurada desde since.
// startTime solo va en la primera página; las siguientes siguen nextPageCursor.
func (c *Client) FetchExecutions(ctx context.Context, creds domain.Credentials, since time.Time) ([]domain.Execution, error) {
	if creds.Empty() {
		return nil, ports.ErrNoCredentials
	}
	s := newSigner(creds)

	var all []domain.Execution
	cursor := ""

	for page := 0; page < c.maxPages; page++ {
		query := c.executionQuery(since, cursor)

		var resp envelope[executionList]
		if err := c.getSigned(ctx, s, executionListPath, query, &resp); err != nil {
			return nil, fmt.Errorf("bybit.FetchExecutions: page %d: %w", page, err)
		}
		if resp.RetCode != retOK {
			return nil, fmt.Errorf("bybit.FetchExecutions: %w", &APIError{Code: resp.RetCode, Msg: resp.RetMsg})
		}

		for _, raw := range resp.Result.List {
			e, err := toExecution(raw, len(all))
			if err != nil {
				return nil, fmt.Errorf("bybit.FetchExecutions: %w", err)
			}
			all = append(all, e)
		}

		slog.Debug("fetched executions page",
			"page", page,
			"count", len(resp.Result.List),
			"total", len(all),
		)

		cursor = resp.Result.NextPageCursor
		if cursor == "" {
			return all, nil
		}
	}

	slog.Warn("execution pagination stopped at page cap", "max_pages", c.maxPages, "total", len(all))
	return all, nil
}

// executionQuery arma el query string; es el mismo string que se firma.
func (c *Client) executionQuery(since time.Time, cursor string) string {
	params := url.Values{}
	params.Set("category", c.category)
	params.Set("limit", strconv.Itoa(c.pageLimit))
	if cursor != "" {
		params.Set("cursor", cursor)
	} else if !since.IsZero() {
		params.Set("startTime", strconv.FormatInt(since.UnixMilli(), 10))
	}
	return params.Encode()
}
