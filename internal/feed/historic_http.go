package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/0xtitan6/tradecore/pkg/types"
)

// httpBar is the wire shape a historic-bar REST API returns per page.
// Grounded on the teacher's internal/exchange.Client response-into-struct
// pattern (resty's SetResult), generalised from the Polymarket CLOB's order
// book endpoint to a generic paginated OHLCV history endpoint.
type httpBar struct {
	Symbol    string  `json:"symbol"`
	Timestamp int64   `json:"timestamp"` // unix seconds
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

type httpBarsPage struct {
	Bars       []httpBar `json:"bars"`
	NextCursor string    `json:"nextCursor"`
}

// HTTPLoaderConfig configures LoadHTTPHistoric's REST client: base URL and
// per-request timeout, mirroring the teacher's NewClient constructor shape
// in internal/exchange/client.go.
type HTTPLoaderConfig struct {
	BaseURL string
	Timeout time.Duration
}

// LoadHTTPHistoric paginates a REST bar-history endpoint for asset between
// [start, end) and returns a Historic feed over the assembled events. The
// endpoint is expected to accept symbol/exchange/from/to/cursor query
// params and return an httpBarsPage; pagination continues until the server
// returns an empty NextCursor. Grounded on the teacher's rate-limited,
// retrying resty client (same SetRetryCount/backoff shape as
// internal/exchange/client.go.NewClient), adapted from an order-management
// REST client to a read-only historic-data loader.
func LoadHTTPHistoric(ctx context.Context, cfg HTTPLoaderConfig, asset types.Asset, start, end time.Time) (*Historic, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() >= 500
		})

	var events []types.Event
	cursor := ""
	for {
		var page httpBarsPage
		req := client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"symbol":   asset.Symbol,
				"exchange": asset.Exchange,
				"from":     fmt.Sprintf("%d", start.Unix()),
				"to":       fmt.Sprintf("%d", end.Unix()),
			}).
			SetResult(&page)
		if cursor != "" {
			req.SetQueryParam("cursor", cursor)
		}

		resp, err := req.Get("/bars")
		if err != nil {
			return nil, fmt.Errorf("feed: fetch historic bars: %w", err)
		}
		if resp.StatusCode() != 200 {
			return nil, fmt.Errorf("feed: fetch historic bars: status %d: %s", resp.StatusCode(), resp.String())
		}

		for _, b := range page.Bars {
			bar := types.PriceBar{
				Asset:  asset,
				Open:   b.Open,
				High:   b.High,
				Low:    b.Low,
				Close:  b.Close,
				Volume: b.Volume,
			}
			events = append(events, types.NewEvent(time.Unix(b.Timestamp, 0), bar))
		}

		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	return NewHistoric(events, []types.Asset{asset}), nil
}
