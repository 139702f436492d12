package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Taha-Siraj/ebay-backend/monitor/internal/resilience"
	"github.com/Taha-Siraj/ebay-backend/monitor/internal/store"
)

// ErrNoCompetitorData is returned when the competitor search yielded no
// priced offers for the query.
var ErrNoCompetitorData = errors.New("sources: no competitor offers found")

// competitorResponse is the competitor-search API's wire shape.
type competitorResponse struct {
	Offers []struct {
		Title  string `json:"title"`
		Price  string `json:"price"`
		Seller string `json:"seller"`
	} `json:"offers"`
	Total int `json:"total"`
}

// Competitor queries the competitor-search API and reduces the result to
// the cheapest offer, which is all change detection needs.
type Competitor struct {
	client  *resty.Client
	limiter *resilience.Limiter
	logger  *slog.Logger
}

// NewCompetitor creates the competitor adapter against baseURL.
func NewCompetitor(baseURL, apiKey string, limiter *resilience.Limiter, logger *slog.Logger) *Competitor {
	if logger == nil {
		logger = slog.Default()
	}
	client := resty.New().SetBaseURL(baseURL).SetTimeout(15 * time.Second)
	if apiKey != "" {
		client.SetHeader("X-Api-Key", apiKey)
	}
	return &Competitor{client: client, limiter: limiter, logger: logger}
}

// Fetch searches competing offers for query (typically the monitored
// item's title) and returns the cheapest one found.
func (c *Competitor) Fetch(ctx context.Context, query string) (*store.CompetitorSummary, error) {
	if err := c.limiter.Wait(ctx, "competitor"); err != nil {
		return nil, err
	}

	var summary *store.CompetitorSummary
	err := resilience.Retry(ctx, func(ctx context.Context) error {
		var fetchErr error
		summary, fetchErr = c.fetchOnce(ctx, query)
		return fetchErr
	}, retryAttempts, retryBaseDelay)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (c *Competitor) fetchOnce(ctx context.Context, query string) (*store.CompetitorSummary, error) {
	var out competitorResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("q", query).
		SetResult(&out).
		Get("/v1/offers/search")
	if err != nil {
		return nil, fmt.Errorf("sources: competitor search: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("sources: competitor search: http %d", resp.StatusCode())
	}

	summary := &store.CompetitorSummary{Query: query}
	for _, offer := range out.Offers {
		price, perr := strconv.ParseFloat(offer.Price, 64)
		if perr != nil || price <= 0 {
			continue
		}
		summary.OfferCount++
		if summary.LowestPrice == 0 || price < summary.LowestPrice {
			summary.LowestPrice = price
		}
	}
	if summary.OfferCount == 0 {
		return nil, ErrNoCompetitorData
	}
	c.logger.Debug("sources: competitor search done", "query", query,
		"offers", summary.OfferCount, "lowest", summary.LowestPrice)
	return summary, nil
}
