package ebay

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// searchPageSize is the per-page limit for seller searches. The published
// ceiling is 200; a smaller page keeps responses quick on large stores.
const searchPageSize = 50

// SearchPage is one page of a seller-filtered item search.
type SearchPage struct {
	Items   []Item
	Total   int
	HasMore bool
}

type searchResponse struct {
	Total         int    `json:"total"`
	Next          string `json:"next"`
	ItemSummaries []Item `json:"itemSummaries"`
}

// SearchClient runs paginated item searches filtered by seller identity,
// behind the OAuth2 client-credentials token.
type SearchClient struct {
	client *resty.Client
	tokens *TokenCache
	creds  Credentials
	logger *slog.Logger
}

// NewSearchClient creates a SearchClient against baseURL (empty = production).
func NewSearchClient(creds Credentials, tokens *TokenCache, baseURL string, logger *slog.Logger) *SearchClient {
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchClient{
		client: resty.New().SetBaseURL(baseURL).SetTimeout(20 * time.Second),
		tokens: tokens,
		creds:  creds,
		logger: logger,
	}
}

// BySeller returns one page (0-based) of the seller's listings. Callers
// loop while HasMore, applying their own inter-page delay.
func (c *SearchClient) BySeller(ctx context.Context, seller string, page int) (*SearchPage, error) {
	if !c.creds.Configured() {
		return nil, ErrCredentialsNotConfigured
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	offset := page * searchPageSize
	var out searchResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("X-EBAY-C-MARKETPLACE-ID", "EBAY_US").
		SetQueryParams(map[string]string{
			"q":      seller,
			"filter": "sellers:{" + seller + "}",
			"limit":  strconv.Itoa(searchPageSize),
			"offset": strconv.Itoa(offset),
		}).
		SetResult(&out).
		Get("/buy/browse/v1/item_summary/search")
	if err != nil {
		return nil, fmt.Errorf("ebay: seller search: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("ebay: seller search: http %d", resp.StatusCode())
	}

	return &SearchPage{
		Items:   out.ItemSummaries,
		Total:   out.Total,
		HasMore: out.Next != "" || offset+len(out.ItemSummaries) < out.Total,
	}, nil
}
