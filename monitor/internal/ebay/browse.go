package ebay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultAPIBaseURL is the production API host.
const DefaultAPIBaseURL = "https://api.ebay.com"

// Item is one listing as returned by the item-search API.
type Item struct {
	ItemID string `json:"itemId"`
	Title  string `json:"title"`
	Price  struct {
		Value    string `json:"value"`
		Currency string `json:"currency"`
	} `json:"price"`
	Image struct {
		ImageURL string `json:"imageUrl"`
	} `json:"image"`
	Seller struct {
		Username string `json:"username"`
	} `json:"seller"`
	ItemWebURL              string `json:"itemWebUrl"`
	EstimatedAvailabilities []struct {
		EstimatedAvailabilityStatus string `json:"estimatedAvailabilityStatus"`
		EstimatedAvailableQuantity  int    `json:"estimatedAvailableQuantity"`
	} `json:"estimatedAvailabilities"`
	ShortDescription string `json:"shortDescription"`
}

// BrowseClient looks up single items by legacy item id. Requests are keyed
// by app id plus a bearer token from the shared cache.
type BrowseClient struct {
	client *resty.Client
	tokens *TokenCache
	creds  Credentials
	logger *slog.Logger
}

// NewBrowseClient creates a BrowseClient against baseURL (empty = production).
func NewBrowseClient(creds Credentials, tokens *TokenCache, baseURL string, logger *slog.Logger) *BrowseClient {
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BrowseClient{
		client: resty.New().SetBaseURL(baseURL).SetTimeout(20 * time.Second),
		tokens: tokens,
		creds:  creds,
		logger: logger,
	}
}

// ItemByLegacyID fetches one item by its legacy (listing URL) identifier.
func (c *BrowseClient) ItemByLegacyID(ctx context.Context, itemID string) (*Item, error) {
	if !c.creds.Configured() {
		return nil, ErrCredentialsNotConfigured
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	var item Item
	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("X-EBAY-C-MARKETPLACE-ID", "EBAY_US").
		SetQueryParam("legacy_item_id", itemID).
		SetResult(&item).
		Get("/buy/browse/v1/item/get_item_by_legacy_id")
	if err != nil {
		return nil, fmt.Errorf("ebay: item lookup: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("ebay: item lookup: http %d", resp.StatusCode())
	}
	return &item, nil
}
