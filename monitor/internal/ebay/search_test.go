package ebay

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func testClients(t *testing.T, apiHandler http.HandlerFunc) (*BrowseClient, *SearchClient) {
	t.Helper()
	var exchanges atomic.Int64
	tokenSrv := tokenServer(t, &exchanges, 7200)
	apiSrv := httptest.NewServer(apiHandler)
	t.Cleanup(apiSrv.Close)

	creds := Credentials{AppID: "app", CertID: "cert"}
	tokens := NewTokenCache(creds, nil, WithTokenURL(tokenSrv.URL))
	return NewBrowseClient(creds, tokens, apiSrv.URL, nil),
		NewSearchClient(creds, tokens, apiSrv.URL, nil)
}

func TestBrowseClient_ItemByLegacyID(t *testing.T) {
	browse, _ := testClients(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("legacy_item_id"); got != "123456789012" {
			t.Errorf("legacy_item_id = %q", got)
		}
		if r.Header.Get("Authorization") == "" {
			t.Error("missing bearer token")
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"itemId": "v1|123456789012|0",
			"title": "Vintage Camera Lens",
			"price": {"value": "49.99", "currency": "USD"},
			"seller": {"username": "photogear"},
			"itemWebUrl": "https://www.ebay.com/itm/123456789012"
		}`)
	})

	item, err := browse.ItemByLegacyID(context.Background(), "123456789012")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if item.Title != "Vintage Camera Lens" {
		t.Errorf("title = %q", item.Title)
	}
	if item.Price.Value != "49.99" {
		t.Errorf("price = %q", item.Price.Value)
	}
	if item.Seller.Username != "photogear" {
		t.Errorf("seller = %q", item.Seller.Username)
	}
}

func TestSearchClient_BySeller_Pagination(t *testing.T) {
	// WHAT: HasMore is true while the API reports further pages and false
	// on the last page.
	_, search := testClients(t, func(w http.ResponseWriter, r *http.Request) {
		offset := r.URL.Query().Get("offset")
		w.Header().Set("Content-Type", "application/json")
		if offset == "0" {
			fmt.Fprint(w, `{"total": 51, "next": "page2",
				"itemSummaries": [{"itemId": "v1|1|0", "title": "A"}]}`)
			return
		}
		fmt.Fprint(w, `{"total": 51,
			"itemSummaries": [{"itemId": "v1|2|0", "title": "B"}]}`)
	})

	ctx := context.Background()
	page0, err := search.BySeller(ctx, "photogear", 0)
	if err != nil {
		t.Fatalf("page 0: %v", err)
	}
	if !page0.HasMore {
		t.Error("page 0 should report more pages")
	}

	page1, err := search.BySeller(ctx, "photogear", 1)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if page1.HasMore {
		t.Error("last page should not report more")
	}
}

func TestSearchClient_HTTPError(t *testing.T) {
	_, search := testClients(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	if _, err := search.BySeller(context.Background(), "someone", 0); err == nil {
		t.Fatal("expected error on 429")
	}
}
