package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Taha-Siraj/ebay-backend/monitor/internal/resilience"
	"github.com/Taha-Siraj/ebay-backend/monitor/internal/store"
)

func TestDetectSupplier(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://www.aliexpress.com/item/100500.html", "aliexpress"},
		{"https://www.alibaba.com/product-detail/x_1600.html", "alibaba"},
		{"https://cjdropshipping.com/product/x-p-99.html", "cjdropshipping"},
		{"https://www.dhgate.com/product/x/12345.html", "dhgate"},
		{"https://shop.example.com/products/widget", "generic"},
	}
	for _, tc := range cases {
		if got := detectSupplier(tc.url).name; got != tc.want {
			t.Errorf("detectSupplier(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}

// WHAT: a named profile pulls title, price, image and stock out of the
// supplier's page shape.
func TestSupplierFetchNamedProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<h1 data-pl="product-title">Instant Ramen 24 Pack</h1>
			<div class="product-price-current"><span class="product-price-value">US $12.50</span></div>
			<div class="image-view-magnifier-wrap"><img src="https://cdn.example.com/ramen.jpg"></div>
		</body></html>`))
	}))
	defer srv.Close()

	s := NewSupplier(resilience.NewLimiter(time.Millisecond), nil)
	// The test server's host carries no supplier marker; force the profile
	// by fetching through fetchOnce directly.
	snap, err := s.fetchOnce(context.Background(), srv.URL, supplierProfiles[0])
	if err != nil {
		t.Fatalf("fetchOnce: %v", err)
	}
	if snap.Title != "Instant Ramen 24 Pack" {
		t.Fatalf("title = %q", snap.Title)
	}
	if snap.Price != 12.50 {
		t.Fatalf("price = %v", snap.Price)
	}
	if len(snap.Images) != 1 || snap.Images[0] != "https://cdn.example.com/ramen.jpg" {
		t.Fatalf("images = %v", snap.Images)
	}
	if snap.Stock != store.StockInStock {
		t.Fatalf("stock = %v", snap.Stock)
	}
}

// WHAT: a page whose title selector yields under 3 characters fails with
// the supplier-title sentinel instead of producing a junk snapshot.
func TestSupplierFetchTitleInvalid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><h1>ok</h1><span class="price">$5</span></body></html>`))
	}))
	defer srv.Close()

	s := NewSupplier(resilience.NewLimiter(time.Millisecond), nil)
	_, err := s.fetchOnce(context.Background(), srv.URL, genericProfile)
	if !errors.Is(err, ErrSupplierTitleInvalid) {
		t.Fatalf("err = %v, want ErrSupplierTitleInvalid", err)
	}
}

// WHAT: the generic fallback parser handles an unrecognized shop shape.
func TestSupplierFetchGeneric(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<h1>Bamboo Cutting Board</h1>
			<span class="current-price">€18.90</span>
			<p>Currently out of stock</p>
		</body></html>`))
	}))
	defer srv.Close()

	s := NewSupplier(resilience.NewLimiter(time.Millisecond), nil)
	snap, err := s.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if snap.Title != "Bamboo Cutting Board" {
		t.Fatalf("title = %q", snap.Title)
	}
	if snap.Price != 18.90 {
		t.Fatalf("price = %v", snap.Price)
	}
	if snap.Stock != store.StockOutOfStock {
		t.Fatalf("stock = %v, want out of stock", snap.Stock)
	}
}

// WHAT: absent fields stay absent — no placeholder image or zero-but-set
// price is fabricated.
func TestParseSupplierDocAbsentFields(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<html><body><h1>Widget With No Price</h1></body></html>`))
	if err != nil {
		t.Fatal(err)
	}
	snap := parseSupplierDoc(doc, genericProfile)
	if snap.Price != 0 {
		t.Fatalf("price = %v, want 0", snap.Price)
	}
	if snap.Images != nil {
		t.Fatalf("images = %v, want nil", snap.Images)
	}
}
