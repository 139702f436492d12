package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Taha-Siraj/ebay-backend/idgen"
	"github.com/Taha-Siraj/ebay-backend/monitor/internal/browser"
	"github.com/Taha-Siraj/ebay-backend/monitor/internal/ebay"
	"github.com/Taha-Siraj/ebay-backend/monitor/internal/extract"
	"github.com/Taha-Siraj/ebay-backend/monitor/internal/resilience"
	"github.com/Taha-Siraj/ebay-backend/monitor/internal/scheduler"
	"github.com/Taha-Siraj/ebay-backend/monitor/internal/sources"
)

// Store is the persistence collaborator. Document-style storage; no
// cross-item transactions are required.
type Store interface {
	FindItem(ctx context.Context, tenantID, marketplaceID string) (*MonitoredItem, error)
	ItemsForTenant(ctx context.Context, tenantID string) ([]*MonitoredItem, error)
	UpsertItem(ctx context.Context, item *MonitoredItem) error
	AppendHistory(ctx context.Context, e *PriceHistoryEntry) error
	CreateAlert(ctx context.Context, a *Alert) error
	TenantSettings(ctx context.Context, tenantID string) (*TenantSettings, error)
	ListTenants(ctx context.Context) ([]string, error)
}

// Notifier is the outbound notification collaborator. Fire and forget:
// failure is logged, never fatal to a cycle.
type Notifier interface {
	SendAlertEmail(ctx context.Context, address string, alert *Alert, item *MonitoredItem) error
	SendAlertWebhook(ctx context.Context, url string, alert *Alert, item *MonitoredItem) error
}

// Per-source fetch ports, satisfied by the adapters in internal/sources.
type (
	MarketplaceSource interface {
		Fetch(ctx context.Context, itemURL string) (*Snapshot, error)
	}
	SupplierSource interface {
		Fetch(ctx context.Context, productURL string) (*Snapshot, error)
	}
	CompetitorSource interface {
		Fetch(ctx context.Context, query string) (*CompetitorSummary, error)
	}
	StoreImporter interface {
		Import(ctx context.Context, storeURL string) ([]ImportedItem, error)
	}
)

// Service is the monitoring orchestrator: it owns the per-tenant
// scheduler, the browser-backed extraction stack and the source adapters,
// and drives fetch, change detection and alert emission per cycle.
type Service struct {
	store    Store
	notifier Notifier

	marketplace MarketplaceSource
	supplier    SupplierSource
	competitor  CompetitorSource
	importer    StoreImporter

	detector *Detector
	registry *scheduler.Registry
	browser  *browser.Manager

	config *Config
	logger *slog.Logger
	newID  func() string
	now    func() time.Time

	// jobCtx is the context scheduled cycles run under; Close cancels it.
	jobCtx    context.Context
	cancelJob context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// ServiceOption customizes a Service, mainly to substitute source
// adapters in tests.
type ServiceOption func(*Service)

// WithMarketplaceSource replaces the marketplace adapter.
func WithMarketplaceSource(s MarketplaceSource) ServiceOption {
	return func(svc *Service) { svc.marketplace = s }
}

// WithSupplierSource replaces the supplier adapter.
func WithSupplierSource(s SupplierSource) ServiceOption {
	return func(svc *Service) { svc.supplier = s }
}

// WithCompetitorSource replaces the competitor adapter.
func WithCompetitorSource(s CompetitorSource) ServiceOption {
	return func(svc *Service) { svc.competitor = s }
}

// WithStoreImporter replaces the bulk-import adapter.
func WithStoreImporter(s StoreImporter) ServiceOption {
	return func(svc *Service) { svc.importer = s }
}

// WithCatalog installs a supplier catalog on the default bulk-import
// adapter so imported items gain a supplier match. No effect when the
// importer was replaced with WithStoreImporter.
func WithCatalog(c Catalog) ServiceOption {
	return func(svc *Service) {
		if si, ok := svc.importer.(*sources.StoreImport); ok {
			si.SetCatalog(c)
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(svc *Service) {
		svc.now = now
		svc.detector.now = now
	}
}

// New creates a monitoring Service over the given persistence and
// notification collaborators.
func New(st Store, notifier Notifier, cfg *Config, logger *slog.Logger, opts ...ServiceOption) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("monitor: nil store")
	}
	if cfg == nil {
		cfg = defaultConfig()
	}
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}

	limiter := resilience.NewLimiter(cfg.MinSourceDelay)

	browserCfg := cfg.Browser
	browserCfg.Logger = logger
	mgr := browser.NewManager(browserCfg)

	extractCfg := cfg.Extract
	extractCfg.Logger = logger
	engine := extract.New(mgr, extractCfg)

	creds := ebay.Credentials{AppID: cfg.Ebay.AppID, CertID: cfg.Ebay.CertID}
	var lookup sources.ItemLookup
	var search sources.SellerSearch
	if creds.Configured() {
		tokens := ebay.NewTokenCache(creds, logger, tokenOptions(cfg.Ebay)...)
		lookup = ebay.NewBrowseClient(creds, tokens, cfg.Ebay.APIBaseURL, logger)
		search = ebay.NewSearchClient(creds, tokens, cfg.Ebay.APIBaseURL, logger)
	} else {
		logger.Warn("monitor: marketplace API credentials not configured, extraction only")
	}

	importCfg := cfg.StoreImport
	importCfg.Logger = logger

	jobCtx, cancel := context.WithCancel(context.Background())
	svc := &Service{
		store:       st,
		notifier:    notifier,
		marketplace: sources.NewMarketplace(engine, lookup, limiter, logger),
		supplier:    sources.NewSupplier(limiter, logger),
		importer:    sources.NewStoreImport(engine, engine, search, nil, importCfg),
		detector:    NewDetector(logger),
		registry:    scheduler.NewRegistry(logger),
		browser:     mgr,
		config:      cfg,
		logger:      logger,
		newID:       idgen.Default,
		now:         time.Now,
		jobCtx:      jobCtx,
		cancelJob:   cancel,
	}
	if cfg.Competitor.BaseURL != "" {
		svc.competitor = sources.NewCompetitor(cfg.Competitor.BaseURL, cfg.Competitor.APIKey, limiter, logger)
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func tokenOptions(cfg EbayConfig) []ebay.TokenOption {
	if cfg.TokenURL == "" {
		return nil
	}
	return []ebay.TokenOption{ebay.WithTokenURL(cfg.TokenURL)}
}

// Start schedules every known tenant at its persisted frequency and
// begins running triggers.
func (s *Service) Start(ctx context.Context) error {
	tenants, err := s.store.ListTenants(ctx)
	if err != nil {
		return fmt.Errorf("monitor: list tenants: %w", err)
	}
	for _, tenantID := range tenants {
		settings, err := s.store.TenantSettings(ctx, tenantID)
		if err != nil {
			s.logger.Error("monitor: load settings failed, tenant not scheduled",
				"tenant_id", tenantID, "error", err)
			continue
		}
		if err := s.ScheduleTenant(tenantID, settings.FrequencyMinutes); err != nil {
			s.logger.Error("monitor: schedule failed",
				"tenant_id", tenantID, "error", err)
		}
	}
	s.registry.Start()
	s.logger.Info("monitor: started", "tenants", len(tenants))
	return nil
}

// ScheduleTenant installs or replaces the tenant's recurring cycle
// trigger at the given frequency.
func (s *Service) ScheduleTenant(tenantID string, frequencyMinutes int) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}

	return s.registry.Schedule(tenantID, frequencyMinutes, func() {
		if err := s.RunCycle(s.jobCtx, tenantID); err != nil {
			s.logger.Error("monitor: scheduled cycle failed",
				"tenant_id", tenantID, "error", err)
		}
	})
}

// UnscheduleTenant stops the tenant's trigger.
func (s *Service) UnscheduleTenant(tenantID string) {
	s.registry.Unschedule(tenantID)
}

// RescheduleTenant re-reads the tenant's persisted frequency and replaces
// the trigger, for use after a settings change.
func (s *Service) RescheduleTenant(ctx context.Context, tenantID string) error {
	settings, err := s.store.TenantSettings(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("monitor: load settings: %w", err)
	}
	return s.ScheduleTenant(tenantID, settings.FrequencyMinutes)
}

// Close stops the scheduler, cancels in-flight scheduled cycles and shuts
// the browser down.
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.registry.StopAll()
	s.cancelJob()
	err := s.browser.Close()
	s.logger.Info("monitor: closed")
	return err
}
