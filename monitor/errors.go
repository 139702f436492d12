package monitor

import (
	"errors"

	"github.com/Taha-Siraj/ebay-backend/monitor/internal/ebay"
	"github.com/Taha-Siraj/ebay-backend/monitor/internal/extract"
	"github.com/Taha-Siraj/ebay-backend/monitor/internal/scheduler"
	"github.com/Taha-Siraj/ebay-backend/monitor/internal/sources"
)

// ErrClosed is returned from entry points after Close.
var ErrClosed = errors.New("monitor: service closed")

// Failure taxonomy surfaced from the internal packages. A fetch that ends
// in one of these is terminal for that product and source this cycle; the
// cycle itself continues.
var (
	ErrNoProductData            = sources.ErrNoProductData
	ErrSupplierTitleInvalid     = sources.ErrSupplierTitleInvalid
	ErrCredentialsNotConfigured = ebay.ErrCredentialsNotConfigured
	ErrExtractionFailed         = extract.ErrExtractionFailed
	ErrSchedulerConfig          = scheduler.ErrSchedulerConfig
)
