package handlers

import (
	"time"

	"sample-app/config"

	"github.com/gin-gonic/gin"
)

const (
	// LogFieldKeys for structured logging
	LogFieldEndpoint   = "endpoint"
	LogFieldOperation  = "operation"
	LogFieldErrorKind  = "error_kind"
	LogFieldItemID     = "item_id"
	LogFieldCount      = "count"
	LogFieldDurationMs = "duration_ms"

	// AppVersion is reported by the liveness endpoint
	AppVersion = "1.0.0"
	// AppMessage is the liveness banner
	AppMessage = "Azure Terraform Workshop - Sample App"

	// side effects after a create must not hang on a slow broker or cache
	sideEffectTimeout = 5 * time.Second
)

// Handler serves every route. Optional collaborators stay nil when their
// backing service is not configured.
type Handler struct {
	cfg      config.Config
	store    ItemStore
	cache    ItemCache
	events   EventPublisher
	exporter Exporter
	now      func() time.Time
}

// Option configures optional collaborators of a Handler.
type Option func(*Handler)

// WithCache serves the item list through cache.
func WithCache(cache ItemCache) Option {
	return func(h *Handler) { h.cache = cache }
}

// WithEvents publishes an event for every created item.
func WithEvents(events EventPublisher) Option {
	return func(h *Handler) { h.events = events }
}

// WithExporter enables POST /api/items/export.
func WithExporter(exporter Exporter) Option {
	return func(h *Handler) { h.exporter = exporter }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// New returns a Handler for cfg backed by store.
func New(cfg config.Config, store ItemStore, opts ...Option) *Handler {
	h := &Handler{cfg: cfg, store: store, now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts all routes and the not-found fallback on router.
func (h *Handler) Register(router *gin.Engine) {
	router.GET("/", h.Liveness)
	router.GET("/health/db", h.DBHealth)

	api := router.Group("/api")
	{
		api.GET("/items", h.ListItems)
		api.POST("/items", h.CreateItem)
		api.POST("/items/export", h.ExportItems)
		api.GET("/info", h.Info)
	}

	router.NoRoute(NotFound)
	router.NoMethod(NotFound)
}
