package handlers

import (
	"context"
	"encoding/json"
	"time"

	"sample-app/services"
)

// CreateItemRequest - POST /api/items body. Fields stay raw so that any
// JSON scalar is accepted and stored as text.
type CreateItemRequest struct {
	Name        json.RawMessage `json:"name"`
	Description json.RawMessage `json:"description"`
}

// InfoResponse - GET /api/info body
type InfoResponse struct {
	Environment        string `json:"environment,omitempty"`
	GoVersion          string `json:"goVersion"`
	Platform           string `json:"platform"`
	Arch               string `json:"arch"`
	AppInsights        bool   `json:"appInsights"`
	DatabaseConfigured bool   `json:"databaseConfigured"`
}

// ItemStore is the store surface the handlers need.
type ItemStore interface {
	Health(ctx context.Context) (*services.DBHealth, error)
	ListItems(ctx context.Context) ([]services.Item, error)
	CreateItem(ctx context.Context, in services.NewItem) (*services.Item, error)
}

// ItemCache caches the item list between creates. SetItems must drop the
// write when Invalidate ran after gen was read from Generation.
type ItemCache interface {
	GetItems(ctx context.Context) ([]services.Item, bool, error)
	Generation(ctx context.Context) (int64, error)
	SetItems(ctx context.Context, gen int64, items []services.Item) error
	Invalidate(ctx context.Context) error
}

// EventPublisher announces created items.
type EventPublisher interface {
	PublishItemCreated(ctx context.Context, item services.Item) error
}

// Exporter writes item snapshots to object storage.
type Exporter interface {
	ExportItems(ctx context.Context, items []services.Item, now time.Time) (*services.ExportResult, error)
}
