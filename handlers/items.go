package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"sample-app/logger"
	"sample-app/metrics"
	"sample-app/services"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrNameRequired is the 400 message for a create without a name
const ErrNameRequired = "Name is required"

// ListItems returns all items, newest first
// GET /api/items
//
// Response:
//   200: {"success": true, "count": 2, "items": [...]}
//   500: {"success": false, "error": "..."}
func (h *Handler) ListItems(c *gin.Context) {
	ctx := c.Request.Context()

	if items, ok := h.cachedItems(ctx); ok {
		c.Header("X-Cache", "HIT")
		c.JSON(http.StatusOK, gin.H{"success": true, "count": len(items), "items": items})
		return
	}

	gen, cacheable := h.cacheGeneration(ctx)

	items, err := h.store.ListItems(ctx)
	if err != nil {
		logStoreError("items", err, "Error fetching items")
		c.JSON(storeErrorStatus(routeData, err), gin.H{
			"success": false,
			"error":   h.errorMessage(err),
		})
		return
	}

	if h.cache != nil {
		if cacheable {
			if err := h.cache.SetItems(ctx, gen, items); err != nil {
				logger.Logger.Warn("Caching item list failed", zap.String(LogFieldEndpoint, "items"), zap.Error(err))
			}
		}
		c.Header("X-Cache", "MISS")
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(items),
		"items":   items,
	})
}

// CreateItem inserts a new item
// POST /api/items
// Request Body: {"name": "foo", "description": "optional"}
//
// Response:
//   201: {"success": true, "item": {...}}
//   400: {"success": false, "error": "Name is required"}
//   500: {"success": false, "error": "..."}
func (h *Handler) CreateItem(c *gin.Context) {
	startTime := time.Now()

	var req CreateItemRequest
	err := c.ShouldBindJSON(&req)
	if err != nil || blankName(req.Name) {
		logger.Logger.Info("Rejected item without name",
			zap.String(LogFieldEndpoint, "items"),
			zap.NamedError("bind_error", err),
		)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   ErrNameRequired,
		})
		return
	}

	name, _ := textValue(req.Name)
	in := services.NewItem{Name: name}
	if desc, ok := textValue(req.Description); ok {
		in.Description = &desc
	}

	item, err := h.store.CreateItem(c.Request.Context(), in)
	if err != nil {
		logStoreError("items", err, "Error creating item")
		c.JSON(storeErrorStatus(routeData, err), gin.H{
			"success": false,
			"error":   h.errorMessage(err),
		})
		return
	}

	metrics.ItemsCreated.Inc()
	h.afterCreate(*item)

	logger.Logger.Info("Item created",
		zap.String(LogFieldEndpoint, "items"),
		zap.Int64(LogFieldItemID, item.ID),
		zap.Float64(LogFieldDurationMs, float64(time.Since(startTime).Milliseconds())),
	)
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"item":    item,
	})
}

// ExportItems writes a snapshot of all items to object storage
// POST /api/items/export
//
// Response:
//   201: {"success": true, "bucket": "...", "object": "...", "count": 2, "size": 312, "etag": "..."}
//   500: {"success": false, "error": "..."}
//   503: {"success": false, "error": "Object storage is not configured"}
func (h *Handler) ExportItems(c *gin.Context) {
	if h.exporter == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "Object storage is not configured",
		})
		return
	}
	ctx := c.Request.Context()

	items, err := h.store.ListItems(ctx)
	if err != nil {
		metrics.Exports.WithLabelValues(metrics.StatusError).Inc()
		logStoreError("items/export", err, "Error reading items for export")
		c.JSON(storeErrorStatus(routeData, err), gin.H{
			"success": false,
			"error":   h.errorMessage(err),
		})
		return
	}

	result, err := h.exporter.ExportItems(ctx, items, h.now())
	if err != nil {
		metrics.Exports.WithLabelValues(metrics.StatusError).Inc()
		logger.Logger.Error("Item export failed",
			zap.String(LogFieldEndpoint, "items/export"),
			zap.Int(LogFieldCount, len(items)),
			zap.Error(err),
		)
		msg := err.Error()
		if h.cfg.RedactErrors {
			msg = "export failed"
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   msg,
		})
		return
	}

	metrics.Exports.WithLabelValues(metrics.StatusSuccess).Inc()
	metrics.ExportSize.Set(float64(result.Size))
	logger.Logger.Info("Items exported",
		zap.String(LogFieldEndpoint, "items/export"),
		zap.String("bucket", result.Bucket),
		zap.String("object", result.Object),
		zap.Int(LogFieldCount, result.Count),
		zap.String("size_formatted", humanize.IBytes(uint64(result.Size))),
	)
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"bucket":  result.Bucket,
		"object":  result.Object,
		"count":   result.Count,
		"size":    result.Size,
		"etag":    result.ETag,
	})
}

// cachedItems returns the cached list; cache faults count as a miss.
func (h *Handler) cachedItems(ctx context.Context) ([]services.Item, bool) {
	if h.cache == nil {
		return nil, false
	}
	items, ok, err := h.cache.GetItems(ctx)
	switch {
	case err != nil:
		metrics.CacheRequests.WithLabelValues("error").Inc()
		logger.Logger.Warn("Reading item list cache failed", zap.String(LogFieldEndpoint, "items"), zap.Error(err))
		return nil, false
	case ok:
		metrics.CacheRequests.WithLabelValues("hit").Inc()
		return items, true
	default:
		metrics.CacheRequests.WithLabelValues("miss").Inc()
		return nil, false
	}
}

// cacheGeneration reads the cache generation before a store read so the
// result is only cached if no create invalidated it meanwhile.
func (h *Handler) cacheGeneration(ctx context.Context) (int64, bool) {
	if h.cache == nil {
		return 0, false
	}
	gen, err := h.cache.Generation(ctx)
	if err != nil {
		logger.Logger.Warn("Reading item list cache generation failed", zap.String(LogFieldEndpoint, "items"), zap.Error(err))
		return 0, false
	}
	return gen, true
}

// afterCreate invalidates the list cache and publishes the created event.
// Failures are logged only; the item is already stored.
func (h *Handler) afterCreate(item services.Item) {
	if h.cache == nil && h.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()

	if h.cache != nil {
		if err := h.cache.Invalidate(ctx); err != nil {
			logger.Logger.Warn("Invalidating item list cache failed",
				zap.Int64(LogFieldItemID, item.ID),
				zap.Error(err),
			)
		}
	}

	if h.events != nil {
		if err := h.events.PublishItemCreated(ctx, item); err != nil {
			metrics.EventsPublished.WithLabelValues(metrics.StatusError).Inc()
			logger.Logger.Warn("Publishing item event failed",
				zap.Int64(LogFieldItemID, item.ID),
				zap.Error(err),
			)
			return
		}
		metrics.EventsPublished.WithLabelValues(metrics.StatusSuccess).Inc()
	}
}

// blankName reports a name that is missing, null, empty, false or zero.
func blankName(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	text, ok := textValue(raw)
	if !ok || text == "" {
		return true
	}
	switch c := raw[0]; {
	case c == 'f':
		return true
	case c == '-' || (c >= '0' && c <= '9'):
		f, err := strconv.ParseFloat(text, 64)
		return err == nil && f == 0
	default:
		return false
	}
}

// textValue converts a JSON value to the text stored in a column: strings
// as-is, other scalars as written, objects and arrays as compact JSON.
// ok is false for a missing or null value.
func textValue(raw json.RawMessage) (text string, ok bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	switch raw[0] {
	case '"':
		if err := json.Unmarshal(raw, &text); err != nil {
			return "", false
		}
		return text, true
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return "", false
		}
		return buf.String(), true
	default:
		return string(raw), true
	}
}
