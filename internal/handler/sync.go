package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wordsync/api/internal/cache"
	"github.com/wordsync/api/internal/export"
	"github.com/wordsync/api/internal/middleware"
	"github.com/wordsync/api/internal/model"
	"github.com/wordsync/api/internal/reconcile"
)

// snapshotTTL bounds how long a cached snapshot can outlive a missed
// invalidation.
const snapshotTTL = 5 * time.Minute

type SyncHandler struct {
	engine *reconcile.Engine
	cache  Cache
	logger *slog.Logger
}

func NewSyncHandler(engine *reconcile.Engine, c Cache, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{engine: engine, cache: c, logger: logger}
}

// Sync applies the client's local changes and returns what changed on the
// server since its last checkpoint.
func (h *SyncHandler) Sync(c *gin.Context) {
	var req reconcile.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "code": CodeInvalidRequest})
		return
	}

	ctx := c.Request.Context()
	resp, result, err := h.engine.Sync(ctx, req)
	if err != nil {
		middleware.RecordSyncBatch(batchStatus(err), 0, 0)
		h.writeEngineError(c, err)
		return
	}

	middleware.RecordSyncBatch("success", result.Applied, result.Discarded)
	middleware.RecordPull(len(resp.WordsToUpdate))

	if result.Applied > 0 {
		h.invalidateSnapshot(c)
	}

	h.logger.InfoContext(ctx, "sync",
		"request_id", middleware.RequestID(c),
		"pushed", len(req.LocalChanges),
		"applied", result.Applied,
		"discarded", result.Discarded,
		"pulled", len(resp.WordsToUpdate),
	)
	c.JSON(http.StatusOK, resp)
}

// PullAll returns every record, soft-deleted ones included.
func (h *SyncHandler) PullAll(c *gin.Context) {
	ctx := c.Request.Context()

	if h.cache != nil {
		cached, err := h.cache.Get(ctx, cache.SnapshotKey)
		if err == nil {
			c.Data(http.StatusOK, jsonContentType, cached)
			return
		}
		if !errors.Is(err, cache.ErrMiss) {
			h.logger.WarnContext(ctx, "snapshot cache read failed", "error", err)
		}
	}

	words, err := h.engine.PullAll(ctx)
	if err != nil {
		h.writeEngineError(c, err)
		return
	}
	if words == nil {
		words = []model.Word{}
	}
	middleware.RecordPull(len(words))

	body, err := json.Marshal(words)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode snapshot", "code": CodeInternal})
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, cache.SnapshotKey, body, snapshotTTL); err != nil {
			h.logger.WarnContext(ctx, "snapshot cache write failed", "error", err)
		}
	}

	c.Data(http.StatusOK, jsonContentType, body)
}

// Stats returns record counts and the newest modifiedTime.
func (h *SyncHandler) Stats(c *gin.Context) {
	stats, err := h.engine.Stats(c.Request.Context())
	if err != nil {
		h.writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Export renders the full snapshot as a download.
func (h *SyncHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.DefaultQuery("format", "json"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid format. Use json, csv, or md", "code": CodeInvalidRequest})
		return
	}

	words, err := h.engine.PullAll(c.Request.Context())
	if err != nil {
		h.writeEngineError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Render(&buf, format, words); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render export", "code": CodeInternal})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+format.Filename())
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func (h *SyncHandler) invalidateSnapshot(c *gin.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Delete(c.Request.Context(), cache.SnapshotKey); err != nil {
		h.logger.WarnContext(c.Request.Context(), "snapshot cache invalidation failed", "error", err)
	}
}

func (h *SyncHandler) writeEngineError(c *gin.Context, err error) {
	var verr *reconcile.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": verr.Error(),
			"code":  CodeInvalidRecord,
			"index": verr.Index,
			"name":  verr.Name,
		})
	case errors.Is(err, reconcile.ErrTransient):
		h.logger.ErrorContext(c.Request.Context(), "store unavailable",
			"request_id", middleware.RequestID(c),
			"error", err,
		)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable, retry the request", "code": CodeStoreUnavailable})
	default:
		h.logger.ErrorContext(c.Request.Context(), "request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "code": CodeInternal})
	}
}

// batchStatus is the sync_batches_total label for a failed push.
func batchStatus(err error) string {
	switch {
	case errors.Is(err, reconcile.ErrValidation):
		return "invalid"
	case errors.Is(err, reconcile.ErrTransient):
		return "transient"
	default:
		return "error"
	}
}
