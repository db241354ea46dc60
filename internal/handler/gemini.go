package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wordsync/api/internal/cache"
	"github.com/wordsync/api/internal/gemini"
	"github.com/wordsync/api/internal/middleware"
)

var errGeminiDisabled = errors.New("gemini is not configured")

type GeminiHandler struct {
	generator gemini.Generator
	cache     Cache
	ttl       time.Duration
	logger    *slog.Logger
}

// NewGeminiHandler creates the proxy handler. A nil generator makes every
// call fail with 500; a nil cache disables response caching.
func NewGeminiHandler(generator gemini.Generator, c Cache, ttl time.Duration, logger *slog.Logger) *GeminiHandler {
	return &GeminiHandler{generator: generator, cache: c, ttl: ttl, logger: logger}
}

// Generate returns the model's vocabulary entry for ?word= verbatim.
func (h *GeminiHandler) Generate(c *gin.Context) {
	word := strings.TrimSpace(c.Query("word"))
	if word == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "word is required"})
		return
	}

	ctx := c.Request.Context()
	key := cache.GeminiKey(word)

	if h.cache != nil {
		cached, err := h.cache.Get(ctx, key)
		if err == nil {
			middleware.RecordGeminiCall(true, true, 0)
			c.Data(http.StatusOK, jsonContentType, cached)
			return
		}
		if !errors.Is(err, cache.ErrMiss) {
			h.logger.WarnContext(ctx, "gemini cache read failed", "word", word, "error", err)
		}
	}

	if h.generator == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": errGeminiDisabled.Error()})
		return
	}

	start := time.Now()
	entry, err := h.generator.Generate(ctx, word)
	middleware.RecordGeminiCall(err == nil, false, time.Since(start))
	if err != nil {
		h.logger.ErrorContext(ctx, "gemini call failed",
			"request_id", middleware.RequestID(c),
			"word", word,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, key, entry, h.ttl); err != nil {
			h.logger.WarnContext(ctx, "gemini cache write failed", "word", word, "error", err)
		}
	}

	c.Data(http.StatusOK, jsonContentType, entry)
}
