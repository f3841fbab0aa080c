package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/komparator/backend/internal/domain"
)

const (
	serviceName    = "komparator-backend"
	serviceVersion = "1.0.0"

	// progressEvent is the SSE event name carrying progress updates
	progressEvent = "update"
	// keepAliveEvent is sent on idle progress streams so proxies keep them open
	keepAliveEvent = "ping"
)

// CheaperFinder looks up cheaper offers for a product page
type CheaperFinder interface {
	FindCheaper(ctx context.Context, request *domain.FindRequest) (*domain.FindResult, error)
}

// ProgressSubscriber opens progress streams for a session key
type ProgressSubscriber interface {
	Subscribe(sessionKey string) (<-chan domain.Progress, func())
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	finder    CheaperFinder
	progress  ProgressSubscriber
	keepAlive time.Duration
	logger    *zap.Logger
}

// NewHandler creates a new HTTP handler. A nil finder or progress subscriber
// makes the matching endpoints answer 501.
func NewHandler(finder CheaperFinder, progress ProgressSubscriber, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		finder:    finder,
		progress:  progress,
		keepAlive: 15 * time.Second,
		logger:    logger.Named("http"),
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// CreateSession hands out a session key that ties a progress stream to a lookup
func (h *Handler) CreateSession(c *gin.Context) {
	c.JSON(http.StatusCreated, gin.H{"sid": uuid.NewString()})
}

// ProgressStream streams progress updates for a session as server-sent events.
// The stream ends once a run reports completion or the zero-results signal.
func (h *Handler) ProgressStream(c *gin.Context) {
	if h.progress == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "progress streaming not configured"})
		return
	}

	sessionKey := c.Param("sid")
	if sessionKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingSession.Error()})
		return
	}

	updates, unsubscribe := h.progress.Subscribe(sessionKey)
	defer unsubscribe()

	keepAlive := time.NewTicker(h.keepAlive)
	defer keepAlive.Stop()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-keepAlive.C:
			c.SSEvent(keepAliveEvent, "")
			c.Writer.Flush()
		case update, ok := <-updates:
			if !ok {
				return
			}
			c.SSEvent(progressEvent, gin.H{
				"data":      update.Percent(),
				"completed": update.Completed,
				"total":     update.Total,
			})
			c.Writer.Flush()
			if update.Completed >= update.Total {
				return
			}
		}
	}
}

// FindCheaper handles cheaper-product lookup requests
func (h *Handler) FindCheaper(c *gin.Context) {
	if h.finder == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "comparison service not configured"})
		return
	}

	var request domain.FindRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.finder.FindCheaper(c.Request.Context(), &request)
	if err != nil {
		status, message := errorResponse(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("find cheaper failed", zap.String("url", request.URL), zap.Error(err))
		}
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusOK, result)
}

// errorResponse maps domain errors to an HTTP status and a client-facing message
func errorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrEmptyURL),
		errors.Is(err, domain.ErrUnsupportedURL),
		errors.Is(err, domain.ErrMissingSession):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrProductInfoNotFound),
		errors.Is(err, domain.ErrNoCheaperProduct):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrFetchFailed),
		errors.Is(err, domain.ErrLikelyBlocked):
		return http.StatusBadGateway, domain.ErrFetchFailed.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
