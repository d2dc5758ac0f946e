package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotekeeper/internal/app"
)

// SyncHandler exposes the sync agent: status, on-demand runs and the two
// conflict resolutions.
type SyncHandler struct {
	service *app.QuoteService
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(service *app.QuoteService) *SyncHandler {
	return &SyncHandler{service: service}
}

// Status handles GET /api/v1/sync
//
// @Summary Sync status
// @Tags sync
// @Produce json
// @Success 200 {object} dto.SyncStatusResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/sync [get]
func (h *SyncHandler) Status(c *gin.Context) {
	status, err := h.service.SyncStatus()
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSyncStatusResponse(status))
}

// Run handles POST /api/v1/sync/run
// Runs one fetch-and-compare cycle now.
//
// @Summary Run a sync cycle
// @Tags sync
// @Produce json
// @Success 200 {object} dto.SyncStatusResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/sync/run [post]
func (h *SyncHandler) Run(c *gin.Context) {
	status, err := h.service.SyncNow(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSyncStatusResponse(status))
}

// Accept handles POST /api/v1/sync/accept
// Replaces local quotes with the pending remote snapshot.
//
// @Summary Accept the remote snapshot
// @Tags sync
// @Produce json
// @Success 200 {object} dto.SyncStatusResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/v1/sync/accept [post]
func (h *SyncHandler) Accept(c *gin.Context) {
	h.resolve(c, h.service.AcceptRemote)
}

// Keep handles POST /api/v1/sync/keep
// Keeps local quotes and discards the pending remote snapshot.
//
// @Summary Keep local quotes
// @Tags sync
// @Produce json
// @Success 200 {object} dto.SyncStatusResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/v1/sync/keep [post]
func (h *SyncHandler) Keep(c *gin.Context) {
	h.resolve(c, h.service.KeepLocal)
}

func (h *SyncHandler) resolve(c *gin.Context, action func(ctx context.Context) error) {
	if err := action(c.Request.Context()); err != nil {
		dto.HandleError(c, err)
		return
	}

	h.Status(c)
}

// RegisterReadRoutes registers GET /sync.
func (h *SyncHandler) RegisterReadRoutes(rg *gin.RouterGroup) {
	rg.GET("/sync", h.Status)
}

// RegisterWriteRoutes registers the sync actions.
func (h *SyncHandler) RegisterWriteRoutes(rg *gin.RouterGroup) {
	rg.POST("/sync/run", h.Run)
	rg.POST("/sync/accept", h.Accept)
	rg.POST("/sync/keep", h.Keep)
}

func toSyncStatusResponse(s app.SyncStatus) dto.SyncStatusResponse {
	resp := dto.SyncStatusResponse{
		State:      string(s.State),
		Running:    s.Running,
		LastResult: s.LastResult,
		LastError:  s.LastError,
	}

	if !s.LastRun.IsZero() {
		lastRun := s.LastRun
		resp.LastRun = &lastRun
	}

	if s.Conflict != nil {
		resp.Conflict = &dto.ConflictResponse{
			Message:    s.Conflict.Message,
			Summary:    s.Conflict.Summary,
			Diff:       s.Conflict.Diff,
			Remote:     dto.NewQuoteResponses(s.Conflict.Remote),
			Local:      dto.NewQuoteResponses(s.Conflict.Local),
			DetectedAt: s.Conflict.DetectedAt,
		}
	}

	return resp
}
