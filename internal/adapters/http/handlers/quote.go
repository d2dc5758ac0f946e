package handlers

import (
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/presenter"
	"github.com/jsamuelsen/quotekeeper/internal/app"
	"github.com/jsamuelsen/quotekeeper/internal/domain"
)

// importFormField is the multipart field carrying an uploaded export.
const importFormField = "file"

// QuoteHandler handles quote, category and preference endpoints.
type QuoteHandler struct {
	service *app.QuoteService
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(service *app.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		service: service,
	}
}

// ListQuotes handles GET /api/v1/quotes
// Returns one page of the collection, optionally filtered by category.
//
// @Summary List quotes
// @Tags quotes
// @Produce json
// @Param category query string false "Category, or all"
// @Param cursor query string false "Cursor from a previous page"
// @Param limit query int false "Page size (1-100)"
// @Success 200 {object} dto.PaginatedResponse[dto.QuoteListItem]
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes [get]
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	var req dto.ListQuotesRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	category := domain.NormalizeCategory(req.Category)
	if category == "" {
		category = domain.CategoryAll
	}

	page, err := dto.PageQuotes(h.service.ListQuotes(c.Request.Context(), category), &req, category)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// CreateQuote handles POST /api/v1/quotes
// Adds a quote, re-renders the view and publishes it best-effort.
//
// @Summary Add a quote
// @Tags quotes
// @Accept json
// @Produce json
// @Param quote body dto.CreateQuoteRequest true "New quote"
// @Success 201 {object} dto.QuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes [post]
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	var req dto.CreateQuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	q, err := h.service.SubmitNewQuote(c.Request.Context(), req.Text, req.Category)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewQuoteResponse(q))
}

// RandomQuote handles GET /api/v1/quotes/random
// Shows a random quote from the saved category.
//
// @Summary Show a random quote
// @Tags quotes
// @Produce json
// @Success 200 {object} dto.QuoteResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/random [get]
func (h *QuoteHandler) RandomQuote(c *gin.Context) {
	q, ok := h.service.RequestRandomQuote(c.Request.Context())
	if !ok {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(
			dto.ErrorCodeNotFound,
			presenter.NoQuotesMessage,
		).WithTraceID(dto.GetTraceID(c)))

		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponse(q))
}

// LastViewed handles GET /api/v1/quotes/last
// Returns the quote most recently shown in this process.
//
// @Summary Last viewed quote
// @Tags quotes
// @Produce json
// @Success 200 {object} dto.QuoteResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/last [get]
func (h *QuoteHandler) LastViewed(c *gin.Context) {
	q, err := h.service.LastViewed(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponse(q))
}

// Export handles GET /api/v1/quotes/export
// Downloads the collection as quotes.json.
//
// @Summary Export quotes
// @Tags quotes
// @Produce json
// @Success 200 {array} dto.QuoteResponse
// @Router /api/v1/quotes/export [get]
func (h *QuoteHandler) Export(c *gin.Context) {
	filename, data, err := h.service.Export(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// Import handles POST /api/v1/quotes/import
// Appends the quotes of an uploaded export, sent either as the multipart
// field "file" or as the raw request body.
//
// @Summary Import quotes
// @Tags quotes
// @Accept json,mpfd
// @Produce json
// @Success 200 {object} dto.ImportResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes/import [post]
func (h *QuoteHandler) Import(c *gin.Context) {
	body, closeBody, err := importBody(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.ErrorCodeBadRequest,
			err.Error(),
		).WithTraceID(dto.GetTraceID(c)))

		return
	}
	defer closeBody()

	ctx := c.Request.Context()

	n, err := h.service.Import(ctx, body)
	if err != nil {
		rejectImport(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ImportResponse{
		Imported: n,
		Total:    len(h.service.ListQuotes(ctx, domain.CategoryAll)),
	})
}

// rejectImport names the step that turned a document away, so a client can
// tell a broken file from one with a bad record.
func rejectImport(c *gin.Context, err error) {
	step, ok := app.GetExecutionStep(err)
	status, resp := dto.MapError(err)

	if !ok || status >= http.StatusInternalServerError {
		dto.HandleError(c, err)
		return
	}

	if resp.Error.Details == nil {
		resp.Error.Details = make(map[string]string, 1)
	}

	resp.Error.Details["step"] = string(step)

	c.JSON(status, resp.WithTraceID(dto.GetTraceID(c)))
}

// importBody returns the uploaded document and a func that releases it.
func importBody(c *gin.Context) (io.Reader, func(), error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return c.Request.Body, func() {}, nil
	}

	header, err := c.FormFile(importFormField)
	if err != nil {
		return nil, nil, domain.NewValidationError(importFormField, "multipart upload must include a file field")
	}

	f, err := header.Open()
	if err != nil {
		return nil, nil, domain.NewValidationError(importFormField, "could not be opened")
	}

	return f, func() { _ = f.Close() }, nil
}

// Categories handles GET /api/v1/categories
// Returns the filter options and the saved selection.
//
// @Summary List categories
// @Tags categories
// @Produce json
// @Success 200 {object} dto.CategoriesResponse
// @Router /api/v1/categories [get]
func (h *QuoteHandler) Categories(c *gin.Context) {
	options, selected := h.service.Categories(c.Request.Context())

	c.JSON(http.StatusOK, dto.CategoriesResponse{Options: options, Selected: selected})
}

// SetCategoryPreference handles PUT /api/v1/preferences/category
// Saves the category filter and shows a random quote from it.
//
// @Summary Change the category filter
// @Tags categories
// @Accept json
// @Produce json
// @Param preference body dto.CategoryPreferenceRequest true "Category, or all"
// @Success 200 {object} dto.CategoryPreferenceResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/preferences/category [put]
func (h *QuoteHandler) SetCategoryPreference(c *gin.Context) {
	var req dto.CategoryPreferenceRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	category := h.service.ChangeCategoryFilter(c.Request.Context(), req.Category)

	c.JSON(http.StatusOK, dto.CategoryPreferenceResponse{Category: category})
}

// RegisterReadRoutes registers the routes that leave durable state alone.
func (h *QuoteHandler) RegisterReadRoutes(rg *gin.RouterGroup) {
	rg.GET("/quotes", h.ListQuotes)
	rg.GET("/quotes/random", h.RandomQuote)
	rg.GET("/quotes/last", h.LastViewed)
	rg.GET("/quotes/export", h.Export)
	rg.GET("/categories", h.Categories)
}

// RegisterWriteRoutes registers the routes that change durable state.
func (h *QuoteHandler) RegisterWriteRoutes(rg *gin.RouterGroup) {
	rg.POST("/quotes", h.CreateQuote)
	rg.POST("/quotes/import", h.Import)
	rg.PUT("/preferences/category", h.SetCategoryPreference)
}
