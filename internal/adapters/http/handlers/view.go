package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/presenter"
)

// ViewHandler serves the declarative UI: the current view model and the
// add-quote form description.
type ViewHandler struct {
	view       *presenter.ViewModel
	formAction string
}

// NewViewHandler creates a view handler. formAction is the URL the add-quote
// form submits to.
func NewViewHandler(view *presenter.ViewModel, formAction string) *ViewHandler {
	return &ViewHandler{view: view, formAction: formAction}
}

// View handles GET /api/v1/view
//
// @Summary Current view
// @Tags view
// @Produce json
// @Success 200 {object} presenter.View
// @Router /api/v1/view [get]
func (h *ViewHandler) View(c *gin.Context) {
	c.JSON(http.StatusOK, h.view.Snapshot())
}

// Form handles GET /api/v1/form
//
// @Summary Add-quote form
// @Tags view
// @Produce json
// @Success 200 {object} presenter.Form
// @Router /api/v1/form [get]
func (h *ViewHandler) Form(c *gin.Context) {
	c.JSON(http.StatusOK, presenter.AddQuoteForm(h.formAction))
}

// RegisterRoutes registers the view routes.
func (h *ViewHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/view", h.View)
	rg.GET("/form", h.Form)
}
