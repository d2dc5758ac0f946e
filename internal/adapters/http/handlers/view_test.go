package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/presenter"
	"github.com/jsamuelsen/quotekeeper/internal/domain"
)

func TestViewHandler_View(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodGet, "/api/v1/view", nil)
	require.Equal(t, http.StatusOK, w.Code)

	view := decode[presenter.View](t, w)
	require.NotNil(t, view.Display.Quote)
	assert.Equal(t, domain.DefaultQuotes()[0], *view.Display.Quote)
	assert.Equal(t, domain.CategoryAll, view.Filter.Selected)
	assert.False(t, view.Conflict.Visible)
	assert.Positive(t, view.Revision)
}

func TestViewHandler_ViewTracksChanges(t *testing.T) {
	f := newFixture(t, nil)

	before := decode[presenter.View](t, f.do(t, http.MethodGet, "/api/v1/view", nil))

	f.do(t, http.MethodPut, "/api/v1/preferences/category", map[string]string{"category": "inspiration"})

	after := decode[presenter.View](t, f.do(t, http.MethodGet, "/api/v1/view", nil))
	assert.Greater(t, after.Revision, before.Revision)
	assert.Equal(t, "inspiration", after.Filter.Selected)
	require.NotNil(t, after.Display.Quote)
	assert.Equal(t, "Stay hungry. Stay foolish.", after.Display.Quote.Text)
}

func TestViewHandler_Form(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodGet, "/api/v1/form", nil)
	require.Equal(t, http.StatusOK, w.Code)

	form := decode[presenter.Form](t, w)
	assert.Equal(t, presenter.AddQuoteForm("/api/v1/quotes"), form)
}
