package acl

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/clients"
	"github.com/jsamuelsen/quotekeeper/internal/domain"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

const samplePosts = `[
  {"userId": 1, "id": 1, "title": "sunt aut facere", "body": "quia et suscipit"},
  {"userId": 1, "id": 2, "title": "qui est esse", "body": "est rerum tempore"},
  {"userId": 1, "id": 3, "title": "", "body": "untitled"},
  {"userId": 2, "id": 4, "title": "eum et est occaecati", "body": "ullam et saepe"},
  {"userId": 2, "id": 5, "title": "nesciunt quas odio", "body": "repudiandae veniam"},
  {"userId": 2, "id": 6, "title": "dolorem eum magni", "body": "ut aspernatur"}
]`

// newPostsClient returns a client whose remote is the given handler.
func newPostsClient(t *testing.T, handler http.HandlerFunc) *PostsClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := clients.New(testConfig(server.URL))
	require.NoError(t, err)

	return NewPostsClient(PostsClientConfig{Client: client})
}

func TestNewPostsClient_PanicsWithoutClient(t *testing.T) {
	assert.Panics(t, func() {
		NewPostsClient(PostsClientConfig{})
	})
}

func TestNewPostsClient_Defaults(t *testing.T) {
	client, err := clients.New(testConfig("http://example.com"))
	require.NoError(t, err)

	pc := NewPostsClient(PostsClientConfig{Client: client})

	assert.Equal(t, DefaultPostsPath, pc.path)
	assert.NotNil(t, pc.logger)
	assert.Equal(t, "remote-quotes", pc.Name())
}

func TestFetchSnapshot_Success(t *testing.T) {
	var gotPath, gotLimit string

	pc := newPostsClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotLimit = r.URL.Query().Get("_limit")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(samplePosts))
	})

	records, err := pc.FetchSnapshot(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, "/posts", gotPath)
	assert.Equal(t, "5", gotLimit)
	require.Len(t, records, 5, "listing is truncated even when the remote ignores _limit")
	assert.Equal(t, ports.RemoteRecord{ID: 1, UserID: 1, Title: "sunt aut facere", Body: "quia et suscipit"}, records[0])
	assert.Empty(t, records[2].Title, "blank titles are passed through for the caller to drop")
	assert.Equal(t, 5, records[4].ID)
}

func TestFetchSnapshot_NoLimit(t *testing.T) {
	var rawQuery string

	pc := newPostsClient(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(samplePosts))
	})

	records, err := pc.FetchSnapshot(context.Background(), 0)
	require.NoError(t, err)

	assert.Empty(t, rawQuery)
	assert.Len(t, records, 6)
}

func TestFetchSnapshot_MissingFieldsAreZero(t *testing.T) {
	pc := newPostsClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"title":"only a title"}]`))
	})

	records, err := pc.FetchSnapshot(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, []ports.RemoteRecord{{Title: "only a title"}}, records)
}

func TestFetchSnapshot_BadPayloads(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{name: "malformed json", body: `[{"title":`, wantMsg: "malformed posts listing"},
		{name: "object not array", body: `{"title":"x"}`, wantMsg: "not an array"},
		{name: "non-object entry", body: `[{"title":"ok"}, 42]`, wantMsg: "item 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc := newPostsClient(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := pc.FetchSnapshot(context.Background(), 5)

			require.Error(t, err)
			assert.True(t, domain.IsUnavailable(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestFetchSnapshot_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		check  func(error) bool
	}{
		{http.StatusNotFound, domain.IsNotFound},
		{http.StatusForbidden, domain.IsForbidden},
		{http.StatusTooManyRequests, domain.IsUnavailable},
		{http.StatusServiceUnavailable, domain.IsUnavailable},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			pc := newPostsClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := pc.FetchSnapshot(context.Background(), 5)

			require.Error(t, err)
			assert.True(t, tt.check(err), "got %v", err)
		})
	}
}

func TestFetchSnapshot_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := clients.New(testConfig(url))
	require.NoError(t, err)

	_, err = NewPostsClient(PostsClientConfig{Client: client}).FetchSnapshot(context.Background(), 5)

	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err))
}

func TestPublish_Success(t *testing.T) {
	var (
		gotMethod string
		gotBody   publishedQuote
	)

	pc := newPostsClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		assert.Equal(t, "/posts", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 101, "text": "x", "category": "y"}`))
	})

	err := pc.Publish(context.Background(), domain.Quote{Text: "Stay hungry.", Category: "inspiration"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, publishedQuote{Text: "Stay hungry.", Category: "inspiration"}, gotBody)
}

func TestPublish_RejectsBlankQuote(t *testing.T) {
	called := false
	pc := newPostsClient(t, func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusCreated)
	})

	err := pc.Publish(context.Background(), domain.Quote{Text: "", Category: "x"})

	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.False(t, called)
}

func TestPublish_ServerError(t *testing.T) {
	pc := newPostsClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := pc.Publish(context.Background(), domain.Quote{Text: "a", Category: "b"})

	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err))
}

func TestPostsClient_Check(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		pc := newPostsClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "1", r.URL.Query().Get("_limit"))
			_, _ = w.Write([]byte(`[{"id":1,"title":"t"}]`))
		})

		assert.NoError(t, pc.Check(context.Background()))
	})

	t.Run("unhealthy", func(t *testing.T) {
		pc := newPostsClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(strings.Repeat("{", 3)))
		})

		assert.Error(t, pc.Check(context.Background()))
	})
}
