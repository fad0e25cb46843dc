package auth

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func testRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h.Register(router)
	return router
}

func TestAuthorize(t *testing.T) {
	config := NewConfig("id", "secret", "http://localhost:8080")
	store := &fakeStore{}
	h := NewHandler(config, store, NewCache(config, store))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/authorize", nil)
	testRouter(h).ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "private, max-age=0, s-maxage=0", w.Header().Get("Cache-Control"))

	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)

	q := location.Query()
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, h.state, q.Get("state"))
	assert.Contains(t, q.Get("scope"), "spreadsheets")
	assert.Equal(t, "http://localhost:8080/oauthcallback", q.Get("redirect_uri"))
}

func TestCallback(t *testing.T) {
	t.Run("exchanges the code and persists the token", func(t *testing.T) {
		provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"access","refresh_token":"refresh","token_type":"Bearer","expires_in":3600}`)
		}))
		defer provider.Close()

		config := NewConfig("id", "secret", "http://localhost:8080")
		config.Endpoint = oauth2.Endpoint{
			AuthURL:  provider.URL + "/auth",
			TokenURL: provider.URL + "/token",
		}

		store := &fakeStore{}
		cache := NewCache(config, store)
		h := NewHandler(config, store, cache)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/oauthcallback?code=abc&state="+h.state, nil)
		testRouter(h).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "successfully configured")
		require.Equal(t, 1, store.saves)
		assert.Equal(t, "access", store.token.AccessToken)

		// The cache was seeded - no store read on the next client request.
		_, err := cache.Client(req.Context())
		require.NoError(t, err)
		assert.Equal(t, 0, store.reads)
	})

	t.Run("exchange failure returns 400 and persists nothing", func(t *testing.T) {
		provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
		}))
		defer provider.Close()

		config := NewConfig("id", "secret", "http://localhost:8080")
		config.Endpoint = oauth2.Endpoint{
			AuthURL:  provider.URL + "/auth",
			TokenURL: provider.URL + "/token",
		}

		store := &fakeStore{}
		h := NewHandler(config, store, NewCache(config, store))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/oauthcallback?code=bad&state="+h.state, nil)
		testRouter(h).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "authorization exchange failed")
		assert.Equal(t, 0, store.saves)
	})

	t.Run("missing code returns 400", func(t *testing.T) {
		config := NewConfig("id", "secret", "http://localhost:8080")
		store := &fakeStore{}
		h := NewHandler(config, store, NewCache(config, store))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/oauthcallback?state="+h.state, nil)
		testRouter(h).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, 0, store.saves)
	})

	t.Run("state mismatch returns 400", func(t *testing.T) {
		config := NewConfig("id", "secret", "http://localhost:8080")
		store := &fakeStore{}
		h := NewHandler(config, store, NewCache(config, store))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/oauthcallback?code=abc&state=wrong", nil)
		testRouter(h).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, 0, store.saves)
	})
}
