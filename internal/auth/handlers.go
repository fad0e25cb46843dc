package auth

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// Handler serves the one-time OAuth2 authorization flow: a redirect to the
// Google consent page and the callback that exchanges the returned code for
// a token set.
type Handler struct {
	config *oauth2.Config
	store  TokenStore
	cache  *Cache
	state  string
}

// NewHandler creates the authorization endpoints. The state nonce is fixed
// for the process lifetime; the flow is a one-time operator action, not a
// multi-user login.
func NewHandler(config *oauth2.Config, store TokenStore, cache *Cache) *Handler {
	return &Handler{
		config: config,
		store:  store,
		cache:  cache,
		state:  uuid.NewString(),
	}
}

// Register mounts the authorization routes.
func (h *Handler) Register(router *gin.Engine) {
	router.GET("/authorize", h.Authorize)
	router.GET("/oauthcallback", h.Callback)
}

// Authorize redirects the operator to the consent page, requesting offline
// access (so a refresh token is issued) and forcing the consent prompt.
func (h *Handler) Authorize(c *gin.Context) {
	c.Header("Cache-Control", "private, max-age=0, s-maxage=0")

	url := h.config.AuthCodeURL(h.state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)

	c.Redirect(http.StatusFound, url)
}

// Callback exchanges the authorization code for a token set, persists it
// and seeds the credential cache. On exchange failure nothing is persisted
// and the error detail is returned to the operator.
func (h *Handler) Callback(c *gin.Context) {
	c.Header("Cache-Control", "private, max-age=0, s-maxage=0")

	if state := c.Query("state"); state != h.state {
		c.String(http.StatusBadRequest, "state mismatch")
		return
	}

	code := c.Query("code")
	if code == "" {
		c.String(http.StatusBadRequest, "missing authorization code")
		return
	}

	token, err := h.config.Exchange(c.Request.Context(), code)
	if err != nil {
		slog.Error("authorization code exchange failed", "error", err)
		c.String(http.StatusBadRequest, "authorization exchange failed: %v", err)
		return
	}

	if err := h.store.SaveToken(c.Request.Context(), token); err != nil {
		slog.Error("saving credentials failed", "error", err)
		c.String(http.StatusInternalServerError, "unable to save credentials: %v", err)
		return
	}

	h.cache.Seed(token)
	slog.Info("credentials saved", "expiry", token.Expiry)

	c.String(http.StatusOK, "App successfully configured with new credentials. You can now close this page.")
}
