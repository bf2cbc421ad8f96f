package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"wastewise/api/internal/ids"
	"wastewise/api/internal/middleware"
	"wastewise/api/internal/service"
)

const oauthStateCookie = "oauthState"

// GoogleRedirect starts the federation handshake. The state nonce is
// pinned in a short-lived cookie so the callback can reject forged
// redirects.
func (h HandlerSet) GoogleRedirect(c *gin.Context) {
	state := ids.New()
	h.setSessionCookie(c, oauthStateCookie, state, 300)
	c.Redirect(http.StatusFound, h.provider.AuthURL(state))
}

// GoogleCallback finishes the handshake: state check, code exchange,
// account linking, session issuance. The session token travels only in
// the HttpOnly cookie; the redirect URL carries nothing but a flag.
func (h HandlerSet) GoogleCallback(c *gin.Context) {
	failureURL := h.cfg.FrontendURL + "/oauth/callback?auth=failure"

	stateCookie, err := c.Cookie(oauthStateCookie)
	h.clearSessionCookie(c, oauthStateCookie)
	if err != nil || stateCookie == "" || c.Query("state") != stateCookie {
		h.log.Warn().Str("client_ip", c.ClientIP()).Msg("oauth state mismatch")
		c.Redirect(http.StatusFound, failureURL)
		return
	}

	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusFound, failureURL)
		return
	}

	profile, err := h.provider.ExchangeProfile(c.Request.Context(), code)
	if err != nil {
		h.log.Warn().Err(err).Msg("oauth exchange failed")
		c.Redirect(http.StatusFound, failureURL)
		return
	}

	result, err := h.auth.CompleteOAuth(c.Request.Context(), profile)
	if err != nil {
		if errors.Is(err, service.ErrUnverifiedEmail) {
			h.log.Warn().Str("client_ip", c.ClientIP()).Msg("oauth email not verified")
		} else {
			h.log.Error().Err(err).Msg("oauth account linking failed")
		}
		c.Redirect(http.StatusFound, failureURL)
		return
	}

	h.setSessionCookie(c, middleware.AuthCookie, result.Token, int(h.cfg.Security.JWTTTL.Seconds()))
	c.Redirect(http.StatusFound, h.cfg.FrontendURL+"/oauth/callback?auth=success")
}

// OAuthLogout clears the local session. There is no provider-side
// handle to terminate: the exchange token is never persisted.
func (h HandlerSet) OAuthLogout(c *gin.Context) {
	h.clearSessionCookie(c, middleware.AuthCookie)
	h.clearSessionCookie(c, oauthStateCookie)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
