package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Cookie contract: HttpOnly always; Secure and SameSite=Strict in
// production, SameSite=Lax in development so the local frontend on
// another port can authenticate.

func (h HandlerSet) sameSite() http.SameSite {
	if h.cfg.Production() {
		return http.SameSiteStrictMode
	}
	return http.SameSiteLaxMode
}

func (h HandlerSet) setSessionCookie(c *gin.Context, name string, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cfg.Production(),
		SameSite: h.sameSite(),
	})
}

func (h HandlerSet) clearSessionCookie(c *gin.Context, name string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.Production(),
		SameSite: h.sameSite(),
	})
}
