package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"wastewise/api/internal/middleware"
	"wastewise/api/internal/models"
	"wastewise/api/internal/repository"
	"wastewise/api/internal/security"
	"wastewise/api/internal/service"
)

// CSRFToken hands the client a fresh anti-forgery token. The token is
// bound to a per-session secret carried in an HttpOnly cookie; a client
// without that cookie gets one here, so any mutating call must be
// preceded by this GET.
func (h HandlerSet) CSRFToken(c *gin.Context) {
	secret, err := c.Cookie(middleware.CSRFCookie)
	if err != nil || secret == "" {
		secret, err = security.NewCSRFSecret()
		if err != nil {
			h.log.Error().Err(err).Msg("csrf secret generation failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}
		h.setSessionCookie(c, middleware.CSRFCookie, secret, 0)
	}

	token, err := security.IssueCSRFToken(h.cfg.Security.CSRFKey, secret)
	if err != nil {
		h.log.Error().Err(err).Msg("csrf token issue failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"csrfToken": token})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid email and password are required"})
		return
	}

	result, err := h.auth.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		IP:       c.ClientIP(),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotRegistered):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not Registered, re-register"})
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		default:
			h.log.Error().Err(err).Msg("login failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error logging in"})
		}
		return
	}

	h.setSessionCookie(c, middleware.AuthCookie, result.Token, int(h.cfg.Security.JWTTTL.Seconds()))

	message := "Login successful"
	if result.User.Role.Is(models.RoleAdmin) {
		message = "Admin Login successful"
	}
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"userId":  result.User.ID,
		"role":    result.User.Role,
	})
}

type registerRequest struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Email    string `json:"email"`
	Contact  string `json:"contact"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h HandlerSet) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed request body"})
		return
	}

	err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Address:  req.Address,
		Email:    req.Email,
		Contact:  req.Contact,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		var vErr *service.ValidationError
		switch {
		case errors.As(err, &vErr):
			c.JSON(http.StatusBadRequest, gin.H{"errors": vErr.Fields})
		case errors.Is(err, repository.ErrDuplicateEmail):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already exists"})
		default:
			h.log.Error().Err(err).Msg("registration failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error registering user"})
		}
		return
	}

	c.JSON(http.StatusCreated, "User Registered")
}

type profileResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Address     string  `json:"address"`
	Contact     string  `json:"contact"`
	Role        string  `json:"role"`
	Avatar      *string `json:"avatar,omitempty"`
	IsOAuthUser bool    `json:"isOAuthUser"`
	IsVerified  bool    `json:"isVerified"`
}

func sanitizeUser(user models.User) profileResponse {
	return profileResponse{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Address:     user.Address,
		Contact:     user.Contact,
		Role:        string(user.Role),
		Avatar:      user.AvatarURL,
		IsOAuthUser: user.IsOAuthUser,
		IsVerified:  user.IsVerified,
	}
}

func (h HandlerSet) Profile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	c.JSON(http.StatusOK, sanitizeUser(user))
}

// Logout clears the session cookie. The token itself stays valid until
// its natural expiry; there is no server-side revocation.
func (h HandlerSet) Logout(c *gin.Context) {
	h.clearSessionCookie(c, middleware.AuthCookie)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h HandlerSet) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if err := h.auth.VerifyEmail(c.Request.Context(), token); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invalid verification token"})
			return
		}
		h.log.Error().Err(err).Msg("email verification failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email verified"})
}
