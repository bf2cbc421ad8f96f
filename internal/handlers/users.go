package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"wastewise/api/internal/middleware"
	"wastewise/api/internal/models"
	"wastewise/api/internal/repository"
	"wastewise/api/internal/service"
)

func (h HandlerSet) GetUserByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID must be an integer"})
		return
	}

	user, err := h.auth.UserByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.log.Error().Err(err).Int64("user_id", id).Msg("fetch user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "User fetched", "user": sanitizeUser(user)})
}

type updateProfileRequest struct {
	UserID  int64  `json:"userId" binding:"required"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

// UpdateProfile patches the caller's own profile. Admins may patch any
// profile; that ownership rule sits here, above the role check.
func (h HandlerSet) UpdateProfile(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	if caller.ID != req.UserID && !caller.Role.Is(models.RoleAdmin) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden: not your profile"})
		return
	}

	err := h.auth.UpdateProfile(c.Request.Context(), service.UpdateProfileInput{
		UserID:  req.UserID,
		Name:    req.Name,
		Address: req.Address,
		Email:   req.Email,
		Contact: req.Contact,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found."})
		case errors.Is(err, repository.ErrDuplicateEmail):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already exists"})
		default:
			h.log.Error().Err(err).Int64("user_id", req.UserID).Msg("profile update failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error updating profile."})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully."})
}

type updatePasswordRequest struct {
	UserID          int64  `json:"userId" binding:"required"`
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// UpdatePassword is strictly self-service; even admins cannot set
// another user's password through this route.
func (h HandlerSet) UpdatePassword(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing old or new password"})
		return
	}

	if caller.ID != req.UserID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden: not your account"})
		return
	}

	err := h.auth.UpdatePassword(c.Request.Context(), service.UpdatePasswordInput{
		UserID:          req.UserID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		var vErr *service.ValidationError
		switch {
		case errors.Is(err, service.ErrPasswordMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Current password is incorrect."})
		case errors.Is(err, service.ErrFederatedAccount):
			c.JSON(http.StatusBadRequest, gin.H{"message": "OAuth accounts have no local password."})
		case errors.As(err, &vErr):
			c.JSON(http.StatusBadRequest, gin.H{"errors": vErr.Fields})
		case errors.Is(err, repository.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found."})
		default:
			h.log.Error().Err(err).Int64("user_id", req.UserID).Msg("password update failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error updating password."})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully."})
}

func (h HandlerSet) CollectorsCount(c *gin.Context) {
	count, err := h.auth.CollectorCount(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("collector count failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching collector count"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h HandlerSet) UsersByRole(c *gin.Context) {
	role, ok := models.ParseRole(c.Param("role"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	users, err := h.auth.UsersByRole(c.Request.Context(), role)
	if err != nil {
		h.log.Error().Err(err).Str("role", string(role)).Msg("list users failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching users"})
		return
	}

	resp := make([]profileResponse, 0, len(users))
	for _, user := range users {
		resp = append(resp, sanitizeUser(user))
	}
	c.JSON(http.StatusOK, gin.H{"users": resp})
}
