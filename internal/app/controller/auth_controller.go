package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/bookcity-backend/internal/app/model"
	"github.com/ikkim/bookcity-backend/internal/app/service"
	apperrors "github.com/ikkim/bookcity-backend/internal/errors"
	"github.com/ikkim/bookcity-backend/internal/middleware"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type CreateUserRequest struct {
	Username string         `json:"username" binding:"required,min=3,max=50"`
	Password string         `json:"password" binding:"required,min=6"`
	Role     model.UserRole `json:"role" binding:"omitempty,oneof=admin staff"`
}

// Login verifies credentials and issues an access token
// POST /api/v1/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid login request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.InvalidInput(c, err)
		return
	}

	user, token, err := ctrl.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondServiceError(c, err, "log in")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":         user,
		"access_token": token.Token,
		"expires_at":   token.ExpiresAt,
	})
}

// GetMe returns the authenticated user
// GET /api/v1/auth/me
func (ctrl *AuthController) GetMe(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	user, err := ctrl.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "fetch user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// CreateUser adds a staff or admin account
// POST /api/v1/auth/users (admin)
func (ctrl *AuthController) CreateUser(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.InvalidInput(c, err)
		return
	}

	user, err := ctrl.authService.CreateUser(c.Request.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		respondServiceError(c, err, "create user")
		return
	}

	log.Info("User created", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	c.JSON(http.StatusCreated, gin.H{"user": user})
}
