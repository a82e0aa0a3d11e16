package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gravadigital/rosterly-api/internal/auth"
	"github.com/gravadigital/rosterly-api/internal/logger"
	"github.com/gravadigital/rosterly-api/internal/response"
)

// AuthHandler handles admin authentication
type AuthHandler struct {
	db          *gorm.DB
	authService *auth.Service
	log         *log.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, authService *auth.Service) *AuthHandler {
	return &AuthHandler{
		db:          db,
		authService: authService,
		log:         logger.Handler("auth_handler"),
	}
}

// LoginRequest is the payload for admin login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request body: "+err.Error())
		return
	}

	admin, err := auth.Authenticate(h.db, req.Email, req.Password)
	if err != nil {
		h.log.Warn("login rejected", "email", req.Email)
		response.UnauthorizedError(c, "invalid credentials")
		return
	}

	token, err := h.authService.CreateToken(admin)
	if err != nil {
		h.log.Error("failed to create token", "admin_id", admin.ID, "error", err)
		response.InternalServerError(c, "failed to create token")
		return
	}

	h.log.Info("admin logged in", "admin_id", admin.ID)
	response.SuccessResponse(c, http.StatusOK, "login successful", gin.H{
		"token": token,
		"admin": gin.H{
			"id":    admin.ID,
			"email": admin.Email,
		},
	})
}
