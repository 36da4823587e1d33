package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"pageperf/api/middleware"
	"pageperf/api/models"
	"pageperf/api/store"
	"pageperf/api/utils"
)

type AnalystRepository interface {
	CreateAnalyst(ctx context.Context, email string, hashedPassword []byte) (*models.Analyst, error)
	GetAnalystByEmail(ctx context.Context, email string) (*models.Analyst, error)
}

type AuthHandlers struct {
	Analysts AnalystRepository
	Tokens   *utils.TokenManager
	Secure   bool
}

func NewAuthHandlers(analysts AnalystRepository, tokens *utils.TokenManager) *AuthHandlers {
	return &AuthHandlers{Analysts: analysts, Tokens: tokens}
}

func (h *AuthHandlers) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("failed to hash password", "email", req.Email, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}

	analyst, err := h.Analysts.CreateAnalyst(c.Request.Context(), req.Email, hashedPassword)
	if err != nil {
		if errors.Is(err, store.ErrAnalystExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "Analyst with this email already exists"})
			return
		}
		slog.Error("failed to create analyst", "email", req.Email, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register analyst"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Analyst registered successfully", "email": analyst.Email})
}

func (h *AuthHandlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	analyst, err := h.Analysts.GetAnalystByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, store.ErrAnalystNotFound) {
			slog.Error("failed to look up analyst", "email", req.Email, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check credentials"})
			return
		}
		slog.Info("login failed", "email", req.Email, "reason", "unknown email")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword(analyst.HashedPassword, []byte(req.Password)); err != nil {
		slog.Info("login failed", "email", req.Email, "reason", "password mismatch")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	tokenString, err := h.Tokens.GenerateJWT(analyst)
	if err != nil {
		slog.Error("failed to generate token", "analyst_id", analyst.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate authentication token"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, tokenString, int(h.Tokens.TTL().Seconds()), "/", "", h.Secure, true)

	slog.Info("analyst logged in", "analyst_id", analyst.ID, "email", analyst.Email)
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "email": analyst.Email})
}

func (h *AuthHandlers) Logout(c *gin.Context) {
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", h.Secure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
