// api/handlers/auth_handlers.go
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"stallpoint/api/models"
	"stallpoint/api/store"
	"stallpoint/api/utils"
)

// SessionStore is the slice of the redis session store the auth handlers
// need.
type SessionStore interface {
	StoreSession(sessionID string, userID int) error
	DeleteSession(sessionID string) error
}

type AuthHandlers struct {
	UserStore *store.UserStore
	Sessions  SessionStore
	logger    *zap.SugaredLogger
}

func NewAuthHandlers(userStore *store.UserStore, sessions SessionStore, logger *zap.SugaredLogger) *AuthHandlers {
	return &AuthHandlers{UserStore: userStore, Sessions: sessions, logger: logger}
}

func (h *AuthHandlers) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Errorw("failed to hash password", "email", req.Email, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}

	user, err := h.UserStore.CreateUser(c.Request.Context(), req.Email, req.DisplayName, hashedPassword)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
			return
		}
		h.logger.Errorw("failed to create user", "email", req.Email, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user_email": user.Email})
}

// Login handles user authentication, session creation and JWT issuance.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	user, err := h.UserStore.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.logger.Infow("login failed", "email", req.Email, "error", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(req.Password)); err != nil {
		h.logger.Infow("login failed: password mismatch", "email", req.Email)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	sessionID := uuid.New().String()
	if err := h.Sessions.StoreSession(sessionID, user.ID); err != nil {
		h.logger.Errorw("failed to store session", "user", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	tokenString, err := utils.GenerateJWT(user, sessionID)
	if err != nil {
		h.logger.Errorw("failed to generate JWT", "user", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate authentication token"})
		return
	}

	c.SetCookie(
		"jwt_token",
		tokenString,
		int(24*time.Hour/time.Second),
		"/",
		"",
		false,
		true,
	)

	h.logger.Infow("user logged in", "user", user.ID, "email", user.Email)
	c.JSON(http.StatusOK, gin.H{
		"message":    "Login successful",
		"user_email": user.Email,
	})
}

// Logout is a public route, so it recovers the session from the JWT
// cookie itself rather than relying on the auth middleware. A missing or
// invalid token still clears the cookie.
func (h *AuthHandlers) Logout(c *gin.Context) {
	// Best effort: drop the redis session when the token carried one.
	if tokenString, err := c.Cookie("jwt_token"); err == nil {
		if claims, err := utils.ValidateJWT(tokenString); err == nil && claims.SessionID != "" {
			if err := h.Sessions.DeleteSession(claims.SessionID); err != nil {
				h.logger.Warnw("failed to delete session", "session", claims.SessionID, "error", err)
			}
		}
	}

	// Expire the JWT cookie immediately.
	c.SetCookie(
		"jwt_token",
		"",
		-1,
		"/",
		"",
		false,
		true,
	)

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *AuthHandlers) GetProfile(c *gin.Context) {
	userID := c.MustGet("user_id").(int)

	user, err := h.UserStore.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.logger.Errorw("failed to load profile", "user", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *AuthHandlers) UpdateProfile(c *gin.Context) {
	userID := c.MustGet("user_id").(int)

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	user, err := h.UserStore.UpdateProfile(c.Request.Context(), userID, req.DisplayName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.logger.Errorw("failed to update profile", "user", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, user)
}
