package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"gramsetu-be/config"
	"gramsetu-be/middlewares"
	"gramsetu-be/models"
	"gramsetu-be/services"
	"gramsetu-be/store"
	authUtils "gramsetu-be/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthController issues and inspects sessions.
type AuthController struct {
	users store.UserStore
	cfg   config.Config
}

func NewAuthController(users store.UserStore, cfg config.Config) *AuthController {
	return &AuthController{users: users, cfg: cfg}
}

func userResponse(u *models.User) gin.H {
	return gin.H{
		"id":        u.ID,
		"name":      u.Name,
		"mobile":    u.Mobile,
		"village":   u.Village,
		"role":      u.Role,
		"createdAt": u.CreatedAt,
	}
}

// RegisterUser handles villager registration
func (ac *AuthController) RegisterUser(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required,max=50"`
		Mobile   string `json:"mobile" binding:"required,min=10,max=15"`
		Village  string `json:"village" binding:"required,max=100"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	ctx, cancel := requestContext(c, ac.cfg.RequestTimeout)
	defer cancel()

	user, err := services.CreateUser(ctx, ac.users, input.Name, input.Mobile, input.Village, input.Password, models.Villager)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "user": userResponse(user)})
}

// LoginUser handles login and sets the session cookie
func (ac *AuthController) LoginUser(c *gin.Context) {
	var input struct {
		Mobile   string `json:"mobile" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	ctx, cancel := requestContext(c, ac.cfg.RequestTimeout)
	defer cancel()

	user, err := ac.users.GetUserByMobile(ctx, strings.TrimSpace(input.Mobile))
	if err != nil || !user.ComparePassword(input.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid credentials"})
		return
	}

	token, err := authUtils.GenerateAndSetToken(ac.cfg.JWTSecret, authUtils.Claims{
		UserID: user.ID.Hex(),
		Name:   user.Name,
		Role:   string(user.Role),
	})
	if err != nil {
		slog.Error("Error generating token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Something went wrong"})
		return
	}

	domain := ac.cfg.Domain
	// For production, don't set domain to allow cross-origin cookies
	if ac.cfg.Production() {
		domain = ""
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middlewares.CookieName,
		Value:    token,
		MaxAge:   int(authUtils.TokenTTL / time.Second),
		Path:     "/",
		Domain:   domain,
		Secure:   ac.cfg.Production(),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "user": userResponse(user)})
}

// GetMe retrieves the authenticated user's information
func (ac *AuthController) GetMe(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.GetString(middlewares.UserIDKey))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}

	ctx, cancel := requestContext(c, ac.cfg.RequestTimeout)
	defer cancel()

	user, err := ac.users.GetUser(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": userResponse(user)})
}

// LogoutUser clears the auth_token cookie
func (ac *AuthController) LogoutUser(c *gin.Context) {
	c.SetCookie(middlewares.CookieName, "", -1, "/", ac.cfg.Domain, ac.cfg.Production(), true)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}
