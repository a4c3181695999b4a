package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"gramsetu-be/middlewares"
	"gramsetu-be/models"
	"gramsetu-be/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultTimeout bounds every store call made by a handler.
const DefaultTimeout = 10 * time.Second

func requestContext(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(c.Request.Context(), timeout)
}

// respondError maps the error taxonomy onto HTTP. Store failures are
// logged and hidden behind a generic message.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "Something went wrong"

	switch {
	case errors.Is(err, models.ErrValidation):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, models.ErrNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, models.ErrForbidden):
		status, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, models.ErrConflict):
		status, msg = http.StatusConflict, err.Error()
	default:
		slog.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	}

	c.JSON(status, gin.H{"success": false, "error": msg})
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
}

func objectIDParam(c *gin.Context, name, what string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid " + what + " ID"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// actorFrom reads the caller set by the auth middleware.
func actorFrom(c *gin.Context) (services.Actor, bool) {
	id, err := primitive.ObjectIDFromHex(c.GetString(middlewares.UserIDKey))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return services.Actor{}, false
	}
	return services.Actor{
		ID:   id,
		Name: c.GetString(middlewares.UserNameKey),
		Role: models.Role(c.GetString(middlewares.UserRoleKey)),
	}, true
}

func views(issues []*models.Issue) []models.IssueView {
	out := make([]models.IssueView, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.View())
	}
	return out
}
