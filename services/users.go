package services

import (
	"context"
	"strings"
	"time"

	"gramsetu-be/models"
	"gramsetu-be/store"
)

// CreateUser hashes the password and stores a new user with role. The
// CLI uses it to provision gram sevaks and admins.
func CreateUser(ctx context.Context, users store.UserStore, name, mobile, village, password string, role models.Role) (*models.User, error) {
	name, mobile = strings.TrimSpace(name), strings.TrimSpace(mobile)
	if name == "" || mobile == "" {
		return nil, models.Invalid("name and mobile are required")
	}
	if len(password) < 6 {
		return nil, models.Invalid("password must be at least 6 characters")
	}
	if !models.ValidRole(role) {
		return nil, models.Invalid("invalid role %q", role)
	}

	now := time.Now()
	user := &models.User{
		Name:      name,
		Mobile:    mobile,
		Village:   strings.TrimSpace(village),
		Role:      role,
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := user.HashPassword(); err != nil {
		return nil, err
	}
	if err := users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
