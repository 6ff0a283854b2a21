// game/service/auth_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ctfarena/arena-services/game/store"
	"github.com/ctfarena/arena-services/shared/auth"
	"github.com/ctfarena/arena-services/shared/models"
)

// seedUser is one of the static admin identities created at startup.
type seedUser struct {
	Username string
	Password string
	Role     string
	Name     string
}

var seedUsers = []seedUser{
	{Username: "super", Password: "superpass", Role: models.RoleSuperAdmin, Name: "Super Admin"},
	{Username: "player", Password: "playerpass", Role: models.RolePlayerManager, Name: "Player Manager"},
	{Username: "round", Password: "roundpass", Role: models.RoleRoundManager, Name: "Round Manager"},
}

// AuthService handles admin console authentication.
type AuthService struct {
	users         UserStore
	authenticator *auth.Authenticator
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(users UserStore, authenticator *auth.Authenticator) *AuthService {
	return &AuthService{
		users:         users,
		authenticator: authenticator,
	}
}

// Login verifies admin credentials and issues a bearer token carrying the
// user's role. Wrong username and wrong password are indistinguishable to
// the caller.
func (as *AuthService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := as.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("service failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := as.authenticator.IssueToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("service failed to issue token: %w", err)
	}
	return token, user, nil
}

// EnsureSeedUsers initializes the static admin identities if they don't
// exist yet.
func (as *AuthService) EnsureSeedUsers(ctx context.Context) error {
	for _, seed := range seedUsers {
		_, err := as.users.GetUserByUsername(ctx, seed.Username)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("failed to check seed user %s: %w", seed.Username, err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password for seed user %s: %w", seed.Username, err)
		}
		user := &models.User{
			ID:           uuid.NewString(),
			Username:     seed.Username,
			PasswordHash: string(hash),
			Role:         seed.Role,
			Name:         seed.Name,
		}
		if err := as.users.InsertUser(ctx, user); err != nil && !errors.Is(err, store.ErrDuplicate) {
			return fmt.Errorf("failed to create seed user %s: %w", seed.Username, err)
		}
		log.Printf("INFO: Created admin user %q (%s).", seed.Username, seed.Role)
	}
	return nil
}
