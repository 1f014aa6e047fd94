package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"rigworks-backend/internal/models"
)

// AuthService handles registration and credential checks. Passwords
// are stored as bcrypt hashes only.
type AuthService struct {
	store      Store
	clock      Clock
	bcryptCost int
	admins     map[string]bool
}

func NewAuthService(store Store, clock Clock, bcryptCost int, adminUsernames []string) *AuthService {
	admins := make(map[string]bool, len(adminUsernames))
	for _, name := range adminUsernames {
		admins[name] = true
	}
	return &AuthService{store: store, clock: clock, bcryptCost: bcryptCost, admins: admins}
}

func validateUsername(username string) error {
	if len(username) < 3 || len(username) > 32 {
		return fmt.Errorf("username must be 3-32 characters")
	}
	for _, r := range username {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' {
			continue
		}
		return fmt.Errorf("username may only contain letters, digits and underscores")
	}
	return nil
}

// Register creates an account with the starting balance and a fresh
// client seed for provably fair games.
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.PlayerAccount, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	if _, err := s.store.GetAccountByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	userID, err := s.store.NextAccountID(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	role := models.RolePlayer
	if s.admins[username] {
		role = models.RoleAdmin
	}

	account := &models.PlayerAccount{
		ID:           userID,
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		Balance:      models.StartingBalance,
		Materials:    make(map[int]float64),
		Energy:       models.MaxEnergy,
		ClientSeed:   models.GenerateClientSeed(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.SaveAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Login checks the credentials and returns the account. Lookup and
// hash failures collapse into one error so usernames cannot be probed.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.PlayerAccount, error) {
	account, err := s.store.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}

// RotateClientSeed replaces the account's client seed, invalidating
// any precomputed future outcomes.
func (s *AuthService) RotateClientSeed(ctx context.Context, account *models.PlayerAccount) error {
	account.ClientSeed = models.GenerateClientSeed()
	account.Nonce = 0
	account.UpdatedAt = s.clock.Now()
	return s.store.SaveAccount(ctx, account)
}
