package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cardona-dev/bean-quick/internal/apperror"
	"github.com/cardona-dev/bean-quick/internal/models"
	"github.com/cardona-dev/bean-quick/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Login for an unknown email or a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Claims is the identity carried by a validated token.
type Claims struct {
	UserID string
	Name   string
	Role   models.Role
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, ttl time.Duration) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: ttl,
	}
}

// RegisterUser hashes the password and saves the user. The email must be unused.
func (s *AuthService) RegisterUser(ctx context.Context, user *models.User) error {
	return createAccount(ctx, s.userRepo, user)
}

// createAccount is shared with company registration, which runs it inside a transaction.
func createAccount(ctx context.Context, users repositories.UserRepository, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if !user.Role.Valid() {
		return apperror.Validation("role", "unknown role %q", user.Role)
	}

	existing, err := users.GetByEmail(ctx, user.Email)
	if err == nil && existing != nil {
		return apperror.Validation("email", "email '%s' already registered", user.Email)
	}
	if err != nil && !apperror.IsNotFound(err, "") {
		return fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)

	if err := users.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	return nil
}

// LoginUser authenticates by email and returns a signed token and the user.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if !apperror.IsNotFound(err, "") {
			log.Error().Err(err).Msg("login lookup failed")
		}
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// IssueToken signs an HS256 token for the user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"name":    user.Name,
		"role":    string(user.Role),
		"exp":     now.Add(s.tokenDurat).Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning its claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Debug().Err(err).Msg("token validation failed")
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	userID, _ := mc["user_id"].(string)
	name, _ := mc["name"].(string)
	role, _ := mc["role"].(string)
	if userID == "" || !models.Role(role).Valid() {
		return nil, fmt.Errorf("invalid token: missing claims")
	}
	return &Claims{UserID: userID, Name: name, Role: models.Role(role)}, nil
}

// EnsureAdmin creates the admin account unless the email is already taken.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	_, err := s.userRepo.GetByEmail(ctx, strings.ToLower(email))
	if err == nil {
		return nil
	}
	if !apperror.IsNotFound(err, "") {
		return fmt.Errorf("failed to look up admin: %w", err)
	}
	admin := &models.User{Name: "Administrator", Email: email, Password: password, Role: models.RoleAdmin}
	if err := s.RegisterUser(ctx, admin); err != nil {
		return err
	}
	log.Info().Str("email", admin.Email).Msg("admin account created")
	return nil
}

// AccountUpdate carries the changes a user asks for. Nil fields and an empty
// NewPassword are left as stored.
type AccountUpdate struct {
	Name            *string
	Email           *string
	CurrentPassword string
	NewPassword     string
}

// GetAccount returns the user behind a token.
func (s *AuthService) GetAccount(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateAccount edits the name, email or password of a user. A new password is
// only accepted together with the current one.
func (s *AuthService) UpdateAccount(ctx context.Context, userID string, in AccountUpdate) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperror.Validation("name", "is required")
		}
		user.Name = name
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email != user.Email {
			existing, err := s.userRepo.GetByEmail(ctx, email)
			if err == nil && existing.ID != user.ID {
				return nil, apperror.Validation("email", "email '%s' already registered", email)
			}
			if err != nil && !apperror.IsNotFound(err, "") {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
		}
		user.Email = email
	}
	if in.NewPassword != "" {
		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.CurrentPassword)) != nil {
			return nil, apperror.Validation("current_password", "is not correct")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = string(hashed)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	log.Info().Str("user_id", user.ID).Msg("account updated")
	return user, nil
}
