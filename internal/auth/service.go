package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/teamdocs/teamdocs-server/internal/store"
)

var (
	// ErrInvalidCredentials is returned when email/password don't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when registering with a taken email.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidSignup is returned when a signup payload fails validation.
	ErrInvalidSignup = errors.New("invalid signup payload")
)

var validate = validator.New()

// SignupRequest is the payload for registering a new team member.
// TeamCode may be empty, in which case a fresh team is created.
type SignupRequest struct {
	FullName string `validate:"required,min=4,max=50"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8,max=72"`
	TeamCode string `validate:"omitempty,len=8"`
}

// Service provides authentication operations.
type Service struct {
	store     store.UserStore
	jwtConfig *JWTConfig
}

// NewService creates a new authentication service.
func NewService(userStore store.UserStore, jwtConfig *JWTConfig) *Service {
	return &Service{
		store:     userStore,
		jwtConfig: jwtConfig,
	}
}

// Signup registers a new user and returns a JWT token. When the request
// carries no team code an 8-character one is generated, founding a new
// team the user's colleagues can join with the same code.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (token string, user *store.User, err error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := validate.Struct(req); err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidSignup, err)
	}
	if !isPasswordComplex(req.Password) {
		return "", nil, fmt.Errorf("%w: password too weak", ErrInvalidSignup)
	}

	teamCode := req.TeamCode
	if teamCode == "" {
		teamCode = NewTeamCode()
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	user = &store.User{
		ID:           uuid.NewString(),
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: hashed,
		TeamCode:     teamCode,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return "", nil, ErrUserExists
		}
		return "", nil, fmt.Errorf("create user: %w", err)
	}

	token, err = GenerateToken(s.jwtConfig, user.ID, user.FullName, user.TeamCode)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}
	return token, user, nil
}

// Login validates credentials and returns a JWT token.
func (s *Service) Login(ctx context.Context, email, password string) (token string, user *store.User, err error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err = s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if errPwd := ComparePassword(user.PasswordHash, password); errPwd != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err = GenerateToken(s.jwtConfig, user.ID, user.FullName, user.TeamCode)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}
	return token, user, nil
}

// ValidateToken validates a JWT token and returns the claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return ValidateToken(s.jwtConfig, tokenString)
}

// NewTeamCode returns a random 8-character team code.
func NewTeamCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
