package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// OperatorRepository defines what the app layer needs from the repository
type OperatorRepository interface {
	CreateOperator(ctx context.Context, email, displayName string, hash []byte) (*models.Operator, error)
	GetOperatorByEmail(ctx context.Context, email string) (*models.Operator, error)
	GetOperator(ctx context.Context, id uuid.UUID) (*models.Operator, error)
}

// CreateOperatorRequest represents the data needed to create an operator
type CreateOperatorRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

// Session is the result of a successful login
type Session struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Operator  *models.Operator `json:"operator"`
}

var errBadCredentials = fmt.Errorf("invalid email or password: %w", models.ErrUnauthenticated)

const minPasswordLength = 8

// App handles operator authentication
type App struct {
	repo       OperatorRepository
	tokens     *TokenIssuer
	limiter    *LoginLimiter
	bcryptCost int
	compare    func(hash, password []byte) error

	dummyOnce sync.Once
	dummy     []byte
}

// NewApp creates a new auth App. bcryptCost <= 0 means bcrypt.DefaultCost.
func NewApp(repo OperatorRepository, tokens *TokenIssuer, limiter *LoginLimiter, bcryptCost int) *App {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &App{
		repo:       repo,
		tokens:     tokens,
		limiter:    limiter,
		bcryptCost: bcryptCost,
		compare:    bcrypt.CompareHashAndPassword,
	}
}

// dummyHash is compared against when the email is unknown, so a miss costs
// the same bcrypt work as a wrong password.
func (a *App) dummyHash() []byte {
	a.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), a.bcryptCost)
		if err != nil {
			log.Error().Err(err).Msg("failed to generate dummy password hash")
			return
		}
		a.dummy = hash
	})
	return a.dummy
}

// Login checks credentials and issues a session token
func (a *App) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if a.limiter != nil && !a.limiter.Allow(email) {
		log.Warn().Str("email", email).Msg("login rate limited")
		return nil, fmt.Errorf("too many login attempts for %s: %w", email, models.ErrResourceExhausted)
	}

	op, err := a.repo.GetOperatorByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			_ = a.compare(a.dummyHash(), []byte(password))
			return nil, errBadCredentials
		}
		return nil, fmt.Errorf("failed to load operator: %w", err)
	}
	if err := a.compare(op.PasswordHash, []byte(password)); err != nil {
		log.Info().Str("email", email).Msg("login rejected")
		return nil, errBadCredentials
	}

	token, claims, err := a.tokens.Issue(op)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	if a.limiter != nil {
		a.limiter.Reset(email)
	}

	log.Info().Str("operator_id", op.ID.String()).Msg("operator logged in")
	return &Session{Token: token, ExpiresAt: claims.Expiry(), Operator: op}, nil
}

// WhoAmI resolves the operator behind a session token
func (a *App) WhoAmI(ctx context.Context, token string) (*models.Operator, error) {
	claims, err := a.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	op, err := a.repo.GetOperator(ctx, claims.OperatorID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to load operator: %w", err)
	}
	return op, nil
}

// CreateOperator creates an operator with a bcrypt-hashed password
func (a *App) CreateOperator(ctx context.Context, req CreateOperatorRequest) (*models.Operator, error) {
	req.Email = normalizeEmail(req.Email)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if err := validateCreateOperatorRequest(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), a.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	op, err := a.repo.CreateOperator(ctx, req.Email, req.DisplayName, hash)
	if err != nil {
		return nil, err
	}

	log.Info().Str("operator_id", op.ID.String()).Str("email", op.Email).Msg("created operator")
	return op, nil
}

// Verify exposes token verification for interceptors and middleware
func (a *App) Verify(token string) (Claims, error) {
	return a.tokens.Verify(token)
}

func validateCreateOperatorRequest(req CreateOperatorRequest) error {
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return fmt.Errorf("%w: invalid email %q", models.ErrInvalidArgument, req.Email)
	}
	if req.DisplayName == "" {
		return fmt.Errorf("%w: display name is required", models.ErrInvalidArgument)
	}
	if len(req.Password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", models.ErrInvalidArgument, minPasswordLength)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
