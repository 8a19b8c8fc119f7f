package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/utafrali/WebmailGo/internal/auth"
	"github.com/utafrali/WebmailGo/internal/domain"
	"github.com/utafrali/WebmailGo/internal/event"
	"github.com/utafrali/WebmailGo/internal/repository"
	apperrors "github.com/utafrali/WebmailGo/pkg/errors"
)

// minPasswordLength is the minimum password length required.
const minPasswordLength = 8

// AuthService implements registration, login, session refresh, and logout.
type AuthService struct {
	userRepo   repository.UserRepository
	jwtManager *auth.JWTManager
	hasher     *auth.PasswordHasher
	producer   *event.Producer
	logger     *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	userRepo repository.UserRepository,
	jwtManager *auth.JWTManager,
	hasher *auth.PasswordHasher,
	producer *event.Producer,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		hasher:     hasher,
		producer:   producer,
		logger:     logger,
	}
}

// RegisterInput holds the parameters for registering a new user.
type RegisterInput struct {
	Email    string
	Password string
}

// LoginInput holds the parameters for local login.
type LoginInput struct {
	Email    string
	Password string
}

// Register creates a new local account. The returned user carries no hash
// fields when serialized.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := NormalizeEmail(input.Email)
	if email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	// Pre-check for an existing account. The unique constraint on the
	// insert below is the final arbiter if two registrations race.
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.AlreadyExists("user", "email", email)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: &passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			// Lost the duplicate-key race after the pre-check passed.
			return nil, apperrors.AlreadyExists("user", "email", email)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	// Publish registration event (non-blocking on failure).
	if err := s.producer.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// Login authenticates a user with email and password, returning tokens.
// Unknown email, federated-only account, and wrong password all produce the
// same Unauthorized error so callers cannot enumerate users.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*domain.User, *domain.TokenPair, error) {
	email := NormalizeEmail(input.Email)
	if email == "" {
		return nil, nil, apperrors.InvalidInput("email is required")
	}
	if input.Password == "" {
		return nil, nil, apperrors.InvalidInput("password is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.Unauthorized("invalid email or password")
		}
		return nil, nil, fmt.Errorf("get user by email: %w", err)
	}

	if !user.HasPassword() || !s.hasher.Verify(input.Password, *user.PasswordHash) {
		return nil, nil, apperrors.Unauthorized("invalid email or password")
	}

	tokens, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, tokens, nil
}

// LoginGoogle authenticates (and if necessary provisions) a user from a
// verified Google identity assertion. When the Google id is unknown but an
// account with the same normalized email exists, the Google id is attached
// to that account; otherwise a federated-only account is created.
func (s *AuthService) LoginGoogle(ctx context.Context, googleID, email string) (*domain.User, *domain.TokenPair, error) {
	if googleID == "" {
		return nil, nil, apperrors.InvalidInput("google id is required")
	}
	email = NormalizeEmail(email)

	user, err := s.userRepo.GetByGoogleID(ctx, googleID)
	switch {
	case err == nil:
		// Known federated identity.
	case errors.Is(err, apperrors.ErrNotFound):
		user, err = s.linkOrCreateGoogleUser(ctx, googleID, email)
		if err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, fmt.Errorf("get user by google id: %w", err)
	}

	tokens, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.InfoContext(ctx, "user logged in via google",
		slog.String("user_id", user.ID),
	)

	return user, tokens, nil
}

// linkOrCreateGoogleUser finds an existing account by email and links the
// Google id to it, or creates a fresh federated-only account.
func (s *AuthService) linkOrCreateGoogleUser(ctx context.Context, googleID, email string) (*domain.User, error) {
	if email == "" {
		return nil, apperrors.Forbidden("google identity carries no email")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		// The account must not already be linked to a different Google
		// identity.
		if user.GoogleID != nil && *user.GoogleID != googleID {
			return nil, apperrors.Forbidden("account is linked to another google identity")
		}
		user.GoogleID = &googleID
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("link google identity: %w", err)
		}
		s.logger.InfoContext(ctx, "google identity linked to existing account",
			slog.String("user_id", user.ID),
		)
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	now := time.Now().UTC()
	user = &domain.User{
		ID:        uuid.New().String(),
		Email:     email,
		GoogleID:  &googleID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create federated user: %w", err)
	}

	if err := s.producer.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	return user, nil
}

// Refresh validates a refresh token and mints a new access token. The
// refresh token itself stays valid until the next login or logout.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", apperrors.InvalidInput("refresh token is required")
	}

	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", apperrors.Unauthorized("invalid or expired refresh token")
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", apperrors.Forbidden("access denied")
		}
		return "", fmt.Errorf("get user for token refresh: %w", err)
	}

	// A cleared slot (logout) or a non-matching hash (token superseded by a
	// newer login) both deny access.
	if !user.HasActiveSession() || !s.hasher.Verify(digestToken(refreshToken), *user.RefreshTokenHash) {
		return "", apperrors.Forbidden("access denied")
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}

	s.logger.InfoContext(ctx, "access token refreshed",
		slog.String("user_id", user.ID),
	)

	return accessToken, nil
}

// Logout clears the user's refresh-token slot. Logging out an already
// logged-out user is a no-op success.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.userRepo.UpdateRefreshHash(ctx, userID, nil); err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}

	if err := s.producer.PublishSessionRevoked(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish session.revoked event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user logged out",
		slog.String("user_id", userID),
	)

	return nil
}

// GetProfile retrieves a user by their ID.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user profile: %w", err)
	}
	return user, nil
}

// issueSession mints an access/refresh token pair and stores the hash of the
// refresh token in the user's single session slot, overwriting any previous
// value. The storage write is the commit point: if it fails, no tokens are
// returned and the prior session state is unchanged.
func (s *AuthService) issueSession(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	refreshHash, err := s.hasher.Hash(digestToken(refreshToken))
	if err != nil {
		return nil, fmt.Errorf("hash refresh token: %w", err)
	}

	if err := s.userRepo.UpdateRefreshHash(ctx, user.ID, &refreshHash); err != nil {
		return nil, fmt.Errorf("store refresh token hash: %w", err)
	}
	user.RefreshTokenHash = &refreshHash

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// digestToken reduces a token to a fixed-length SHA-256 hex digest before
// bcrypt hashing, since bcrypt only reads the first 72 bytes of its input
// and signed JWTs are longer than that.
func digestToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// NormalizeEmail canonicalizes an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validatePassword checks that the password meets minimum complexity requirements.
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	var hasUpper, hasLower, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit {
		return apperrors.InvalidInput("password must contain at least one uppercase letter, one lowercase letter, and one digit")
	}

	return nil
}
