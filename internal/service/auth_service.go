package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	appErrors "github.com/noah-isme/ego-calendar-api/pkg/errors"
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
	RevokeUserRefreshTokens(ctx context.Context, userID string) error
	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error
}

// AuthConfig controls token lifetimes and signing.
type AuthConfig struct {
	AccessTokenSecret  string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	Issuer             string
	Audience           []string
	// SingleSession revokes every older refresh token on sign-in.
	SingleSession bool
}

// AuthService handles password accounts and the access/refresh token pair
// shared by every sign-in method.
type AuthService struct {
	repo      authUserRepository
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{
		repo:      repo,
		validator: validate,
		logger:    logger,
		config:    config,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

var errBadCredentials = appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func internalError(err error, message string) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

// Register creates a password account and opens a session for it.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest, ip, userAgent string) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	email := normaliseEmail(req.Email)
	switch _, err := s.repo.FindByEmail(ctx, email); {
	case err == nil:
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	case !errors.Is(err, sql.ErrNoRows):
		return nil, internalError(err, "failed to check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, internalError(err, "failed to hash password")
	}
	user := &models.User{Email: email, Name: strings.TrimSpace(req.Name), PasswordHash: string(hash), Active: true}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, internalError(err, "failed to create user")
	}
	s.logger.Info("account registered", zap.String("user_id", user.ID))
	return s.IssueTokens(ctx, user, ip, userAgent)
}

// Login checks a password and opens a session. Accounts created through
// Google have no password hash and cannot use this path.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}
	user, err := s.repo.FindByEmail(ctx, normaliseEmail(req.Email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, internalError(err, "failed to load account")
	}
	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "account is inactive")
	}
	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, errBadCredentials
	}
	return s.IssueTokens(ctx, user, req.IP, req.UserAgent)
}

// IssueTokens opens a session: a signed access token plus a stored refresh
// token.
func (s *AuthService) IssueTokens(ctx context.Context, user *models.User, ip, userAgent string) (*models.LoginResponse, error) {
	if s.config.SingleSession {
		if err := s.repo.RevokeUserRefreshTokens(ctx, user.ID); err != nil {
			s.logger.Warn("revoke older sessions", zap.String("user_id", user.ID), zap.Error(err))
		}
	}
	res, err := s.openSession(ctx, user, ip, userAgent)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateLastLogin(ctx, user.ID, res.IssuedAt); err != nil {
		s.logger.Warn("record last login", zap.String("user_id", user.ID), zap.Error(err))
	}
	return res, nil
}

// RefreshToken rotates a session. The presented refresh token is single use.
func (s *AuthService) RefreshToken(ctx context.Context, req models.RefreshTokenRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid refresh payload")
	}
	session, err := s.lookupSession(ctx, req.RefreshToken)
	if err != nil {
		return nil, err
	}
	if session.Revoked || s.now().After(session.ExpiresAt) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "refresh token is expired or revoked")
	}

	user, err := s.repo.FindByID(ctx, session.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account no longer exists")
	}
	if err != nil {
		return nil, internalError(err, "failed to load account")
	}
	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "account is inactive")
	}

	if err := s.repo.RevokeRefreshToken(ctx, session.ID, s.now()); err != nil {
		s.logger.Warn("revoke rotated session", zap.String("session_id", session.ID), zap.Error(err))
	}
	return s.openSession(ctx, user, req.IP, req.UserAgent)
}

// Logout closes the session behind refreshToken. Only its owner may do so.
func (s *AuthService) Logout(ctx context.Context, refreshToken string, userID string) error {
	session, err := s.lookupSession(ctx, refreshToken)
	if err != nil {
		return err
	}
	if session.UserID != userID {
		return appErrors.Clone(appErrors.ErrForbidden, "token does not belong to user")
	}
	if err := s.repo.RevokeRefreshToken(ctx, session.ID, s.now()); err != nil {
		return internalError(err, "failed to revoke refresh token")
	}
	s.logger.Info("session closed", zap.String("user_id", userID))
	return nil
}

// ValidateToken verifies an HS256 access token and returns its claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, s.signingKey, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}
	if !token.Valid || claims.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) signingKey(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return []byte(s.config.AccessTokenSecret), nil
}

func (s *AuthService) lookupSession(ctx context.Context, refreshToken string) (*models.RefreshToken, error) {
	session, err := s.repo.FindRefreshToken(ctx, refreshToken)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "refresh token not found")
	}
	if err != nil {
		return nil, internalError(err, "failed to load refresh token")
	}
	return session, nil
}

func (s *AuthService) openSession(ctx context.Context, user *models.User, ip, userAgent string) (*models.LoginResponse, error) {
	issuedAt := s.now()
	access, err := s.generateAccessToken(user, issuedAt)
	if err != nil {
		return nil, internalError(err, "failed to sign access token")
	}
	secret, err := randomToken(32)
	if err != nil {
		return nil, internalError(err, "failed to create refresh token")
	}
	session := &models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Token:     secret,
		ExpiresAt: issuedAt.Add(s.config.RefreshTokenExpiry),
		CreatedAt: issuedAt,
		IPAddress: ip,
		UserAgent: userAgent,
	}
	if err := s.repo.CreateRefreshToken(ctx, session); err != nil {
		return nil, internalError(err, "failed to persist refresh token")
	}
	return &models.LoginResponse{
		AccessToken:  access,
		RefreshToken: session.Token,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.config.AccessTokenExpiry.Seconds()),
		IssuedAt:     issuedAt,
		User:         models.UserInfo{ID: user.ID, Email: user.Email, Name: user.Name},
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User, issuedAt time.Time) (string, error) {
	claims := &models.JWTClaims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			Audience:  s.config.Audience,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.AccessTokenExpiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.AccessTokenSecret))
}

func randomToken(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
