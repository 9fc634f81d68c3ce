package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	appErrors "github.com/noah-isme/ego-calendar-api/pkg/errors"
)

var googleScopes = []string{
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
}

type googleUserRepository interface {
	FindByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}

// GoogleIdentityFetcher resolves the Google account behind an OAuth token.
type GoogleIdentityFetcher func(ctx context.Context, token *oauth2.Token) (*models.GoogleIdentity, error)

// GoogleConfig holds the OAuth client credentials.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// GoogleAuthService signs users in with their Google account.
type GoogleAuthService struct {
	config   *oauth2.Config
	users    googleUserRepository
	auth     *AuthService
	identity GoogleIdentityFetcher
	exchange func(ctx context.Context, code string) (*oauth2.Token, error)
	logger   *zap.Logger
}

// NewGoogleAuthService constructs a GoogleAuthService.
func NewGoogleAuthService(cfg GoogleConfig, users googleUserRepository, auth *AuthService, logger *zap.Logger) *GoogleAuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       googleScopes,
		Endpoint:     google.Endpoint,
	}
	s := &GoogleAuthService{config: oauthConfig, users: users, auth: auth, logger: logger}
	s.exchange = func(ctx context.Context, code string) (*oauth2.Token, error) {
		return oauthConfig.Exchange(ctx, code)
	}
	s.identity = s.fetchIdentity
	return s
}

// AuthURL returns the Google consent page URL carrying state.
func (s *GoogleAuthService) AuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Callback exchanges the authorization code, links or creates the account
// and issues API tokens.
func (s *GoogleAuthService) Callback(ctx context.Context, code, ip, userAgent string) (*models.LoginResponse, error) {
	if strings.TrimSpace(code) == "" {
		return nil, appErrors.Validation("missing authorization code")
	}
	token, err := s.exchange(ctx, code)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "failed to exchange authorization code")
	}
	identity, err := s.identity(ctx, token)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to fetch Google profile")
	}

	user, err := s.upsertUser(ctx, identity)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "account is inactive")
	}
	return s.auth.IssueTokens(ctx, user, ip, userAgent)
}

func (s *GoogleAuthService) upsertUser(ctx context.Context, identity *models.GoogleIdentity) (*models.User, error) {
	user, err := s.users.FindByGoogleID(ctx, identity.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	email := strings.ToLower(strings.TrimSpace(identity.Email))
	googleID := identity.ID
	user, err = s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		user.GoogleID = &googleID
		if err := s.users.Update(ctx, user); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to link Google account")
		}
		s.logger.Info("google account linked", zap.String("user_id", user.ID))
		return user, nil
	case errors.Is(err, sql.ErrNoRows):
		user = &models.User{Email: email, Name: identity.Name, GoogleID: &googleID, Active: true}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
		}
		s.logger.Info("user registered with google", zap.String("user_id", user.ID))
		return user, nil
	default:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
}

func (s *GoogleAuthService) fetchIdentity(ctx context.Context, token *oauth2.Token) (*models.GoogleIdentity, error) {
	svc, err := goauth2.NewService(ctx, option.WithTokenSource(s.config.TokenSource(ctx, token)))
	if err != nil {
		return nil, err
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return &models.GoogleIdentity{ID: info.Id, Email: info.Email, Name: info.Name}, nil
}
