// Package vault maintains the per-user OAuth token pair for the external
// notes provider and lists recently modified notes from the user's vault.
package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"github.com/iudanet/teamdesk/internal/models"
	"github.com/iudanet/teamdesk/internal/server/storage"
)

// Service manages the link/refresh/disconnect lifecycle of the external
// token pair. Concurrent refreshes for the same user are tolerated: both
// requests hit the provider and the store keeps the most recently written
// pair. The provider keeps refresh tokens valid across repeated use within
// a short window, so no locking is done here.
type Service struct {
	logger *slog.Logger
	users  storage.UserStorage
	conf   *oauth2.Config
	now    func() time.Time
}

// NewService creates a new vault service.
// conf may be nil when the provider is not configured; all operations then
// return ErrNotConfigured.
func NewService(logger *slog.Logger, users storage.UserStorage, conf *oauth2.Config) *Service {
	return &Service{
		logger: logger,
		users:  users,
		conf:   conf,
		now:    time.Now,
	}
}

// Configured reports whether provider credentials are present
func (s *Service) Configured() bool {
	return s.conf != nil
}

// IsLinked reports whether the user has a connected external account
func (s *Service) IsLinked(user *models.User) bool {
	return user.Linked()
}

// EnsureFreshToken returns a usable access token for the user, refreshing it
// through the provider when the stored one is expired. A missing expiry is
// treated as expired. A fresh stored token is returned without any network
// call. Provider-side failures surface as ErrRefreshFailed.
func (s *Service) EnsureFreshToken(ctx context.Context, user *models.User) (string, error) {
	if !user.Linked() {
		return "", ErrNotLinked
	}

	pair := user.ExternalTokens

	// Токен еще жив - сеть не трогаем
	if !pair.Expiry.IsZero() && s.now().Before(pair.Expiry) {
		return pair.AccessToken, nil
	}

	if s.conf == nil {
		return "", ErrNotConfigured
	}

	// TokenSource с одним refresh token сразу идет на token endpoint
	src := s.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: pair.RefreshToken})

	fresh, err := src.Token()
	if err != nil {
		s.logger.WarnContext(ctx, "token refresh rejected by provider",
			slog.Int64("user_id", user.ID),
			slog.String("reason", providerReason(err)))
		return "", fmt.Errorf("%w: %s", ErrRefreshFailed, providerReason(err))
	}

	newPair := models.TokenPair{
		AccessToken:  fresh.AccessToken,
		RefreshToken: fresh.RefreshToken,
		Expiry:       fresh.Expiry,
	}
	// Провайдер может не вернуть новый refresh token - оставляем старый
	if newPair.RefreshToken == "" {
		newPair.RefreshToken = pair.RefreshToken
	}

	if err := s.users.UpdateExternalTokens(ctx, user.ID, &newPair); err != nil {
		return "", fmt.Errorf("failed to persist refreshed tokens: %w", err)
	}
	user.ExternalTokens = &newPair

	s.logger.InfoContext(ctx, "external access token refreshed",
		slog.Int64("user_id", user.ID),
		slog.Time("expiry", newPair.Expiry))

	return newPair.AccessToken, nil
}

// InitiateLink builds the provider authorization URL for the user.
// The user id rides in the state parameter as the correlation token the
// provider echoes back on callback. A plain numeric id is predictable from
// outside; fine for this portal, but switch to a signed state before
// exposing the flow publicly.
func (s *Service) InitiateLink(userID int64) (string, error) {
	if s.conf == nil {
		return "", ErrNotConfigured
	}

	state := strconv.FormatInt(userID, 10)

	return s.conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("response_mode", "query"),
	), nil
}

// CompleteLink parses the callback state back to a user id, exchanges the
// authorization code for a token pair and persists it in a single write.
func (s *Service) CompleteLink(ctx context.Context, state, code string) error {
	if s.conf == nil {
		return ErrNotConfigured
	}

	userID, err := strconv.ParseInt(state, 10, 64)
	if err != nil {
		return ErrInvalidState
	}

	tok, err := s.conf.Exchange(ctx, code)
	if err != nil {
		s.logger.WarnContext(ctx, "code exchange rejected by provider",
			slog.Int64("user_id", userID),
			slog.String("reason", providerReason(err)))
		return fmt.Errorf("%w: %s", ErrExchangeFailed, providerReason(err))
	}

	// Без refresh token пара бесполезна: offline_access не был выдан
	if tok.RefreshToken == "" {
		return fmt.Errorf("%w: no refresh token granted", ErrExchangeFailed)
	}

	pair := models.TokenPair{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}

	if err := s.users.UpdateExternalTokens(ctx, userID, &pair); err != nil {
		return fmt.Errorf("failed to persist token pair: %w", err)
	}

	s.logger.InfoContext(ctx, "external account linked",
		slog.Int64("user_id", userID))

	return nil
}

// Disconnect unconditionally clears the user's token pair and expiry.
// Idempotent: calling it on an already-disconnected account is a no-op.
func (s *Service) Disconnect(ctx context.Context, userID int64) error {
	if err := s.users.UpdateExternalTokens(ctx, userID, nil); err != nil {
		return fmt.Errorf("failed to clear token pair: %w", err)
	}

	s.logger.InfoContext(ctx, "external account disconnected",
		slog.Int64("user_id", userID))

	return nil
}

// providerReason извлекает код ошибки провайдера для показа пользователю
func providerReason(err error) string {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.ErrorCode != "" {
		return retrieveErr.ErrorCode
	}
	return "provider_error"
}
