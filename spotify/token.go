package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/crimsonfm/crimson-api/config"
	"github.com/crimsonfm/crimson-api/store"
	"golang.org/x/oauth2"
	spotifyoauth "golang.org/x/oauth2/spotify"
)

// ErrRefreshFailed marks a refresh the upstream rejected (or that never
// reached it). Callers translate it to an unauthenticated response; stored
// credentials are left exactly as they were.
var ErrRefreshFailed = errors.New("token refresh failed")

// TokenManager guarantees that every proxied request carries a currently
// valid access token. Refresh is strictly lazy: the first request after
// expiry pays the round trip, nothing runs ahead of time.
type TokenManager struct {
	store      store.Store
	cfg        *oauth2.Config
	httpClient *http.Client

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewTokenManager(st store.Store) *TokenManager {
	return NewTokenManagerWithEndpoint(st, spotifyoauth.Endpoint)
}

// NewTokenManagerWithEndpoint exists so tests can point the refresh grant at
// a local token endpoint.
func NewTokenManagerWithEndpoint(st store.Store, endpoint oauth2.Endpoint) *TokenManager {
	return &TokenManager{
		store: st,
		cfg: &oauth2.Config{
			ClientID:     config.GetSpotifyClientID(),
			ClientSecret: config.GetSpotifyClientSecret(),
			Endpoint:     endpoint,
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
		locks:      map[int64]*sync.Mutex{},
	}
}

func (m *TokenManager) userLock(userID int64) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[userID] = l
	}
	return l
}

// EnsureAccess returns an access token valid right now, refreshing first when
// the stored one has expired. Refresh is serialized per user: a request that
// loses the race re-reads the row and sees the winner's token instead of
// burning a second refresh grant.
func (m *TokenManager) EnsureAccess(ctx context.Context, userID int64) (string, error) {
	lock := m.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	u, err := m.store.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}

	if time.Now().UnixMilli() < u.ExpiresAt {
		return u.AccessToken, nil
	}

	newToken, err := m.refresh(ctx, u.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrRefreshFailed, err)
	}

	expiresAt := newToken.Expiry.UnixMilli()
	updates := store.UserUpdate{
		AccessToken: &newToken.AccessToken,
		ExpiresAt:   &expiresAt,
	}
	// Spotify may rotate the refresh token; persist it only when it did.
	if newToken.RefreshToken != "" && newToken.RefreshToken != u.RefreshToken {
		updates.RefreshToken = &newToken.RefreshToken
	}
	if _, err := m.store.UpdateUser(ctx, userID, updates); err != nil {
		return "", fmt.Errorf("persist refreshed token: %w", err)
	}

	return newToken.AccessToken, nil
}

func (m *TokenManager) refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
	src := m.cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	return src.Token()
}
