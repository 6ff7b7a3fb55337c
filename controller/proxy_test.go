package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/crimsonfm/crimson-api/session"
	"github.com/crimsonfm/crimson-api/spotify"
	"github.com/crimsonfm/crimson-api/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// newProxyTestController points the passthrough at a local upstream and the
// refresh grant at tokenURL (unused when the stored token is still valid).
func newProxyTestController(st store.Store, upstreamURL, tokenURL string) *Controller {
	return New(
		st,
		session.NewManager([]byte("test-secret")),
		spotify.NewTokenManagerWithEndpoint(st, oauth2.Endpoint{
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		}),
		spotify.NewProxyWithBaseURL(upstreamURL),
		defaultFakeFlow(),
	)
}

func seedUserWithToken(t *testing.T, st store.Store, expiresAt int64) *store.User {
	t.Helper()
	u, err := st.CreateUser(context.Background(), store.InsertUser{
		SpotifyID:    "proxy-user",
		DisplayName:  "Proxy User",
		AccessToken:  "stored-access",
		RefreshToken: "stored-refresh",
		ExpiresAt:    expiresAt,
	})
	require.NoError(t, err)
	return u
}

func TestProxyRequiresSession(t *testing.T) {
	c := newProxyTestController(store.NewMemoryStore(), "http://unused.invalid", "http://unused.invalid")

	w := httptest.NewRecorder()
	c.SpotifyProxy(w, httptest.NewRequest("GET", "/api/spotify/me/player", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProxyStaleSession(t *testing.T) {
	c := newProxyTestController(store.NewMemoryStore(), "http://unused.invalid", "http://unused.invalid")

	w := httptest.NewRecorder()
	c.SpotifyProxy(w, authedRequest(t, c, 7, "GET", "/api/spotify/me/player"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "User not found")
}

func TestProxyForwardsPathQueryAndToken(t *testing.T) {
	var gotPath, gotQuery, gotAuth string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"is_playing":true}`))
	}))
	defer upstream.Close()

	st := store.NewMemoryStore()
	c := newProxyTestController(st, upstream.URL, "http://unused.invalid")
	u := seedUserWithToken(t, st, time.Now().Add(time.Hour).UnixMilli())

	w := httptest.NewRecorder()
	c.SpotifyProxy(w, authedRequest(t, c, u.ID, "GET", "/api/spotify/me/player?market=US&limit=5"))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/me/player", gotPath)
	assert.Equal(t, "market=US&limit=5", gotQuery)
	assert.Equal(t, "Bearer stored-access", gotAuth)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"is_playing":true}`, w.Body.String())
}

func TestProxyRelaysUpstreamErrors(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"status":429,"message":"rate limited"}}`))
	}))
	defer upstream.Close()

	st := store.NewMemoryStore()
	c := newProxyTestController(st, upstream.URL, "http://unused.invalid")
	u := seedUserWithToken(t, st, time.Now().Add(time.Hour).UnixMilli())

	w := httptest.NewRecorder()
	c.SpotifyProxy(w, authedRequest(t, c, u.ID, "GET", "/api/spotify/me/player"))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate limited")
}

func TestProxyRefreshFailure(t *testing.T) {
	refresher := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer refresher.Close()

	st := store.NewMemoryStore()
	c := newProxyTestController(st, "http://unused.invalid", refresher.URL)
	u := seedUserWithToken(t, st, time.Now().Add(-time.Hour).UnixMilli())

	w := httptest.NewRecorder()
	c.SpotifyProxy(w, authedRequest(t, c, u.ID, "GET", "/api/spotify/me/player"))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token refresh failed")
}

func TestProxyCachesPlaylists(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"items": [
				{
					"id": "pl-1",
					"name": "Morning",
					"description": "wake up",
					"public": true,
					"collaborative": false,
					"images": [{"url": "https://img.example/pl.jpg"}],
					"tracks": {"total": 12}
				}
			]
		}`))
	}))
	defer upstream.Close()

	st := store.NewMemoryStore()
	c := newProxyTestController(st, upstream.URL, "http://unused.invalid")
	u := seedUserWithToken(t, st, time.Now().Add(time.Hour).UnixMilli())

	w := httptest.NewRecorder()
	c.SpotifyProxy(w, authedRequest(t, c, u.ID, "GET", "/api/spotify/me/playlists"))
	require.Equal(t, http.StatusOK, w.Code)

	cached, err := st.GetUserPlaylists(context.Background(), u.ID)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "pl-1", cached[0].SpotifyID)
	assert.Equal(t, "Morning", cached[0].Name)
	assert.Equal(t, 12, cached[0].TrackCount)
	assert.True(t, cached[0].IsPublic)
}

func TestUserPlaylistsServesCache(t *testing.T) {
	st := store.NewMemoryStore()
	c := newProxyTestController(st, "http://unused.invalid", "http://unused.invalid")
	u := seedUserWithToken(t, st, time.Now().Add(time.Hour).UnixMilli())

	_, err := st.CreatePlaylist(context.Background(), store.InsertPlaylist{
		UserID:    u.ID,
		SpotifyID: "pl-cached",
		Name:      "From Cache",
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c.UserPlaylists(w, authedRequest(t, c, u.ID, "GET", "/api/playlists"))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "From Cache")
}
