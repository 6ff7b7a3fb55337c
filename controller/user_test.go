package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crimsonfm/crimson-api/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentUserRequiresSession(t *testing.T) {
	c := newTestController(store.NewMemoryStore(), defaultFakeFlow())

	w := httptest.NewRecorder()
	c.CurrentUser(w, httptest.NewRequest("GET", "/api/user/me", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCurrentUserStaleSession(t *testing.T) {
	c := newTestController(store.NewMemoryStore(), defaultFakeFlow())

	// a valid cookie whose user was since removed from the store
	w := httptest.NewRecorder()
	c.CurrentUser(w, authedRequest(t, c, 42, "GET", "/api/user/me"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "User not found")
}

func TestCurrentUserProjection(t *testing.T) {
	st := store.NewMemoryStore()
	c := newTestController(st, defaultFakeFlow())

	u, err := st.CreateUser(context.Background(), store.InsertUser{
		SpotifyID:    "spotify-user-1",
		DisplayName:  "Listener",
		Email:        "listener@example.com",
		AccessToken:  "super-secret-access",
		RefreshToken: "super-secret-refresh",
		ProfileImage: "https://img.example/a.jpg",
		Country:      "US",
		Product:      "premium",
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c.CurrentUser(w, authedRequest(t, c, u.ID, "GET", "/api/user/me"))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"displayName":"Listener"`)
	assert.Contains(t, body, `"country":"US"`)
	assert.NotContains(t, body, "super-secret-access")
	assert.NotContains(t, body, "super-secret-refresh")
}
