package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/crimsonfm/crimson-api/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, st store.Store) *store.User {
	t.Helper()
	u, err := st.CreateUser(context.Background(), store.InsertUser{
		SpotifyID:   "seed-user",
		DisplayName: "Seed",
	})
	require.NoError(t, err)
	return u
}

func authedBodyRequest(t *testing.T, c *Controller, userID int64, method, target, body string) *http.Request {
	t.Helper()

	w := httptest.NewRecorder()
	seed := httptest.NewRequest("GET", "/", nil)
	require.NoError(t, c.Sessions.SetUserID(w, seed, userID))

	r := httptest.NewRequest(method, target, strings.NewReader(body))
	for _, cookie := range w.Result().Cookies() {
		r.AddCookie(cookie)
	}
	return r
}

func TestGetSettingsRequiresSession(t *testing.T) {
	c := newTestController(store.NewMemoryStore(), defaultFakeFlow())

	w := httptest.NewRecorder()
	c.GetSettings(w, httptest.NewRequest("GET", "/api/settings", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Not authenticated")
}

func TestGetSettingsDefaults(t *testing.T) {
	st := store.NewMemoryStore()
	c := newTestController(st, defaultFakeFlow())
	u := seedUser(t, st)

	w := httptest.NewRecorder()
	c.GetSettings(w, authedRequest(t, c, u.ID, "GET", "/api/settings"))

	require.Equal(t, http.StatusOK, w.Code)
	var got store.UserSettings
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, store.DefaultTheme, got.Theme)
	assert.Equal(t, store.DefaultVolume, got.Volume)
	assert.Equal(t, store.RepeatOff, got.RepeatMode)
	assert.False(t, got.ShuffleEnabled)
	assert.Nil(t, got.CustomColors)

	// a read never creates the record
	_, err := st.GetUserSettings(context.Background(), u.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateSettingsMerges(t *testing.T) {
	st := store.NewMemoryStore()
	c := newTestController(st, defaultFakeFlow())
	u := seedUser(t, st)

	w := httptest.NewRecorder()
	c.UpdateSettings(w, authedBodyRequest(t, c, u.ID, "POST", "/api/settings", `{"volume":70}`))

	require.Equal(t, http.StatusOK, w.Code)
	var got store.UserSettings
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 70, got.Volume)
	assert.Equal(t, store.DefaultTheme, got.Theme)
	assert.Equal(t, u.ID, got.UserID)

	w = httptest.NewRecorder()
	c.UpdateSettings(w, authedBodyRequest(t, c, u.ID, "POST", "/api/settings",
		`{"repeatMode":"track","customColors":{"primary":"#b30000"}}`))

	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 70, got.Volume)
	assert.Equal(t, store.RepeatTrack, got.RepeatMode)
	assert.JSONEq(t, `{"primary":"#b30000"}`, string(got.CustomColors))
}

func TestUpdateSettingsRejectsBadInput(t *testing.T) {
	st := store.NewMemoryStore()
	c := newTestController(st, defaultFakeFlow())
	u := seedUser(t, st)

	cases := []struct {
		name string
		body string
	}{
		{"unknown field", `{"volume":50,"hacked":true}`},
		{"volume too high", `{"volume":101}`},
		{"negative volume", `{"volume":-1}`},
		{"bad repeat mode", `{"repeatMode":"forever"}`},
		{"empty theme", `{"theme":""}`},
		{"not json", `volume=70`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c.UpdateSettings(w, authedBodyRequest(t, c, u.ID, "POST", "/api/settings", tc.body))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	// nothing was persisted by the rejected writes
	_, err := st.GetUserSettings(context.Background(), u.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
