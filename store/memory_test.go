package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertTestUser(spotifyID string) InsertUser {
	return InsertUser{
		SpotifyID:    spotifyID,
		DisplayName:  "Test User",
		Email:        "test@example.com",
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    1700000000000,
		Country:      "US",
		Product:      "premium",
	}
}

func TestUserLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	t.Run("create assigns ids from 1", func(t *testing.T) {
		first, err := s.CreateUser(ctx, insertTestUser("spotify-a"))
		require.NoError(t, err)
		assert.Equal(t, int64(1), first.ID)

		second, err := s.CreateUser(ctx, insertTestUser("spotify-b"))
		require.NoError(t, err)
		assert.Equal(t, int64(2), second.ID)
	})

	t.Run("lookup by spotify id", func(t *testing.T) {
		u, err := s.GetUserBySpotifyID(ctx, "spotify-a")
		require.NoError(t, err)
		assert.Equal(t, int64(1), u.ID)

		_, err = s.GetUserBySpotifyID(ctx, "never-created")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("duplicate spotify id rejected", func(t *testing.T) {
		_, err := s.CreateUser(ctx, insertTestUser("spotify-a"))
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("partial update leaves other fields alone", func(t *testing.T) {
		newToken := "access-2"
		newExpiry := int64(1800000000000)
		updated, err := s.UpdateUser(ctx, 1, UserUpdate{
			AccessToken: &newToken,
			ExpiresAt:   &newExpiry,
		})
		require.NoError(t, err)
		assert.Equal(t, "access-2", updated.AccessToken)
		assert.Equal(t, int64(1800000000000), updated.ExpiresAt)
		assert.Equal(t, "refresh-1", updated.RefreshToken)
		assert.Equal(t, "Test User", updated.DisplayName)
		assert.Equal(t, "test@example.com", updated.Email)

		fetched, err := s.GetUser(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, *updated, *fetched)
	})

	t.Run("update of unknown id", func(t *testing.T) {
		name := "nobody"
		_, err := s.UpdateUser(ctx, 99, UserUpdate{DisplayName: &name})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPlaylists(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	alice, err := s.CreateUser(ctx, insertTestUser("alice"))
	require.NoError(t, err)
	bob, err := s.CreateUser(ctx, insertTestUser("bob"))
	require.NoError(t, err)

	for _, name := range []string{"Morning", "Evening"} {
		_, err = s.CreatePlaylist(ctx, InsertPlaylist{
			UserID:    alice.ID,
			SpotifyID: "pl-" + name,
			Name:      name,
		})
		require.NoError(t, err)
	}
	_, err = s.CreatePlaylist(ctx, InsertPlaylist{UserID: bob.ID, SpotifyID: "pl-bob", Name: "Bob's"})
	require.NoError(t, err)

	t.Run("filtered by owner", func(t *testing.T) {
		playlists, err := s.GetUserPlaylists(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, playlists, 2)
		assert.Equal(t, "Morning", playlists[0].Name)
		assert.Equal(t, "Evening", playlists[1].Name)
	})

	t.Run("update merges", func(t *testing.T) {
		count := 12
		updated, err := s.UpdatePlaylist(ctx, 1, PlaylistUpdate{TrackCount: &count})
		require.NoError(t, err)
		assert.Equal(t, 12, updated.TrackCount)
		assert.Equal(t, "Morning", updated.Name)
	})

	t.Run("no playlists is empty, not nil error", func(t *testing.T) {
		playlists, err := s.GetUserPlaylists(ctx, 42)
		require.NoError(t, err)
		assert.Empty(t, playlists)
	})
}

func TestTracks(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	created, err := s.CreateTrack(ctx, InsertTrack{
		SpotifyID:  "track-1",
		Name:       "Ride",
		Artists:    json.RawMessage(`[{"name":"Lana Del Rey"}]`),
		Album:      json.RawMessage(`{"name":"Born to Die"}`),
		DurationMS: 289000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	t.Run("keyed by spotify id", func(t *testing.T) {
		track, err := s.GetTrack(ctx, "track-1")
		require.NoError(t, err)
		assert.Equal(t, "Ride", track.Name)

		_, err = s.GetTrack(ctx, "track-2")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSettingsUpsert(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	u, err := s.CreateUser(ctx, insertTestUser("settings-user"))
	require.NoError(t, err)

	t.Run("read before write is absent", func(t *testing.T) {
		_, err := s.GetUserSettings(ctx, u.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("first write creates with defaults underneath", func(t *testing.T) {
		volume := 70
		settings, err := s.UpdateUserSettings(ctx, u.ID, SettingsUpdate{Volume: &volume})
		require.NoError(t, err)
		assert.Equal(t, 70, settings.Volume)
		assert.Equal(t, DefaultTheme, settings.Theme)
		assert.Equal(t, RepeatOff, settings.RepeatMode)
		assert.False(t, settings.ShuffleEnabled)
		assert.Nil(t, settings.CustomColors)
	})

	t.Run("second write mutates in place, never duplicates", func(t *testing.T) {
		shuffle := true
		settings, err := s.UpdateUserSettings(ctx, u.ID, SettingsUpdate{ShuffleEnabled: &shuffle})
		require.NoError(t, err)
		assert.Equal(t, int64(1), settings.ID)
		assert.True(t, settings.ShuffleEnabled)
		// prior partial update survives
		assert.Equal(t, 70, settings.Volume)

		fetched, err := s.GetUserSettings(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, *settings, *fetched)
	})
}
