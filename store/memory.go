package store

import (
	"context"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// MemoryStore is the reference Store backend. All maps are guarded by a
// single RWMutex; local ids are monotonic per entity kind and never reused.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[int64]User
	playlist map[int64]Playlist
	tracks   map[string]Track
	settings map[int64]UserSettings

	nextUserID     int64
	nextPlaylistID int64
	nextTrackID    int64
	nextSettingsID int64
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:          map[int64]User{},
		playlist:       map[int64]Playlist{},
		tracks:         map[string]Track{},
		settings:       map[int64]UserSettings{},
		nextUserID:     1,
		nextPlaylistID: 1,
		nextTrackID:    1,
		nextSettingsID: 1,
	}
}

func (s *MemoryStore) GetUser(ctx context.Context, id int64) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) GetUserBySpotifyID(ctx context.Context, spotifyID string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := lo.Find(lo.Values(s.users), func(u User) bool {
		return u.SpotifyID == spotifyID
	})
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, insert InsertUser) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Uniqueness is enforced under the write lock so two concurrent first
	// logins by the same account can't both insert.
	for _, existing := range s.users {
		if existing.SpotifyID == insert.SpotifyID {
			return nil, ErrDuplicate
		}
	}

	u := User{
		ID:           s.nextUserID,
		SpotifyID:    insert.SpotifyID,
		DisplayName:  insert.DisplayName,
		Email:        insert.Email,
		AccessToken:  insert.AccessToken,
		RefreshToken: insert.RefreshToken,
		ExpiresAt:    insert.ExpiresAt,
		ProfileImage: insert.ProfileImage,
		Country:      insert.Country,
		Product:      insert.Product,
	}
	s.nextUserID++
	s.users[u.ID] = u
	return &u, nil
}

func (s *MemoryStore) UpdateUser(ctx context.Context, id int64, updates UserUpdate) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}

	if updates.DisplayName != nil {
		u.DisplayName = *updates.DisplayName
	}
	if updates.Email != nil {
		u.Email = *updates.Email
	}
	if updates.AccessToken != nil {
		u.AccessToken = *updates.AccessToken
	}
	if updates.RefreshToken != nil {
		u.RefreshToken = *updates.RefreshToken
	}
	if updates.ExpiresAt != nil {
		u.ExpiresAt = *updates.ExpiresAt
	}
	if updates.ProfileImage != nil {
		u.ProfileImage = *updates.ProfileImage
	}
	if updates.Country != nil {
		u.Country = *updates.Country
	}
	if updates.Product != nil {
		u.Product = *updates.Product
	}

	s.users[id] = u
	return &u, nil
}

func (s *MemoryStore) GetUserPlaylists(ctx context.Context, userID int64) ([]Playlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	playlists := lo.Filter(lo.Values(s.playlist), func(p Playlist, _ int) bool {
		return p.UserID == userID
	})
	slices.SortFunc(playlists, func(a, b Playlist) int {
		return int(a.ID - b.ID)
	})
	return playlists, nil
}

func (s *MemoryStore) CreatePlaylist(ctx context.Context, insert InsertPlaylist) (*Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := Playlist{
		ID:            s.nextPlaylistID,
		UserID:        insert.UserID,
		SpotifyID:     insert.SpotifyID,
		Name:          insert.Name,
		Description:   insert.Description,
		Image:         insert.Image,
		TrackCount:    insert.TrackCount,
		IsPublic:      insert.IsPublic,
		Collaborative: insert.Collaborative,
	}
	s.nextPlaylistID++
	s.playlist[p.ID] = p
	return &p, nil
}

func (s *MemoryStore) UpdatePlaylist(ctx context.Context, id int64, updates PlaylistUpdate) (*Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.playlist[id]
	if !ok {
		return nil, ErrNotFound
	}

	if updates.Name != nil {
		p.Name = *updates.Name
	}
	if updates.Description != nil {
		p.Description = *updates.Description
	}
	if updates.Image != nil {
		p.Image = *updates.Image
	}
	if updates.TrackCount != nil {
		p.TrackCount = *updates.TrackCount
	}
	if updates.IsPublic != nil {
		p.IsPublic = *updates.IsPublic
	}
	if updates.Collaborative != nil {
		p.Collaborative = *updates.Collaborative
	}

	s.playlist[id] = p
	return &p, nil
}

func (s *MemoryStore) GetTrack(ctx context.Context, spotifyID string) (*Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tracks[spotifyID]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (s *MemoryStore) CreateTrack(ctx context.Context, insert InsertTrack) (*Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := Track{
		ID:         s.nextTrackID,
		SpotifyID:  insert.SpotifyID,
		Name:       insert.Name,
		Artists:    insert.Artists,
		Album:      insert.Album,
		DurationMS: insert.DurationMS,
		PreviewURL: insert.PreviewURL,
		Popularity: insert.Popularity,
	}
	s.nextTrackID++
	s.tracks[t.SpotifyID] = t
	return &t, nil
}

func (s *MemoryStore) GetUserSettings(ctx context.Context, userID int64) (*UserSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings, ok := lo.Find(lo.Values(s.settings), func(u UserSettings) bool {
		return u.UserID == userID
	})
	if !ok {
		return nil, ErrNotFound
	}
	return &settings, nil
}

// UpdateUserSettings upserts: a missing record is created with defaults, then
// the updates are merged on top, all under one lock so a read-modify-write
// can't duplicate the per-user row.
func (s *MemoryStore) UpdateUserSettings(ctx context.Context, userID int64, updates SettingsUpdate) (*UserSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, ok := lo.Find(lo.Values(s.settings), func(u UserSettings) bool {
		return u.UserID == userID
	})
	if !ok {
		settings = DefaultSettings(userID)
		settings.ID = s.nextSettingsID
		s.nextSettingsID++
	}

	if updates.Theme != nil {
		settings.Theme = *updates.Theme
	}
	if updates.CustomColors != nil {
		settings.CustomColors = updates.CustomColors
	}
	if updates.Volume != nil {
		settings.Volume = *updates.Volume
	}
	if updates.RepeatMode != nil {
		settings.RepeatMode = *updates.RepeatMode
	}
	if updates.ShuffleEnabled != nil {
		settings.ShuffleEnabled = *updates.ShuffleEnabled
	}

	s.settings[settings.ID] = settings
	return &settings, nil
}
