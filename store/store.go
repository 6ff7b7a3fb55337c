package store

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrNotFound is returned when a record does not exist; both backends use
	// it so handlers never compare against driver errors.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned by CreateUser when the Spotify id is already
	// registered.
	ErrDuplicate = errors.New("spotify id already registered")
)

// JSON tags follow the wire format the web client already speaks.

type User struct {
	ID          int64  `json:"id"`
	SpotifyID   string `json:"spotifyId"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
	// Credentials never serialize.
	AccessToken  string `json:"-"`
	RefreshToken string `json:"-"`
	// ExpiresAt is the access token expiry in epoch milliseconds.
	ExpiresAt    int64  `json:"expiresAt"`
	ProfileImage string `json:"profileImage,omitempty"`
	Country      string `json:"country,omitempty"`
	Product      string `json:"product,omitempty"`
}

type Playlist struct {
	ID            int64  `json:"id"`
	UserID        int64  `json:"userId"`
	SpotifyID     string `json:"spotifyId"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Image         string `json:"image,omitempty"`
	TrackCount    int    `json:"trackCount"`
	IsPublic      bool   `json:"isPublic"`
	Collaborative bool   `json:"collaborative"`
}

type Track struct {
	ID         int64           `json:"id"`
	SpotifyID  string          `json:"spotifyId"`
	Name       string          `json:"name"`
	Artists    json.RawMessage `json:"artists"`
	Album      json.RawMessage `json:"album"`
	DurationMS int             `json:"duration"`
	PreviewURL string          `json:"previewUrl,omitempty"`
	Popularity int             `json:"popularity"`
}

type UserSettings struct {
	ID             int64           `json:"id,omitempty"`
	UserID         int64           `json:"userId,omitempty"`
	Theme          string          `json:"theme"`
	CustomColors   json.RawMessage `json:"customColors,omitempty"`
	Volume         int             `json:"volume"`
	RepeatMode     string          `json:"repeatMode"`
	ShuffleEnabled bool            `json:"shuffleEnabled"`
}

const (
	RepeatOff     = "off"
	RepeatTrack   = "track"
	RepeatContext = "context"

	DefaultTheme  = "red-black"
	DefaultVolume = 50
)

// DefaultSettings is the record handed out (and persisted on first write) for
// users who never changed anything.
func DefaultSettings(userID int64) UserSettings {
	return UserSettings{
		UserID:         userID,
		Theme:          DefaultTheme,
		Volume:         DefaultVolume,
		RepeatMode:     RepeatOff,
		ShuffleEnabled: false,
	}
}

// InsertUser carries every user field except the store-assigned local id.
type InsertUser struct {
	SpotifyID    string
	DisplayName  string
	Email        string
	AccessToken  string
	RefreshToken string
	ExpiresAt    int64
	ProfileImage string
	Country      string
	Product      string
}

// UserUpdate is a partial update; nil fields keep their stored value.
type UserUpdate struct {
	DisplayName  *string
	Email        *string
	AccessToken  *string
	RefreshToken *string
	ExpiresAt    *int64
	ProfileImage *string
	Country      *string
	Product      *string
}

type InsertPlaylist struct {
	UserID        int64
	SpotifyID     string
	Name          string
	Description   string
	Image         string
	TrackCount    int
	IsPublic      bool
	Collaborative bool
}

type PlaylistUpdate struct {
	Name          *string
	Description   *string
	Image         *string
	TrackCount    *int
	IsPublic      *bool
	Collaborative *bool
}

type InsertTrack struct {
	SpotifyID  string
	Name       string
	Artists    json.RawMessage
	Album      json.RawMessage
	DurationMS int
	PreviewURL string
	Popularity int
}

// SettingsUpdate is a partial settings update; nil fields keep their stored
// value (or the default when no record exists yet).
type SettingsUpdate struct {
	Theme          *string
	CustomColors   json.RawMessage
	Volume         *int
	RepeatMode     *string
	ShuffleEnabled *bool
}

// Store is the persistence contract shared by the in-memory reference backend
// and the postgres backend. Every method returns ErrNotFound for absent
// records rather than a backend-specific error.
type Store interface {
	GetUser(ctx context.Context, id int64) (*User, error)
	GetUserBySpotifyID(ctx context.Context, spotifyID string) (*User, error)
	CreateUser(ctx context.Context, insert InsertUser) (*User, error)
	UpdateUser(ctx context.Context, id int64, updates UserUpdate) (*User, error)

	GetUserPlaylists(ctx context.Context, userID int64) ([]Playlist, error)
	CreatePlaylist(ctx context.Context, insert InsertPlaylist) (*Playlist, error)
	UpdatePlaylist(ctx context.Context, id int64, updates PlaylistUpdate) (*Playlist, error)

	GetTrack(ctx context.Context, spotifyID string) (*Track, error)
	CreateTrack(ctx context.Context, insert InsertTrack) (*Track, error)

	GetUserSettings(ctx context.Context, userID int64) (*UserSettings, error)
	UpdateUserSettings(ctx context.Context, userID int64, updates SettingsUpdate) (*UserSettings, error)
}
