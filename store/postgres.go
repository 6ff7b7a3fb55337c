package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/crimsonfm/crimson-api/auth"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresStore is the durable Store backend. Spotify credentials are
// encrypted at rest; every other column round-trips as written.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	spotify_id TEXT NOT NULL UNIQUE,
	display_name TEXT NOT NULL,
	email TEXT NOT NULL DEFAULT '',
	access_token BYTEA NOT NULL,
	refresh_token BYTEA NOT NULL,
	expires_at BIGINT NOT NULL,
	profile_image TEXT NOT NULL DEFAULT '',
	country TEXT NOT NULL DEFAULT '',
	product TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS playlists (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id),
	spotify_id TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	image TEXT NOT NULL DEFAULT '',
	track_count INT NOT NULL DEFAULT 0,
	is_public BOOLEAN NOT NULL DEFAULT FALSE,
	collaborative BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE TABLE IF NOT EXISTS tracks (
	id BIGSERIAL PRIMARY KEY,
	spotify_id TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	artists JSONB NOT NULL,
	album JSONB NOT NULL,
	duration_ms INT NOT NULL,
	preview_url TEXT NOT NULL DEFAULT '',
	popularity INT NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS user_settings (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL UNIQUE REFERENCES users(id),
	theme TEXT NOT NULL DEFAULT 'red-black',
	custom_colors JSONB,
	volume INT NOT NULL DEFAULT 50,
	repeat_mode TEXT NOT NULL DEFAULT 'off',
	shuffle_enabled BOOLEAN NOT NULL DEFAULT FALSE
);`

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()
	_, err := s.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

const userColumns = "id, spotify_id, display_name, email, access_token, refresh_token, expires_at, profile_image, country, product"

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var encryptedAccess, encryptedRefresh []byte
	err := row.Scan(&u.ID, &u.SpotifyID, &u.DisplayName, &u.Email, &encryptedAccess,
		&encryptedRefresh, &u.ExpiresAt, &u.ProfileImage, &u.Country, &u.Product)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	if u.AccessToken, err = auth.DecryptToken(encryptedAccess); err != nil {
		return nil, fmt.Errorf("decrypt access token: %w", err)
	}
	if u.RefreshToken, err = auth.DecryptToken(encryptedRefresh); err != nil {
		return nil, fmt.Errorf("decrypt refresh token: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) GetUser(ctx context.Context, id int64) (*User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	return scanUser(row)
}

func (s *PostgresStore) GetUserBySpotifyID(ctx context.Context, spotifyID string) (*User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE spotify_id = $1", spotifyID)
	return scanUser(row)
}

func (s *PostgresStore) CreateUser(ctx context.Context, insert InsertUser) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	encryptedAccess, err := auth.EncryptToken(insert.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("encrypt access token: %w", err)
	}
	encryptedRefresh, err := auth.EncryptToken(insert.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("encrypt refresh token: %w", err)
	}

	row := s.db.QueryRowContext(ctx,
		`INSERT INTO users (spotify_id, display_name, email, access_token, refresh_token, expires_at, profile_image, country, product)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+userColumns,
		insert.SpotifyID, insert.DisplayName, insert.Email, encryptedAccess, encryptedRefresh,
		insert.ExpiresAt, insert.ProfileImage, insert.Country, insert.Product)

	u, err := scanUser(row)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return nil, ErrDuplicate
	}
	return u, err
}

func (s *PostgresStore) UpdateUser(ctx context.Context, id int64, updates UserUpdate) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	var encryptedAccess, encryptedRefresh []byte
	var err error
	if updates.AccessToken != nil {
		if encryptedAccess, err = auth.EncryptToken(*updates.AccessToken); err != nil {
			return nil, fmt.Errorf("encrypt access token: %w", err)
		}
	}
	if updates.RefreshToken != nil {
		if encryptedRefresh, err = auth.EncryptToken(*updates.RefreshToken); err != nil {
			return nil, fmt.Errorf("encrypt refresh token: %w", err)
		}
	}

	row := s.db.QueryRowContext(ctx,
		`UPDATE users SET
			display_name = COALESCE($2, display_name),
			email = COALESCE($3, email),
			access_token = COALESCE($4, access_token),
			refresh_token = COALESCE($5, refresh_token),
			expires_at = COALESCE($6, expires_at),
			profile_image = COALESCE($7, profile_image),
			country = COALESCE($8, country),
			product = COALESCE($9, product)
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, updates.DisplayName, updates.Email, encryptedAccess, encryptedRefresh,
		updates.ExpiresAt, updates.ProfileImage, updates.Country, updates.Product)
	return scanUser(row)
}

const playlistColumns = "id, user_id, spotify_id, name, description, image, track_count, is_public, collaborative"

func (s *PostgresStore) GetUserPlaylists(ctx context.Context, userID int64) ([]Playlist, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+playlistColumns+" FROM playlists WHERE user_id = $1 ORDER BY id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	playlists := []Playlist{}
	for rows.Next() {
		var p Playlist
		err = rows.Scan(&p.ID, &p.UserID, &p.SpotifyID, &p.Name, &p.Description,
			&p.Image, &p.TrackCount, &p.IsPublic, &p.Collaborative)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, p)
	}
	return playlists, rows.Err()
}

func scanPlaylist(row *sql.Row) (*Playlist, error) {
	var p Playlist
	err := row.Scan(&p.ID, &p.UserID, &p.SpotifyID, &p.Name, &p.Description,
		&p.Image, &p.TrackCount, &p.IsPublic, &p.Collaborative)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) CreatePlaylist(ctx context.Context, insert InsertPlaylist) (*Playlist, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO playlists (user_id, spotify_id, name, description, image, track_count, is_public, collaborative)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+playlistColumns,
		insert.UserID, insert.SpotifyID, insert.Name, insert.Description, insert.Image,
		insert.TrackCount, insert.IsPublic, insert.Collaborative)
	return scanPlaylist(row)
}

func (s *PostgresStore) UpdatePlaylist(ctx context.Context, id int64, updates PlaylistUpdate) (*Playlist, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE playlists SET
			name = COALESCE($2, name),
			description = COALESCE($3, description),
			image = COALESCE($4, image),
			track_count = COALESCE($5, track_count),
			is_public = COALESCE($6, is_public),
			collaborative = COALESCE($7, collaborative)
		 WHERE id = $1
		 RETURNING `+playlistColumns,
		id, updates.Name, updates.Description, updates.Image,
		updates.TrackCount, updates.IsPublic, updates.Collaborative)
	return scanPlaylist(row)
}

const trackColumns = "id, spotify_id, name, artists, album, duration_ms, preview_url, popularity"

func (s *PostgresStore) GetTrack(ctx context.Context, spotifyID string) (*Track, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+trackColumns+" FROM tracks WHERE spotify_id = $1", spotifyID)
	var t Track
	err := row.Scan(&t.ID, &t.SpotifyID, &t.Name, &t.Artists, &t.Album,
		&t.DurationMS, &t.PreviewURL, &t.Popularity)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *PostgresStore) CreateTrack(ctx context.Context, insert InsertTrack) (*Track, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO tracks (spotify_id, name, artists, album, duration_ms, preview_url, popularity)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+trackColumns,
		insert.SpotifyID, insert.Name, []byte(insert.Artists), []byte(insert.Album),
		insert.DurationMS, insert.PreviewURL, insert.Popularity)
	var t Track
	err := row.Scan(&t.ID, &t.SpotifyID, &t.Name, &t.Artists, &t.Album,
		&t.DurationMS, &t.PreviewURL, &t.Popularity)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

const settingsColumns = "id, user_id, theme, custom_colors, volume, repeat_mode, shuffle_enabled"

func (s *PostgresStore) GetUserSettings(ctx context.Context, userID int64) (*UserSettings, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+settingsColumns+" FROM user_settings WHERE user_id = $1", userID)
	return scanSettings(row)
}

func (s *PostgresStore) UpdateUserSettings(ctx context.Context, userID int64, updates SettingsUpdate) (*UserSettings, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	var colors []byte
	if updates.CustomColors != nil {
		colors = []byte(updates.CustomColors)
	}

	// Single-statement upsert: defaults on insert, partial merge on conflict.
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO user_settings (user_id, theme, custom_colors, volume, repeat_mode, shuffle_enabled)
		 VALUES ($1, COALESCE($2, 'red-black'), $3, COALESCE($4, 50), COALESCE($5, 'off'), COALESCE($6, FALSE))
		 ON CONFLICT (user_id) DO UPDATE SET
			theme = COALESCE($2, user_settings.theme),
			custom_colors = COALESCE($3, user_settings.custom_colors),
			volume = COALESCE($4, user_settings.volume),
			repeat_mode = COALESCE($5, user_settings.repeat_mode),
			shuffle_enabled = COALESCE($6, user_settings.shuffle_enabled)
		 RETURNING `+settingsColumns,
		userID, updates.Theme, colors, updates.Volume, updates.RepeatMode, updates.ShuffleEnabled)
	return scanSettings(row)
}

func scanSettings(row *sql.Row) (*UserSettings, error) {
	var settings UserSettings
	var colors []byte
	err := row.Scan(&settings.ID, &settings.UserID, &settings.Theme, &colors,
		&settings.Volume, &settings.RepeatMode, &settings.ShuffleEnabled)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	if colors != nil {
		settings.CustomColors = colors
	}
	return &settings, nil
}
