package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/crimsonfm/crimson-api/config"
	spotifyV2 "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

// Scopes is the fixed capability set requested on login: playback state,
// playlists, library, and streaming.
var Scopes = []string{
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopeUserReadEmail,
	spotifyauth.ScopeUserReadPlaybackState,
	spotifyauth.ScopeUserModifyPlaybackState,
	spotifyauth.ScopeUserReadCurrentlyPlaying,
	spotifyauth.ScopeUserReadRecentlyPlayed,
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopePlaylistReadCollaborative,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistModifyPrivate,
	spotifyauth.ScopeUserLibraryRead,
	spotifyauth.ScopeUserLibraryModify,
	spotifyauth.ScopeStreaming,
}

// Profile is the subset of the Spotify account profile this service stores.
type Profile struct {
	ID          string
	DisplayName string
	Email       string
	ImageURL    string
	Country     string
	Product     string
}

// Flow drives the upstream half of the authorization-code handshake. The
// controller depends on this interface so tests can run the callback against
// a fake upstream.
type Flow interface {
	AuthURL(state string, redirectURI string) string
	Exchange(ctx context.Context, state string, r *http.Request, redirectURI string) (*oauth2.Token, error)
	Profile(ctx context.Context, token *oauth2.Token) (*Profile, error)
}

// SpotifyFlow implements Flow against accounts.spotify.com / api.spotify.com.
type SpotifyFlow struct{}

var _ Flow = (*SpotifyFlow)(nil)

func NewSpotifyFlow() *SpotifyFlow {
	return &SpotifyFlow{}
}

// The authenticator is rebuilt per call because the redirect URL can differ
// per request when no fixed callback is configured.
func (f *SpotifyFlow) authenticator(redirectURI string) *spotifyauth.Authenticator {
	return spotifyauth.New(
		spotifyauth.WithClientID(config.GetSpotifyClientID()),
		spotifyauth.WithClientSecret(config.GetSpotifyClientSecret()),
		spotifyauth.WithRedirectURL(redirectURI),
		spotifyauth.WithScopes(Scopes...),
	)
}

func (f *SpotifyFlow) AuthURL(state string, redirectURI string) string {
	return f.authenticator(redirectURI).AuthURL(state)
}

func (f *SpotifyFlow) Exchange(ctx context.Context, state string, r *http.Request, redirectURI string) (*oauth2.Token, error) {
	token, err := f.authenticator(redirectURI).Token(ctx, state, r)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return token, nil
}

func (f *SpotifyFlow) Profile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	authenticator := f.authenticator("")
	client := spotifyV2.New(authenticator.Client(ctx, token))

	u, err := client.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("get spotify profile: %w", err)
	}

	var image spotifyV2.Image
	for i := range u.Images {
		if image.Height == 0 || u.Images[i].Height < image.Height {
			image = u.Images[i]
		}
	}

	return &Profile{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		ImageURL:    image.URL,
		Country:     u.Country,
		Product:     u.Product,
	}, nil
}

// CallbackURL resolves the OAuth callback for this request: a configured
// SPOTIFY_REDIRECT_URI always wins, otherwise it is derived from the
// forwarded-protocol and host headers.
func CallbackURL(r *http.Request) string {
	if fixed := config.GetSpotifyRedirect(); fixed != "" {
		return fixed
	}
	proto := r.Header.Get("X-Forwarded-Proto")
	if proto == "" {
		proto = "http"
		if r.TLS != nil {
			proto = "https"
		}
	}
	return fmt.Sprintf("%s://%s/api/auth/callback", proto, r.Host)
}
