package controller

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/crimsonfm/crimson-api/auth"
	"github.com/crimsonfm/crimson-api/store"
	"github.com/google/uuid"
)

// Login kicks off the three-legged handshake: a fresh anti-replay token is
// recorded alongside the callback URL it was issued for, then the browser is
// sent to the upstream authorize endpoint.
func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	redirectURI := auth.CallbackURL(r)
	state := uuid.New().String()
	auth.RecordLoginState(state, redirectURI)

	http.Redirect(w, r, c.Flow.AuthURL(state, redirectURI), http.StatusFound)
}

func redirectWithError(w http.ResponseWriter, r *http.Request, reason string) {
	http.Redirect(w, r, "/?error="+url.QueryEscape(reason), http.StatusFound)
}

// AuthCallback finishes the handshake: exchange the authorization code,
// fetch the account profile, upsert the user record, and establish the
// session. Every failure lands back on the application root with an error
// marker; nothing is persisted mid-exchange.
func (c *Controller) AuthCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	if spotifyError := query.Get("error"); spotifyError != "" {
		log.Printf("spotify authorization rejected: %s", spotifyError)
		redirectWithError(w, r, spotifyError)
		return
	}

	state := query.Get("state")
	pending, ok := auth.ConsumeLoginState(state)
	if !ok {
		log.Printf("unknown login state")
		redirectWithError(w, r, "Unknown login state")
		return
	}

	if query.Get("code") == "" {
		log.Printf("no code in callback")
		redirectWithError(w, r, "No code present in Spotify request")
		return
	}

	token, err := c.Flow.Exchange(ctx, state, r, pending.RedirectURI)
	if err != nil {
		log.Printf("exchange code: %s", err)
		redirectWithError(w, r, "Authentication failed")
		return
	}

	profile, err := c.Flow.Profile(ctx, token)
	if err != nil {
		log.Printf("get profile: %s", err)
		redirectWithError(w, r, "Authentication failed")
		return
	}

	u, err := c.upsertUser(r, token.AccessToken, token.RefreshToken, token.Expiry.UnixMilli(), profile)
	if err != nil {
		log.Printf("upsert user %s: %s", profile.ID, err)
		redirectWithError(w, r, "Authentication failed")
		return
	}

	if err := c.Sessions.SetUserID(w, r, u.ID); err != nil {
		log.Printf("set session: %s", err)
		redirectWithError(w, r, "Authentication failed")
		return
	}

	http.Redirect(w, r, "/?authenticated=true", http.StatusFound)
}

// upsertUser creates the record on first login and refreshes it on
// re-login. Display name and email are set once at creation and never
// overwritten afterwards; tokens and the refreshable profile fields are.
func (c *Controller) upsertUser(r *http.Request, accessToken, refreshToken string, expiresAt int64, profile *auth.Profile) (*store.User, error) {
	ctx := r.Context()

	existing, err := c.Store.GetUserBySpotifyID(ctx, profile.ID)
	if errors.Is(err, store.ErrNotFound) {
		displayName := profile.DisplayName
		if displayName == "" {
			displayName = profile.ID
		}
		created, createErr := c.Store.CreateUser(ctx, store.InsertUser{
			SpotifyID:    profile.ID,
			DisplayName:  displayName,
			Email:        profile.Email,
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresAt:    expiresAt,
			ProfileImage: profile.ImageURL,
			Country:      profile.Country,
			Product:      profile.Product,
		})
		if !errors.Is(createErr, store.ErrDuplicate) {
			return created, createErr
		}
		// A concurrent first login won the insert; fall through to update.
		existing, err = c.Store.GetUserBySpotifyID(ctx, profile.ID)
	}
	if err != nil {
		return nil, err
	}

	return c.Store.UpdateUser(ctx, existing.ID, store.UserUpdate{
		AccessToken:  &accessToken,
		RefreshToken: &refreshToken,
		ExpiresAt:    &expiresAt,
		ProfileImage: &profile.ImageURL,
		Country:      &profile.Country,
		Product:      &profile.Product,
	})
}

type LogoutResponse struct {
	Success bool `json:"success"`
}

func (c *Controller) Logout(w http.ResponseWriter, r *http.Request) {
	if err := c.Sessions.Clear(w, r); err != nil {
		log.Printf("destroy session: %s", err)
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(LogoutResponse{Success: true})
}
