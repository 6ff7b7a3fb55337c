package controller

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/crimsonfm/crimson-api/constants"
	"github.com/crimsonfm/crimson-api/requests"
	"github.com/crimsonfm/crimson-api/spotify"
	"github.com/crimsonfm/crimson-api/store"
	"github.com/crimsonfm/crimson-api/util"
)

const proxyPrefix = "/api/spotify"

// SpotifyProxy is the authenticated passthrough: session, user record, and a
// currently-valid token are required before anything goes upstream. Upstream
// status and body are relayed verbatim; only transport-level failures become
// a local 500.
func (c *Controller) SpotifyProxy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := c.Sessions.UserID(r)
	if !ok {
		requests.RespondAuthError(w)
		return
	}

	accessToken, err := c.Tokens.EnsureAccess(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		// Session outlived the record (storage reset).
		requests.RespondWithError(w, http.StatusNotFound, constants.ErrorUserNotFound)
		return
	}
	if errors.Is(err, spotify.ErrRefreshFailed) {
		log.Printf("refresh token for user %d: %s", userID, err)
		requests.RespondWithError(w, http.StatusUnauthorized, constants.ErrorTokenRefresh)
		return
	}
	if err != nil {
		log.Printf("ensure access for user %d: %s", userID, err)
		requests.RespondInternalError(w)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, proxyPrefix)

	var body []byte
	if r.Method != http.MethodGet {
		body, err = io.ReadAll(r.Body)
		if err != nil {
			requests.RespondBadRequest(w)
			return
		}
	}

	resp, err := c.Proxy.Forward(ctx, r.Method, path, r.URL.RawQuery, body, accessToken)
	if err != nil {
		log.Printf("forward %s %s: %s", r.Method, path, err)
		requests.RespondInternalError(w)
		return
	}

	util.EnqueueRequestLog(util.LogEntry{
		Timestamp: time.Now(),
		UserID:    userID,
		Method:    r.Method,
		Endpoint:  r.URL.Path,
	})

	if resp.Success() && r.Method == http.MethodGet {
		switch path {
		case "/me/playlists":
			spotify.CachePlaylists(ctx, c.Store, userID, resp.Body)
		case "/me/tracks":
			spotify.CacheSavedTracks(ctx, c.Store, resp.Body)
		}
	}

	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}
