package controller

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/crimsonfm/crimson-api/requests"
	"github.com/crimsonfm/crimson-api/store"
)

type GetPlaylistsResponse struct {
	Playlists []store.Playlist `json:"playlists"`
}

// UserPlaylists serves the locally cached playlist rows. Upstream remains the
// source of truth; this is what the cache has seen so far.
func (c *Controller) UserPlaylists(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.Sessions.UserID(r)
	if !ok {
		requests.RespondAuthError(w)
		return
	}

	playlists, err := c.Store.GetUserPlaylists(r.Context(), userID)
	if err != nil {
		log.Printf("get cached playlists: %s", err)
		requests.RespondInternalError(w)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(GetPlaylistsResponse{Playlists: playlists})
}
