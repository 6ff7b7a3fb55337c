// Opportunistic cache fill from passthrough traffic.
//
// Response shapes based on https://developer.spotify.com/documentation/web-api/reference/
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/crimsonfm/crimson-api/store"
	"github.com/samber/lo"
)

type image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
}

type playlistTracks struct {
	Total int `json:"total"`
}

type playlistItem struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Public        bool           `json:"public"`
	Collaborative bool           `json:"collaborative"`
	Images        []image        `json:"images"`
	Tracks        playlistTracks `json:"tracks"`
}

type playlistPage struct {
	Items []playlistItem `json:"items"`
}

type trackItem struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    json.RawMessage `json:"artists"`
	Album      json.RawMessage `json:"album"`
	DurationMS int             `json:"duration_ms"`
	PreviewURL string          `json:"preview_url"`
	Popularity int             `json:"popularity"`
}

type savedTrackItem struct {
	Track trackItem `json:"track"`
}

type savedTrackPage struct {
	Items []savedTrackItem `json:"items"`
}

// CachePlaylists upserts the user's playlist cache rows from a successful
// /me/playlists passthrough body. The cache is best-effort: failures are
// logged and never affect the relayed response.
func CachePlaylists(ctx context.Context, st store.Store, userID int64, body []byte) {
	var page playlistPage
	if err := json.Unmarshal(body, &page); err != nil {
		log.Printf("decode playlist page for cache: %s", err)
		return
	}

	cached, err := st.GetUserPlaylists(ctx, userID)
	if err != nil {
		log.Printf("read playlist cache: %s", err)
		return
	}

	for _, item := range page.Items {
		if item.ID == "" {
			continue
		}
		imageURL := ""
		if len(item.Images) > 0 {
			imageURL = item.Images[0].URL
		}

		existing, ok := lo.Find(cached, func(p store.Playlist) bool {
			return p.SpotifyID == item.ID
		})
		if ok {
			_, err = st.UpdatePlaylist(ctx, existing.ID, store.PlaylistUpdate{
				Name:          &item.Name,
				Description:   &item.Description,
				Image:         &imageURL,
				TrackCount:    &item.Tracks.Total,
				IsPublic:      &item.Public,
				Collaborative: &item.Collaborative,
			})
		} else {
			_, err = st.CreatePlaylist(ctx, store.InsertPlaylist{
				UserID:        userID,
				SpotifyID:     item.ID,
				Name:          item.Name,
				Description:   item.Description,
				Image:         imageURL,
				TrackCount:    item.Tracks.Total,
				IsPublic:      item.Public,
				Collaborative: item.Collaborative,
			})
		}
		if err != nil {
			log.Printf("cache playlist %s: %s", item.ID, err)
		}
	}
}

// CacheSavedTracks records tracks from a /me/tracks passthrough body, keyed
// by Spotify id for dedup; known tracks are left alone.
func CacheSavedTracks(ctx context.Context, st store.Store, body []byte) {
	var page savedTrackPage
	if err := json.Unmarshal(body, &page); err != nil {
		log.Printf("decode saved tracks for cache: %s", err)
		return
	}

	for _, item := range page.Items {
		track := item.Track
		if track.ID == "" {
			continue
		}
		_, err := st.GetTrack(ctx, track.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("read track cache: %s", err)
			continue
		}
		_, err = st.CreateTrack(ctx, store.InsertTrack{
			SpotifyID:  track.ID,
			Name:       track.Name,
			Artists:    track.Artists,
			Album:      track.Album,
			DurationMS: track.DurationMS,
			PreviewURL: track.PreviewURL,
			Popularity: track.Popularity,
		})
		if err != nil {
			log.Printf("cache track %s: %s", track.ID, err)
		}
	}
}
