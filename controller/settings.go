package controller

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/crimsonfm/crimson-api/constants"
	"github.com/crimsonfm/crimson-api/requests"
	"github.com/crimsonfm/crimson-api/store"
)

// GetSettings serves the stored record, or the documented defaults when the
// user never saved anything (nothing is persisted by a read).
func (c *Controller) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.Sessions.UserID(r)
	if !ok {
		requests.RespondAuthError(w)
		return
	}

	settings, err := c.Store.GetUserSettings(r.Context(), userID)
	if errors.Is(err, store.ErrNotFound) {
		defaults := store.DefaultSettings(userID)
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(defaults)
		return
	}
	if err != nil {
		log.Printf("get settings: %s", err)
		requests.RespondInternalError(w)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(settings)
}

// SettingsBody is the accepted POST payload. Unknown fields are rejected, so
// a client can't smuggle arbitrary keys into the record.
type SettingsBody struct {
	Theme          *string         `json:"theme"`
	CustomColors   json.RawMessage `json:"customColors"`
	Volume         *int            `json:"volume"`
	RepeatMode     *string         `json:"repeatMode"`
	ShuffleEnabled *bool           `json:"shuffleEnabled"`
}

func (b *SettingsBody) validate() error {
	if b.Theme != nil && *b.Theme == "" {
		return errors.New("theme must not be empty")
	}
	if b.Volume != nil && (*b.Volume < 0 || *b.Volume > 100) {
		return errors.New("volume must be between 0 and 100")
	}
	if b.RepeatMode != nil {
		switch *b.RepeatMode {
		case store.RepeatOff, store.RepeatTrack, store.RepeatContext:
		default:
			return errors.New("repeatMode must be off, track, or context")
		}
	}
	return nil
}

// UpdateSettings validates and upserts; the response always carries the full
// merged record.
func (c *Controller) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.Sessions.UserID(r)
	if !ok {
		requests.RespondAuthError(w)
		return
	}

	var body SettingsBody
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		requests.RespondWithError(w, http.StatusBadRequest, constants.ErrorInvalidSettings)
		return
	}
	if err := body.validate(); err != nil {
		requests.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	settings, err := c.Store.UpdateUserSettings(r.Context(), userID, store.SettingsUpdate{
		Theme:          body.Theme,
		CustomColors:   body.CustomColors,
		Volume:         body.Volume,
		RepeatMode:     body.RepeatMode,
		ShuffleEnabled: body.ShuffleEnabled,
	})
	if err != nil {
		log.Printf("update settings: %s", err)
		requests.RespondInternalError(w)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(settings)
}
