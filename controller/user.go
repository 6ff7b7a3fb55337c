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

// CurrentUserResponse is the profile projection served to the front end;
// credentials never appear in it.
type CurrentUserResponse struct {
	ID           int64  `json:"id"`
	DisplayName  string `json:"displayName"`
	Email        string `json:"email,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
	Country      string `json:"country,omitempty"`
	Product      string `json:"product,omitempty"`
}

func (c *Controller) CurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.Sessions.UserID(r)
	if !ok {
		requests.RespondAuthError(w)
		return
	}

	u, err := c.Store.GetUser(r.Context(), userID)
	if errors.Is(err, store.ErrNotFound) {
		requests.RespondWithError(w, http.StatusNotFound, constants.ErrorUserNotFound)
		return
	}
	if err != nil {
		log.Printf("get current user: %s", err)
		requests.RespondInternalError(w)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(CurrentUserResponse{
		ID:           u.ID,
		DisplayName:  u.DisplayName,
		Email:        u.Email,
		ProfileImage: u.ProfileImage,
		Country:      u.Country,
		Product:      u.Product,
	})
}
