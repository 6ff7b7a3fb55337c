package controller

import (
	"github.com/crimsonfm/crimson-api/auth"
	"github.com/crimsonfm/crimson-api/session"
	"github.com/crimsonfm/crimson-api/spotify"
	"github.com/crimsonfm/crimson-api/store"
)

// Controller holds every handler dependency explicitly; nothing reaches for
// package-level state.
type Controller struct {
	Store    store.Store
	Sessions *session.Manager
	Tokens   *spotify.TokenManager
	Proxy    *spotify.Proxy
	Flow     auth.Flow
}

func New(st store.Store, sessions *session.Manager, tokens *spotify.TokenManager, proxy *spotify.Proxy, flow auth.Flow) *Controller {
	return &Controller{
		Store:    st,
		Sessions: sessions,
		Tokens:   tokens,
		Proxy:    proxy,
		Flow:     flow,
	}
}
