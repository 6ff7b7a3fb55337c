package app

import "github.com/gorilla/mux"

func (a *App) initRouter() {
	a.Router = mux.NewRouter()

	// health
	a.Router.HandleFunc("/health", a.Controller.Health).Methods("GET", "OPTIONS")
	a.Router.HandleFunc("/version", a.Controller.GetVersion).Methods("GET", "OPTIONS")

	a.Router.HandleFunc("/api/auth/login", a.Controller.Login).Methods("GET", "OPTIONS")
	a.Router.HandleFunc("/api/auth/callback", a.Controller.AuthCallback).Methods("GET", "OPTIONS")
	a.Router.HandleFunc("/api/auth/logout", a.Controller.Logout).Methods("POST", "OPTIONS")

	a.Router.HandleFunc("/api/user/me", a.Controller.CurrentUser).Methods("GET", "OPTIONS")

	a.Router.HandleFunc("/api/settings", a.Controller.GetSettings).Methods("GET", "OPTIONS")
	a.Router.HandleFunc("/api/settings", a.Controller.UpdateSettings).Methods("POST", "OPTIONS")

	a.Router.HandleFunc("/api/playlists", a.Controller.UserPlaylists).Methods("GET", "OPTIONS")

	// everything under /api/spotify/ is forwarded upstream as-is
	a.Router.PathPrefix("/api/spotify/").HandlerFunc(a.Controller.SpotifyProxy).
		Methods("GET", "POST", "PUT", "DELETE", "OPTIONS")
}
