package handlers

import "net/http"

// Router wires every handler onto one mux
type Router struct {
	Middleware *Middleware
	Game       *GameHandler
	Stats      *StatsHandler
	Opponents  *OpponentHandler
	Auth       *AuthHandler
	Avatars    *AvatarHandler
	Health     *HealthHandler
	Backup     *BackupHandler
}

// Handler registers the routes and wraps them with request logging
func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	m := rt.Middleware

	// Public routes
	mux.HandleFunc("GET /healthz", rt.Health.Healthz)
	mux.HandleFunc("POST /api/game", rt.Game.CreateGame)
	mux.HandleFunc("GET /api/game", rt.Game.GetGame)
	mux.HandleFunc("POST /api/game/play", rt.Game.Play)
	mux.HandleFunc("GET /api/stats", rt.Stats.GetStats)
	mux.HandleFunc("GET /api/ai-configs", rt.Opponents.ListPublic)
	mux.HandleFunc("GET /api/avatars", rt.Avatars.ListAvatars)
	mux.Handle("GET /avatars/", rt.Avatars.Files())

	// Admin session
	mux.HandleFunc("POST /api/admin/login", m.RateLimit(rt.Auth.Login))
	mux.HandleFunc("POST /api/admin/logout", rt.Auth.Logout)
	mux.HandleFunc("GET /api/admin/session", m.RequireAdmin(rt.Auth.Session))

	// Admin routes
	mux.HandleFunc("POST /api/ai-configs", m.RequireAdmin(rt.Opponents.Create))
	mux.HandleFunc("PUT /api/ai-configs", m.RequireAdmin(rt.Opponents.Update))
	mux.HandleFunc("DELETE /api/ai-configs", m.RequireAdmin(rt.Opponents.Delete))
	mux.HandleFunc("GET /api/ai-configs/admin", m.RequireAdmin(rt.Opponents.ListAdmin))
	mux.HandleFunc("POST /api/ai-configs/admin", m.RequireAdmin(rt.Opponents.Diagnostics))
	mux.HandleFunc("GET /api/admin/backup", m.RequireAdmin(rt.Backup.ExportDatabase))

	return Logging(mux)
}
