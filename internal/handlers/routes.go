package handlers

import (
	"net/http"

	"hanzidrill/internal/security"
)

// Routes bundles the handlers mounted under /api
type Routes struct {
	Middleware  *Middleware
	LoginLimit  *security.RateLimiter
	Auth        *AuthHandler
	Words       *WordHandler
	Settings    *SettingsHandler
	Review      *ReviewHandler
	StaticFiles string // served under /static/ when set
}

// Register mounts every route on mux
func (rt Routes) Register(mux *http.ServeMux) {
	auth := rt.Middleware.RequireAuth

	if rt.StaticFiles != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(rt.StaticFiles))))
	}

	// Accounts
	mux.HandleFunc("POST /api/register", RateLimit(rt.LoginLimit, rt.Auth.Register))
	mux.HandleFunc("POST /api/login", RateLimit(rt.LoginLimit, rt.Auth.Login))
	mux.HandleFunc("GET /api/me", auth(rt.Auth.Me))

	// Settings
	mux.HandleFunc("GET /api/settings", auth(rt.Settings.GetSettings))
	mux.HandleFunc("PUT /api/settings", auth(rt.Settings.UpdateSettings))

	// Word bank
	mux.HandleFunc("GET /api/words", auth(rt.Words.ListWords))
	mux.HandleFunc("POST /api/words", auth(rt.Words.AddWord))
	mux.HandleFunc("GET /api/words/due", auth(rt.Words.DueCount))
	mux.HandleFunc("GET /api/words/export", auth(rt.Words.Export))
	mux.HandleFunc("POST /api/words/import", auth(rt.Words.Import))
	mux.HandleFunc("DELETE /api/words/{id}", auth(rt.Words.DeleteWord))

	// Review sessions
	mux.HandleFunc("POST /api/review/start", auth(rt.Review.Start))
	mux.HandleFunc("GET /api/review", auth(rt.Review.Current))
	mux.HandleFunc("POST /api/review/answer", auth(rt.Review.Answer))
	mux.HandleFunc("POST /api/review/transcript", auth(rt.Review.Transcript))
	mux.HandleFunc("POST /api/review/idk", auth(rt.Review.Idk))
	mux.HandleFunc("POST /api/review/stroke", auth(rt.Review.Stroke))
	mux.HandleFunc("POST /api/review/flashcard", auth(rt.Review.Flashcard))
	mux.HandleFunc("POST /api/review/abandon", auth(rt.Review.Abandon))
	mux.HandleFunc("GET /api/review/history", auth(rt.Review.History))
}
