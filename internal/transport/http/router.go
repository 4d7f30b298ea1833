package http

import (
	"crypto/subtle"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the JSON API and the leaderboard websocket. Admin routes require
// X-Admin-Token when adminToken is non-empty.
func NewRouter(api *API, ws *WSHandler, adminToken string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	r.Route("/api", func(sub chi.Router) {
		sub.Get("/questions", api.GetQuestions)
		sub.Get("/timed/questions", api.TimedQuestions)
		sub.Post("/answers/judge", api.Judge)
		sub.Post("/answers/judge-all", api.JudgeAll)
		sub.Post("/certificates", api.IssueCertificate)
		sub.Get("/certificates/{id}", api.GetCertificate)
		sub.Post("/scores", api.SubmitScore)
		sub.Get("/scores", api.TopScores)

		sub.Group(func(admin chi.Router) {
			admin.Use(requireAdmin(adminToken))
			admin.Post("/admin/cache/reload", api.ReloadCache)
			admin.Post("/admin/cache/clear", api.ClearCache)
		})
	})

	r.Get("/ws/leaderboard", ws.ServeWS)
	return r
}

func requireAdmin(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get("X-Admin-Token")), []byte(token)) != 1 {
				writeError(w, r, http.StatusUnauthorized, "admin token required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
