package http

import (
	"encoding/json"
	nethttp "net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"

	"wishbook/internal/auth"
	"wishbook/internal/http/handler"
	"wishbook/internal/http/middleware"
)

type RouterDeps struct {
	DB  *gorm.DB
	JWT *auth.JWT

	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	Auth     *handler.AuthHandler
	Me       *handler.MeHandler
	Wishes   *handler.WishHandler
	Generate *handler.GenerateHandler
	Contacts *handler.ContactHandler
	Admin    *handler.AdminHandler
}

func NewRouter(d RouterDeps) nethttp.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(d.CORSAllowedOrigins, d.CORSAllowCredentials))

	r.Get("/health", func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	r.Post("/api/auth/register", d.Auth.Register)
	r.Post("/api/auth/login", d.Auth.Login)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(d.JWT))

		r.Get("/api/me", d.Me.Me)

		r.Post("/api/schedule", d.Wishes.Schedule)
		r.Get("/api/scheduled-wishes", d.Wishes.List)
		r.Delete("/api/scheduled-wishes/{id}", d.Wishes.Delete)
		r.Get("/api/wishes/history", d.Wishes.History)

		r.Post("/api/generate-user-wish", d.Generate.GenerateWish)
		r.Post("/api/generate-image-prompt", d.Generate.GenerateImagePrompt)

		r.Post("/api/contacts", d.Contacts.Create)
		r.Get("/api/contacts", d.Contacts.List)
		r.Delete("/api/contacts/{id}", d.Contacts.Delete)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin(d.DB))

			r.Get("/api/admin/stats", d.Admin.Stats)
			r.Get("/api/admin/analytics", d.Admin.Analytics)
			r.Get("/api/admin/system", d.Admin.System)
		})
	})

	return r
}
