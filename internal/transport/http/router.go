package http

import (
	"net/http"
	"time"

	"github.com/cwrk-planet/chat-service/internal/security"
	httpmw "github.com/cwrk-planet/chat-service/internal/transport/http/middleware"
	"github.com/cwrk-planet/chat-service/internal/transport/ws"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterConfig struct {
	AllowedOrigins []string
	Verifier       *security.TokenVerifier // nil — доверяем X-User-ID
}

func NewRouter(h *Handler, wsServer *ws.Server, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewareChi.RequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(middlewareChi.Recoverer)
	r.Use(middlewareChi.Compress(5))
	r.Use(httpmw.RequestIDMiddleware)
	r.Use(httpmw.LoggingMiddleware)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-User-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// WS endpoint: аутентификация через query (access_token, user_id)
	r.Get("/ws/rooms/{id}", wsServer.HandleWS)

	// регистрация — без Bearer
	r.Post("/users", h.RegisterUser)

	r.Group(func(pr chi.Router) {
		pr.Use(httpmw.AuthMiddleware(cfg.Verifier))
		pr.Use(middlewareChi.Timeout(30 * time.Second))

		pr.Get("/users/me", h.Me)

		pr.Route("/rooms", func(rm chi.Router) {
			rm.Post("/", h.CreateRoom)
			rm.Get("/", h.ListRooms)
			rm.Get("/all", h.ListAllRooms)
			rm.Get("/unread", h.ListUnread)
			rm.Get("/first", h.FirstRoom)

			rm.Route("/{id}", func(rr chi.Router) {
				rr.Get("/", h.GetRoom)
				rr.Put("/", h.UpdateRoom)
				rr.Post("/toggle", h.ToggleMembership)
				rr.Get("/membership", h.GetMembership)
				rr.Post("/read", h.MarkRead)
				rr.Get("/messages", h.ListMessages)
				rr.Post("/messages", h.CreateMessage)
			})
		})

		pr.Route("/messages", func(ms chi.Router) {
			ms.Post("/validate", h.ValidateMessage)

			ms.Route("/{id}", func(mr chi.Router) {
				mr.Get("/", h.GetMessage)
				mr.Delete("/", h.DeleteMessage)
				mr.Post("/replies", h.CreateReply)
			})
		})

		pr.Delete("/replies/{id}", h.DeleteReply)
	})

	// health
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
