package http

import (
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/chatbridge/internal/gateway/service"
	"github.com/aussiebroadwan/chatbridge/pkg/httpx"
	"github.com/aussiebroadwan/chatbridge/pkg/slogx"

	_ "github.com/aussiebroadwan/chatbridge/api/gateway" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	apiKey httpx.APIKeyConfig
	logger *slog.Logger

	SessionManager *service.SessionManager
	MessageService *service.MessageService
}

func NewRouter(apiKey httpx.APIKeyConfig, logger *slog.Logger) *Router {
	r := &Router{
		Mux:    http.NewServeMux(),
		apiKey: apiKey,
		logger: logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSessions()
	r.registerMessages()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			ChatBridge Gateway API
//	@version		0.1.0
//	@description	Multiplexes long-lived messaging connections behind one HTTP service. Each instance is addressed
//	@description	by a caller-chosen instanceKey: start a session, poll /qr for the pairing code, then send messages
//	@description	and files through the paired connection.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/chatbridge
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						X-API-Key
//	@description				Static gateway API key. Only enforced when the gateway has one configured.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerSessions() {
	sessionHandler := &SessionHandler{SessionManager: r.SessionManager}
	qrHandler := &QRHandler{SessionManager: r.SessionManager}
	logoutHandler := &LogoutHandler{SessionManager: r.SessionManager}

	// GET /start-session - strict rate limit (spawns dials and DB writes)
	r.Mux.Handle("GET /start-session",
		httpx.Chain(sessionHandler,
			httpx.RequireAPIKey(r.apiKey),
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "instanceKey"),
		),
	)

	// GET /qr - lenient rate limit (pairing UIs poll this until scanned)
	r.Mux.Handle("GET /qr",
		httpx.Chain(qrHandler,
			httpx.RequireAPIKey(r.apiKey),
			httpx.RateLimitByIPAndFormField(httpx.LenientLimit, "instanceKey"),
		),
	)

	// GET /logout - strict rate limit (destroys sessions and credentials)
	r.Mux.Handle("GET /logout",
		httpx.Chain(logoutHandler,
			httpx.RequireAPIKey(r.apiKey),
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "instanceKey"),
		),
	)
}

func (r *Router) registerMessages() {
	textHandler := &SendMessageHandler{MessageService: r.MessageService}
	fileURLHandler := &SendFileURLHandler{MessageService: r.MessageService}
	uploadHandler := &SendFileHandler{MessageService: r.MessageService}

	// Send bodies are JSON or multipart, so the instance key rides the query
	// string where the rate limiter can still see it.
	r.Mux.Handle("POST /send-message",
		httpx.Chain(textHandler,
			httpx.RequireAPIKey(r.apiKey),
			httpx.RateLimitByIPAndFormField(httpx.ModerateLimit, "instanceKey"),
		),
	)

	r.Mux.Handle("POST /send-file-url",
		httpx.Chain(fileURLHandler,
			httpx.RequireAPIKey(r.apiKey),
			httpx.RateLimitByIPAndFormField(httpx.ModerateLimit, "instanceKey"),
		),
	)

	r.Mux.Handle("POST /send-file",
		httpx.Chain(uploadHandler,
			httpx.RequireAPIKey(r.apiKey),
			httpx.RateLimitByIPAndFormField(httpx.ModerateLimit, "instanceKey"),
		),
	)
}

func (r *Router) registerSystem() {
	// Health stays open: no API key, no rate limit, so orchestrators can
	// always reach it.
	r.Mux.Handle("GET /health", HealthHandler(r.SessionManager))
}
