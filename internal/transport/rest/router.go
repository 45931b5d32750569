package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"evalforge/internal/config"
	"evalforge/internal/service"
	"evalforge/internal/transport/rest/handler"
	"evalforge/internal/transport/rest/middleware"
	"evalforge/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	Config            config.HTTPConfig
	Logger            *zap.Logger
	AuthService       *service.AuthService
	TemplateService   *service.TemplateService
	EditorService     *service.EditorService
	SuggestionService *service.SuggestionService
	ResponseService   *service.ResponseService
	ReportService     *service.ReportService
	WSHub             *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService, c.Logger)
	templateHandler := handler.NewTemplateHandler(c.TemplateService, c.ResponseService, c.Logger)
	editorHandler := handler.NewEditorHandler(c.EditorService, c.Logger)
	suggestionHandler := handler.NewSuggestionHandler(c.SuggestionService, c.TemplateService, c.EditorService, c.Logger)
	responseHandler := handler.NewResponseHandler(c.TemplateService, c.ResponseService, c.Logger)
	reportHandler := handler.NewReportHandler(c.ReportService, c.Logger)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.EditorService, c.Logger)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.Config))
	r.Use(middleware.AccessLog(c.Logger))

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/forms/{templateId}", responseHandler.GetForm).Methods("GET", "OPTIONS")
	v1.HandleFunc("/templates/{templateId}/responses", responseHandler.Submit).Methods("POST", "OPTIONS")

	// WebSocket routes (public with token in query param)
	v1.HandleFunc("/ws/editor/{sessionId}", wsHandler.EditorWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Host routes (require host auth)
	hostRoutes := v1.NewRoute().Subrouter()
	hostRoutes.Use(authMW.RequireHost)

	hostRoutes.HandleFunc("/templates", templateHandler.Create).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/templates", templateHandler.List).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/templates/{templateId}", templateHandler.Get).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/templates/{templateId}", templateHandler.Update).Methods("PUT", "OPTIONS")
	hostRoutes.HandleFunc("/templates/{templateId}", templateHandler.Delete).Methods("DELETE", "OPTIONS")
	hostRoutes.HandleFunc("/templates/{templateId}/report", reportHandler.Get).Methods("GET", "OPTIONS")

	// Editor session routes
	hostRoutes.HandleFunc("/editor/sessions", editorHandler.Open).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/editor/sessions", editorHandler.List).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/editor/sessions/{sessionId}", editorHandler.Get).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/editor/sessions/{sessionId}", editorHandler.Close).Methods("DELETE", "OPTIONS")
	hostRoutes.HandleFunc("/editor/sessions/{sessionId}/items", editorHandler.AddItem).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/editor/sessions/{sessionId}/items/{itemId}", editorHandler.UpdateItem).Methods("PATCH", "OPTIONS")
	hostRoutes.HandleFunc("/editor/sessions/{sessionId}/items/{itemId}", editorHandler.DeleteItem).Methods("DELETE", "OPTIONS")
	hostRoutes.HandleFunc("/editor/sessions/{sessionId}/move", editorHandler.MoveItem).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/editor/sessions/{sessionId}/metadata", editorHandler.UpdateMetadata).Methods("PATCH", "OPTIONS")
	hostRoutes.HandleFunc("/editor/sessions/{sessionId}/select", editorHandler.Select).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/editor/sessions/{sessionId}/drag/start", editorHandler.DragStart).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/editor/sessions/{sessionId}/drag/drop", editorHandler.Drop).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/editor/sessions/{sessionId}/drag/cancel", editorHandler.DragCancel).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/editor/sessions/{sessionId}/import", editorHandler.Import).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/editor/sessions/{sessionId}/save", editorHandler.Save).Methods("POST", "OPTIONS")

	// AI suggestion routes
	hostRoutes.HandleFunc("/ai/templates", suggestionHandler.SuggestTemplate).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/ai/formulas", suggestionHandler.SuggestFormula).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(cfg config.HTTPConfig) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", cfg.AllowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", cfg.AllowedMethods)
			w.Header().Set("Access-Control-Allow-Headers", cfg.AllowedHeaders)

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
