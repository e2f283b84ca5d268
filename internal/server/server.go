// Package server provides HTTP server initialization and lifecycle management
// for the LifeGraph API.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/scrypster/lifegraph/internal/config"
	"github.com/scrypster/lifegraph/internal/engine"
	"github.com/scrypster/lifegraph/internal/llm"
	"github.com/scrypster/lifegraph/internal/services"
	"github.com/scrypster/lifegraph/internal/storage"
	"github.com/scrypster/lifegraph/pkg/types"
	"github.com/scrypster/lifegraph/web/handlers"
)

// dbGetter is implemented by stores that expose their database connection;
// both backends do. The settings service needs the raw handle.
type dbGetter interface {
	GetDB() *sql.DB
}

// Options carries the optional collaborators of the HTTP server. Zero values
// disable the corresponding feature.
type Options struct {
	// Worker is the async tagging pool; its completions are broadcast over
	// the WebSocket hub.
	Worker *engine.TaggingWorker

	// Generator powers the AI endpoints (parse-contact, person summary).
	Generator llm.TextGenerator
}

// Start initializes and starts the HTTP server, returning the actual address
// being listened on (useful for testing with port 0) and the WebSocket hub.
// The server shuts down gracefully when ctx is cancelled.
func Start(ctx context.Context, cfg *config.Config, store storage.Store, opts Options) (string, *handlers.WebSocketHub, error) {
	mux := http.NewServeMux()

	hub := handlers.NewWebSocketHub()

	api := handlers.NewAPI(store, cfg).WithHub(hub)
	if opts.Worker != nil {
		api.WithWorker(opts.Worker)
		opts.Worker.OnComplete = func(memoryID string, status types.TaggingStatus) {
			hub.Broadcast(handlers.NewTaggingActivity(memoryID, status))
		}
	}
	if opts.Generator != nil {
		api.WithGenerator(opts.Generator)
	}
	if dbStore, ok := store.(dbGetter); ok {
		api.WithSettings(services.NewSettingsService(dbStore.GetDB()))
	}

	// API routes (auth-gated in production mode).
	apiMux := http.NewServeMux()

	apiMux.HandleFunc("/api/people", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			api.ListPeople(w, r)
		case http.MethodPost:
			api.CreatePerson(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/people/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			api.GetPerson(w, r)
		case http.MethodPatch:
			api.UpdatePerson(w, r)
		case http.MethodDelete:
			api.DeletePerson(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("POST /api/people/{id}/summary", api.PersonSummary)
	apiMux.HandleFunc("GET /api/people/{id}/events", api.ListPersonEvents)

	apiMux.HandleFunc("/api/relationships", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			api.ListRelationships(w, r)
		case http.MethodPost:
			api.CreateRelationship(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/relationships/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			api.GetRelationship(w, r)
		case http.MethodDelete:
			api.DeleteRelationship(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	apiMux.HandleFunc("/api/relationship-types", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			api.ListRelationshipTypes(w, r)
		case http.MethodPost:
			api.CreateRelationshipType(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/relationship-types/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			api.GetRelationshipType(w, r)
		case http.MethodPatch:
			api.UpdateRelationshipType(w, r)
		case http.MethodDelete:
			api.DeleteRelationshipType(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	apiMux.HandleFunc("/api/memories", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			api.ListMemories(w, r)
		case http.MethodPost:
			api.CreateMemory(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/memories/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			api.GetMemory(w, r)
		case http.MethodPatch:
			api.UpdateMemory(w, r)
		case http.MethodDelete:
			api.DeleteMemory(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("GET /api/memories/{id}/similar", api.SimilarMemories)

	apiMux.HandleFunc("POST /api/events", api.CreateEvent)
	apiMux.HandleFunc("/api/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			api.GetEvent(w, r)
		case http.MethodPatch:
			api.UpdateEvent(w, r)
		case http.MethodDelete:
			api.DeleteEvent(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	apiMux.HandleFunc("GET /api/graph", api.Graph)
	apiMux.HandleFunc("POST /api/parse-contact", api.ParseContact)
	apiMux.HandleFunc("GET /api/stats", api.GetStats)
	apiMux.HandleFunc("/api/config/user", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			api.GetUserConfig(w, r)
		case http.MethodPost:
			api.PostUserConfig(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("POST /api/import/csv", api.ImportCSV)

	// Health endpoint — no auth required, used by monitoring.
	mux.HandleFunc("/api/health", handlers.Health)

	mux.Handle("/api/", handlers.RequireAuth(apiMux, cfg))

	// WebSocket endpoint — origin validation handles access control.
	mux.Handle("/ws", hub)

	var handler http.Handler = mux
	if cfg.Security.EnableLimiter {
		handler = handlers.RateLimitMiddleware(handler,
			handlers.NewRateLimiter(cfg.Security.RateLimit, cfg.Security.RateBurst))
	}
	handler = handlers.SecurityHeaders(handler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	actualAddr := listener.Addr().String()

	go func() {
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		hub.Stop()
	}()

	return actualAddr, hub, nil
}
