// Package api exposes a relational tagging graph over HTTP.
//
// The server owns one graph guarded by a mutex, so handlers can mutate it
// from concurrent requests. Entities are opaque JSON values registered
// through the API; each gets a UUID handle that clients use to reference it
// in later calls, since entity values themselves are not addressable in a
// URL.
package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/tagrel/tagrel/pkg/errors"
	"github.com/tagrel/tagrel/pkg/tags"
)

// Server serves the graph API.
type Server struct {
	mu     sync.Mutex
	graph  *tags.Graph
	logger *log.Logger
	router chi.Router

	// Entity handle registry: UUID <-> entity value, both directions.
	entityByID map[string]any
	idByEntity map[any]string
}

// NewServer creates a server around an existing graph.
func NewServer(graph *tags.Graph, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		graph:      graph,
		logger:     logger,
		entityByID: make(map[string]any),
		idByEntity: make(map[any]string),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)

	r.Route("/tags", func(r chi.Router) {
		r.Get("/", s.handleListTags)
		r.Post("/", s.handleCreateTag)
		r.Get("/{name}", s.handleGetTag)
		r.Delete("/{name}", s.handleDeleteTag)
		r.Post("/{name}/aliases", s.handleAddAlias)
		r.Post("/{name}/rename", s.handleRenameTag)
	})
	r.Delete("/aliases/{alias}", s.handleRemoveAlias)

	r.Route("/entities", func(r chi.Router) {
		r.Get("/", s.handleListEntities)
		r.Post("/", s.handleRegisterEntity)
		r.Get("/{id}", s.handleGetEntity)
		r.Delete("/{id}", s.handleDisconnectEntity)
	})

	r.Post("/connections", s.handleConnect)
	r.Delete("/connections", s.handleDisconnect)

	r.Get("/graph/path", s.handlePath)
	r.Get("/search/entities", s.handleSearchEntities)
	r.Get("/search/tags", s.handleSearchTags)

	r.Get("/export", s.handleExport)
	r.Post("/import", s.handleImport)

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// writeJSON writes a JSON response with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", "err", err)
	}
}

// writeError maps an error code to an HTTP status and writes the error body.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.CodeMissing:
		status = http.StatusNotFound
	case errors.CodeWrongType, errors.CodeFormat:
		status = http.StatusBadRequest
	case errors.CodeCollision, errors.CodeDeleteDanger:
		status = http.StatusConflict
	}
	s.writeJSON(w, status, map[string]string{
		"code":  string(errors.GetCode(err)),
		"error": err.Error(),
	})
}

// entityID returns the handle for an entity, minting one on first use.
// Callers must hold s.mu.
func (s *Server) entityID(entity any) string {
	if id, ok := s.idByEntity[entity]; ok {
		return id
	}
	id := uuid.NewString()
	s.idByEntity[entity] = id
	s.entityByID[id] = entity
	return id
}

// nodeRef serializes a path or search node for a response: tags by name,
// entities by handle and value. Callers must hold s.mu.
func (s *Server) nodeRef(node any) map[string]any {
	if t, ok := node.(*tags.Tag); ok {
		return map[string]any{"tag": t.Name()}
	}
	return map[string]any{"entity_id": s.entityID(node), "value": node}
}
