package api

import (
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tagrel/tagrel/pkg/errors"
	"github.com/tagrel/tagrel/pkg/tags"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// tagView is the response shape for a tag.
type tagView struct {
	Name        string     `json:"name"`
	Aliases     []string   `json:"aliases"`
	Connections []connView `json:"connections,omitempty"`
}

// connView is the response shape for a connection.
type connView struct {
	Source map[string]any `json:"source"`
	Target map[string]any `json:"target"`
	Type   string         `json:"type"`
	Weight *float64       `json:"weight"`
}

// tagSummary builds a tagView without connections. Callers must hold s.mu.
func tagSummary(t *tags.Tag) tagView {
	return tagView{Name: t.Name(), Aliases: t.Aliases()}
}

// tagDetail builds a tagView including connections. Callers must hold s.mu.
func (s *Server) tagDetail(t *tags.Tag) tagView {
	view := tagSummary(t)
	for _, conn := range t.Connections() {
		view.Connections = append(view.Connections, s.connDetail(conn))
	}
	return view
}

func (s *Server) connDetail(conn *tags.Connection) connView {
	return connView{
		Source: s.nodeRef(conn.Source),
		Target: s.nodeRef(conn.Target),
		Type:   conn.Type.String(),
		Weight: conn.Weight,
	}
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.graph.Tags()
	views := make([]tagView, 0, len(all))
	for _, t := range all {
		views = append(views, tagSummary(t))
	}
	s.writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		GetIfExists bool   `json:"get_if_exists"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		s.writeError(w, errors.New(errors.CodeWrongType, "request must carry a tag name"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.graph.NewTag(req.Name, req.GetIfExists)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, tagSummary(t))
}

func (s *Server) handleGetTag(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.graph.Get(chi.URLParam(r, "name"), false)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.tagDetail(t))
}

func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Deletion is idempotent: a missing tag is already deleted.
	s.graph.Delete(chi.URLParam(r, "name"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddAlias(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Alias string `json:"alias"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Alias == "" {
		s.writeError(w, errors.New(errors.CodeWrongType, "request must carry an alias"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.graph.Alias(chi.URLParam(r, "name"), req.Alias); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveAlias(w http.ResponseWriter, r *http.Request) {
	opts := tags.RemoveAliasOptions{
		ErrorIfLast: r.URL.Query().Get("force") == "",
		RenameTo:    r.URL.Query().Get("rename_to"),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.graph.RemoveAlias(chi.URLParam(r, "alias"), opts); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRenameTag(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		s.writeError(w, errors.New(errors.CodeWrongType, "request must carry a new name"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.graph.Rename(chi.URLParam(r, "name"), req.Name); err != nil {
		s.writeError(w, err)
		return
	}
	t, _ := s.graph.Get(req.Name, false)
	s.writeJSON(w, http.StatusOK, tagSummary(t))
}

// entityView is the response shape for an entity handle.
type entityView struct {
	ID    string   `json:"id"`
	Value any      `json:"value"`
	Tags  []string `json:"tags,omitempty"`
}

func (s *Server) handleRegisterEntity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Value == nil {
		s.writeError(w, errors.New(errors.CodeWrongType, "request must carry an entity value"))
		return
	}
	entity, err := tags.DecodeEntity(req.Value)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeJSON(w, http.StatusCreated, entityView{ID: s.entityID(entity), Value: entity})
}

func (s *Server) handleListEntities(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tagged := s.graph.TaggedEntities()
	views := make([]entityView, 0, len(tagged))
	for _, e := range tagged {
		views = append(views, s.entityDetail(e))
	}
	s.writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetEntity(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entity, err := s.lookupEntity(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.entityDetail(entity))
}

func (s *Server) handleDisconnectEntity(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entity, err := s.lookupEntity(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.graph.DisconnectEntity(entity)
	w.WriteHeader(http.StatusNoContent)
}

// entityDetail builds an entityView with its tag names. Callers must hold s.mu.
func (s *Server) entityDetail(entity any) entityView {
	view := entityView{ID: s.entityID(entity), Value: entity}
	for _, conn := range s.graph.EntityConnections(entity) {
		view.Tags = append(view.Tags, conn.Target.(*tags.Tag).Name())
	}
	return view
}

// lookupEntity resolves an entity handle. Callers must hold s.mu.
func (s *Server) lookupEntity(id string) (any, error) {
	entity, ok := s.entityByID[id]
	if !ok {
		return nil, errors.New(errors.CodeMissing, "entity %s not found", id)
	}
	return entity, nil
}

// connRequest addresses a connection between a tag and either another tag or
// a registered entity.
type connRequest struct {
	Tag      string   `json:"tag"`
	TagTo    string   `json:"to_tag,omitempty"`
	EntityID string   `json:"entity_id,omitempty"`
	Type     string   `json:"type,omitempty"`
	Weight   *float64 `json:"weight,omitempty"`
}

// resolveConnRequest resolves the request endpoints. Callers must hold s.mu.
func (s *Server) resolveConnRequest(req connRequest) (*tags.Tag, any, tags.ConnType, error) {
	t, err := s.graph.Get(req.Tag, false)
	if err != nil {
		return nil, nil, 0, err
	}

	var target any
	switch {
	case req.TagTo != "":
		target, err = s.graph.Get(req.TagTo, false)
	case req.EntityID != "":
		target, err = s.lookupEntity(req.EntityID)
	default:
		err = errors.New(errors.CodeWrongType, "request must carry to_tag or entity_id")
	}
	if err != nil {
		return nil, nil, 0, err
	}

	var typ tags.ConnType
	if req.Type != "" {
		typ, err = tags.ParseConnType(req.Type)
		if err != nil {
			return nil, nil, 0, err
		}
	}
	return t, target, typ, nil
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req connRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.New(errors.CodeWrongType, "malformed connection request"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t, target, typ, err := s.resolveConnRequest(req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	conn, err := s.graph.Connect(t, target, typ, req.Weight)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, s.connDetail(conn))
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	var req connRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.New(errors.CodeWrongType, "malformed connection request"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t, target, _, err := s.resolveConnRequest(req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.graph.Disconnect(t, target)
	w.WriteHeader(http.StatusNoContent)
}

// pathNode resolves a path endpoint from query syntax: a plain tag name, or
// "entity:<id>" for a registered entity. Callers must hold s.mu.
func (s *Server) pathNode(ref string) (any, error) {
	if id, ok := strings.CutPrefix(ref, "entity:"); ok {
		return s.lookupEntity(id)
	}
	return ref, nil
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	fromRef := r.URL.Query().Get("from")
	toRef := r.URL.Query().Get("to")
	if fromRef == "" || toRef == "" {
		s.writeError(w, errors.New(errors.CodeWrongType, "from and to are required"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	from, err := s.pathNode(fromRef)
	if err != nil {
		s.writeError(w, err)
		return
	}
	to, err := s.pathNode(toRef)
	if err != nil {
		s.writeError(w, err)
		return
	}

	path := s.graph.Path(from, to)
	nodes := make([]map[string]any, 0, len(path))
	for _, n := range path {
		nodes = append(nodes, s.nodeRef(n))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"nodes":    nodes,
		"distance": len(path) - 1,
	})
}

// parseDirection converts an optional direction query parameter.
func parseDirection(r *http.Request) (tags.ConnType, error) {
	raw := r.URL.Query().Get("direction")
	if raw == "" {
		return 0, nil
	}
	return tags.ParseConnType(raw)
}

func (s *Server) handleSearchEntities(w http.ResponseWriter, r *http.Request) {
	tagName := r.URL.Query().Get("tag")
	if tagName == "" {
		s.writeError(w, errors.New(errors.CodeWrongType, "tag is required"))
		return
	}
	direction, err := parseDirection(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	found, err := s.graph.SearchEntitiesByTag(tagName, direction)
	if err != nil {
		s.writeError(w, err)
		return
	}
	views := make([]entityView, 0, len(found))
	for _, e := range found {
		views = append(views, entityView{ID: s.entityID(e), Value: e})
	}
	s.writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleSearchTags(w http.ResponseWriter, r *http.Request) {
	entityID := r.URL.Query().Get("entity")
	if entityID == "" {
		s.writeError(w, errors.New(errors.CodeWrongType, "entity is required"))
		return
	}
	direction, err := parseDirection(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	// An optional regexp narrows results by tag name.
	var query any
	if pattern := r.URL.Query().Get("query"); pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			s.writeError(w, errors.Wrap(errors.CodeWrongType, err, "invalid query pattern"))
			return
		}
		query = re
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entity, err := s.lookupEntity(entityID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	found, err := s.graph.SearchTagsOfEntity(entity, query, direction)
	if err != nil {
		s.writeError(w, err)
		return
	}
	names := make([]string, 0, len(found))
	for _, t := range found {
		names = append(names, t.Name())
	}
	s.writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	text, err := s.graph.SaveJSON()
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(text))
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.CodeFormat, err, "reading request body"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	loaded, err := s.graph.LoadJSON(string(body), true, r.URL.Query().Get("skip_bad_conns") != "")
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"loaded": len(loaded)})
}
