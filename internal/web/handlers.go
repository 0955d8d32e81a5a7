package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/penyaskito/dashboard-initiative/internal/core"
)

// ProvenanceResponse describes what earlier imports left behind.
type ProvenanceResponse struct {
	Tracked int            `json:"tracked"`
	ByType  map[string]int `json:"by_type"`
	Run     core.RunStatus `json:"run"`
	Warning string         `json:"warning,omitempty"`
}

// PathResponse is the alias of one source row.
type PathResponse struct {
	Langcode string `json:"langcode"`
	Kind     string `json:"kind"`
	ID       string `json:"id"`
	Slug     string `json:"slug"`
	Alias    string `json:"alias"`
}

// runContext detaches a run from the client connection so a dropped request
// cannot leave an import half done, while keeping the request id for logs.
func (s *Server) runContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(r.Context()), s.cfg.Import.Timeout)
}

// handleHealth reports liveness and the run in progress.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status": "ok",
		"run":    s.service.RunStatus(),
	})
}

// handleImport imports every configured target.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.runContext(r)
	defer cancel()

	result, err := s.service.ImportContent(ctx)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}

// handleImportOne imports a single entity type and bundle.
func (s *Server) handleImportOne(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "entityType")
	bundle := chi.URLParam(r, "bundle")
	if entityType == "" || bundle == "" {
		writeError(w, r, http.StatusBadRequest, "missing entity type or bundle")
		return
	}

	ctx, cancel := s.runContext(r)
	defer cancel()

	result, err := s.service.ImportOne(ctx, entityType, core.Kind(bundle))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}

// handleDeleteImported deletes every tracked entity.
func (s *Server) handleDeleteImported(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.runContext(r)
	defer cancel()

	result, err := s.service.DeleteImportedContent(ctx)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}

// handleProvenance returns tracked entity counts.
func (s *Server) handleProvenance(w http.ResponseWriter, r *http.Request) {
	counts, err := s.service.TrackedCounts(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := ProvenanceResponse{ByType: counts, Run: s.service.RunStatus()}
	for _, n := range counts {
		resp.Tracked += n
	}
	if resp.Tracked > 0 {
		resp.Warning = "content from an earlier import is still present; importing again creates duplicates"
	}

	writeJSON(w, r, http.StatusOK, resp)
}

// handleNodePath looks up the alias of a source row.
func (s *Server) handleNodePath(w http.ResponseWriter, r *http.Request) {
	langcode := chi.URLParam(r, "langcode")
	kind := chi.URLParam(r, "kind")
	id := chi.URLParam(r, "id")

	slug, ok, err := s.service.ResolvePath(langcode, core.Kind(kind), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, http.StatusNotFound, "no path recorded for "+langcode+"/"+kind+"/"+id)
		return
	}

	writeJSON(w, r, http.StatusOK, PathResponse{
		Langcode: langcode,
		Kind:     kind,
		ID:       id,
		Slug:     slug,
		Alias:    "/" + slug,
	})
}
