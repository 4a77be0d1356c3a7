package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"git.home.luguber.info/inful/hugocms/internal/audit"
	"git.home.luguber.info/inful/hugocms/internal/config"
	"git.home.luguber.info/inful/hugocms/internal/content"
	"git.home.luguber.info/inful/hugocms/internal/hugo"
	"git.home.luguber.info/inful/hugocms/internal/logfields"
	"git.home.luguber.info/inful/hugocms/internal/preview"
	"git.home.luguber.info/inful/hugocms/internal/site"
)

// SiteManager is the slice of the site manager the HTTP layer needs.
type SiteManager interface {
	Status() site.Status
	Store() *content.Store
	PublicDir() string
	Sync(ctx context.Context) error
	Build(ctx context.Context) (*hugo.BuildResult, error)
	Publish(ctx context.Context, message string) (bool, error)
	ClearCache(ctx context.Context) error
	Configure(ctx context.Context, repo config.RepositoryConfig) error
}

// AuditLog records and lists editorial actions.
type AuditLog interface {
	Record(ctx context.Context, e audit.Event) error
	Recent(ctx context.Context, limit int) ([]audit.Event, error)
}

// adminHandlers implements the /admin/api endpoints.
type adminHandlers struct {
	manager SiteManager
	auditor AuditLog
}

func (h *adminHandlers) audit(r *http.Request, kind audit.EventType, path, detail string) {
	if h.auditor == nil {
		return
	}
	e := audit.Event{Type: kind, Path: path, RemoteAddr: r.RemoteAddr, Detail: detail}
	if err := h.auditor.Record(r.Context(), e); err != nil {
		slog.Warn("Failed to record audit event", slog.String("event", string(kind)), logfields.Error(err))
	}
}

// rebuild refreshes the rendered site after a content change. A failed build
// does not fail the request; the file is on disk either way.
func (h *adminHandlers) rebuild(ctx context.Context, path string) {
	if _, err := h.manager.Build(ctx); err != nil {
		slog.Warn("Rebuild after content change failed", logfields.File(path), logfields.Error(err))
	}
}

// store fetches the content store, writing a 503 when setup has not finished.
func (h *adminHandlers) store(w http.ResponseWriter) *content.Store {
	s := h.manager.Store()
	if s == nil {
		writeError(w, http.StatusServiceUnavailable, "repository not ready")
	}
	return s
}

func (h *adminHandlers) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Status())
}

// handleSetupGet reports the active repository settings without secrets.
func (h *adminHandlers) handleSetupGet(w http.ResponseWriter, _ *http.Request) {
	st := h.manager.Status()
	writeJSON(w, http.StatusOK, map[string]any{
		"url":       st.RepoURL,
		"branch":    st.Branch,
		"auth_type": st.AuthType,
		"ready":     st.Ready,
	})
}

// handleSetupPost points the CMS at a repository and runs the full setup.
// The new settings live in memory only; they are never persisted, so tokens
// do not end up on disk.
func (h *adminHandlers) handleSetupPost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL      string `json:"url"`
		Branch   string `json:"branch"`
		Token    string `json:"token"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	if req.Branch == "" {
		req.Branch = "main"
	}

	repo := config.RepositoryConfig{URL: req.URL, Branch: req.Branch, Auth: &config.AuthConfig{Type: "none"}}
	switch {
	case req.Token != "":
		repo.Auth = &config.AuthConfig{Type: "token", Token: req.Token}
	case req.Username != "":
		repo.Auth = &config.AuthConfig{Type: "basic", Username: req.Username, Password: req.Password}
	}

	if err := h.manager.Configure(r.Context(), repo); err != nil {
		writeError(w, http.StatusBadGateway, fmt.Sprintf("setup failed: %v", err))
		return
	}
	writeOK(w, "repository configured and site built")
}

func (h *adminHandlers) handleSync(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Sync(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, fmt.Sprintf("sync failed: %v", err))
		return
	}
	writeOK(w, "repository synced")
}

func (h *adminHandlers) handleBuild(w http.ResponseWriter, r *http.Request) {
	res, err := h.manager.Build(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("build failed: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"duration_ms": res.Duration.Milliseconds(),
	})
}

func (h *adminHandlers) handlePublish(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
	}

	pushed, err := h.manager.Publish(r.Context(), req.Message)
	if err != nil {
		writeError(w, http.StatusBadGateway, fmt.Sprintf("publish failed: %v", err))
		return
	}
	if !pushed {
		writeOK(w, "nothing to publish")
		return
	}
	h.audit(r, audit.EventPublish, "", req.Message)
	writeOK(w, "changes published")
}

func (h *adminHandlers) handleClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.ClearCache(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("clear cache failed: %v", err))
		return
	}
	h.audit(r, audit.EventCacheClear, "", "")
	writeOK(w, "cache cleared and site rebuilt")
}

func (h *adminHandlers) handleContentList(w http.ResponseWriter, _ *http.Request) {
	s := h.store(w)
	if s == nil {
		return
	}
	files, err := s.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("list content: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

func (h *adminHandlers) handleContentGet(w http.ResponseWriter, r *http.Request) {
	s := h.store(w)
	if s == nil {
		return
	}
	path := r.PathValue("path")
	doc, err := s.Read(path)
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("read content: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *adminHandlers) handleContentSave(w http.ResponseWriter, r *http.Request) {
	s := h.store(w)
	if s == nil {
		return
	}
	path := r.PathValue("path")

	var doc content.Document
	if err := decodeJSON(r, &doc); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if err := s.Save(path, doc.Fields, doc.Body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("save content: %v", err))
		return
	}
	h.rebuild(r.Context(), path)
	h.audit(r, audit.EventFileSave, path, "")
	writeOK(w, "saved")
}

func (h *adminHandlers) handleContentCreate(w http.ResponseWriter, r *http.Request) {
	s := h.store(w)
	if s == nil {
		return
	}
	path := r.PathValue("path")

	var doc content.Document
	if err := decodeJSON(r, &doc); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	url, err := s.Create(path, doc.Fields, doc.Body)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, content.ErrExists) {
			status = http.StatusConflict
		}
		writeError(w, status, fmt.Sprintf("create content: %v", err))
		return
	}
	h.rebuild(r.Context(), path)
	h.audit(r, audit.EventFileCreate, path, "")
	writeJSON(w, http.StatusCreated, map[string]string{"status": "ok", "url": url})
}

func (h *adminHandlers) handleResolve(w http.ResponseWriter, r *http.Request) {
	s := h.store(w)
	if s == nil {
		return
	}
	url := r.URL.Query().Get("url")
	if url == "" {
		writeError(w, http.StatusBadRequest, "url query parameter is required")
		return
	}
	path, ok := s.ResolveSource(url)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no content source found for %s", url))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": path})
}

func (h *adminHandlers) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	out, err := preview.Render([]byte(req.Content))
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("render preview: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"html": string(out)})
}

func (h *adminHandlers) handleAudit(w http.ResponseWriter, r *http.Request) {
	if h.auditor == nil {
		writeError(w, http.StatusNotFound, "audit log disabled")
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	events, err := h.auditor.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("load audit log: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}
