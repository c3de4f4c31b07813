package web

import (
	"net/http"

	"github.com/JonMunkholm/csvtree/internal/logging"
	"github.com/JonMunkholm/csvtree/internal/web/templates"
	"github.com/a-h/templ"
)

// handleIndex renders the project list page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	list, err := s.service.List(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	renderPage(w, r, templates.ProjectList(list))
}

// handleProjectPage renders one project's tree.
func (s *Server) handleProjectPage(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadProject(w, r)
	if !ok {
		return
	}
	renderPage(w, r, templates.ProjectTree(rec))
}

func renderPage(w http.ResponseWriter, r *http.Request, page templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "path", r.URL.Path, "error", err)
	}
}
