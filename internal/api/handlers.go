package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/jcb91/doorstop/internal/document"
	"github.com/jcb91/doorstop/internal/item"
	"github.com/jcb91/doorstop/internal/publish"
	"github.com/jcb91/doorstop/internal/tree"
)

type documentInfo struct {
	Prefix string `json:"prefix"`
	Parent string `json:"parent,omitempty"`
	Path   string `json:"path"`
	Items  int    `json:"items"`
}

type itemInfo struct {
	ID        string   `json:"id"`
	Document  string   `json:"document"`
	Number    int      `json:"number"`
	Path      string   `json:"path"`
	Active    bool     `json:"active"`
	Derived   bool     `json:"derived"`
	Normative bool     `json:"normative"`
	Level     string   `json:"level"`
	Text      string   `json:"text"`
	Links     []string `json:"links"`
}

func docJSON(doc *document.Document) (documentInfo, error) {
	items, err := doc.Items()
	if err != nil {
		return documentInfo{}, err
	}
	return documentInfo{
		Prefix: doc.Prefix(),
		Parent: doc.Parent(),
		Path:   doc.Path(),
		Items:  len(items),
	}, nil
}

func itemJSON(it *item.Item) itemInfo {
	attrs := it.Attributes()
	return itemInfo{
		ID:        it.ID(),
		Document:  it.Prefix(),
		Number:    it.Number(),
		Path:      it.Path(),
		Active:    attrs.Active,
		Derived:   attrs.Derived,
		Normative: attrs.Normative,
		Level:     attrs.Level,
		Text:      attrs.Text,
		Links:     attrs.Links,
	}
}

// handleTree summarizes the whole hierarchy.
func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	docs := s.tree.Documents()
	infos := make([]documentInfo, 0, len(docs))
	for _, doc := range docs {
		info, err := docJSON(doc)
		if err != nil {
			jsonError(w, "failed to read document: "+err.Error(), http.StatusInternalServerError)
			return
		}
		infos = append(infos, info)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tree":      s.tree.String(),
		"documents": infos,
	})
}

// handleListDocuments lists every document in pre-order.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs := s.tree.Documents()
	infos := make([]documentInfo, 0, len(docs))
	for _, doc := range docs {
		info, err := docJSON(doc)
		if err != nil {
			jsonError(w, "failed to read document: "+err.Error(), http.StatusInternalServerError)
			return
		}
		infos = append(infos, info)
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": infos})
}

// handleCreateDocument creates a document on disk and places it in the
// tree. The path is resolved relative to the tree root; digits of zero
// takes the configured default.
func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prefix string `json:"prefix"`
		Path   string `json:"path"`
		Parent string `json:"parent"`
		Digits int    `json:"digits"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Prefix == "" || req.Path == "" {
		jsonError(w, "prefix and path are required", http.StatusBadRequest)
		return
	}
	if req.Digits == 0 {
		req.Digits = s.cfg.Digits
	}

	path := req.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.tree.Root().Document.Root(), path)
	}

	doc, err := s.tree.CreateDocument(path, req.Prefix, req.Parent, req.Digits)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, tree.ErrDuplicatePrefix):
			status = http.StatusConflict
		case errors.Is(err, tree.ErrNoParent):
			status = http.StatusNotFound
		}
		jsonError(w, err.Error(), status)
		return
	}

	info, err := docJSON(doc)
	if err != nil {
		jsonError(w, "failed to read document: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// handleGetDocument returns one document plus its item IDs.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	prefix := chi.URLParam(r, "prefix")
	doc := s.tree.FindDocument(prefix)
	if doc == nil {
		jsonError(w, "no matching document prefix: "+prefix, http.StatusNotFound)
		return
	}
	items, err := doc.Items()
	if err != nil {
		jsonError(w, "failed to read document: "+err.Error(), http.StatusInternalServerError)
		return
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"prefix": doc.Prefix(),
		"parent": doc.Parent(),
		"path":   doc.Path(),
		"items":  ids,
	})
}

// handleListItems returns the full items of one document.
func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	prefix := chi.URLParam(r, "prefix")
	doc := s.tree.FindDocument(prefix)
	if doc == nil {
		jsonError(w, "no matching document prefix: "+prefix, http.StatusNotFound)
		return
	}
	items, err := doc.Items()
	if err != nil {
		jsonError(w, "failed to read document: "+err.Error(), http.StatusInternalServerError)
		return
	}
	infos := make([]itemInfo, 0, len(items))
	for _, it := range items {
		infos = append(infos, itemJSON(it))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": infos})
}

// handleGetItem resolves one item by composite ID.
func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "itemID")
	it, err := s.tree.ResolveItem(id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, item.ErrMalformedID) {
			status = http.StatusBadRequest
		}
		jsonError(w, err.Error(), status)
		return
	}
	if it == nil {
		jsonError(w, "no matching item: "+id, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, itemJSON(it))
}

// handlePutLink links a child item to a parent item.
func (s *Server) handlePutLink(w http.ResponseWriter, r *http.Request) {
	childID := chi.URLParam(r, "childID")
	parentID := chi.URLParam(r, "parentID")

	child, parent, err := s.tree.Link(childID, parentID)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, item.ErrMalformedID):
			status = http.StatusBadRequest
		case errors.Is(err, tree.ErrNoMatchingChild), errors.Is(err, tree.ErrNoMatchingParent):
			status = http.StatusNotFound
		}
		jsonError(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"child":  itemJSON(child),
		"parent": itemJSON(parent),
	})
}

// handlePublished renders a document in the requested format.
func (s *Server) handlePublished(w http.ResponseWriter, r *http.Request) {
	prefix := chi.URLParam(r, "prefix")
	doc := s.tree.FindDocument(prefix)
	if doc == nil {
		jsonError(w, "no matching document prefix: "+prefix, http.StatusNotFound)
		return
	}

	name := r.URL.Query().Get("format")
	if name == "" {
		name = s.cfg.PublishFormat
	}
	format, err := publish.ParseFormat(name)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := publish.Document(&buf, doc, format); err != nil {
		jsonError(w, "publish failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	switch format {
	case publish.FormatHTML:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.Write(buf.Bytes())
}
