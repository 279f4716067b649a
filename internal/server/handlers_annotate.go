package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cryptoresearch/labsite/internal/annotate"
	"github.com/cryptoresearch/labsite/internal/biblio"
	"github.com/cryptoresearch/labsite/internal/doctree"
	"github.com/cryptoresearch/labsite/internal/dom"
	"github.com/cryptoresearch/labsite/internal/outline"
	"github.com/cryptoresearch/labsite/internal/parser"
)

type annotateResponse struct {
	Applied      bool                 `json:"applied"`
	Outline      *doctree.Outline     `json:"outline"`
	TOC          outline.TOC          `json:"toc"`
	Bibliography *biblio.Bibliography `json:"bibliography"`
	Warnings     []string             `json:"warnings"`
	Errors       []string             `json:"errors"`
	HTML         string               `json:"html,omitempty"`
}

// handleAnnotate numbers an uploaded document. The body is the raw source;
// the filename query parameter picks the parser and defaults to HTML.
// Front matter references extend the site bibliography.
func (s *Server) handleAnnotate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			jsonError(w, fmt.Sprintf("document exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "failed to read body", http.StatusBadRequest)
		return
	}

	q := r.URL.Query()
	filename := sanitizeFilename(q.Get("filename"))
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	opts := s.annotator.AnnotateOptions()
	if v := q.Get("strict"); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			jsonError(w, "strict must be a boolean", http.StatusBadRequest)
			return
		}
		opts.Strict = strict
	}

	p, err := parser.ForFile(filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	doc, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		jsonError(w, "parse document: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	db, err := s.annotator.References()
	if err != nil {
		s.log.Error("load references", "error", err)
		jsonError(w, "failed to load references", http.StatusInternalServerError)
		return
	}
	var meta struct {
		References biblio.Database `yaml:"references"`
	}
	if err := doc.Decode(&meta); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	db = db.Merge(meta.References)

	root := doc.Root
	if doc.Full != nil {
		root = doc.Full
	}
	res, annErr := annotate.Annotate(root, db, opts)

	resp := annotateResponse{
		Applied:      res.Applied,
		Outline:      res.Plan.Outline,
		TOC:          res.Plan.TOC,
		Bibliography: res.Bibliography,
		Warnings:     messages(res.Warnings),
		Errors:       messages(leaves(annErr)),
	}
	if res.Applied {
		if doc.Full != nil {
			resp.HTML, err = dom.Render(doc.Full)
		} else {
			resp.HTML, err = doc.Body()
		}
		if err != nil {
			jsonError(w, "render html: "+err.Error(), http.StatusInternalServerError)
			return
		}
	}

	s.log.Info("annotated document",
		"filename", filename,
		"headings", res.Plan.Outline.Len(),
		"citations", len(res.Bibliography.Items),
		"warnings", len(resp.Warnings),
		"errors", len(resp.Errors),
		"applied", res.Applied,
	)

	if q.Get("format") == "json" {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
		return
	}

	if !res.Applied {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"error":  "unresolved references",
			"errors": resp.Errors,
		})
		return
	}
	if n := len(resp.Errors); n > 0 {
		w.Header().Set("X-Unresolved-References", strconv.Itoa(n))
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, resp.HTML)
}

// leaves unwraps joined errors.
func leaves(err error) []error {
	if err == nil {
		return nil
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range j.Unwrap() {
			out = append(out, leaves(e)...)
		}
		return out
	}
	return []error{err}
}

func messages(errs []error) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Error())
	}
	return out
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "upload.html"
	}
	return name
}
