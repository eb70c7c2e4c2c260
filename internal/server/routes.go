// Package server keeps a registry of mounted API routes and serves it
// back as JSON for tooling and quick endpoint discovery.
package server

import (
	"encoding/json"
	"net/http"
)

type RouteDoc struct {
	Method  string `json:"method"`
	Pattern string `json:"pattern"`
	Summary string `json:"summary,omitempty"`
}

type RouteRegistry struct {
	routes []RouteDoc
}

func (rr *RouteRegistry) Add(method, pattern, summary string) {
	rr.routes = append(rr.routes, RouteDoc{Method: method, Pattern: pattern, Summary: summary})
}

func (rr *RouteRegistry) List() []RouteDoc {
	out := make([]RouteDoc, len(rr.routes))
	copy(out, rr.routes)
	return out
}

// RegisterRoutesJSON mounts the machine-readable route list.
func RegisterRoutesJSON(mux *http.ServeMux, rr *RouteRegistry) {
	mux.HandleFunc("/_/admin/routes.json", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(rr.List())
	})
	rr.Add(http.MethodGet, "/_/admin/routes.json", "List mounted routes")
}
