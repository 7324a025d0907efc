package middleware

import (
	"net/http"
)

// HTMXRequest is the subset of htmx request headers the catalog cares about.
type HTMXRequest struct {
	Enabled    bool
	Boosted    bool
	Target     string // id of the element being swapped, e.g. "catalog"
	Trigger    string // id of the control that fired
	CurrentURL string
}

func parseHTMX(r *http.Request) HTMXRequest {
	h := r.Header
	if h.Get("HX-Request") != "true" {
		return HTMXRequest{}
	}
	return HTMXRequest{
		Enabled:    true,
		Boosted:    h.Get("HX-Boosted") == "true",
		Target:     h.Get("HX-Target"),
		Trigger:    h.Get("HX-Trigger"),
		CurrentURL: h.Get("HX-Current-URL"),
	}
}

// HTMX tags catalog fragment requests. Fragment and full-page bodies can share a
// URL, so every response varies on HX-Request.
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "HX-Request")
		next.ServeHTTP(w, r.WithContext(WithHTMX(r.Context(), parseHTMX(r))))
	})
}
