package main

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/jeradesign/fiducials/tagmap"
)

// newHTTPServer creates an HTTP server with all endpoints.
func newHTTPServer(tracker *tagmap.Tracker) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		tags, arcs := tracker.Counts()
		w.Header().Set("Content-Type", "application/json")
		status := struct {
			Status    string    `json:"status"`
			Timestamp time.Time `json:"timestamp"`
			Tags      int       `json:"tags"`
			Arcs      int       `json:"arcs"`
		}{
			Status:    "ok",
			Timestamp: time.Now(),
			Tags:      tags,
			Arcs:      arcs,
		}
		if err := json.NewEncoder(w).Encode(status); err != nil {
			log.Printf("Error encoding health status: %v", err)
		}
	})

	// Vector rendering of the tag graph with the robot fix trail
	mux.HandleFunc("/map.svg", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "no-cache")
		if err := tracker.RenderSVG(w); err != nil {
			log.Printf("Error rendering map SVG: %v", err)
			http.Error(w, "No tags to render", http.StatusServiceUnavailable)
		}
	})

	mux.HandleFunc("/map.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		if err := tracker.RenderPNG(w); err != nil {
			log.Printf("Error rendering map PNG: %v", err)
			http.Error(w, "No tags to render", http.StatusServiceUnavailable)
		}
	})

	// Persisted XML form of the current map
	mux.HandleFunc("/map.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.Header().Set("Cache-Control", "no-cache")
		if err := tracker.WriteXML(w); err != nil {
			log.Printf("Error writing map XML: %v", err)
		}
	})

	// Tag poses as JSON; unrouted tags are included but flagged
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(tracker.Tags()); err != nil {
			log.Printf("Error encoding tags: %v", err)
		}
	})

	// Robot fix trail as JSON
	mux.HandleFunc("/api/fixes", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(tracker.Fixes()); err != nil {
			log.Printf("Error encoding fixes: %v", err)
		}
	})

	return mux
}
