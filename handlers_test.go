package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jeradesign/fiducials/tagmap"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// populatedTracker returns a Tracker whose map holds two tags joined by one
// measured, rebuilt arc.
func populatedTracker(t *testing.T) *tagmap.Tracker {
	t.Helper()
	heights, err := tagmap.NewHeightTable([]tagmap.HeightRange{
		{FirstID: 0, LastID: 100, DistancePerPixel: 0.02},
	})
	if err != nil {
		t.Fatal(err)
	}

	tracker, err := tagmap.NewTracker(tagmap.NewMap(heights), "", nil)
	if err != nil {
		t.Fatal(err)
	}
	tracker.HandleFrame(&tagmap.Frame{
		Width:  640,
		Height: 480,
		Observations: []tagmap.Observation{
			{TagID: 1, X: 270, Y: 240, Twist: 0},
			{TagID: 2, X: 370, Y: 240, Twist: 0.5},
		},
	})
	tracker.Rebuild()
	tracker.AddFix(tagmap.LocationFix{X: 0.5, Y: 0.25, Bearing: 1.0})
	return tracker
}

func emptyTracker(t *testing.T) *tagmap.Tracker {
	t.Helper()
	tracker, err := tagmap.NewTracker(tagmap.NewMap(nil), "", nil)
	if err != nil {
		t.Fatal(err)
	}
	return tracker
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// ---------------------------------------------------------------------------
// /health
// ---------------------------------------------------------------------------

func TestHealthEndpoint(t *testing.T) {
	rec := get(t, newHTTPServer(populatedTracker(t)), "/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var status struct {
		Status string `json:"status"`
		Tags   int    `json:"tags"`
		Arcs   int    `json:"arcs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decoding health response: %v", err)
	}
	if status.Status != "ok" {
		t.Errorf("status = %q, want ok", status.Status)
	}
	if status.Tags != 2 || status.Arcs != 1 {
		t.Errorf("counts = (%d,%d), want (2,1)", status.Tags, status.Arcs)
	}
}

// ---------------------------------------------------------------------------
// renderings
// ---------------------------------------------------------------------------

func TestMapSVGEndpoint(t *testing.T) {
	rec := get(t, newHTTPServer(populatedTracker(t)), "/map.svg")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q, want image/svg+xml", ct)
	}
	if !strings.Contains(rec.Body.String(), "<svg") {
		t.Error("body does not look like an SVG document")
	}
}

func TestMapSVGEndpoint_EmptyMap(t *testing.T) {
	rec := get(t, newHTTPServer(emptyTracker(t)), "/map.svg")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 for a map with no tags", rec.Code)
	}
}

func TestMapPNGEndpoint(t *testing.T) {
	rec := get(t, newHTTPServer(populatedTracker(t)), "/map.png")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.Bytes()
	if len(body) < 8 || body[0] != 0x89 || string(body[1:4]) != "PNG" {
		t.Error("body does not look like a PNG image")
	}
}

func TestMapXMLEndpoint(t *testing.T) {
	rec := get(t, newHTTPServer(populatedTracker(t)), "/map.xml")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<Map") {
		t.Error("body does not contain the map XML document")
	}
	if !strings.Contains(rec.Body.String(), `From_Tag_Id="1"`) {
		t.Error("body does not contain the measured arc")
	}
}

// ---------------------------------------------------------------------------
// JSON state
// ---------------------------------------------------------------------------

func TestAPITagsEndpoint(t *testing.T) {
	rec := get(t, newHTTPServer(populatedTracker(t)), "/api/tags")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var tags []tagmap.Tag
	if err := json.Unmarshal(rec.Body.Bytes(), &tags); err != nil {
		t.Fatalf("decoding tags: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("got %d tags, want 2", len(tags))
	}
	for _, tag := range tags {
		if !tag.Routed {
			t.Errorf("tag %d should be routed", tag.ID)
		}
	}
}

func TestAPIFixesEndpoint(t *testing.T) {
	rec := get(t, newHTTPServer(populatedTracker(t)), "/api/fixes")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var fixes []tagmap.LocationFix
	if err := json.Unmarshal(rec.Body.Bytes(), &fixes); err != nil {
		t.Fatalf("decoding fixes: %v", err)
	}
	if len(fixes) != 1 || fixes[0].Bearing != 1.0 {
		t.Errorf("fixes = %+v, want the one recorded fix", fixes)
	}
}
