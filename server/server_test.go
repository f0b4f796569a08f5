package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MrModa2442/YouTube-comment-check/finder"
	"github.com/MrModa2442/YouTube-comment-check/internal/models"
	"github.com/MrModa2442/YouTube-comment-check/shared/config"
)

type fakeSource struct {
	comments []models.Comment
	err      error
}

func (f *fakeSource) FetchComments(ctx context.Context, videoID string) ([]models.Comment, error) {
	return f.comments, f.err
}

type fakeClassifier struct {
	results []models.AnalysisResult
	err     error
}

func (f *fakeClassifier) Classify(ctx context.Context, commentBlock string) ([]models.AnalysisResult, error) {
	return f.results, f.err
}

func newTestServer(source finder.CommentSource, classifier finder.Classifier) *httptest.Server {
	cfg := &config.Config{
		YouTube: config.YouTubeConfig{MaxComments: 2000, PageSize: 100},
		Server:  config.ServerConfig{Port: 8080},
	}
	f := finder.NewWithClients(cfg, source, classifier)
	return httptest.NewServer(New(cfg, f).Handler())
}

func TestAnalyzeHandler(t *testing.T) {
	source := &fakeSource{comments: []models.Comment{
		{ID: "c1", Author: "DJ_Fan", Text: "2:13 what's this song??"},
	}}
	classifier := &fakeClassifier{results: []models.AnalysisResult{
		{Username: "DJ_Fan", Comment: "2:13 what's this song??", Timestamp: "2:13"},
	}}
	srv := newTestServer(source, classifier)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/analyze?url=https://youtu.be/abc12345678")
	if err != nil {
		t.Fatalf("GET /analyze: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("CORS header = %q, want *", got)
	}

	var report models.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.CommentsFetched != 1 || len(report.Results) != 1 {
		t.Errorf("unexpected report %+v", report)
	}
	if want := "https://www.youtube.com/watch?v=abc12345678&t=133s"; report.Results[0].ClipURL != want {
		t.Errorf("ClipURL = %q, want %q", report.Results[0].ClipURL, want)
	}
}

func TestAnalyzeHandlerPostBody(t *testing.T) {
	srv := newTestServer(&fakeSource{}, &fakeClassifier{})
	defer srv.Close()

	body := strings.NewReader(`{"url":"https://youtu.be/abc12345678"}`)
	resp, err := http.Post(srv.URL+"/analyze", "application/json", body)
	if err != nil {
		t.Fatalf("POST /analyze: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var report models.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.CommentsFetched != 0 || len(report.Results) != 0 {
		t.Errorf("unexpected report %+v", report)
	}
}

func TestAnalyzeHandlerErrors(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		source     *fakeSource
		classifier *fakeClassifier
		wantStatus int
	}{
		{
			name:       "Missing url",
			url:        "/analyze",
			source:     &fakeSource{},
			classifier: &fakeClassifier{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Invalid url",
			url:        "/analyze?url=https://vimeo.com/12345",
			source:     &fakeSource{},
			classifier: &fakeClassifier{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Upstream failure",
			url:        "/analyze?url=https://youtu.be/abc12345678",
			source:     &fakeSource{err: errors.New("comments request returned status 500")},
			classifier: &fakeClassifier{},
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(tt.source, tt.classifier)
			defer srv.Close()

			resp, err := http.Get(srv.URL + tt.url)
			if err != nil {
				t.Fatalf("GET: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}

			var payload map[string]string
			if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if payload["error"] == "" {
				t.Error("error body missing error field")
			}
		})
	}
}

func TestAnalyzeHandlerOptions(t *testing.T) {
	srv := newTestServer(&fakeSource{}, &fakeClassifier{})
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/analyze", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Methods"); !strings.Contains(got, "POST") {
		t.Errorf("Allow-Methods = %q", got)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(&fakeSource{}, &fakeClassifier{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200 before any runs", resp.StatusCode)
	}
}
