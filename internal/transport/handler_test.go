package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tomomini0815/ainance-v2-sub004/internal/config"
	apperrors "github.com/tomomini0815/ainance-v2-sub004/internal/errors"
	"github.com/tomomini0815/ainance-v2-sub004/pkg/models"

	"github.com/gin-gonic/gin"
)

type fakeService struct {
	quality   *models.QualityResponse
	quick     models.QuickCheckResult
	match     *models.StoreMatchResponse
	recognize *models.RecognizeResponse
	err       error

	lastImage     models.ImageRequest
	lastMatch     models.StoreMatchRequest
	lastRecognize models.RecognizeRequest
}

func (f *fakeService) CheckQuality(ctx context.Context, req models.ImageRequest) (*models.QualityResponse, error) {
	f.lastImage = req
	return f.quality, f.err
}

func (f *fakeService) QuickCheck(ctx context.Context, req models.ImageRequest) (models.QuickCheckResult, error) {
	f.lastImage = req
	return f.quick, f.err
}

func (f *fakeService) MatchStore(ctx context.Context, req models.StoreMatchRequest) (*models.StoreMatchResponse, error) {
	f.lastMatch = req
	return f.match, f.err
}

func (f *fakeService) RecognizeReceipt(ctx context.Context, req models.RecognizeRequest) (*models.RecognizeResponse, error) {
	f.lastRecognize = req
	return f.recognize, f.err
}

type fakeMetrics struct{}

func (fakeMetrics) GetMetrics() map[string]interface{} {
	return map[string]interface{}{"events": map[string]int64{"quality_checked": 3}}
}

func newTestRouter(svc *fakeService) http.Handler {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		RequestTimeout:     5 * time.Second,
		MaxRequestBodySize: 1024,
	}
	return NewHandler(svc, fakeMetrics{}, cfg)
}

func doRequest(handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	w := doRequest(newTestRouter(&fakeService{}), http.MethodGet, "/health", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body["status"] != "available" {
		t.Errorf("Expected status available, got %q", body["status"])
	}
}

func TestMetrics(t *testing.T) {
	w := doRequest(newTestRouter(&fakeService{}), http.MethodGet, "/metrics", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"quality_checked":3`) {
		t.Errorf("Expected metrics snapshot in body, got %s", w.Body.String())
	}
}

func TestCheckQualityRoute(t *testing.T) {
	svc := &fakeService{quality: &models.QualityResponse{
		Timestamp: "2024-01-15T12:30:00Z",
		Report:    models.QualityReport{OverallScore: 88, HasReceipt: true, IsGoodQuality: true, Warnings: []string{}},
	}}
	w := doRequest(newTestRouter(svc), http.MethodPost, "/quality", `{"image":"AAAA"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if svc.lastImage.Image != "AAAA" {
		t.Errorf("Expected image payload to reach the service, got %+v", svc.lastImage)
	}
	var resp models.QualityResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if resp.Report.OverallScore != 88 || !resp.Report.IsGoodQuality {
		t.Errorf("Expected report to be returned, got %+v", resp.Report)
	}
	if !strings.Contains(w.Body.String(), `"overallScore":88`) {
		t.Errorf("Expected camelCase report fields, got %s", w.Body.String())
	}
}

func TestQuickCheckRoute(t *testing.T) {
	svc := &fakeService{quick: models.QuickCheckResult{Score: 64, CanCapture: true}}
	w := doRequest(newTestRouter(svc), http.MethodPost, "/quality/quick", `{"url":"https://example.com/frame.jpg"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != `{"score":64,"canCapture":true}` {
		t.Errorf("Unexpected body: %s", w.Body.String())
	}
	if svc.lastImage.URL != "https://example.com/frame.jpg" {
		t.Errorf("Expected URL to reach the service, got %+v", svc.lastImage)
	}
}

func TestMatchStoreRoute(t *testing.T) {
	svc := &fakeService{match: &models.StoreMatchResponse{
		Match: models.MatchResult{StoreName: "ローソン", Confidence: 100, MatchType: models.MatchTypeExact, Candidate: "ローソン"},
	}}
	w := doRequest(newTestRouter(svc), http.MethodPost, "/stores/match", `{"text":"ローソン\n領収書","known_stores":["ローソン"]}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if svc.lastMatch.Text != "ローソン\n領収書" || len(svc.lastMatch.KnownStores) != 1 {
		t.Errorf("Expected request to reach the service, got %+v", svc.lastMatch)
	}
	if !strings.Contains(w.Body.String(), `"matchType":"exact"`) {
		t.Errorf("Expected match type in body, got %s", w.Body.String())
	}
}

func TestRecognizeRoute(t *testing.T) {
	svc := &fakeService{recognize: &models.RecognizeResponse{ExtractedText: "ローソン"}}
	w := doRequest(newTestRouter(svc), http.MethodPost, "/receipts/recognize",
		`{"image":"AAAA","known_stores":["ローソン"],"force":true}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !svc.lastRecognize.Force || svc.lastRecognize.Image != "AAAA" {
		t.Errorf("Expected embedded image request and force flag, got %+v", svc.lastRecognize)
	}
}

func TestRouteErrors(t *testing.T) {
	testCases := []struct {
		name           string
		path           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedDetail string
	}{
		{"Malformed JSON", "/quality", `{"image":`, nil, http.StatusBadRequest, ""},
		{"Missing Text", "/stores/match", `{"known_stores":["ローソン"]}`, nil, http.StatusBadRequest, ""},
		{"Body Too Large", "/quality", `{"image":"` + strings.Repeat("A", 2048) + `"}`, nil, http.StatusRequestEntityTooLarge, ""},
		{"Validation", "/quality", `{}`, apperrors.NewValidationError("exactly one of image or url is required", nil), http.StatusBadRequest, ""},
		{"Not Found", "/quality/quick", `{"url":"https://example.com/x.jpg"}`, apperrors.NewNotFoundError("capture not found", nil), http.StatusNotFound, ""},
		{
			"Quality Gate", "/receipts/recognize", `{"image":"AAAA"}`,
			apperrors.NewProcessingError("capture failed quality gate", nil).WithDetails("blurred"),
			http.StatusUnprocessableEntity, "blurred",
		},
		{"Timeout", "/receipts/recognize", `{"image":"AAAA"}`, context.DeadlineExceeded, http.StatusGatewayTimeout, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(newTestRouter(&fakeService{err: tc.serviceErr}), http.MethodPost, tc.path, tc.body)

			if w.Code != tc.expectedStatus {
				t.Fatalf("Expected status %d, got %d: %s", tc.expectedStatus, w.Code, w.Body.String())
			}
			var resp models.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Expected JSON error body, got %s", w.Body.String())
			}
			if resp.Error != http.StatusText(tc.expectedStatus) {
				t.Errorf("Expected error %q, got %q", http.StatusText(tc.expectedStatus), resp.Error)
			}
			if resp.Details != tc.expectedDetail {
				t.Errorf("Expected details %q, got %q", tc.expectedDetail, resp.Details)
			}
		})
	}
}

func TestDetermineStatusCode(t *testing.T) {
	testCases := []struct {
		err      error
		expected int
	}{
		{apperrors.NewTimeoutError("slow", nil), http.StatusGatewayTimeout},
		{apperrors.NewDecodeError("bad", nil), http.StatusUnprocessableEntity},
		{context.Canceled, http.StatusTooManyRequests},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{http.ErrHandlerTimeout, http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		if got := determineStatusCode(tc.err); got != tc.expected {
			t.Errorf("Expected %d for %v, got %d", tc.expected, tc.err, got)
		}
	}
}
