package faceapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(baseURL string) *faceAPIClient {
	return &faceAPIClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func dataURI(t *testing.T, image []byte) string {
	t.Helper()
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)
}

func TestVerifySendsProbeFirst(t *testing.T) {
	probe := []byte("probe-image")
	reference := []byte("reference-image")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/verify" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}

		var req verifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode verify request: %v", err)
		}

		if req.Img1 != dataURI(t, probe) {
			t.Errorf("img1 must carry the probe")
		}
		if req.Img2 != dataURI(t, reference) {
			t.Errorf("img2 must carry the reference")
		}
		if req.DetectorBackend != "opencv" {
			t.Errorf("unexpected detector backend %q", req.DetectorBackend)
		}
		if !req.EnforceDetection {
			t.Errorf("enforce_detection must be forwarded")
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"verified":  true,
			"distance":  0.31,
			"threshold": 0.68,
			"model":     "VGG-Face",
		})
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL).Verify(context.Background(), probe, reference, VerifyOptions{
		DetectorBackend:  "opencv",
		EnforceDetection: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Distance != 0.31 {
		t.Errorf("expected distance 0.31, got %v", res.Distance)
	}
	if res.Threshold != 0.68 {
		t.Errorf("expected threshold 0.68, got %v", res.Threshold)
	}
	if !res.Verified {
		t.Errorf("expected verified flag to pass through")
	}
}

func TestVerifyNoFaceDetected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Face could not be detected in img1. Please confirm that the picture is a face photo.",
		})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Verify(context.Background(), []byte("blank"), []byte("ref"), VerifyOptions{
		EnforceDetection: true,
	})
	if !errors.Is(err, ErrNoFaceDetected) {
		t.Fatalf("expected ErrNoFaceDetected, got %v", err)
	}
}

func TestVerifyServiceFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("worker crashed"))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Verify(context.Background(), []byte("a"), []byte("b"), VerifyOptions{})
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, ErrNoFaceDetected) {
		t.Fatalf("generic fault must not look like a detection failure: %v", err)
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error should carry the upstream status, got %v", err)
	}
}

func TestVerifyHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server can detect the client disconnect
		// and cancel the request context; otherwise srv.Close deadlocks.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient(srv.URL).Verify(ctx, []byte("a"), []byte("b"), VerifyOptions{})
	if err == nil {
		t.Fatal("expected a context deadline error")
	}
}

func TestAnalyze(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analyze" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}

		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode analyze request: %v", err)
		}
		if req.EnforceDetection {
			t.Errorf("emotion analysis must not enforce detection")
		}
		if len(req.Actions) != 1 || req.Actions[0] != "emotion" {
			t.Errorf("unexpected actions %v", req.Actions)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]interface{}{
				{
					"dominant_emotion": "happy",
					"emotion": map[string]float64{
						"happy":   93.2,
						"neutral": 4.1,
					},
				},
			},
		})
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL).Analyze(context.Background(), []byte("probe"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.DominantEmotion != "happy" {
		t.Errorf("expected happy, got %q", res.DominantEmotion)
	}
	if res.Scores["happy"] != 93.2 {
		t.Errorf("scores not mapped: %v", res.Scores)
	}
}

func TestAnalyzeEmptyResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"results": []interface{}{}})
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).Analyze(context.Background(), []byte("probe"), false); err == nil {
		t.Fatal("expected an error for an empty result set")
	}
}

func TestIsKnownEmotion(t *testing.T) {
	for _, label := range EmotionLabels {
		if !IsKnownEmotion(label) {
			t.Errorf("%q should be known", label)
		}
	}

	for _, label := range []string{"", "confused", "Happy", "HAPPY"} {
		if IsKnownEmotion(label) {
			t.Errorf("%q should not be known", label)
		}
	}
}
