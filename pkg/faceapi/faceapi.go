package faceapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// ErrNoFaceDetected means the analysis service could not locate a face in at
// least one of the submitted images.
var ErrNoFaceDetected = errors.New("no face detected in image")

// FallbackEmotion is returned whenever no confident classification exists.
const FallbackEmotion = "neutral"

// EmotionLabels is the closed label set of the analysis service.
var EmotionLabels = []string{"angry", "disgust", "fear", "happy", "sad", "surprise", "neutral"}

type ItfFaceAPI interface {
	Verify(ctx context.Context, probe []byte, reference []byte, opts VerifyOptions) (*VerifyResult, error)
	Analyze(ctx context.Context, image []byte, enforceDetection bool) (*EmotionResult, error)
}

type VerifyOptions struct {
	ModelName        string
	DetectorBackend  string
	EnforceDetection bool
}

// VerifyResult holds the raw comparison outcome. Distance is on the model's
// native scale; the acceptance decision belongs to the caller, not to this
// client.
type VerifyResult struct {
	Distance        float64
	Threshold       float64
	Verified        bool
	Model           string
	DetectorBackend string
}

type EmotionResult struct {
	DominantEmotion string
	Scores          map[string]float64
}

type faceAPIClient struct {
	baseURL    string
	httpClient *http.Client
}

func New() ItfFaceAPI {
	baseURL := os.Getenv("FACE_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:5005"
	}

	return &faceAPIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type verifyRequest struct {
	Img1             string `json:"img1"`
	Img2             string `json:"img2"`
	ModelName        string `json:"model_name,omitempty"`
	DetectorBackend  string `json:"detector_backend,omitempty"`
	EnforceDetection bool   `json:"enforce_detection"`
}

type verifyResponse struct {
	Verified        bool    `json:"verified"`
	Distance        float64 `json:"distance"`
	Threshold       float64 `json:"threshold"`
	Model           string  `json:"model"`
	DetectorBackend string  `json:"detector_backend"`
}

type analyzeRequest struct {
	Img              string   `json:"img"`
	Actions          []string `json:"actions"`
	EnforceDetection bool     `json:"enforce_detection"`
}

type analyzeResponse struct {
	Results []struct {
		DominantEmotion string             `json:"dominant_emotion"`
		Emotion         map[string]float64 `json:"emotion"`
	} `json:"results"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Exception string `json:"exception"`
}

// Verify compares the probe against the reference. Argument order is
// preserved on the wire: img1 is always the probe, img2 the reference. The
// embedding comparison is not guaranteed symmetric, so callers and tests
// rely on this ordering.
func (f *faceAPIClient) Verify(ctx context.Context, probe []byte, reference []byte, opts VerifyOptions) (*VerifyResult, error) {
	reqBody := verifyRequest{
		Img1:             toDataURI(probe),
		Img2:             toDataURI(reference),
		ModelName:        opts.ModelName,
		DetectorBackend:  opts.DetectorBackend,
		EnforceDetection: opts.EnforceDetection,
	}

	var res verifyResponse
	if err := f.post(ctx, "/verify", reqBody, &res); err != nil {
		return nil, err
	}

	return &VerifyResult{
		Distance:        res.Distance,
		Threshold:       res.Threshold,
		Verified:        res.Verified,
		Model:           res.Model,
		DetectorBackend: res.DetectorBackend,
	}, nil
}

// Analyze classifies the dominant emotion on the given image. With
// enforceDetection false the service answers with its best estimate even
// when no face is confidently found.
func (f *faceAPIClient) Analyze(ctx context.Context, image []byte, enforceDetection bool) (*EmotionResult, error) {
	reqBody := analyzeRequest{
		Img:              toDataURI(image),
		Actions:          []string{"emotion"},
		EnforceDetection: enforceDetection,
	}

	var res analyzeResponse
	if err := f.post(ctx, "/analyze", reqBody, &res); err != nil {
		return nil, err
	}

	if len(res.Results) == 0 {
		return nil, errors.New("empty analyze response")
	}

	return &EmotionResult{
		DominantEmotion: res.Results[0].DominantEmotion,
		Scores:          res.Results[0].Emotion,
	}, nil
}

func (f *faceAPIClient) post(ctx context.Context, path string, reqBody interface{}, out interface{}) error {
	payload, err := jsoniter.Marshal(reqBody)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("face analysis service unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return parseServiceError(resp.StatusCode, body)
	}

	if err := jsoniter.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unexpected response from face analysis service: %w", err)
	}

	return nil
}

func parseServiceError(status int, body []byte) error {
	var errRes errorResponse
	if err := jsoniter.Unmarshal(body, &errRes); err == nil {
		msg := errRes.Error
		if msg == "" {
			msg = errRes.Exception
		}

		if strings.Contains(strings.ToLower(msg), "could not be detected") ||
			strings.Contains(strings.ToLower(msg), "no face") {
			return ErrNoFaceDetected
		}

		if msg != "" {
			return fmt.Errorf("face analysis service returned status %d: %s", status, msg)
		}
	}

	return fmt.Errorf("face analysis service returned status %d", status)
}

func IsKnownEmotion(label string) bool {
	for _, known := range EmotionLabels {
		if label == known {
			return true
		}
	}
	return false
}

func toDataURI(image []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)
}
