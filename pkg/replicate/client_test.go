package replicate

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"LandmarkGolang/pkg/landmark"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngImage(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(url string) *Client {
	return New(Config{
		Token:        "r8_test",
		BaseURL:      url,
		PollInterval: 10 * time.Millisecond,
		Timeout:      5 * time.Second,
	})
}

func TestPredictPollsUntilSucceeded(t *testing.T) {
	var polls atomic.Int32
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/models/andreasjansson/face-detection/predictions":
			assert.Equal(t, "Bearer r8_test", r.Header.Get("Authorization"))
			assert.Equal(t, "wait", r.Header.Get("Prefer"))

			var req predictionRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Empty(t, req.Version)
			image, _ := req.Input["image"].(string)
			assert.True(t, strings.HasPrefix(image, "data:image/jpeg;base64,"))

			writeJSON(w, http.StatusCreated, map[string]any{
				"id":     "p1",
				"status": "processing",
				"urls":   map[string]string{"get": srv.URL + "/predictions/p1"},
			})
		case r.Method == http.MethodGet && r.URL.Path == "/predictions/p1":
			status := "processing"
			if polls.Add(1) >= 2 {
				status = "succeeded"
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"id":     "p1",
				"status": status,
				"output": map[string]any{"faces": []any{map[string]any{"bbox": []int{1, 2, 3, 4}}}},
				"urls":   map[string]string{"get": srv.URL + "/predictions/p1"},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	det := NewDetector(newTestClient(srv.URL), "andreasjansson/face-detection", landmark.Absolute)
	assert.Equal(t, "replicate/andreasjansson/face-detection", det.ID())

	raw, err := det.Detect(context.Background(), pngImage(t))
	require.NoError(t, err)
	assert.Equal(t, landmark.SchemaRegions, raw.Schema)
	assert.Equal(t, landmark.Absolute, raw.Coordinates)
	assert.JSONEq(t, `{"faces":[{"bbox":[1,2,3,4]}]}`, string(raw.Body))
	assert.EqualValues(t, 2, polls.Load())
}

func TestPredictPinnedVersion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predictions", r.URL.Path)

		var req predictionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "abc123", req.Version)

		writeJSON(w, http.StatusCreated, map[string]any{
			"id":     "p2",
			"status": "succeeded",
			"output": `{"faces":[]}`,
		})
	}))
	defer srv.Close()

	det := NewDetector(newTestClient(srv.URL), "salesforce/blip:abc123", landmark.Infer)
	raw, err := det.Detect(context.Background(), pngImage(t))
	require.NoError(t, err)
	assert.JSONEq(t, `{"faces":[]}`, string(raw.Body))
}

func TestPredictFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid token."})
			},
		},
		{
			name: "prediction failed",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusCreated, map[string]any{"id": "p3", "status": "failed", "error": "CUDA out of memory"})
			},
		},
		{
			name: "no poll url",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusCreated, map[string]any{"id": "p4", "status": "starting"})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewDetector(newTestClient(srv.URL), "owner/model", landmark.Absolute).Detect(context.Background(), pngImage(t))
			assert.Error(t, err)
		})
	}
}

func TestPredictHonorsContext(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{
			"id":     "p5",
			"status": "processing",
			"urls":   map[string]string{"get": srv.URL + "/predictions/p5"},
		})
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewDetector(newTestClient(srv.URL), "owner/model", landmark.Absolute).Detect(ctx, pngImage(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPredictionTarget(t *testing.T) {
	path, req, err := predictionTarget("owner/name", nil)
	require.NoError(t, err)
	assert.Equal(t, "/models/owner/name/predictions", path)
	assert.Empty(t, req.Version)

	for _, bad := range []string{"", "name", "/name", "owner/", "a/b/c", "owner/name:"} {
		_, _, err := predictionTarget(bad, nil)
		assert.Error(t, err, bad)
	}
}

func TestDataURIReencodesAsJPEG(t *testing.T) {
	uri, err := DataURI(pngImage(t))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(uri, "data:image/jpeg;base64,"))

	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/jpeg;base64,"))
	require.NoError(t, err)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 8, cfg.Width)

	_, err = DataURI([]byte("\x89PNG\r\n\x1a\n0000"))
	assert.Error(t, err)
}

func TestDetectRejectsUndecodableImage(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	_, err := NewDetector(newTestClient(srv.URL), "owner/model", landmark.Absolute).Detect(context.Background(), []byte("not an image"))
	assert.Error(t, err)
	assert.Equal(t, int32(0), calls.Load())
}
