package landmarkHandler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"LandmarkGolang/internal/api/landmark"
	landmarkService "LandmarkGolang/internal/api/landmark/service"
	"LandmarkGolang/internal/middleware"
	"LandmarkGolang/pkg/catalog"
	"LandmarkGolang/pkg/handlerUtil"
	landmarkPkg "LandmarkGolang/pkg/landmark"
	"LandmarkGolang/pkg/metrics"
	"LandmarkGolang/pkg/overlay"
	"LandmarkGolang/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDetector struct {
	id  string
	raw landmarkPkg.RawOutput
	err error
}

func (d *stubDetector) ID() string {
	return d.id
}

func (d *stubDetector) Detect(context.Context, []byte) (landmarkPkg.RawOutput, error) {
	return d.raw, d.err
}

func meshDetector() *stubDetector {
	var sb strings.Builder
	sb.WriteString(`{"faces":[{"landmarks":[`)
	for i := 0; i < landmarkPkg.MeshPointCount; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `{"x":%g,"y":%g,"z":0}`, float64(i%100)/100, float64(i%50)/50)
	}
	sb.WriteString(`]}]}`)

	return &stubDetector{id: "mediapipe/face-mesh", raw: landmarkPkg.RawOutput{
		Schema:      landmarkPkg.SchemaMesh,
		Coordinates: landmarkPkg.Relative,
		Body:        []byte(sb.String()),
	}}
}

func newTestApp(t *testing.T, detectors ...landmarkPkg.Detector) *fiber.App {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	registry, err := landmarkService.NewRegistry(detectors...)
	require.NoError(t, err)
	models, err := catalog.Load()
	require.NoError(t, err)

	u := utils.New(0)
	mw := middleware.New(logger, u, middleware.Config{})
	svc := landmarkService.NewLandmarkService(logger, registry, nil, models, metrics.New(), landmarkService.Config{
		DefaultDetector: "mediapipe/face-mesh",
		DetectorTimeout: time.Second,
	})

	app := fiber.New()
	app.Use(mw.NewRequestIDMiddleware())
	New(logger, validator.New(), mw, svc, u).Start(app)
	return app
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	img.Set(0, 0, color.NRGBA{A: 255})
	data, err := overlay.Encode(img)
	require.NoError(t, err)
	return data
}

func uploadRequest(t *testing.T, path, contentType string, file []byte, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="face.jpg"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

func decodeError(t *testing.T, resp *http.Response) handlerUtil.ErrorResponse {
	t.Helper()
	defer resp.Body.Close()
	var body handlerUtil.ErrorResponse
	require.NoError(t, jsoniter.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestDetectNose(t *testing.T) {
	app := newTestApp(t, meshDetector())

	resp, err := app.Test(uploadRequest(t, "/detect-nose", "image/jpeg", jpegBytes(t, 120, 90), nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, "attachment; filename=mediapipe_face-mesh_nose.jpg", resp.Header.Get(fiber.HeaderContentDisposition))
	assert.Equal(t, "5", resp.Header.Get("X-Landmark-Points"))
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDKey))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	img, err := overlay.Decode(body)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 120, 90), img.Bounds())
}

func TestDetectNoseExtended(t *testing.T) {
	app := newTestApp(t, meshDetector())

	resp, err := app.Test(uploadRequest(t, "/detect-nose", "image/jpeg", jpegBytes(t, 120, 90), map[string]string{"extended": "true"}))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "11", resp.Header.Get("X-Landmark-Points"))
}

func TestDetectLandmarksFullFace(t *testing.T) {
	app := newTestApp(t, meshDetector())

	resp, err := app.Test(uploadRequest(t, "/detect-landmarks", "image/jpeg", jpegBytes(t, 120, 90), map[string]string{"radius": "2"}))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "attachment; filename=mediapipe_face-mesh_landmarks.jpg", resp.Header.Get(fiber.HeaderContentDisposition))
	assert.Equal(t, "1", resp.Header.Get("X-Faces-Detected"))
}

func TestDetectLandmarksRejectsUploads(t *testing.T) {
	app := newTestApp(t, meshDetector())

	cases := map[string]*http.Request{
		"not an image":   uploadRequest(t, "/detect-landmarks", "text/plain", []byte("hello"), nil),
		"missing file":   uploadRequest(t, "/detect-landmarks", "", nil, nil),
		"bad preset":     uploadRequest(t, "/detect-landmarks", "image/jpeg", jpegBytes(t, 10, 10), map[string]string{"preset": "ears"}),
		"bad region":     uploadRequest(t, "/detect-landmarks", "image/jpeg", jpegBytes(t, 10, 10), map[string]string{"regions": "nose,ears"}),
		"corrupt image":  uploadRequest(t, "/detect-landmarks", "image/jpeg", []byte("\xff\xd8\xff\xe0garbage"), nil),
		"not multipart":  httptest.NewRequest(http.MethodPost, "/detect-landmarks", strings.NewReader("{}")),
		"radius too big": uploadRequest(t, "/detect-landmarks", "image/jpeg", jpegBytes(t, 10, 10), map[string]string{"radius": "500"}),
	}

	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, landmark.CodeInvalidInput, decodeError(t, resp).Code)
		})
	}
}

func TestDetectLandmarksDetectorFailures(t *testing.T) {
	cases := []struct {
		name   string
		det    *stubDetector
		status int
		code   string
	}{
		{
			name:   "transport",
			det:    &stubDetector{id: "mediapipe/face-mesh", err: errors.New("connection refused")},
			status: fiber.StatusBadGateway,
			code:   landmark.CodeDetectorUnavailable,
		},
		{
			name: "no face",
			det: &stubDetector{id: "mediapipe/face-mesh", raw: landmarkPkg.RawOutput{
				Schema: landmarkPkg.SchemaRegions, Coordinates: landmarkPkg.Absolute, Body: []byte(`{"faces": []}`),
			}},
			status: fiber.StatusNotFound,
			code:   landmark.CodeNoFaceDetected,
		},
		{
			name: "malformed",
			det: &stubDetector{id: "mediapipe/face-mesh", raw: landmarkPkg.RawOutput{
				Schema: landmarkPkg.SchemaMesh, Coordinates: landmarkPkg.Relative, Body: []byte(`{"faces":[{"landmarks":[{"x":0.1,"y":0.1}]}]}`),
			}},
			status: fiber.StatusBadGateway,
			code:   landmark.CodeMalformedDetectionData,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t, tc.det)
			resp, err := app.Test(uploadRequest(t, "/detect-landmarks", "image/jpeg", jpegBytes(t, 40, 30), nil))
			require.NoError(t, err)

			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, fiber.MIMEApplicationJSON, resp.Header.Get(fiber.HeaderContentType))
			body := decodeError(t, resp)
			assert.Equal(t, tc.code, body.Code)
			assert.NotEmpty(t, body.Details)
		})
	}
}

func TestDetectLandmarksAdvanced(t *testing.T) {
	hosted := &stubDetector{id: "replicate/andreasjansson/face-detection", raw: landmarkPkg.RawOutput{
		Schema:      landmarkPkg.SchemaRegions,
		Coordinates: landmarkPkg.Absolute,
		Body:        []byte(`{"faces":[{"bbox":[5,5,30,25],"landmarks":{"nose":[[15,15]],"left_eye":[[10,10]]}}]}`),
	}}
	app := newTestApp(t, meshDetector(), hosted)

	resp, err := app.Test(uploadRequest(t, "/detect-landmarks-advanced", "image/jpeg", jpegBytes(t, 40, 30), nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "attachment; filename=replicate_andreasjansson_face-detection_landmarks.jpg", resp.Header.Get(fiber.HeaderContentDisposition))
	assert.Equal(t, "2", resp.Header.Get("X-Landmark-Points"))

	resp, err = app.Test(uploadRequest(t, "/detect-landmarks-advanced", "image/jpeg", jpegBytes(t, 40, 30), map[string]string{"model_name": "someone/other-model"}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, landmark.CodeDetectorUnavailable, decodeError(t, resp).Code)
}

func TestInfoEndpoints(t *testing.T) {
	app := newTestApp(t, meshDetector())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	var health landmark.HealthResponse
	require.NoError(t, jsoniter.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, map[string]bool{"mediapipe/face-mesh": true}, health.Detectors)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/models", nil))
	require.NoError(t, err)
	var models landmark.ModelsResponse
	require.NoError(t, jsoniter.NewDecoder(resp.Body).Decode(&models))
	assert.Len(t, models.Recommended, 2)
	assert.Equal(t, []string{"mediapipe/face-mesh"}, models.LocalDetectors)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	var root landmark.RootResponse
	require.NoError(t, jsoniter.NewDecoder(resp.Body).Decode(&root))
	assert.Contains(t, root.Endpoints, "POST /detect-nose")
}

func TestParseRegions(t *testing.T) {
	regions, err := parseRegions(" nose, left-eye ,Nose,")
	require.NoError(t, err)
	assert.Len(t, regions, 2)

	regions, err = parseRegions("")
	require.NoError(t, err)
	assert.Nil(t, regions)

	_, err = parseRegions("ears")
	assert.ErrorIs(t, err, landmark.ErrInvalidInput)
}
