package eyelidService

import (
	"EyelidService/internal/api/eyelid"
	"EyelidService/internal/entity"
	"EyelidService/pkg/overlay"
	"EyelidService/pkg/response"
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDetector struct {
	detections []entity.RawDetection
	err        error
	seen       []image.Rectangle
}

func (d *stubDetector) Detect(_ context.Context, img image.Image) ([]entity.RawDetection, error) {
	d.seen = append(d.seen, img.Bounds())
	return d.detections, d.err
}

func (d *stubDetector) IsConnected() bool { return true }
func (d *stubDetector) Reconnect() error  { return nil }
func (d *stubDetector) Close()            {}

func newTestService(t *testing.T, detector *stubDetector) IEyelidService {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	renderer, err := overlay.NewRenderer()
	require.NoError(t, err)

	if detector == nil {
		return NewEyelidService(logger, nil, renderer)
	}
	return NewEyelidService(logger, detector, renderer)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestAnalyzeTwoEyes(t *testing.T) {
	detector := &stubDetector{detections: []entity.RawDetection{
		{X1: 760, Y1: 300, X2: 960, Y2: 420, Confidence: 0.88},
		{X1: 300, Y1: 290, X2: 500, Y2: 410, Confidence: 0.93},
	}}
	svc := newTestService(t, detector)

	result, err := svc.Analyze(context.Background(), pngBytes(t, 1280, 720))
	require.NoError(t, err)

	assert.Equal(t, 1280, result.Width)
	assert.Equal(t, 720, result.Height)
	assert.Equal(t, 80.0, result.PixelsPerCM)
	require.Equal(t, []image.Rectangle{image.Rect(0, 0, 1280, 720)}, detector.seen)

	require.Len(t, result.Eyes, 2)
	assert.Equal(t, "Left Eye", result.Eyes[0].Label)
	assert.Equal(t, 300, result.Eyes[0].Box.X1)
	assert.Equal(t, [2]int{400, 350}, result.Eyes[0].Center)
	assert.InDelta(t, 0.75, result.Eyes[0].MarginReflexDistanceCM, 1e-12)
	assert.InDelta(t, 1.125, result.Eyes[0].PalpebralFissureHeightCM, 1e-12)
	assert.Equal(t, "Right Eye", result.Eyes[1].Label)

	require.NotNil(t, result.Summary)
	assert.InDelta(t, 0.125, result.Summary.VerticalHeightDifferenceCM, 1e-12)

	require.NotNil(t, result.Overlay.Top)
	require.NotNil(t, result.Overlay.Bottom)
	assert.Len(t, result.Overlay.Top.Lines, 2)
	assert.Len(t, result.Overlay.Bottom.Lines, 1)
	assert.Len(t, result.Overlay.Badges, 2)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(result.Image))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 1280, cfg.Width)
	assert.Equal(t, 720, cfg.Height)
}

func TestAnalyzeSingleEyeHasNoSummary(t *testing.T) {
	detector := &stubDetector{detections: []entity.RawDetection{
		{X1: 100, Y1: 100, X2: 300, Y2: 200, Confidence: 0.7},
	}}
	svc := newTestService(t, detector)

	result, err := svc.Analyze(context.Background(), pngBytes(t, 640, 480))
	require.NoError(t, err)

	assert.Equal(t, 16.0, result.PixelsPerCM)
	require.Len(t, result.Eyes, 1)
	assert.Nil(t, result.Summary)
	assert.NotNil(t, result.Overlay.Top)
	assert.Nil(t, result.Overlay.Bottom)
}

func TestAnalyzeNoDetections(t *testing.T) {
	svc := newTestService(t, &stubDetector{})

	result, err := svc.Analyze(context.Background(), pngBytes(t, 320, 240))
	require.NoError(t, err)

	assert.Empty(t, result.Eyes)
	assert.Nil(t, result.Summary)
	assert.Nil(t, result.Overlay.Top)
	assert.Nil(t, result.Overlay.Bottom)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(result.Image))
	require.NoError(t, err)
	assert.Equal(t, 320, cfg.Width)
	assert.Equal(t, 240, cfg.Height)
}

func TestAnalyzeClampsOutOfBoundsBoxes(t *testing.T) {
	detector := &stubDetector{detections: []entity.RawDetection{
		{X1: 1200, Y1: 650, X2: 1400, Y2: 800, Confidence: 0.9},
	}}
	svc := newTestService(t, detector)

	result, err := svc.Analyze(context.Background(), pngBytes(t, 1280, 720))
	require.NoError(t, err)

	require.Len(t, result.Eyes, 1)
	assert.Equal(t, entity.Box{X1: 1200, Y1: 650, X2: 1279, Y2: 719}, result.Eyes[0].Box)
	assert.True(t, result.Overlay.Badges[0].Flipped)
}

func TestAnalyzeModelUnavailable(t *testing.T) {
	svc := newTestService(t, nil)

	assert.False(t, svc.ModelReady())

	_, err := svc.Analyze(context.Background(), pngBytes(t, 10, 10))
	assert.ErrorIs(t, err, eyelid.ErrModelUnavailable)

	// checked before the bytes are even looked at
	_, err = svc.Analyze(context.Background(), []byte("not an image"))
	assert.ErrorIs(t, err, eyelid.ErrModelUnavailable)
	assert.Equal(t, http.StatusServiceUnavailable, response.StatusOf(err, http.StatusInternalServerError))
}

func TestAnalyzeRejectsBadInput(t *testing.T) {
	detector := &stubDetector{}
	svc := newTestService(t, detector)
	assert.True(t, svc.ModelReady())

	for _, empty := range [][]byte{nil, {}} {
		_, err := svc.Analyze(context.Background(), empty)
		assert.ErrorIs(t, err, eyelid.ErrDecodeImage)
		assert.Equal(t, http.StatusUnprocessableEntity, response.StatusOf(err, http.StatusInternalServerError))
	}

	_, err := svc.Analyze(context.Background(), []byte("definitely not an image"))
	assert.ErrorIs(t, err, eyelid.ErrDecodeImage)
	assert.Equal(t, http.StatusUnprocessableEntity, response.StatusOf(err, http.StatusInternalServerError))

	assert.Empty(t, detector.seen)
}

func TestAnalyzeDetectorFailure(t *testing.T) {
	svc := newTestService(t, &stubDetector{err: errors.New("connection reset")})

	_, err := svc.Analyze(context.Background(), pngBytes(t, 64, 64))
	assert.ErrorIs(t, err, eyelid.ErrDetectionFailed)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, http.StatusBadGateway, response.StatusOf(err, http.StatusInternalServerError))
}

func TestAnalyzeDetectorFailureAfterCancel(t *testing.T) {
	svc := newTestService(t, &stubDetector{err: errors.New("read deadline")})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Analyze(ctx, pngBytes(t, 64, 64))
	assert.ErrorIs(t, err, context.Canceled)
}
