package eyelidService

import (
	"EyelidService/internal/entity"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPixelsPerCM(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		want          float64
	}{
		{"tiny", 320, 240, 16},
		{"small boundary", 640, 480, 16},
		{"square small boundary", 640, 640, 16},
		{"just above small", 641, 100, 80},
		{"just below large", 100, 1599, 80},
		{"hd", 1280, 720, 80},
		{"large boundary", 1600, 10, 160},
		{"camera", 4000, 3000, 160},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PixelsPerCM(tt.width, tt.height))
		})
	}
}

func TestClampDetectionsClipsWithoutDropping(t *testing.T) {
	raw := []entity.RawDetection{
		{X1: -5.3, Y1: 10.9, X2: 1500.7, Y2: 719.9, Confidence: 0.8},
		{X1: 100.2, Y1: -40, X2: 200.8, Y2: 900, Confidence: 0.6},
	}

	got := ClampDetections(raw, 1280, 720)

	require.Len(t, got, 2)
	assert.Equal(t, entity.Box{X1: 0, Y1: 10, X2: 1279, Y2: 719}, got[0].Box)
	assert.Equal(t, 0.8, got[0].Confidence)
	assert.Equal(t, entity.Box{X1: 100, Y1: 0, X2: 200, Y2: 719}, got[1].Box)
}

func TestOrderAndLabelLeftToRight(t *testing.T) {
	detections := []entity.Detection{
		{Box: entity.Box{X1: 80, Y1: 10, X2: 120, Y2: 50}, Confidence: 0.9},
		{Box: entity.Box{X1: 30, Y1: 10, X2: 70, Y2: 51}, Confidence: 0.7},
	}

	got := OrderAndLabel(detections)

	require.Len(t, got, 2)
	assert.Equal(t, "Left Eye", got[0].Label)
	assert.Equal(t, 30, got[0].X1)
	assert.Equal(t, image.Pt(50, 30), got[0].Center)
	assert.Equal(t, "Right Eye", got[1].Label)
	assert.Equal(t, 80, got[1].X1)
	assert.Equal(t, image.Pt(100, 30), got[1].Center)

	assert.Equal(t, 80, detections[0].X1, "input must not be reordered")
}

func TestOrderAndLabelExtraEyesAndTies(t *testing.T) {
	detections := []entity.Detection{
		{Box: entity.Box{X1: 500, X2: 600}, Confidence: 0.9},
		{Box: entity.Box{X1: 100, X2: 200}, Confidence: 0.8},
		{Box: entity.Box{X1: 150, X2: 150}, Confidence: 0.7},
	}

	got := OrderAndLabel(detections)

	require.Len(t, got, 3)
	assert.Equal(t, "Left Eye", got[0].Label)
	assert.Equal(t, 0.8, got[0].Confidence)
	assert.Equal(t, "Right Eye", got[1].Label)
	assert.Equal(t, 0.7, got[1].Confidence)
	assert.Equal(t, "Eye 3", got[2].Label)
}

func TestOrderAndLabelRoundsCenterHalfToEven(t *testing.T) {
	got := OrderAndLabel([]entity.Detection{
		{Box: entity.Box{X1: 0, Y1: 0, X2: 5, Y2: 7}},
	})

	require.Len(t, got, 1)
	// 2.5 -> 2, 3.5 -> 4
	assert.Equal(t, image.Pt(2, 4), got[0].Center)
}

func TestOrderAndLabelEmpty(t *testing.T) {
	assert.Empty(t, OrderAndLabel(nil))
}

func TestDeriveMetrics(t *testing.T) {
	labeled := []entity.LabeledDetection{
		{
			Detection: entity.Detection{Box: entity.Box{X1: 0, Y1: 10, X2: 40, Y2: 110}},
			Label:     "Left Eye",
			Center:    image.Pt(20, 50),
		},
		{
			Detection: entity.Detection{Box: entity.Box{X1: 100, Y1: 60, X2: 140, Y2: 60}},
			Label:     "Right Eye",
			Center:    image.Pt(120, 40),
		},
	}

	got := DeriveMetrics(labeled, 80)

	require.Len(t, got, 2)
	assert.InDelta(t, 0.50, got[0].MarginReflexDistanceCM, 1e-12)
	assert.InDelta(t, 0.9375, got[0].PalpebralFissureHeightCM, 1e-12)
	assert.Equal(t, "Left Eye: MRD2 0.50 cm | PFH 0.94 cm", got[0].Line())

	assert.Zero(t, got[1].MarginReflexDistanceCM)
	assert.Zero(t, got[1].PalpebralFissureHeightCM)
}

func TestDeriveSummary(t *testing.T) {
	one := []entity.LabeledDetection{{Center: image.Pt(10, 300)}}
	assert.Nil(t, DeriveSummary(one, 80))
	assert.Nil(t, DeriveSummary(nil, 80))

	two := []entity.LabeledDetection{
		{Center: image.Pt(10, 310)},
		{Center: image.Pt(90, 300)},
		{Center: image.Pt(190, 100)},
	}
	summary := DeriveSummary(two, 80)
	require.NotNil(t, summary)
	assert.InDelta(t, 0.125, summary.VerticalHeightDifferenceCM, 1e-12)
	assert.Equal(t, "VH: 0.12 cm", summary.Line())
}
