package eyelidService

import (
	"EyelidService/internal/entity"
	"fmt"
	"image"
	"math"
	"sort"
)

const (
	smallImageMaxDim  = 640
	largeImageMinDim  = 1600
	smallPixelsPerCM  = 16.0
	mediumPixelsPerCM = 80.0
	largePixelsPerCM  = 160.0

	// palpebralFissureFactor is applied to the raw box height.
	palpebralFissureFactor = 0.75
)

var eyeLabels = []string{"Left Eye", "Right Eye"}

// PixelsPerCM picks the fixed scale bucket for an image of the given size.
func PixelsPerCM(width, height int) float64 {
	maxDim := max(width, height)
	switch {
	case maxDim <= smallImageMaxDim:
		return smallPixelsPerCM
	case maxDim < largeImageMinDim:
		return mediumPixelsPerCM
	default:
		return largePixelsPerCM
	}
}

func PixelsToCM(px, pixelsPerCM float64) float64 {
	return px / pixelsPerCM
}

// ClampDetections truncates every raw box to integers and clips it into the
// image. Boxes are never dropped.
func ClampDetections(raw []entity.RawDetection, width, height int) []entity.Detection {
	detections := make([]entity.Detection, 0, len(raw))
	for _, r := range raw {
		detections = append(detections, entity.Detection{
			Box: entity.Box{
				X1: clampInt(int(r.X1), 0, width-1),
				Y1: clampInt(int(r.Y1), 0, height-1),
				X2: clampInt(int(r.X2), 0, width-1),
				Y2: clampInt(int(r.Y2), 0, height-1),
			},
			Confidence: r.Confidence,
		})
	}
	return detections
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// OrderAndLabel sorts left to right by x1+x2, keeping detector order on
// ties, and names the first two "Left Eye" and "Right Eye".
func OrderAndLabel(detections []entity.Detection) []entity.LabeledDetection {
	sorted := append([]entity.Detection(nil), detections...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].X1+sorted[i].X2 < sorted[j].X1+sorted[j].X2
	})

	labeled := make([]entity.LabeledDetection, len(sorted))
	for i, d := range sorted {
		label := fmt.Sprintf("Eye %d", i+1)
		if i < len(eyeLabels) {
			label = eyeLabels[i]
		}
		labeled[i] = entity.LabeledDetection{
			Detection: d,
			Label:     label,
			Center: image.Pt(
				int(math.RoundToEven(float64(d.X1+d.X2)/2)),
				int(math.RoundToEven(float64(d.Y1+d.Y2)/2)),
			),
		}
	}
	return labeled
}

func DeriveMetrics(labeled []entity.LabeledDetection, pixelsPerCM float64) []entity.EyeMetrics {
	metrics := make([]entity.EyeMetrics, len(labeled))
	for i, d := range labeled {
		mrd2 := math.Max(0, float64(d.Center.Y-d.Y1))
		pfh := math.Max(0, float64(d.Y2-d.Y1))
		metrics[i] = entity.EyeMetrics{
			Label:                    d.Label,
			MarginReflexDistanceCM:   PixelsToCM(mrd2, pixelsPerCM),
			PalpebralFissureHeightCM: PixelsToCM(pfh, pixelsPerCM) * palpebralFissureFactor,
		}
	}
	return metrics
}

// DeriveSummary compares the first two eyes. It returns nil for fewer than
// two detections.
func DeriveSummary(labeled []entity.LabeledDetection, pixelsPerCM float64) *entity.Summary {
	if len(labeled) < 2 {
		return nil
	}
	diff := math.Abs(float64(labeled[0].Center.Y - labeled[1].Center.Y))
	return &entity.Summary{VerticalHeightDifferenceCM: PixelsToCM(diff, pixelsPerCM)}
}
