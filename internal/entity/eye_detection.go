package entity

import (
	"fmt"
	"image"
)

// Box holds inclusive pixel corners, already clamped into the image.
type Box struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// RawDetection is a detector hit before clamping.
type RawDetection struct {
	X1         float64 `json:"x1"`
	Y1         float64 `json:"y1"`
	X2         float64 `json:"x2"`
	Y2         float64 `json:"y2"`
	Confidence float64 `json:"confidence"`
}

type Detection struct {
	Box
	Confidence float64 `json:"confidence"`
}

type LabeledDetection struct {
	Detection
	Label  string      `json:"label"`
	Center image.Point `json:"-"`
}

type EyeMetrics struct {
	Label                    string  `json:"label"`
	MarginReflexDistanceCM   float64 `json:"mrd2_cm"`
	PalpebralFissureHeightCM float64 `json:"pfh_cm"`
}

func (m EyeMetrics) Line() string {
	return fmt.Sprintf("%s: MRD2 %.2f cm | PFH %.2f cm", m.Label, m.MarginReflexDistanceCM, m.PalpebralFissureHeightCM)
}

type Summary struct {
	VerticalHeightDifferenceCM float64 `json:"vh_cm"`
}

func (s Summary) Line() string {
	return fmt.Sprintf("VH: %.2f cm", s.VerticalHeightDifferenceCM)
}
