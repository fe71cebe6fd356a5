package eyelid

import (
	"EyelidService/internal/entity"
	"EyelidService/pkg/overlay"
)

type AnalyzeRequest struct {
	ImageBase64 string `json:"image_base64" validate:"required,base64"`
}

type EyeReport struct {
	entity.EyeMetrics
	Box        entity.Box `json:"box"`
	Center     [2]int     `json:"center"`
	Confidence float64    `json:"confidence"`
}

// AnalysisResult is one pass of the pipeline. Image holds the annotated JPEG.
type AnalysisResult struct {
	Image       []byte
	Width       int
	Height      int
	PixelsPerCM float64
	Eyes        []EyeReport
	Summary     *entity.Summary
	Overlay     overlay.Report
}

type ReportResponse struct {
	Width       int             `json:"width"`
	Height      int             `json:"height"`
	PixelsPerCM float64         `json:"pixels_per_cm"`
	EyeCount    int             `json:"eye_count"`
	Eyes        []EyeReport     `json:"eyes"`
	Summary     *entity.Summary `json:"summary,omitempty"`
	ImageBase64 string          `json:"image_base64"`
}

type HealthResponse struct {
	Status     string `json:"status"`
	ModelReady bool   `json:"model_ready"`
}

type WebsocketError struct {
	Error string `json:"error"`
}
