package eyelidService

import (
	"EyelidService/internal/api/eyelid"
	contextPkg "EyelidService/pkg/context"
	"EyelidService/pkg/imagecodec"
	"EyelidService/pkg/log"
	"EyelidService/pkg/overlay"
	"context"
	"fmt"
)

func (s *eyelidService) Analyze(ctx context.Context, imageData []byte) (*eyelid.AnalysisResult, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if s.detector == nil {
		s.unavailableOnce.Do(func() {
			s.log.WithFields(log.Fields{
				"request_id": requestID,
			}).Error("Eye detector is not loaded, analyses will be rejected")
		})
		return nil, eyelid.ErrModelUnavailable
	}

	if len(imageData) == 0 {
		return nil, fmt.Errorf("%w: empty input", eyelid.ErrDecodeImage)
	}

	img, err := imagecodec.Decode(imageData)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", eyelid.ErrDecodeImage, err)
	}
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	raw, err := s.detector.Detect(ctx, img)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", eyelid.ErrDetectionFailed, err)
	}

	labeled := OrderAndLabel(ClampDetections(raw, width, height))
	pixelsPerCM := PixelsPerCM(width, height)
	metrics := DeriveMetrics(labeled, pixelsPerCM)
	summary := DeriveSummary(labeled, pixelsPerCM)

	annotations := make([]overlay.Annotation, len(labeled))
	eyes := make([]eyelid.EyeReport, len(labeled))
	topLines := make([]string, len(labeled))
	for i, d := range labeled {
		annotations[i] = overlay.Annotation{
			X1:         d.X1,
			Y1:         d.Y1,
			X2:         d.X2,
			Y2:         d.Y2,
			Center:     d.Center,
			Confidence: d.Confidence,
		}
		eyes[i] = eyelid.EyeReport{
			EyeMetrics: metrics[i],
			Box:        d.Box,
			Center:     [2]int{d.Center.X, d.Center.Y},
			Confidence: d.Confidence,
		}
		topLines[i] = metrics[i].Line()
	}

	var bottomLines []string
	if summary != nil {
		bottomLines = []string{summary.Line()}
	}

	report := s.renderer.Render(img, annotations, topLines, bottomLines)

	encoded, err := imagecodec.Encode(img)
	if err != nil {
		return nil, fmt.Errorf("encode annotated image: %w", err)
	}

	s.log.WithFields(log.Fields{
		"request_id":    requestID,
		"width":         width,
		"height":        height,
		"pixels_per_cm": pixelsPerCM,
		"eye_count":     len(labeled),
	}).Info("Eyelid analysis completed")

	return &eyelid.AnalysisResult{
		Image:       encoded,
		Width:       width,
		Height:      height,
		PixelsPerCM: pixelsPerCM,
		Eyes:        eyes,
		Summary:     summary,
		Overlay:     report,
	}, nil
}
