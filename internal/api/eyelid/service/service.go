package eyelidService

import (
	"EyelidService/internal/api/eyelid"
	"EyelidService/pkg/overlay"
	websocketPkg "EyelidService/pkg/websocket"
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

type IEyelidService interface {
	Analyze(ctx context.Context, imageData []byte) (*eyelid.AnalysisResult, error)
	ModelReady() bool
}

type eyelidService struct {
	log      *logrus.Logger
	detector websocketPkg.IDetector
	renderer *overlay.Renderer

	unavailableOnce sync.Once
}

// NewEyelidService builds the pipeline. A nil detector is allowed: every
// analysis then fails with ErrModelUnavailable.
func NewEyelidService(
	log *logrus.Logger,
	detector websocketPkg.IDetector,
	renderer *overlay.Renderer,
) IEyelidService {
	return &eyelidService{
		log:      log,
		detector: detector,
		renderer: renderer,
	}
}

func (s *eyelidService) ModelReady() bool {
	return s.detector != nil
}
