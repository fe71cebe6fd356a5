package websocketPkg

import (
	"EyelidService/internal/entity"
	"EyelidService/pkg/imagecodec"
	"context"
	"errors"
	"fmt"
	"image"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

// ConfidenceThreshold is the minimum score a detection needs to be kept.
const ConfidenceThreshold = 0.5

var (
	ErrNotConnected = errors.New("not connected to eye detector")
	ErrDetector     = errors.New("eye detector reported an error")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type IDetector interface {
	Detect(ctx context.Context, img image.Image) ([]entity.RawDetection, error)
	IsConnected() bool
	Reconnect() error
	Close()
}

type DetectorConfig struct {
	URL        string
	Timeout    time.Duration
	Confidence float64
}

type detectorReply struct {
	Detections []struct {
		BBox []float64 `json:"bbox"`
		Conf float64   `json:"conf"`
	} `json:"detections"`
	Error string `json:"error"`
}

type eyeDetectorClient struct {
	log        *logrus.Logger
	url        string
	confidence float64

	conn *websocket.Conn
	mu   sync.Mutex

	// exchange serialises request/response pairs on the single connection.
	exchange sync.Mutex

	pingInterval     time.Duration
	readTimeout      time.Duration
	writeTimeout     time.Duration
	handshakeTimeout time.Duration
}

// NewEyeDetectorClient dials the eye detection model service once. A failed
// dial is returned so the caller can decide to run without a detector.
func NewEyeDetectorClient(log *logrus.Logger, cfg DetectorConfig) (IDetector, error) {
	if cfg.Confidence <= 0 {
		cfg.Confidence = ConfidenceThreshold
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	target, err := detectorURL(cfg.URL, cfg.Confidence)
	if err != nil {
		return nil, err
	}

	client := &eyeDetectorClient{
		log:              log,
		url:              target,
		confidence:       cfg.Confidence,
		pingInterval:     30 * time.Second,
		readTimeout:      cfg.Timeout,
		writeTimeout:     5 * time.Second,
		handshakeTimeout: 10 * time.Second,
	}

	if err := client.Reconnect(); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"url": target,
	}).Info("Connected to eye detector")

	return client, nil
}

func detectorURL(raw string, confidence float64) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("eye detector URL not configured")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid eye detector URL %q: %w", raw, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return "", fmt.Errorf("invalid eye detector URL %q: scheme must be ws or wss", raw)
	}

	q := u.Query()
	q.Set("conf", strconv.FormatFloat(confidence, 'f', -1, 64))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func (c *eyeDetectorClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn != nil
}

func (c *eyeDetectorClient) Reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = c.handshakeTimeout

	conn, _, err := dialer.Dial(c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.writeTimeout))
		if err != nil {
			c.log.WithError(err).Warn("Error sending pong to eye detector")
		}
		return nil
	})

	c.conn = conn

	go c.keepAlive(conn)

	return nil
}

func (c *eyeDetectorClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *eyeDetectorClient) keepAlive(conn *websocket.Conn) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		if c.conn != conn {
			c.mu.Unlock()
			return
		}

		err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(c.writeTimeout))
		if err != nil {
			c.log.WithError(err).Warn("Ping to eye detector failed, marking connection as dead")
			c.conn = nil
			conn.Close()
			c.mu.Unlock()
			return
		}

		c.mu.Unlock()
	}
}

func (c *eyeDetectorClient) getConnection() (*websocket.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil, ErrNotConnected
	}

	return c.conn, nil
}

func (c *eyeDetectorClient) drop(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == conn {
		c.conn = nil
	}
	conn.Close()
}

// deadline is the earlier of now+timeout and the context deadline.
func deadline(ctx context.Context, timeout time.Duration) time.Time {
	d := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(d) {
		return ctxDeadline
	}
	return d
}

// Detect sends img as one JPEG binary frame and returns the eye boxes whose
// confidence is above the configured threshold, in the order the model
// reported them.
func (c *eyeDetectorClient) Detect(ctx context.Context, img image.Image) ([]entity.RawDetection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	frame, err := imagecodec.Encode(img)
	if err != nil {
		return nil, fmt.Errorf("error encoding frame for eye detector: %w", err)
	}

	c.exchange.Lock()
	defer c.exchange.Unlock()

	// Expired while queued behind another exchange; keep the connection.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conn, err := c.getConnection()
	if err != nil {
		if err := c.Reconnect(); err != nil {
			return nil, fmt.Errorf("cannot connect to eye detector: %w", err)
		}
		conn, err = c.getConnection()
		if err != nil {
			return nil, err
		}
	}

	conn.SetWriteDeadline(deadline(ctx, c.writeTimeout))

	c.log.WithFields(logrus.Fields{
		"frame_size": len(frame),
	}).Debug("Sending frame to eye detector")

	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		c.drop(conn)
		return nil, fmt.Errorf("error sending frame to eye detector: %w", err)
	}

	conn.SetReadDeadline(deadline(ctx, c.readTimeout))

	_, message, err := conn.ReadMessage()
	if err != nil {
		c.drop(conn)
		return nil, fmt.Errorf("error reading eye detector reply: %w", err)
	}

	conn.SetReadDeadline(time.Time{})
	conn.SetWriteDeadline(time.Time{})

	var reply detectorReply
	if err := json.Unmarshal(message, &reply); err != nil {
		return nil, fmt.Errorf("error unmarshaling eye detector reply: %w", err)
	}
	if reply.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrDetector, reply.Error)
	}

	detections := make([]entity.RawDetection, 0, len(reply.Detections))
	for _, d := range reply.Detections {
		if len(d.BBox) != 4 {
			c.log.WithFields(logrus.Fields{
				"bbox": d.BBox,
			}).Warn("Skipping malformed detection from eye detector")
			continue
		}
		if d.Conf <= c.confidence {
			continue
		}
		detections = append(detections, entity.RawDetection{
			X1:         d.BBox[0],
			Y1:         d.BBox[1],
			X2:         d.BBox[2],
			Y2:         d.BBox[3],
			Confidence: d.Conf,
		})
	}

	c.log.WithFields(logrus.Fields{
		"reported": len(reply.Detections),
		"kept":     len(detections),
	}).Debug("Received eye detector reply")

	return detections, nil
}
