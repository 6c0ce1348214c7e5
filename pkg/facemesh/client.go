// Package facemesh talks to the MediaPipe FaceMesh sidecar over a persistent
// websocket. Each request is one binary frame holding the encoded image; the
// sidecar answers with one text frame in the mesh schema.
package facemesh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"LandmarkGolang/pkg/landmark"
	"LandmarkGolang/pkg/log"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
)

const (
	DetectorID = "mediapipe/face-mesh"
	DefaultURL = "ws://localhost:8001/api/v1/face-mesh/ws"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Config struct {
	URL          string
	PingInterval time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Client struct {
	url          string
	conn         *websocket.Conn
	mu           sync.Mutex
	exchange     chan struct{}
	pingInterval time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration
}

type sidecarError struct {
	Error string `json:"error"`
}

func New(cfg Config) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}

	return &Client{
		url:          cfg.URL,
		exchange:     make(chan struct{}, 1),
		pingInterval: cfg.PingInterval,
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
	}
}

// ConnectInBackground dials once without blocking the caller. A failed dial
// is retried on the next Detect.
func (c *Client) ConnectInBackground() {
	go func() {
		if _, err := c.connection(); err != nil {
			log.Warn(log.Fields{
				"url":   c.url,
				"error": err.Error(),
			}, "[facemesh.ConnectInBackground] initial connection failed, will retry on demand")
			return
		}
		log.Info(log.Fields{"url": c.url}, "[facemesh.ConnectInBackground] connected to face mesh service")
	}()
}

func (c *Client) ID() string {
	return DetectorID
}

func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn != nil
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dropLocked()
}

func (c *Client) connection() (*websocket.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return c.conn, nil
	}
	return c.dialLocked()
}

func (c *Client) dialLocked() (*websocket.Conn, error) {
	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.Dial(c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.writeTimeout))
		if err != nil {
			log.Warn(log.Fields{"error": err.Error()}, "[facemesh.pingHandler] error sending pong")
		}
		return nil
	})

	c.conn = conn
	go c.keepAlive(conn)

	return conn, nil
}

func (c *Client) dropLocked() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// invalidate forgets conn unless it has already been replaced.
func (c *Client) invalidate(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == conn {
		c.conn = nil
	}
	conn.Close()
}

func (c *Client) keepAlive(conn *websocket.Conn) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		current := c.conn
		c.mu.Unlock()

		if current != conn {
			return
		}

		if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(c.writeTimeout)); err != nil {
			log.Warn(log.Fields{
				"url":   c.url,
				"error": err.Error(),
			}, "[facemesh.keepAlive] ping failed, marking connection as dead")
			c.invalidate(conn)
			return
		}
	}
}

// Detect sends one frame and waits for its answer. Frames are exchanged one
// at a time because the sidecar replies in order on a single connection.
func (c *Client) Detect(ctx context.Context, image []byte) (landmark.RawOutput, error) {
	select {
	case c.exchange <- struct{}{}:
	case <-ctx.Done():
		return landmark.RawOutput{}, ctx.Err()
	}
	defer func() { <-c.exchange }()

	conn, err := c.connection()
	if err != nil {
		return landmark.RawOutput{}, fmt.Errorf("cannot connect to face mesh service: %w", err)
	}

	readDeadline := time.Now().Add(c.readTimeout)
	if deadline, ok := ctx.Deadline(); ok && deadline.Before(readDeadline) {
		readDeadline = deadline
	}

	conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	if err := conn.WriteMessage(websocket.BinaryMessage, image); err != nil {
		c.invalidate(conn)
		return landmark.RawOutput{}, fmt.Errorf("error sending face mesh frame: %w", err)
	}

	conn.SetReadDeadline(readDeadline)
	// Unblock the read below as soon as ctx is cancelled.
	stop := context.AfterFunc(ctx, func() {
		conn.SetReadDeadline(time.Now())
	})
	defer stop()

	_, message, err := conn.ReadMessage()
	if err != nil {
		c.invalidate(conn)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return landmark.RawOutput{}, fmt.Errorf("error reading face mesh message: %w", ctxErr)
		}
		if deadline, ok := ctx.Deadline(); ok && !time.Now().Before(deadline) {
			return landmark.RawOutput{}, fmt.Errorf("error reading face mesh message: %w", context.DeadlineExceeded)
		}
		return landmark.RawOutput{}, fmt.Errorf("error reading face mesh message: %w", err)
	}

	conn.SetReadDeadline(time.Time{})
	conn.SetWriteDeadline(time.Time{})

	var reply sidecarError
	if err := json.Unmarshal(message, &reply); err == nil && reply.Error != "" {
		return landmark.RawOutput{}, fmt.Errorf("face mesh service: %s", reply.Error)
	}

	log.Debug(log.Fields{
		"frame_bytes": len(image),
		"reply_bytes": len(message),
	}, "[facemesh.Detect] received response from face mesh service")

	return landmark.RawOutput{
		Schema:      landmark.SchemaMesh,
		Coordinates: landmark.Relative,
		Body:        message,
	}, nil
}
