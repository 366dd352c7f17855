package realtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/advising-app/advising-notify/internal/logging"
	"github.com/go-stomp/stomp/v3"
	"github.com/gorilla/websocket"
)

// ErrSubscribe wraps a failed SUBSCRIBE. The connection is dropped and a
// later reconnect subscribes again.
var ErrSubscribe = errors.New("realtime: subscribe failed")

// Session is one live subscription.
type Session interface {
	// Next blocks for the next message body. It returns io.EOF when the
	// server closed the session cleanly.
	Next(ctx context.Context) ([]byte, error)
	Close() error
}

// Dialer opens sessions authenticated with a bearer token.
type Dialer interface {
	Dial(ctx context.Context, token string) (Session, error)
}

// DefaultCloseTimeout bounds the wait for the DISCONNECT receipt.
const DefaultCloseTimeout = 2 * time.Second

// StompDialer speaks STOMP 1.2 over a raw WebSocket.
type StompDialer struct {
	URL         string
	Destination string
	Heartbeat   time.Duration
	// CloseTimeout bounds the DISCONNECT receipt wait. Defaults to
	// DefaultCloseTimeout.
	CloseTimeout time.Duration
	WS           *websocket.Dialer
	Logger       logging.Logger
}

// Dial connects, sends CONNECT with the bearer token and subscribes to
// the destination.
func (d *StompDialer) Dial(ctx context.Context, token string) (Session, error) {
	u, err := url.Parse(d.URL)
	if err != nil {
		return nil, fmt.Errorf("parse websocket url: %w", err)
	}
	wsDialer := d.WS
	if wsDialer == nil {
		wsDialer = &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
			Subprotocols:     []string{"v12.stomp", "v11.stomp", "v10.stomp"},
		}
	}
	ws, _, err := wsDialer.DialContext(ctx, d.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u.Redacted(), err)
	}
	stream := newWSStream(ws)

	// CONNECT has no context of its own; closing the socket aborts it
	stop := context.AfterFunc(ctx, func() { _ = stream.Close() })
	conn, err := stomp.Connect(stream,
		stomp.ConnOpt.Host(u.Hostname()),
		stomp.ConnOpt.HeartBeat(d.Heartbeat, d.Heartbeat),
		stomp.ConnOpt.Header("Authorization", "Bearer "+token),
		stomp.ConnOpt.DisconnectReceiptTimeout(d.closeTimeout()),
		stomp.ConnOpt.UnsubscribeReceiptTimeout(d.closeTimeout()),
	)
	if !stop() {
		if conn != nil {
			_ = conn.MustDisconnect()
		}
		return nil, ctx.Err()
	}
	if err != nil {
		_ = stream.Close()
		return nil, fmt.Errorf("stomp connect: %w", err)
	}

	sub, err := conn.Subscribe(d.Destination, stomp.AckAuto)
	if err != nil {
		d.logger().Warn("subscribe failed", "destination", d.Destination, "error", err)
		_ = conn.MustDisconnect()
		return nil, fmt.Errorf("%w: %s: %v", ErrSubscribe, d.Destination, err)
	}
	return &stompSession{conn: conn, sub: sub}, nil
}

func (d *StompDialer) closeTimeout() time.Duration {
	if d.CloseTimeout <= 0 {
		return DefaultCloseTimeout
	}
	return d.CloseTimeout
}

func (d *StompDialer) logger() logging.Logger {
	if d.Logger == nil {
		return logging.Nop()
	}
	return d.Logger
}

type stompSession struct {
	conn *stomp.Conn
	sub  *stomp.Subscription
}

func (s *stompSession) Next(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case msg, ok := <-s.sub.C:
		if !ok {
			return nil, io.EOF
		}
		if msg.Err != nil {
			return nil, msg.Err
		}
		return msg.Body, nil
	}
}

// Close disconnects without an UNSUBSCRIBE, since DISCONNECT ends the
// subscription. A missing receipt falls back to closing the socket.
func (s *stompSession) Close() error {
	if err := s.conn.Disconnect(); err != nil {
		return s.conn.MustDisconnect()
	}
	return nil
}
