package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Endpoint names a streaming resource of the controller.
type Endpoint string

const (
	EndpointMemory      Endpoint = "memory"
	EndpointTraffic     Endpoint = "traffic"
	EndpointConnections Endpoint = "connections"
	EndpointLogs        Endpoint = "logs"
)

// closeWriteTimeout bounds the close handshake write in Close.
const closeWriteTimeout = time.Second

// Stream yields raw JSON frames. Recv returns io.EOF once the peer closes
// the stream normally.
type Stream interface {
	Recv(ctx context.Context) ([]byte, error)
	Close() error
}

type frame struct {
	data []byte
	err  error
}

// wsStream pumps websocket messages into a small buffered channel so that
// Recv can honour context cancellation.
type wsStream struct {
	conn   *websocket.Conn
	frames chan frame

	closeOnce sync.Once
	done      chan struct{}
}

// Subscribe opens a websocket stream for endpoint. The websocket URL mirrors
// the HTTP base address with the scheme switched to ws or wss; the secret is
// passed both as a bearer header and as the token query parameter.
func (c *Client) Subscribe(ctx context.Context, endpoint Endpoint, params url.Values) (Stream, error) {
	wsURL, err := c.streamURL(endpoint, params)
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	header.Set("User-Agent", c.userAgent)
	if c.secret != "" {
		header.Set("Authorization", "Bearer "+c.secret)
	}
	conn, resp, err := c.dialer.DialContext(ctx, wsURL.String(), header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, &StatusError{Method: http.MethodGet, Path: "/" + string(endpoint), Code: resp.StatusCode}
		}
		return nil, fmt.Errorf("subscribe %s: %w", endpoint, err)
	}
	s := &wsStream{
		conn:   conn,
		frames: make(chan frame, 16),
		done:   make(chan struct{}),
	}
	go s.pump()
	return s, nil
}

func (c *Client) streamURL(endpoint Endpoint, params url.Values) (*url.URL, error) {
	query := url.Values{}
	for k, v := range params {
		query[k] = append([]string(nil), v...)
	}
	if c.secret != "" {
		query.Set("token", c.secret)
	}
	u := c.endpoint("/"+string(endpoint), query)
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("subscribe %s: unsupported scheme %q", endpoint, u.Scheme)
	}
	return u, nil
}

func (s *wsStream) pump() {
	defer close(s.frames)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				err = io.EOF
			}
			select {
			case s.frames <- frame{err: err}:
			case <-s.done:
			}
			return
		}
		select {
		case s.frames <- frame{data: data}:
		case <-s.done:
			return
		}
	}
}

func (s *wsStream) Recv(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case f, ok := <-s.frames:
		if !ok {
			return nil, io.EOF
		}
		return f.data, f.err
	}
}

func (s *wsStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeWriteTimeout))
		err = s.conn.Close()
		if errors.Is(err, net.ErrClosed) {
			err = nil
		}
	})
	return err
}
