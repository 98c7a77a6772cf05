package chat

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	socketDialTimeout  = 10 * time.Second
	socketPingInterval = 30 * time.Second
	backoffInitial     = time.Second
	backoffMax         = 30 * time.Second
)

// Listener maintains the websocket to the server and publishes decoded
// events. It reconnects with exponential backoff until stopped; every drop
// and recovery is visible to the consumer as Disconnected/Connected events.
type Listener struct {
	url   string
	token string

	ctx    context.Context
	cancel context.CancelFunc

	events chan Event
	wg     sync.WaitGroup

	dial func(ctx context.Context, url string) (socketConn, error)
}

// socketConn is the slice of *websocket.Conn the listener needs; tests
// substitute a scripted connection.
type socketConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

// NewListener creates a listener for the given websocket URL. The token is
// sent as the first authentication frame after each (re)connect.
func NewListener(url, token string) *Listener {
	ctx, cancel := context.WithCancel(context.Background())
	l := &Listener{
		url:    url,
		token:  token,
		ctx:    ctx,
		cancel: cancel,
		events: make(chan Event, 64),
		dial:   dialWebsocket,
	}
	l.wg.Add(1)
	go l.run()
	go func() {
		l.wg.Wait()
		close(l.events)
	}()
	return l
}

// Events returns the ordered stream of socket events.
func (l *Listener) Events() <-chan Event {
	return l.events
}

// Stop tears the connection down. The events channel closes once the reader
// goroutine has exited; use Wait for a clean drain in tests.
func (l *Listener) Stop() {
	l.cancel()
}

// Wait blocks until the reader goroutine has exited.
func (l *Listener) Wait() {
	l.wg.Wait()
}

// authenticate sends the challenge frame carrying the session token. The
// server streams no domain events on an unauthenticated socket.
func (l *Listener) authenticate(conn socketConn) error {
	frame := struct {
		Seq    int               `json:"seq"`
		Action string            `json:"action"`
		Data   map[string]string `json:"data"`
	}{
		Seq:    1,
		Action: "authentication_challenge",
		Data:   map[string]string{"token": l.token},
	}
	raw, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, raw)
}

func dialWebsocket(ctx context.Context, url string) (socketConn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: socketDialTimeout}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (l *Listener) run() {
	defer l.wg.Done()

	backoff := backoffInitial
	for {
		if l.ctx.Err() != nil {
			return
		}
		conn, err := l.dial(l.ctx, l.url)
		if err == nil {
			if authErr := l.authenticate(conn); authErr != nil {
				conn.Close()
				err = authErr
			}
		}
		if err != nil {
			if !l.emit(DisconnectedEvent{Err: err}) {
				return
			}
			if !l.sleep(backoff) {
				return
			}
			backoff *= 2
			if backoff > backoffMax {
				backoff = backoffMax
			}
			continue
		}
		backoff = backoffInitial
		if !l.emit(ConnectedEvent{}) {
			conn.Close()
			return
		}
		err = l.read(conn)
		conn.Close()
		if l.ctx.Err() != nil {
			return
		}
		if !l.emit(DisconnectedEvent{Err: err}) {
			return
		}
		if !l.sleep(backoff) {
			return
		}
	}
}

// read pumps frames until the connection fails. A separate goroutine keeps
// the connection alive with pings; it exits when read returns.
func (l *Listener) read(conn socketConn) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(socketPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-l.ctx.Done():
				return
			case <-ticker.C:
				deadline := time.Now().Add(socketDialTimeout)
				if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					return
				}
			}
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		evt, ok, err := decodeFrame(raw)
		if err != nil {
			// A malformed payload is a server bug, not a reason to
			// drop the connection. Skip the frame.
			continue
		}
		if !ok {
			continue
		}
		if !l.emit(evt) {
			return nil
		}
	}
}

func (l *Listener) emit(evt Event) bool {
	select {
	case <-l.ctx.Done():
		return false
	case l.events <- evt:
		return true
	}
}

func (l *Listener) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-l.ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
