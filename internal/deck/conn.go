// Package deck speaks the Stream Deck plugin protocol over a local WebSocket.
package deck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/artcc/contribdeck/internal/raster"
)

var ErrClosed = errors.New("deck: connection closed")

// Handler receives the events of the buttons owned by the plugin.
type Handler interface {
	WillAppear(ctx context.Context, target string, s Settings)
	WillDisappear(ctx context.Context, target string)
	KeyUp(ctx context.Context, target string, s Settings)
	DidReceiveSettings(ctx context.Context, target string, s Settings)
}

// Sender is the outgoing half of the protocol.
type Sender interface {
	SetTitle(target, title string) error
	SetImage(target string, png []byte) error
	GetSettings(target string) error
	LogMessage(msg string) error
	Connected() bool
}

// Conn is a registered connection to the host.
type Conn struct {
	ws        *websocket.Conn
	uuid      string
	mu        sync.Mutex
	connected atomic.Bool
}

var _ Sender = (*Conn)(nil)

// Dial connects to the host on 127.0.0.1:port and registers the plugin.
func Dial(ctx context.Context, port int, uuid, registerEvent string) (*Conn, error) {
	url := "ws://" + net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	return DialURL(ctx, url, uuid, registerEvent)
}

// DialURL is Dial with an explicit socket URL.
func DialURL(ctx context.Context, url, uuid, registerEvent string) (*Conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	c := &Conn{ws: ws, uuid: uuid}
	if err := c.write(map[string]string{"event": registerEvent, "uuid": uuid}); err != nil {
		ws.Close()
		return nil, fmt.Errorf("register plugin: %w", err)
	}
	c.connected.Store(true)
	log.WithField("url", url).Debug("registered with host")
	return c, nil
}

// Run reads events until ctx is done or the socket fails, dispatching each to
// h on the reading goroutine. It returns nil when ctx ends the loop.
func (c *Conn) Run(ctx context.Context, h Handler) error {
	stop := context.AfterFunc(ctx, func() { c.Close() })
	defer stop()

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			c.connected.Store(false)
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read event: %w", err)
		}
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			log.WithError(err).Warn("dropping malformed event")
			continue
		}
		c.dispatch(ctx, h, ev)
	}
}

func (c *Conn) dispatch(ctx context.Context, h Handler, ev Event) {
	entry := log.WithFields(log.Fields{"event": ev.Event, "target": ev.Context})
	entry.Debug("received event")

	var p Payload
	switch ev.Event {
	case EventKeyUp, EventWillAppear, EventDidReceiveSettings:
		var err error
		if p, err = ev.ParsePayload(); err != nil {
			entry.WithError(err).Warn("dropping event")
			return
		}
	}

	switch ev.Event {
	case EventKeyUp:
		h.KeyUp(ctx, ev.Context, p.Settings)
	case EventWillAppear:
		h.WillAppear(ctx, ev.Context, p.Settings)
	case EventWillDisappear:
		h.WillDisappear(ctx, ev.Context)
	case EventDidReceiveSettings:
		h.DidReceiveSettings(ctx, ev.Context, p.Settings)
	}
}

func (c *Conn) SetTitle(target, title string) error {
	return c.send(EventSetTitle, target, map[string]any{"title": title, "target": 0})
}

// SetImage shows png on the button.
func (c *Conn) SetImage(target string, png []byte) error {
	return c.send(EventSetImage, target, map[string]any{"image": raster.DataURL(png), "target": 0})
}

// GetSettings asks the host to answer with a didReceiveSettings event.
func (c *Conn) GetSettings(target string) error {
	return c.send(EventGetSettings, target, nil)
}

func (c *Conn) LogMessage(msg string) error {
	return c.send(EventLogMessage, "", map[string]string{"message": msg})
}

func (c *Conn) Connected() bool {
	return c.connected.Load()
}

func (c *Conn) Close() error {
	c.connected.Store(false)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.Close()
}

func (c *Conn) send(event, target string, payload any) error {
	msg := map[string]any{"event": event}
	if target != "" {
		msg["context"] = target
	}
	if payload != nil {
		msg["payload"] = payload
	}
	return c.write(msg)
}

// write serializes writers; gorilla connections allow one concurrent writer.
func (c *Conn) write(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ws.WriteJSON(v); err != nil {
		if errors.Is(err, websocket.ErrCloseSent) || errors.Is(err, net.ErrClosed) {
			return ErrClosed
		}
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}
