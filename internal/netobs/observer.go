// Package netobs streams the derived event feed to websocket observers.
// Observers are read-only: the endpoint never accepts commands, and a slow
// subscriber sheds its oldest queued events rather than backpressuring the
// router.
package netobs

import (
	"context"
	"net/http"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/0xwonj/dungeon-sub001/logging"
)

const (
	subscriberQueueSize = 128
	writeTimeout        = 10 * time.Second
	pingInterval        = 30 * time.Second
)

type subscriber struct {
	conn  *websocket.Conn
	queue chan logging.Event
	done  chan struct{}
}

// Observer is a logging.Sink that fans events out to websocket subscribers.
// Register its Handler on an HTTP mux and attach the observer to the router.
type Observer struct {
	logger   *charmlog.Logger
	upgrader websocket.Upgrader

	mu          sync.Mutex
	subscribers map[*subscriber]struct{}
	closed      bool
}

// NewObserver builds an observer endpoint. A nil logger silences connection
// diagnostics.
func NewObserver(logger *charmlog.Logger) *Observer {
	if logger == nil {
		logger = charmlog.New(nil)
	}
	return &Observer{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		subscribers: make(map[*subscriber]struct{}),
	}
}

// Name implements logging.Sink.
func (o *Observer) Name() string { return "observer" }

// Deliver implements logging.Sink: the event is queued to every subscriber,
// dropping each subscriber's oldest event when its queue is full.
func (o *Observer) Deliver(_ context.Context, event logging.Event) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for sub := range o.subscribers {
		select {
		case sub.queue <- event:
		default:
			select {
			case <-sub.queue:
			default:
			}
			select {
			case sub.queue <- event:
			default:
			}
		}
	}
	return nil
}

// Close implements logging.Sink: it disconnects every subscriber.
func (o *Observer) Close(context.Context) error {
	o.mu.Lock()
	o.closed = true
	subs := make([]*subscriber, 0, len(o.subscribers))
	for sub := range o.subscribers {
		subs = append(subs, sub)
	}
	o.subscribers = make(map[*subscriber]struct{})
	o.mu.Unlock()

	for _, sub := range subs {
		close(sub.queue)
		<-sub.done
	}
	return nil
}

// Handler upgrades the request to a websocket and streams events until the
// client disconnects.
func (o *Observer) Handler(w http.ResponseWriter, r *http.Request) {
	conn, err := o.upgrader.Upgrade(w, r, nil)
	if err != nil {
		o.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	sub := &subscriber{
		conn:  conn,
		queue: make(chan logging.Event, subscriberQueueSize),
		done:  make(chan struct{}),
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		conn.Close()
		return
	}
	o.subscribers[sub] = struct{}{}
	o.mu.Unlock()

	o.logger.Info("observer connected", "remote", r.RemoteAddr)
	go o.readLoop(sub)
	o.writeLoop(sub)

	o.mu.Lock()
	delete(o.subscribers, sub)
	o.mu.Unlock()
	conn.Close()
	o.logger.Info("observer disconnected", "remote", r.RemoteAddr)
}

// readLoop discards inbound frames; observers have no command surface. It
// exists to service control frames and detect disconnects.
func (o *Observer) readLoop(sub *subscriber) {
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			sub.conn.Close()
			return
		}
	}
}

func (o *Observer) writeLoop(sub *subscriber) {
	defer close(sub.done)
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case event, ok := <-sub.queue:
			if !ok {
				sub.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "shutdown"),
					time.Now().Add(writeTimeout))
				return
			}
			sub.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := sub.conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			sub.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
