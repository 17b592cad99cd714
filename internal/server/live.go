package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	liveWriteWait = 10 * time.Second
	livePingEvery = 30 * time.Second
	liveBuffer    = 4
)

// notification is pushed to live preview clients.
type notification struct {
	Type          string `json:"type"` // ready or updated
	PublicationID string `json:"publicationId"`
}

// hub fans out save notifications to preview connections. A preview
// subscribes to its own publication and to its event, so saving the host
// publication refreshes every location of the event.
type hub struct {
	mu     sync.RWMutex
	subs   map[string]map[chan notification]struct{}
	closed bool
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[chan notification]struct{})}
}

func publicationTopic(id string) string { return "publication:" + id }

func eventTopic(id string) string { return "event:" + id }

// subscribe registers a channel for the topics. The returned function
// removes it again.
func (h *hub) subscribe(topics ...string) (<-chan notification, func()) {
	ch := make(chan notification, liveBuffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	for _, t := range topics {
		if h.subs[t] == nil {
			h.subs[t] = make(map[chan notification]struct{})
		}
		h.subs[t][ch] = struct{}{}
	}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for _, t := range topics {
				delete(h.subs[t], ch)
				if len(h.subs[t]) == 0 {
					delete(h.subs, t)
				}
			}
		})
	}
}

// publish delivers n once to every subscriber of any of the topics. Slow
// subscribers miss notifications rather than block the publisher.
func (h *hub) publish(n notification, topics ...string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	seen := make(map[chan notification]struct{})
	for _, t := range topics {
		for ch := range h.subs[t] {
			if _, ok := seen[ch]; ok {
				continue
			}
			seen[ch] = struct{}{}
			select {
			case ch <- n:
			default:
			}
		}
	}
}

// close ends every subscription.
func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	done := make(map[chan notification]struct{})
	for _, subs := range h.subs {
		for ch := range subs {
			if _, ok := done[ch]; !ok {
				done[ch] = struct{}{}
				close(ch)
			}
		}
	}
	h.subs = nil
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// live upgrades to a websocket that reports saves of the publication or of
// its event's host publication.
func (h *handlers) live(ctx echo.Context) error {
	p, err := h.opts.Store.Publication(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	conn, err := upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		// The upgrader has already replied.
		h.opts.Logger.Debug().Err(err).Str("publication", p.ID).Msg("live upgrade failed")
		return nil
	}
	defer conn.Close()

	topics := []string{publicationTopic(p.ID)}
	if p.EventID != "" {
		topics = append(topics, eventTopic(p.EventID))
	}
	updates, unsubscribe := h.hub.subscribe(topics...)
	defer unsubscribe()

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	send := func(n notification) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
		return conn.WriteJSON(n) == nil
	}
	if !send(notification{Type: "ready", PublicationID: p.ID}) {
		return nil
	}

	ping := time.NewTicker(livePingEvery)
	defer ping.Stop()
	for {
		select {
		case <-gone:
			return nil
		case n, ok := <-updates:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(liveWriteWait))
				return nil
			}
			if !send(n) {
				return nil
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteWait)); err != nil {
				return nil
			}
		}
	}
}
