// Package sse implements a Server-Sent Events broker that tells the UI shell
// when lists changed and when an operation failed.
package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/starford/inkpad/internal/models"
)

// countsTimeout bounds one badge count refresh.
const countsTimeout = 5 * time.Second

// Event represents an SSE event to broadcast.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Counter counts the notes of a scope.
type Counter interface {
	Count(ctx context.Context, scope models.Scope) (int, error)
}

// CategoryLister lists the registered category names.
type CategoryLister interface {
	Find(ctx context.Context) ([]string, error)
}

// Counts is the payload of counts.updated: every filter and category badge.
type Counts struct {
	Everything int            `json:"everything"`
	Starred    int            `json:"starred"`
	Archived   int            `json:"archived"`
	Categories map[string]int `json:"categories"`
}

type noteEventReq struct {
	kind string
	id   string
}

// Broker manages SSE client connections and broadcasts events.
//
// A single event loop owns the clients and the counts throttle. Public
// methods talk to it through channels. Counts are read from the store in
// a separate goroutine and come back to the loop as a regular event.
type Broker struct {
	countsMin  time.Duration
	notes      Counter
	categories CategoryLister

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	noteEventCh   chan noteEventReq
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// Option configures a Broker.
type Option func(*Broker)

// WithCounts makes counts.updated carry the badge counts read from notes
// and categories. Without it the event has an empty payload.
func WithCounts(notes Counter, categories CategoryLister) Option {
	return func(b *Broker) {
		b.notes = notes
		b.categories = categories
	}
}

// NewBroker creates a new SSE broker. counts.updated is sent at most once
// per countsThrottle; changes inside the window are covered by one
// trailing event when the window ends.
func NewBroker(countsThrottle time.Duration, opts ...Option) *Broker {
	if countsThrottle <= 0 {
		countsThrottle = time.Second
	}

	b := &Broker{
		countsMin:     countsThrottle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		noteEventCh:   make(chan noteEventReq, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	for _, o := range opts {
		o(b)
	}

	go b.run()
	return b
}

func noteEventType(kind string) string {
	switch kind {
	case "created", "updated", "deleted":
		return "note." + kind
	}
	return ""
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var (
		lastCounts time.Time
		trailing   *time.Timer
		trailingC  <-chan time.Time
	)
	defer func() {
		if trailing != nil {
			trailing.Stop()
		}
	}()

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		raw := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload))

		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Client buffer full; skip to avoid blocking broker loop.
			}
		}
	}

	emitCounts := func(now time.Time) {
		lastCounts = now
		if b.notes == nil {
			broadcast(Event{Type: "counts.updated", Data: map[string]int{}})
			return
		}
		go b.publishCounts()
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case req := <-b.noteEventCh:
			if typ := noteEventType(req.kind); typ != "" {
				broadcast(Event{Type: typ, Data: map[string]string{"id": req.id}})
			}

			now := time.Now()
			switch wait := b.countsMin - now.Sub(lastCounts); {
			case wait <= 0:
				emitCounts(now)
			case trailingC == nil:
				trailing = time.NewTimer(wait)
				trailingC = trailing.C
			}

		case now := <-trailingC:
			trailing, trailingC = nil, nil
			emitCounts(now)

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// publishCounts reads every badge count and publishes counts.updated.
func (b *Broker) publishCounts() {
	ctx, cancel := context.WithTimeout(context.Background(), countsTimeout)
	defer cancel()

	counts, err := b.readCounts(ctx)
	if err != nil {
		b.ReportError(fmt.Errorf("refresh counts: %w", err))
		return
	}
	b.Publish(Event{Type: "counts.updated", Data: counts})
}

func (b *Broker) readCounts(ctx context.Context) (Counts, error) {
	var (
		c   = Counts{Categories: map[string]int{}}
		err error
	)
	if c.Everything, err = b.notes.Count(ctx, models.Everything()); err != nil {
		return c, err
	}
	if c.Starred, err = b.notes.Count(ctx, models.Starred()); err != nil {
		return c, err
	}
	if c.Archived, err = b.notes.Count(ctx, models.Archived()); err != nil {
		return c, err
	}
	if b.categories == nil {
		return c, nil
	}
	names, err := b.categories.Find(ctx)
	if err != nil {
		return c, err
	}
	for _, name := range names {
		n, err := b.notes.Count(ctx, models.InCategory(name))
		if err != nil {
			return c, err
		}
		c.Categories[name] = n
	}
	return c, nil
}

// Close gracefully stops broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// NoteChanged publishes a note change and a throttled counts.updated event.
func (b *Broker) NoteChanged(kind, id string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.noteEventCh <- noteEventReq{kind: kind, id: id}:
	case <-b.stopped:
	}
}

// ListChanged tells clients to re-read one list model.
func (b *Broker) ListChanged(list string) {
	b.Publish(Event{Type: "list.changed", Data: map[string]string{"list": list}})
}

// ReportError broadcasts a failed operation as an error event.
func (b *Broker) ReportError(err error) {
	if err == nil {
		return
	}
	b.Publish(Event{Type: "error", Data: map[string]string{"message": err.Error()}})
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
