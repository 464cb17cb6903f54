package server

import (
	"sync"

	"github.com/itzperi/omnimeet/internal/event"
	"github.com/itzperi/omnimeet/internal/session"
)

// Pump bridges store notifications to hub broadcasts. One goroutine per
// stream plus one for session state; each keeps a cursor into its log so
// a coalesced notification still flushes every entry exactly once.
type Pump struct {
	store *session.Store
	hub   *Hub

	mu      sync.Mutex
	stop    chan struct{}
	wg      sync.WaitGroup
	running bool
}

func NewPump(store *session.Store, hub *Hub) *Pump {
	return &Pump{store: store, hub: hub}
}

func (p *Pump) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.running = true
	p.stop = make(chan struct{})

	p.wg.Add(1)
	go p.pumpState(p.stop)

	for _, kind := range event.Kinds() {
		p.wg.Add(1)
		go p.pumpStream(kind, p.stop)
	}
}

func (p *Pump) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stop)
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pump) pumpState(stop chan struct{}) {
	defer p.wg.Done()

	ch := p.store.SubscribeState()
	defer p.store.UnsubscribeState(ch)

	for {
		select {
		case <-stop:
			return
		case <-ch:
			p.hub.BroadcastStateChanged(p.store.State())
		}
	}
}

func (p *Pump) pumpStream(kind event.Kind, stop chan struct{}) {
	defer p.wg.Done()

	ch := p.store.Subscribe(kind)
	defer p.store.Unsubscribe(kind, ch)

	cursor := 0
	status := p.store.StreamStatus(kind)

	for {
		select {
		case <-stop:
			return
		case <-ch:
			cursor = p.flushStream(kind, cursor)
			if next := p.store.StreamStatus(kind); next != status {
				status = next
				p.hub.BroadcastProducerStatus(kind, status)
			}
		}
	}
}

// flushStream broadcasts everything past the cursor and returns the new
// cursor. Question and analytics streams are snapshot-shaped rather than
// append-only on the wire, so their cursor tracks length only to skip
// no-op notifications.
func (p *Pump) flushStream(kind event.Kind, cursor int) int {
	switch kind {
	case event.KindTranscript:
		entries := p.store.Transcript()
		for _, e := range entries[min(cursor, len(entries)):] {
			p.hub.BroadcastTranscript(e)
		}
		return len(entries)
	case event.KindTranslation:
		entries := p.store.Translations()
		for _, e := range entries[min(cursor, len(entries)):] {
			p.hub.BroadcastTranslation(e)
		}
		return len(entries)
	case event.KindChat:
		entries := p.store.ChatLog()
		for _, m := range entries[min(cursor, len(entries)):] {
			p.hub.BroadcastChat(m)
		}
		return len(entries)
	case event.KindQuestion:
		p.hub.BroadcastQuestions(p.store.Questions())
		return cursor
	case event.KindAnalytics:
		p.hub.BroadcastAnalytics(p.store.LatestSamples(), p.store.Participants())
		return cursor
	}
	return cursor
}
