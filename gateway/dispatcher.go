// Package gateway adapts discordgo events and REST calls to the game
// collaborator interfaces.
package gateway

import (
	"context"
	"sync"
	"time"

	"travis-bott/games"

	"github.com/bwmarrin/discordgo"
)

type reactionWaiter struct {
	match games.ReactionMatch
	ch    chan games.ReactionEvent
}

type messageWaiter struct {
	match games.MessageMatch
	ch    chan games.MessageEvent
}

// Dispatcher fans gateway events out to goroutines blocked in AwaitReaction
// or AwaitMessage. An event resolves every waiter it matches, once; events
// nobody is waiting for are dropped.
type Dispatcher struct {
	mu        sync.Mutex
	nextID    uint64
	reactions map[uint64]*reactionWaiter
	messages  map[uint64]*messageWaiter
	closed    bool
	done      chan struct{}
	now       func() time.Time
}

// NewDispatcher returns an open Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		reactions: make(map[uint64]*reactionWaiter),
		messages:  make(map[uint64]*messageWaiter),
		done:      make(chan struct{}),
		now:       time.Now,
	}
}

// OnReactionAdd is the discordgo handler for MessageReactionAdd.
func (d *Dispatcher) OnReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	d.DeliverReaction(ReactionEventFrom(s, r, d.now()))
}

// OnMessageCreate is the discordgo handler for MessageCreate.
func (d *Dispatcher) OnMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	d.DeliverMessage(MessageEventFrom(s, m, d.now()))
}

// ReactionEventFrom converts a gateway reaction. Reactions from bots, and
// from this bot in particular, are flagged IsBot.
func ReactionEventFrom(s *discordgo.Session, r *discordgo.MessageReactionAdd, at time.Time) games.ReactionEvent {
	e := games.ReactionEvent{
		MessageID: r.MessageID,
		ChannelID: r.ChannelID,
		UserID:    r.UserID,
		Emoji:     r.Emoji.Name,
		At:        at,
	}
	if r.Emoji.ID != "" {
		e.Emoji = r.Emoji.APIName()
	}
	if r.Member != nil && r.Member.User != nil && r.Member.User.Bot {
		e.IsBot = true
	}
	if s != nil && s.State != nil && s.State.User != nil && s.State.User.ID == r.UserID {
		e.IsBot = true
	}
	return e
}

// MessageEventFrom converts a gateway message.
func MessageEventFrom(s *discordgo.Session, m *discordgo.MessageCreate, at time.Time) games.MessageEvent {
	e := games.MessageEvent{
		MessageID: m.ID,
		ChannelID: m.ChannelID,
		Content:   m.Content,
		At:        at,
	}
	if m.Author != nil {
		e.UserID = m.Author.ID
		e.IsBot = m.Author.Bot
	}
	if s != nil && s.State != nil && s.State.User != nil && s.State.User.ID == e.UserID {
		e.IsBot = true
	}
	return e
}

// DeliverReaction resolves every waiter matching e and reports how many.
func (d *Dispatcher) DeliverReaction(e games.ReactionEvent) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	delivered := 0
	for id, w := range d.reactions {
		if !w.match(e) {
			continue
		}
		delete(d.reactions, id)
		w.ch <- e
		delivered++
	}
	return delivered
}

// DeliverMessage resolves every waiter matching e and reports how many.
func (d *Dispatcher) DeliverMessage(e games.MessageEvent) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	delivered := 0
	for id, w := range d.messages {
		if !w.match(e) {
			continue
		}
		delete(d.messages, id)
		w.ch <- e
		delivered++
	}
	return delivered
}

// AwaitReaction blocks until a reaction matches, the timeout passes, ctx is
// cancelled or the dispatcher is closed.
func (d *Dispatcher) AwaitReaction(ctx context.Context, match games.ReactionMatch, timeout time.Duration) (games.ReactionEvent, error) {
	w := &reactionWaiter{match: match, ch: make(chan games.ReactionEvent, 1)}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return games.ReactionEvent{}, games.ErrCancelled
	}
	d.nextID++
	id := d.nextID
	d.reactions[id] = w
	d.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var cause error
	select {
	case e := <-w.ch:
		return e, nil
	case <-timer.C:
		cause = games.ErrTimedOut
	case <-ctx.Done():
		cause = games.ErrCancelled
	case <-d.done:
		cause = games.ErrCancelled
	}

	d.mu.Lock()
	_, pending := d.reactions[id]
	delete(d.reactions, id)
	d.mu.Unlock()

	if !pending {
		// Delivered while we were giving up.
		return <-w.ch, nil
	}
	return games.ReactionEvent{}, cause
}

// AwaitMessage is AwaitReaction for channel messages.
func (d *Dispatcher) AwaitMessage(ctx context.Context, match games.MessageMatch, timeout time.Duration) (games.MessageEvent, error) {
	w := &messageWaiter{match: match, ch: make(chan games.MessageEvent, 1)}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return games.MessageEvent{}, games.ErrCancelled
	}
	d.nextID++
	id := d.nextID
	d.messages[id] = w
	d.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var cause error
	select {
	case e := <-w.ch:
		return e, nil
	case <-timer.C:
		cause = games.ErrTimedOut
	case <-ctx.Done():
		cause = games.ErrCancelled
	case <-d.done:
		cause = games.ErrCancelled
	}

	d.mu.Lock()
	_, pending := d.messages[id]
	delete(d.messages, id)
	d.mu.Unlock()

	if !pending {
		return <-w.ch, nil
	}
	return games.MessageEvent{}, cause
}

// Pending reports how many waits are outstanding.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.reactions) + len(d.messages)
}

// Close resolves every pending and future wait with ErrCancelled.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	close(d.done)
}
