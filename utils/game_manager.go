package utils

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrChannelBusy is returned when an exclusive session is already running
// in the channel
var ErrChannelBusy = errors.New("a session of this kind is already running in this channel")

// ErrShuttingDown is returned once the manager stopped accepting sessions
var ErrShuttingDown = errors.New("bot is shutting down")

// Session is a running interactive command
type Session struct {
	ID        string
	Kind      string
	ChannelID string
	UserID    string
	StartedAt time.Time
	cancel    context.CancelFunc
}

// SessionManager tracks running sessions so they can be cancelled on
// shutdown and so exclusive kinds run once per channel
type SessionManager struct {
	sessions map[string]*Session
	// Index by kind and channel for the exclusivity check
	byChannel     map[string]map[string]string
	mutex         sync.Mutex
	maxAge        time.Duration
	closed        bool
	wg            sync.WaitGroup
	cleanupTicker *time.Ticker
	done          chan struct{}
}

// Global session manager
var Sessions *SessionManager

// NewSessionManager creates a manager that force-cancels sessions older
// than maxAge during cleanup
func NewSessionManager(maxAge time.Duration) *SessionManager {
	return &SessionManager{
		sessions:  make(map[string]*Session),
		byChannel: make(map[string]map[string]string),
		maxAge:    maxAge,
		done:      make(chan struct{}),
	}
}

// InitializeSessionManager sets up the global session manager
func InitializeSessionManager(maxAge time.Duration) {
	Sessions = NewSessionManager(maxAge)

	// Start cleanup routine every 90 seconds
	Sessions.cleanupTicker = time.NewTicker(90 * time.Second)
	go Sessions.cleanupRoutine()
}

// Start registers a session and returns a context cancelled when the
// session is stopped. Callers must call Finish with the returned session.
func (sm *SessionManager) Start(parent context.Context, kind, channelID, userID string, exclusive bool) (*Session, context.Context, error) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	if sm.closed {
		return nil, nil, ErrShuttingDown
	}

	if exclusive {
		if _, busy := sm.byChannel[kind][channelID]; busy {
			return nil, nil, ErrChannelBusy
		}
	}

	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		ID:        uuid.NewString(),
		Kind:      kind,
		ChannelID: channelID,
		UserID:    userID,
		StartedAt: time.Now(),
		cancel:    cancel,
	}

	sm.sessions[s.ID] = s
	if exclusive {
		if sm.byChannel[kind] == nil {
			sm.byChannel[kind] = make(map[string]string)
		}
		sm.byChannel[kind][channelID] = s.ID
	}
	sm.wg.Add(1)

	return s, ctx, nil
}

// Finish removes a session from tracking and releases its context
func (sm *SessionManager) Finish(s *Session) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	if _, exists := sm.sessions[s.ID]; !exists {
		return
	}
	sm.remove(s)
	sm.wg.Done()
}

// remove drops s from the indices. Caller holds the mutex.
func (sm *SessionManager) remove(s *Session) {
	s.cancel()
	delete(sm.sessions, s.ID)
	if ids, ok := sm.byChannel[s.Kind]; ok && ids[s.ChannelID] == s.ID {
		delete(ids, s.ChannelID)
		if len(ids) == 0 {
			delete(sm.byChannel, s.Kind)
		}
	}
}

// Busy reports whether an exclusive session of kind runs in channelID
func (sm *SessionManager) Busy(kind, channelID string) bool {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	_, busy := sm.byChannel[kind][channelID]
	return busy
}

// GetSessionStats returns the number of running sessions per kind
func (sm *SessionManager) GetSessionStats() map[string]int {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	stats := make(map[string]int)
	for _, s := range sm.sessions {
		stats[s.Kind]++
	}
	stats["total"] = len(sm.sessions)
	return stats
}

// Shutdown refuses new sessions, cancels running ones and waits for them
// to finish or for ctx to expire
func (sm *SessionManager) Shutdown(ctx context.Context) error {
	sm.mutex.Lock()
	if !sm.closed {
		sm.closed = true
		close(sm.done)
		if sm.cleanupTicker != nil {
			sm.cleanupTicker.Stop()
		}
	}
	for _, s := range sm.sessions {
		s.cancel()
	}
	count := len(sm.sessions)
	sm.mutex.Unlock()

	log.Info().Int("sessions", count).Msg("cancelling running sessions")

	finished := make(chan struct{})
	go func() {
		sm.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cleanupRoutine cancels sessions that outlived maxAge
func (sm *SessionManager) cleanupRoutine() {
	for {
		select {
		case <-sm.cleanupTicker.C:
			sm.cleanupExpiredSessions(time.Now())
		case <-sm.done:
			return
		}
	}
}

// cleanupExpiredSessions cancels stale sessions in a single pass
func (sm *SessionManager) cleanupExpiredSessions(now time.Time) int {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	cleaned := 0
	for _, s := range sm.sessions {
		if now.Sub(s.StartedAt) > sm.maxAge {
			sm.remove(s)
			sm.wg.Done()
			cleaned++
		}
	}

	if cleaned > 0 {
		log.Warn().Int("cleaned", cleaned).Int("remaining", len(sm.sessions)).Msg("cancelled stale sessions")
	}
	return cleaned
}
