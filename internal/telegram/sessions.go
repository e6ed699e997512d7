package telegram

import (
	"context"
	"sync"
	"time"
)

// generation is an in-flight /plan request for one chat.
type generation struct {
	cancel    context.CancelFunc
	messageID int
	startedAt time.Time
}

// sessionRegistry tracks at most one running generation per chat so that
// /cancel can reach it.
type sessionRegistry struct {
	mu     sync.Mutex
	byChat map[int64]*generation
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{byChat: make(map[int64]*generation)}
}

// Start registers a generation for chatID. It returns false when one is
// already running. The returned done func must be called when it finishes.
func (r *sessionRegistry) Start(parent context.Context, chatID int64, messageID int) (context.Context, func(), bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, busy := r.byChat[chatID]; busy {
		return nil, nil, false
	}

	ctx, cancel := context.WithCancel(parent)
	g := &generation{cancel: cancel, messageID: messageID, startedAt: time.Now()}
	r.byChat[chatID] = g

	done := func() {
		cancel()
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.byChat[chatID] == g {
			delete(r.byChat, chatID)
		}
	}
	return ctx, done, true
}

// Cancel cancels the running generation of chatID, if any.
func (r *sessionRegistry) Cancel(chatID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.byChat[chatID]
	if !ok {
		return false
	}
	g.cancel()
	return true
}

// Active reports whether chatID has a running generation.
func (r *sessionRegistry) Active(chatID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byChat[chatID]
	return ok
}
