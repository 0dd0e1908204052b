package dialogue

import (
	"fmt"
	"sync"
)

// TurnGuard enforces strictly sequential turns per session: while one turn's
// provider call is outstanding, further messages for the same user and kind
// are rejected instead of interleaved.
type TurnGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func NewTurnGuard() *TurnGuard {
	return &TurnGuard{active: make(map[string]struct{})}
}

func guardKey(userID uint, kind Kind) string {
	return fmt.Sprintf("%d:%s", userID, kind)
}

// TryAcquire claims the session's turn slot. Returns false when a turn is
// already in flight.
func (g *TurnGuard) TryAcquire(userID uint, kind Kind) bool {
	key := guardKey(userID, kind)
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.active[key]; busy {
		return false
	}
	g.active[key] = struct{}{}
	return true
}

// Release frees the session's turn slot.
func (g *TurnGuard) Release(userID uint, kind Kind) {
	key := guardKey(userID, kind)
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, key)
}
