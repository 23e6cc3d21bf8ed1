package utils

import (
	"fmt"
	"sync"
	"time"
)

// CooldownError is returned when a member uses a command again too soon
type CooldownError struct {
	Command    string
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf(CooldownMessage, fmt.Sprintf("%.2f", e.RetryAfter.Seconds()))
}

// Cooldowns tracks one use per member per window for each command
type Cooldowns struct {
	mutex sync.Mutex
	last  map[string]time.Time
	now   func() time.Time
}

// Global cooldown tracker
var CommandCooldowns = NewCooldowns()

// NewCooldowns creates an empty tracker
func NewCooldowns() *Cooldowns {
	return &Cooldowns{
		last: make(map[string]time.Time),
		now:  time.Now,
	}
}

// Use records a use of command by userID and returns a CooldownError if the
// previous use is still within per. A zero per disables the cooldown.
func (c *Cooldowns) Use(command, userID string, per time.Duration) error {
	if per <= 0 {
		return nil
	}

	key := command + ":" + userID
	now := c.now()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if last, ok := c.last[key]; ok {
		if elapsed := now.Sub(last); elapsed < per {
			return &CooldownError{Command: command, RetryAfter: per - elapsed}
		}
	}
	c.last[key] = now
	return nil
}

// Reset forgets a use, so a command that failed early does not cost the
// member their cooldown
func (c *Cooldowns) Reset(command, userID string) {
	c.mutex.Lock()
	delete(c.last, command+":"+userID)
	c.mutex.Unlock()
}

// Prune drops entries older than maxAge and returns how many were removed
func (c *Cooldowns) Prune(maxAge time.Duration) int {
	cutoff := c.now().Add(-maxAge)

	c.mutex.Lock()
	defer c.mutex.Unlock()

	removed := 0
	for key, last := range c.last {
		if last.Before(cutoff) {
			delete(c.last, key)
			removed++
		}
	}
	return removed
}
