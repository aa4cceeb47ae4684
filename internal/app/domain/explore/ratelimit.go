package explore

import "time"

// messageLimiter is a sliding-window counter for one socket. It is owned by
// the session loop and is not safe for concurrent use.
type messageLimiter struct {
	maxMessages int
	window      time.Duration
	requests    []time.Time
}

func newMessageLimiter(maxMessages int, window time.Duration) *messageLimiter {
	return &messageLimiter{maxMessages: maxMessages, window: window}
}

func (l *messageLimiter) allow(now time.Time) bool {
	cutoff := now.Add(-l.window)
	valid := l.requests[:0]
	for _, t := range l.requests {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	l.requests = valid

	if len(l.requests) >= l.maxMessages {
		return false
	}
	l.requests = append(l.requests, now)
	return true
}
