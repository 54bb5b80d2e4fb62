package api

import "time"

func (l *RateLimiter) SetClock(now func() time.Time) { l.now = now }

var WriteJSON = writeJSON
