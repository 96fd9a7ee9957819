package tool

import (
	"time"

	"github.com/harunnryd/planpal/internal/calendar"
	"github.com/harunnryd/planpal/internal/timeparse"
)

// Session is the per-request context handed to tools. It is never shared
// between requests.
type Session struct {
	Gateway  calendar.Gateway
	Now      time.Time
	Location *time.Location
	Resolver *timeparse.Resolver
	// Clock, when set, is read at invocation time instead of Now.
	Clock func() time.Time
}

func NewSession(gateway calendar.Gateway, resolver *timeparse.Resolver, clock func() time.Time) *Session {
	if clock == nil {
		clock = time.Now
	}
	loc := resolver.Location()
	return &Session{
		Gateway:  gateway,
		Now:      clock().In(loc),
		Location: loc,
		Resolver: resolver,
		Clock:    clock,
	}
}

// CurrentTime is the instant relative phrases are resolved against.
func (s *Session) CurrentTime() time.Time {
	now := s.Now
	if s.Clock != nil {
		now = s.Clock()
	}
	return now.In(s.TimeZone())
}

// TimeZone is the location results are presented in.
func (s *Session) TimeZone() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	if s.Resolver != nil {
		return s.Resolver.Location()
	}
	return time.UTC
}
