// Package lifecycle exposes harp's profile change events as lifecycle sources,
// so watchers can be supervised next to other workers.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/harp/pkg/core"
)

type profileSource struct {
	events <-chan core.Event
	filter func(core.Event) bool
	out    chan lifecycle.Event
}

// SourceOption configures a source.
type SourceOption func(*profileSource)

// WithFilter forwards only the events for which keep returns true.
func WithFilter(keep func(core.Event) bool) SourceOption {
	return func(s *profileSource) {
		s.filter = keep
	}
}

// NewSource creates a lifecycle.Source emitting the profile change events
// read from events. The source output closes when events closes or the
// context passed to Start is done.
func NewSource(events <-chan core.Event, opts ...SourceOption) lifecycle.Source {
	s := &profileSource{
		events: events,
		out:    make(chan lifecycle.Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *profileSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *profileSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				if s.filter != nil && !s.filter(e) {
					continue
				}
				// core.Event satisfies lifecycle.Event through String().
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
