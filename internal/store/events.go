package store

import (
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/dialin/domain"
	"github.com/fastygo/dialin/internal/bus"
)

type Events struct {
	*Collection[domain.Event, domain.EventPatch, *domain.Event]
}

func NewEvents(remote Remote[domain.Event, domain.EventPatch], b *bus.Bus, logger *zap.Logger, opts Options) (*Events, func()) {
	c := NewCollection[domain.Event, domain.EventPatch](domain.DomainEvents, remote, logger, opts)
	detach := c.Attach(b, func(ev bus.UserDataLoadedEvent) []domain.Event { return ev.Events })
	return &Events{Collection: c}, detach
}

// Between returns events starting in [from, to).
func (e *Events) Between(from, to time.Time) []domain.Event {
	var out []domain.Event
	for _, ev := range e.Items() {
		if !ev.StartTime.Before(from) && ev.StartTime.Before(to) {
			out = append(out, ev)
		}
	}
	return out
}
