package store

import (
	"go.uber.org/zap"

	"github.com/fastygo/dialin/domain"
	"github.com/fastygo/dialin/internal/bus"
)

type Rules struct {
	*Collection[domain.Rule, domain.RulePatch, *domain.Rule]
}

func NewRules(remote Remote[domain.Rule, domain.RulePatch], b *bus.Bus, logger *zap.Logger, opts Options) (*Rules, func()) {
	c := NewCollection[domain.Rule, domain.RulePatch](domain.DomainRules, remote, logger, opts)
	detach := c.Attach(b, func(ev bus.UserDataLoadedEvent) []domain.Rule { return ev.Rules })
	return &Rules{Collection: c}, detach
}

// Active returns the rules currently switched on.
func (r *Rules) Active() []domain.Rule {
	var out []domain.Rule
	for _, rule := range r.Items() {
		if rule.IsActive {
			out = append(out, rule)
		}
	}
	return out
}
