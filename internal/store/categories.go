package store

import (
	"go.uber.org/zap"

	"github.com/fastygo/dialin/domain"
	"github.com/fastygo/dialin/internal/bus"
)

type Categories struct {
	*Collection[domain.Category, domain.CategoryPatch, *domain.Category]
}

func NewCategories(remote Remote[domain.Category, domain.CategoryPatch], b *bus.Bus, logger *zap.Logger, opts Options) (*Categories, func()) {
	c := NewCollection[domain.Category, domain.CategoryPatch](domain.DomainCategories, remote, logger, opts)
	detach := c.Attach(b, func(ev bus.UserDataLoadedEvent) []domain.Category { return ev.Categories })
	return &Categories{Collection: c}, detach
}
