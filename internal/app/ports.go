package app

import (
	"context"

	"github.com/evanschultz/kanwow/internal/domain"
)

// BoardStore persists board snapshots and reports snapshots saved by other instances.
type BoardStore interface {
	Load(context.Context) domain.Board
	Save(context.Context, domain.Board)
	Persist(context.Context, domain.Board) bool
	OnExternalUpdate(func(domain.Board)) func()
}
