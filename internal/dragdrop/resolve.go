package dragdrop

import (
	"math"

	"github.com/evanschultz/kanwow/internal/domain"
)

// CardBox is a rendered card's bounding box keyed by task id.
type CardBox struct {
	ID   string
	Rect domain.Rect
}

// ResolveDropIndex returns the insertion index for a pointer at pointerY over cards, skipping
// the card being dragged. The index is the position of the nearest card whose vertical midpoint
// lies below the pointer, or the end of the list when none does. Positions are counted in the
// list with the dragged card removed, which is what Board.MoveTask expects.
func ResolveDropIndex(pointerY float64, cards []CardBox, draggingID string) int {
	best := -1
	bestOffset := math.Inf(-1)
	pos := 0
	for _, card := range cards {
		if card.ID == draggingID {
			continue
		}
		offset := pointerY - card.Rect.MidY()
		if offset < 0 && offset > bestOffset {
			bestOffset = offset
			best = pos
		}
		pos++
	}
	if best < 0 {
		return pos
	}
	return best
}
