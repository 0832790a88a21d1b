package versioning

import (
	"sort"

	"github.com/mtgvault/deckvault/internal/storage/models"
)

// diffKey is the composite identity a diff is computed over. The same card
// name on two different boards is a distinct entity.
type diffKey struct {
	name  string
	board models.Board
}

func (k diffKey) less(other diffKey) bool {
	if k.board != other.board {
		return k.board < other.board
	}
	return k.name < other.name
}

// Diff computes the semantic changes between two snapshots. It is a pure
// function: no I/O, and byte-identical output for identical inputs, because
// diffs are persisted and displayed as an audit trail.
//
// Each (name, board) key emits at most one entry for the net quantity
// delta. Keys present only in previous emit a removal of the full quantity;
// the output lists additions and quantity changes in sorted current-key
// order, then pure removals in sorted previous-key order.
func Diff(previous, current []models.SnapshotCard) []models.DeckChange {
	prevQty := quantitiesByKey(previous)
	currQty := quantitiesByKey(current)

	changes := []models.DeckChange{}

	for _, key := range sortedKeys(currQty) {
		curr := currQty[key]
		prev, existed := prevQty[key]

		switch {
		case !existed:
			changes = append(changes, models.DeckChange{
				Action:   models.ActionAdded,
				CardName: key.name,
				Board:    key.board,
				Quantity: curr,
			})
		case curr > prev:
			changes = append(changes, models.DeckChange{
				Action:   models.ActionAdded,
				CardName: key.name,
				Board:    key.board,
				Quantity: curr - prev,
			})
		case curr < prev:
			changes = append(changes, models.DeckChange{
				Action:   models.ActionRemoved,
				CardName: key.name,
				Board:    key.board,
				Quantity: prev - curr,
			})
		}
	}

	for _, key := range sortedKeys(prevQty) {
		if _, stillPresent := currQty[key]; stillPresent {
			continue
		}
		changes = append(changes, models.DeckChange{
			Action:   models.ActionRemoved,
			CardName: key.name,
			Board:    key.board,
			Quantity: prevQty[key],
		})
	}

	return changes
}

// quantitiesByKey folds a snapshot into net quantities per (name, board).
// Snapshots should not carry duplicate keys, but summing makes the diff
// robust if one does.
func quantitiesByKey(cards []models.SnapshotCard) map[diffKey]int {
	quantities := make(map[diffKey]int, len(cards))
	for _, card := range cards {
		quantities[diffKey{name: card.Name, board: card.Board}] += card.Quantity
	}
	return quantities
}

func sortedKeys(quantities map[diffKey]int) []diffKey {
	keys := make([]diffKey, 0, len(quantities))
	for key := range quantities {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })
	return keys
}
