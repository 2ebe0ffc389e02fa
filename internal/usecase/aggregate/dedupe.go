package aggregate

import "nexuspulse/internal/domain/entity"

// Dedupe removes items that are different representations of the same
// underlying report, keyed on the derived Item ID. The first-seen
// instance wins and relative order is preserved. This is a one-shot
// pass over a single request's candidate set; no state survives the
// call.
func Dedupe(items []entity.Item) []entity.Item {
	seen := make(map[string]struct{}, len(items))
	out := make([]entity.Item, 0, len(items))
	for _, it := range items {
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out
}
