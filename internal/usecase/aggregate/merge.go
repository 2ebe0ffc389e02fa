package aggregate

import (
	"sort"

	"nexuspulse/internal/domain/entity"
)

// MaxOutputItems bounds every aggregation result. The cap applies after
// sorting and filtering, so it always keeps the manual-pinned,
// newest-first prefix.
const MaxOutputItems = 20

// noiseSummaryMin is the minimum summary length that saves an
// untitled-placeholder item from the noise filter.
const noiseSummaryMin = 10

// Merge concatenates the candidate groups (typically manual, signal and
// RSS items), orders them under the system's comparator, drops
// degenerate noise entries and caps the result. The comparator is the
// only ordering guarantee made to callers:
//
//  1. manual items precede everything else, regardless of timestamp
//  2. otherwise newest-first by PublishedAt
//  3. ties keep input order (stable sort)
func Merge(groups ...[]entity.Item) []entity.Item {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	all := make([]entity.Item, 0, n)
	for _, g := range groups {
		all = append(all, g...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if (a.Kind == entity.KindManual) != (b.Kind == entity.KindManual) {
			return a.Kind == entity.KindManual
		}
		return a.PublishedAt.After(b.PublishedAt)
	})

	out := make([]entity.Item, 0, min(len(all), MaxOutputItems))
	for _, it := range all {
		if isNoise(it) {
			continue
		}
		out = append(out, it)
		if len(out) == MaxOutputItems {
			break
		}
	}
	return out
}

// isNoise reports whether an item is a degenerate feed entry: no real
// title and next to no content.
func isNoise(it entity.Item) bool {
	return (it.Title == "" || it.Title == UntitledPlaceholder) && len(it.Summary) <= noiseSummaryMin
}
