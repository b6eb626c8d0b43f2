package layout

import (
	"fmt"
	"sort"
)

// Order selects how occurrences are sorted before packing. Both orders put
// all-day occurrences first, shorter ones before longer ones.
type Order int

const (
	// OrderCompat keeps the permissive comparator calendar views have always
	// used for timed occurrences: a sorts before b only when it starts
	// earlier and is not longer. That relation is not a strict weak
	// ordering; a stable sort keeps the outcome deterministic.
	OrderCompat Order = iota
	// OrderStrict sorts timed occurrences by start, then by length.
	OrderStrict
)

func (o Order) String() string {
	switch o {
	case OrderCompat:
		return "compat"
	case OrderStrict:
		return "strict"
	default:
		return fmt.Sprintf("Order(%d)", int(o))
	}
}

// ParseOrder maps "compat" / "strict" to an Order. The empty string is
// OrderCompat.
func ParseOrder(s string) (Order, error) {
	switch s {
	case "", "compat":
		return OrderCompat, nil
	case "strict":
		return OrderStrict, nil
	default:
		return OrderCompat, fmt.Errorf("layout: unknown order %q", s)
	}
}

func sortItems[P any](items []item[P], o Order) {
	less := lessCompat[P]
	if o == OrderStrict {
		less = lessStrict[P]
	}
	sort.SliceStable(items, func(i, j int) bool {
		return less(items[i], items[j])
	})
}

func lessCompat[P any](a, b item[P]) bool {
	if a.occ.AllDay != b.occ.AllDay {
		return a.occ.AllDay
	}
	if a.occ.AllDay {
		return a.own < b.own
	}
	return a.occ.Start.Before(b.occ.Start) && a.own <= b.own
}

func lessStrict[P any](a, b item[P]) bool {
	if a.occ.AllDay != b.occ.AllDay {
		return a.occ.AllDay
	}
	if a.occ.AllDay {
		if a.own != b.own {
			return a.own < b.own
		}
		return a.occ.Start.Before(b.occ.Start)
	}
	if !a.occ.Start.Equal(b.occ.Start) {
		return a.occ.Start.Before(b.occ.Start)
	}
	return a.own < b.own
}
