/*
projection.go - Pure filter/sort read views over a record set

PURPOSE:
  Given an officer's full record set and a (status filter, sort key)
  pair, produce the view the hosting layer renders. Projections never
  mutate stored records; they operate on a copy of the input slice and
  the caller's slice is left untouched.

SORT SEMANTICS:
  SERVICE_DESC / SERVICE_ASC order by service date. USED_DESC orders by
  usage date descending; records with no usage date sort strictly after
  every record that has one and keep their relative input order.
*/
package ledger

import "sort"

// =============================================================================
// FILTER AND SORT KEYS
// =============================================================================

type StatusFilter string

const (
	FilterAll       StatusFilter = "ALL"
	FilterAvailable StatusFilter = "AVAILABLE"
	FilterUsed      StatusFilter = "USED"
	FilterExpired   StatusFilter = "EXPIRED"
)

func (f StatusFilter) Valid() bool {
	switch f {
	case FilterAll, FilterAvailable, FilterUsed, FilterExpired:
		return true
	}
	return false
}

// matches reports whether a record passes the filter.
func (f StatusFilter) matches(r LeaveRecord) bool {
	switch f {
	case FilterAll:
		return true
	case FilterAvailable:
		return r.Status == StatusAvailable
	case FilterUsed:
		return r.Status == StatusUsed
	case FilterExpired:
		return r.Status == StatusExpired
	}
	return false
}

type SortKey string

const (
	SortServiceDateDesc SortKey = "SERVICE_DESC"
	SortServiceDateAsc  SortKey = "SERVICE_ASC"
	SortDateUsedDesc    SortKey = "USED_DESC"
)

func (k SortKey) Valid() bool {
	switch k {
	case SortServiceDateDesc, SortServiceDateAsc, SortDateUsedDesc:
		return true
	}
	return false
}

// =============================================================================
// PROJECTION
// =============================================================================

// Project filters and sorts a record set for display. The input slice is
// never modified.
func Project(records []LeaveRecord, filter StatusFilter, key SortKey) []LeaveRecord {
	out := make([]LeaveRecord, 0, len(records))
	for _, r := range records {
		if filter.matches(r) {
			out = append(out, r)
		}
	}

	switch key {
	case SortServiceDateAsc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].ServiceDate.Before(out[j].ServiceDate)
		})
	case SortServiceDateDesc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].ServiceDate.After(out[j].ServiceDate)
		})
	case SortDateUsedDesc:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].DateUsed, out[j].DateUsed
			switch {
			case a.IsZero() && b.IsZero():
				return false // mutually unordered, stable by input order
			case a.IsZero():
				return false // unused records sort after used ones
			case b.IsZero():
				return true
			default:
				return a.After(b)
			}
		})
	}
	return out
}
