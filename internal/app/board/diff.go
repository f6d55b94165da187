package board

import (
	"sort"

	"brigade/internal/domain"
)

// NewOrderDiff returns the ids present in curr but not in prev. Both slices
// must be sorted ascending; the walk is a single merge pass.
func NewOrderDiff(prev, curr []int64) []int64 {
	var fresh []int64
	i := 0
	for _, id := range curr {
		for i < len(prev) && prev[i] < id {
			i++
		}
		if i < len(prev) && prev[i] == id {
			continue
		}
		fresh = append(fresh, id)
	}
	return fresh
}

// orderIDs extracts a sorted id slice from a board snapshot. Orders come
// back ordered by placed_at, which does not guarantee id order.
func orderIDs(orders []*domain.Order) []int64 {
	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// numbersByID maps the fresh ids back to order numbers for the notification.
func numbersByID(orders []*domain.Order, ids []int64) []string {
	byID := make(map[int64]string, len(orders))
	for _, o := range orders {
		byID[o.ID] = o.Number
	}
	numbers := make([]string, 0, len(ids))
	for _, id := range ids {
		if n, ok := byID[id]; ok {
			numbers = append(numbers, n)
		}
	}
	return numbers
}
