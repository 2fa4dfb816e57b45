package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// NextElementKey returns "{slug}-{max+1}" zero-padded to 4 digits, where max
// is the highest numeric suffix among the given items. Deterministic for a
// fixed input regardless of item order.
func NextElementKey(slug string, items []BudgetItem) string {
	return fmt.Sprintf("%s-%04d", slug, MaxElementSuffix(items)+1)
}

// MaxElementSuffix scans every item's elementKey for the largest numeric
// suffix. Keys without a parseable suffix are ignored.
func MaxElementSuffix(items []BudgetItem) int {
	max := 0
	for _, it := range items {
		idx := strings.LastIndex(it.ElementKey, "-")
		if idx < 0 || idx == len(it.ElementKey)-1 {
			continue
		}
		n, err := strconv.Atoi(it.ElementKey[idx+1:])
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max
}
