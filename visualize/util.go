package visualize

import (
	"sort"
	"strconv"
)

func sortedKeys(m map[string][]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func intLabel(class int) string {
	return "class " + strconv.Itoa(class)
}
