// Package mvt turns one list of forms into a full multivariate test: every
// admissible ordering of the forms becomes its own composite form, so a
// single test can optimize the order in which items are presented rather
// than just which item is shown.
package mvt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/taoensso/touchstone/types"
)

// MaxArrangements bounds the composite-form count. Beyond this the test
// would split traffic too thin to ever converge, so Expand fails fast
// instead of silently creating an unwinnable experiment.
const MaxArrangements = 24

// Expand maps every admissible ordering of base to a composite form id.
//
// Only the first takeFirstN positions are permuted; the forms not drawn
// into those positions follow in base order. takeFirstN outside [1, len]
// means permute everything. The composite id encodes the full ordering as
// base indices, e.g. "ord-1-0-2".
//
// The number of orderings is len!/(len-takeFirstN)!; above MaxArrangements
// Expand returns PERMUTATION_SPACE_TOO_LARGE.
func Expand(base []string, takeFirstN int) (map[string][]string, error) {
	n := len(base)
	if n == 0 {
		return map[string][]string{}, nil
	}
	k := takeFirstN
	if k <= 0 || k > n {
		k = n
	}

	if count := arrangementCount(n, k); count > MaxArrangements {
		return nil, types.NewError(types.CodePermutationSpaceTooLarge,
			fmt.Sprintf("%d forms taken %d at a time yields %d orderings, limit %d",
				n, k, count, MaxArrangements))
	}

	out := make(map[string][]string)
	used := make([]bool, n)
	head := make([]int, 0, k)

	var walk func()
	walk = func() {
		if len(head) == k {
			ordering := make([]int, 0, n)
			ordering = append(ordering, head...)
			for i := 0; i < n; i++ {
				if !used[i] {
					ordering = append(ordering, i)
				}
			}
			forms := make([]string, n)
			for pos, idx := range ordering {
				forms[pos] = base[idx]
			}
			out[compositeID(ordering)] = forms
			return
		}
		for i := 0; i < n; i++ {
			if used[i] {
				continue
			}
			used[i] = true
			head = append(head, i)
			walk()
			head = head[:len(head)-1]
			used[i] = false
		}
	}
	walk()
	return out, nil
}

func arrangementCount(n, k int) int {
	count := 1
	for i := 0; i < k; i++ {
		count *= n - i
		if count > MaxArrangements {
			// Overflow-proof: the caller only compares against the cap.
			return count
		}
	}
	return count
}

func compositeID(ordering []int) string {
	var b strings.Builder
	b.WriteString("ord")
	for _, idx := range ordering {
		b.WriteByte('-')
		b.WriteString(strconv.Itoa(idx))
	}
	return b.String()
}
