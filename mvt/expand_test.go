package mvt

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/taoensso/touchstone/types"
)

func TestExpand_TakeFirstTwoOfThree(t *testing.T) {
	exp, err := Expand([]string{"a", "b", "c"}, 2)
	require.NoError(t, err)
	require.Len(t, exp, 6)

	// Two drawn positions, remainder in natural order.
	assert.Equal(t, map[string][]string{
		"ord-0-1-2": {"a", "b", "c"},
		"ord-0-2-1": {"a", "c", "b"},
		"ord-1-0-2": {"b", "a", "c"},
		"ord-1-2-0": {"b", "c", "a"},
		"ord-2-0-1": {"c", "a", "b"},
		"ord-2-1-0": {"c", "b", "a"},
	}, exp)
}

func TestExpand_FullPermutationWhenTakeFirstNOutOfRange(t *testing.T) {
	for _, n := range []int{0, -1, 5} {
		exp, err := Expand([]string{"a", "b", "c"}, n)
		require.NoError(t, err, "takeFirstN=%d", n)
		assert.Len(t, exp, 6, "takeFirstN=%d", n)
	}
}

func TestExpand_RemainderKeepsNaturalOrder(t *testing.T) {
	exp, err := Expand([]string{"a", "b", "c", "d"}, 1)
	require.NoError(t, err)
	require.Len(t, exp, 4)
	assert.Equal(t, []string{"c", "a", "b", "d"}, exp["ord-2-0-1-3"])
	assert.Equal(t, []string{"a", "b", "c", "d"}, exp["ord-0-1-2-3"])
}

func TestExpand_SingleForm(t *testing.T) {
	exp, err := Expand([]string{"only"}, 1)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"ord-0": {"only"}}, exp)
}

func TestExpand_EmptyBase(t *testing.T) {
	exp, err := Expand(nil, 0)
	require.NoError(t, err)
	assert.Empty(t, exp)
}

func TestExpand_SpaceTooLarge(t *testing.T) {
	base := []string{"a", "b", "c", "d", "e"}

	_, err := Expand(base, 3) // 5·4·3 = 60
	assert.True(t, types.HasCode(err, types.CodePermutationSpaceTooLarge))

	_, err = Expand(base, 2) // 5·4 = 20
	assert.NoError(t, err)
}

func TestExpand_FourFactorialAtTheCap(t *testing.T) {
	exp, err := Expand([]string{"a", "b", "c", "d"}, 4)
	require.NoError(t, err)
	assert.Len(t, exp, 24)
}

func TestExpand_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 4).Draw(t, "n")
		k := rapid.IntRange(1, n).Draw(t, "k")

		base := make([]string, n)
		for i := range base {
			base[i] = fmt.Sprintf("f%d", i)
		}

		exp, err := Expand(base, k)
		if err != nil {
			if !types.HasCode(err, types.CodePermutationSpaceTooLarge) {
				t.Fatalf("unexpected error: %v", err)
			}
			return
		}

		want := 1
		for i := 0; i < k; i++ {
			want *= n - i
		}
		if len(exp) != want {
			t.Fatalf("got %d orderings, want %d", len(exp), want)
		}

		for id, ordering := range exp {
			if !strings.HasPrefix(id, "ord-") {
				t.Fatalf("bad composite id %q", id)
			}
			sorted := append([]string(nil), ordering...)
			sort.Strings(sorted)
			if !assert.ObjectsAreEqual(base, sorted) {
				t.Fatalf("ordering %v is not a permutation of %v", ordering, base)
			}
		}
	})
}
