package imageset

import (
	"testing"

	"github.com/kimamovic21/real-estate-marketplace/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMove_IsPermutationKeepingRelativeOrder(t *testing.T) {
	seq := []string{"a", "b", "c", "d", "e"}

	for from := range seq {
		for to := range seq {
			out, err := Move(seq, from, to)
			require.NoError(t, err)

			assert.ElementsMatch(t, seq, out, "move %d -> %d", from, to)
			assert.Equal(t, seq[from], out[to], "move %d -> %d", from, to)

			rest := make([]string, 0, len(seq)-1)
			for i, v := range out {
				if i != to {
					rest = append(rest, v)
				}
			}
			expected, _ := Remove(seq, from)
			assert.Equal(t, expected, rest, "move %d -> %d", from, to)
		}
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, seq, "input must not be modified")
}

func TestMove_ToCover(t *testing.T) {
	out, err := Move([]string{"a", "b", "c"}, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, out)

	cover, ok := Cover(out)
	assert.True(t, ok)
	assert.Equal(t, "c", cover)
}

func TestMove_OutOfRange(t *testing.T) {
	_, err := Move([]string{"a"}, 0, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = Move([]string{}, 0, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRemoveAndCover(t *testing.T) {
	out, err := Remove([]int{1, 2, 3}, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, out)

	_, ok := Cover([]int{})
	assert.False(t, ok)
}
