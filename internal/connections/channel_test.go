// internal/connections/channel_test.go

package connections

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannelIDIsOrderIndependent(t *testing.T) {
	pairs := [][2]int64{
		{1, 2},
		{2, 10}, // "10" sorts before "2" as a string
		{42, 42000},
		{999999999, 1},
	}

	for _, pair := range pairs {
		assert.Equal(t, ChannelID(pair[0], pair[1]), ChannelID(pair[1], pair[0]),
			"pair (%d,%d) must derive the same channel from either side", pair[0], pair[1])
	}
}

func TestChannelIDIsDeterministic(t *testing.T) {
	first := ChannelID(7, 13)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, ChannelID(7, 13))
	}
}

func TestChannelIDFormat(t *testing.T) {
	id := ChannelID(3, 8)

	assert.True(t, strings.HasPrefix(id, "ch_"))
	assert.Greater(t, len(id), len("ch_"))

	// base-36 payload: lowercase alphanumerics only
	for _, c := range id[len("ch_"):] {
		valid := (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z')
		assert.True(t, valid, "unexpected character %q in %s", c, id)
	}
}

func TestChannelIDDistinguishesPairs(t *testing.T) {
	seen := map[string][2]int64{}
	for a := int64(1); a <= 30; a++ {
		for b := a + 1; b <= 30; b++ {
			id := ChannelID(a, b)
			if prev, ok := seen[id]; ok {
				t.Fatalf("pairs %v and (%d,%d) collide on %s", prev, a, b, id)
			}
			seen[id] = [2]int64{a, b}
		}
	}
}
