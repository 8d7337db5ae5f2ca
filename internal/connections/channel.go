// internal/connections/channel.go

package connections

import (
	"strconv"
)

const (
	channelPrefix    = "ch_"
	channelSeparator = ":"
	hashMultiplier   = 31
)

// ChannelID derives the chat channel identifier for a pair of users.
//
// The id is deterministic and order-independent: both sides of a match
// compute the same handle without a server round-trip. The ids are sorted
// lexicographically, joined with a separator, run through a 32-bit
// polynomial rolling hash and rendered as a fixed-prefix base-36 string.
// Collisions are tolerated; the channel is additionally scoped by the
// pair's mutual consent, so the hash only needs to avoid accidental
// collisions, not adversarial ones.
func ChannelID(userA, userB int64) string {
	a := strconv.FormatInt(userA, 10)
	b := strconv.FormatInt(userB, 10)
	if a > b {
		a, b = b, a
	}

	var h uint32
	for _, c := range []byte(a + channelSeparator + b) {
		h = h*hashMultiplier + uint32(c)
	}

	return channelPrefix + strconv.FormatUint(uint64(h), 36)
}
