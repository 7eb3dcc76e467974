// Package randomname generates display nicknames for accounts created
// without an explicit name, such as first-time OAuth sign-ins.
package randomname

import (
	"math/rand/v2"
	"strconv"
	"time"
)

var nouns = []string{
	"otter", "falcon", "lynx", "badger", "heron",
	"dolphin", "maple", "comet", "harbor", "ember",
	"willow", "sparrow", "glacier", "meadow", "drift",
}

// Nickname returns a random noun with a millisecond timestamp suffix.
// The suffix keeps collisions rare without a uniqueness round-trip to
// the store; nicknames are display names, not identifiers.
func Nickname() string {
	noun := nouns[rand.IntN(len(nouns))]
	return noun + strconv.FormatInt(time.Now().UnixMilli(), 10)
}
