package cache

import "strings"

// Key identifies a cached query. Keys are "/"-separated so whole families
// can be invalidated by prefix.
type Key string

const (
	PrefixDreams      = "dreams/"
	PrefixDream       = "dream/"
	PrefixDreamImages = "dream-images/"
	PrefixRoutine     = "routine/"
)

func DreamsKey(archived bool) Key {
	if archived {
		return PrefixDreams + "archived"
	}
	return PrefixDreams + "active"
}

func DreamKey(id string) Key { return Key(PrefixDream + id) }

func DreamImagesKey(dreamID string) Key { return Key(PrefixDreamImages + dreamID) }

func RoutineKey() Key { return PrefixRoutine + "all" }

func TodayRoutineKey() Key { return PrefixRoutine + "today" }

func TodayReadKey() Key { return "daily-read/today" }

func ProfileKey() Key { return "profile" }

// HasPrefix reports whether k belongs to the family prefix.
func (k Key) HasPrefix(prefix string) bool {
	return strings.HasPrefix(string(k), prefix)
}
