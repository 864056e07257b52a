package ids

import "github.com/oklog/ulid/v2"

// New returns a lexicographically sortable identifier suitable for storage
// keys. ULIDs embed a millisecond timestamp, so created-at ordering and key
// ordering mostly agree.
func New() string {
	return ulid.Make().String()
}
