package query

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Key identifies a cached query, usually the endpoint name followed by its
// parameters: Key{"users", page, status}. Keys compare structurally, so
// two keys built separately with equal elements share one entry.
type Key []any

// parts returns the canonical encoding of each element.
func (k Key) parts() []string {
	out := make([]string, len(k))
	for i, el := range k {
		b, err := json.Marshal(el)
		if err != nil {
			out[i] = fmt.Sprintf("%#v", el)
			continue
		}
		out[i] = string(b)
	}
	return out
}

// String returns the canonical form used as the cache map key.
func (k Key) String() string {
	return "[" + strings.Join(k.parts(), ",") + "]"
}

// Equal reports whether k and other are structurally equal.
func (k Key) Equal(other Key) bool {
	return k.String() == other.String()
}

// HasPrefix reports whether k starts with every element of prefix. An
// empty prefix matches every key.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	kp, pp := k.parts(), prefix.parts()
	for i := range pp {
		if kp[i] != pp[i] {
			return false
		}
	}
	return true
}
