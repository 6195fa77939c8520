package guilddomain

import (
	"encoding/json"
	"sort"
)

// UserSet is the canonical in-memory representation of a guild's unique
// command users. Historical dumps persisted this field as a plain array, as an
// object keyed by user id, or not at all; UnmarshalJSON accepts every shape it
// has ever had on disk and anything malformed collapses to an empty set.
// MarshalJSON always emits a sorted string array, the one canonical wire shape.
type UserSet map[string]struct{}

// NewUserSet returns an empty, non-nil set.
func NewUserSet(ids ...string) UserSet {
	s := make(UserSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id into the set. Adding an existing id or an empty id is a no-op.
func (s UserSet) Add(id string) {
	if id == "" {
		return
	}
	s[id] = struct{}{}
}

// Has reports whether id is a member.
func (s UserSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the set cardinality.
func (s UserSet) Len() int {
	return len(s)
}

// Members returns the ids in sorted order.
func (s UserSet) Members() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy of the set.
func (s UserSet) Clone() UserSet {
	out := make(UserSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// MarshalJSON serializes the set as a sorted array of strings.
func (s UserSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Members())
}

// UnmarshalJSON normalizes whatever was persisted into a set. Supported
// shapes: array of strings, object with id keys, null. Anything else yields an
// empty set rather than failing the enclosing load.
func (s *UserSet) UnmarshalJSON(data []byte) error {
	out := make(UserSet)

	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		for _, id := range arr {
			out.Add(id)
		}
		*s = out
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err == nil {
		for id := range obj {
			out.Add(id)
		}
		*s = out
		return nil
	}

	*s = out
	return nil
}
