package marketplace

import (
	"encoding/json"
	"slices"
)

// PackedSet is the set of posting ids the caller marked as physically packed.
// It is never mutated in place: Toggle and SetPacked return a new set.
type PackedSet struct {
	ids map[string]struct{}
}

// NewPackedSet builds a set from posting ids
func NewPackedSet(postingIDs ...string) PackedSet {
	ids := make(map[string]struct{}, len(postingIDs))
	for _, id := range postingIDs {
		if id != "" {
			ids[id] = struct{}{}
		}
	}
	return PackedSet{ids: ids}
}

// Has reports whether the posting is marked as packed. The zero PackedSet is empty.
func (s PackedSet) Has(postingID string) bool {
	_, ok := s.ids[postingID]
	return ok
}

// Len returns the number of marked postings
func (s PackedSet) Len() int { return len(s.ids) }

// IDs returns the marked posting ids in lexical order
func (s PackedSet) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Toggle flips the packed mark of every given posting
func (s PackedSet) Toggle(postingIDs ...string) PackedSet {
	next := s.clone()
	for _, id := range postingIDs {
		if _, ok := next.ids[id]; ok {
			delete(next.ids, id)
		} else if id != "" {
			next.ids[id] = struct{}{}
		}
	}
	return next
}

// SetPacked marks (packed=true) or unmarks every given posting
func (s PackedSet) SetPacked(packed bool, postingIDs ...string) PackedSet {
	next := s.clone()
	for _, id := range postingIDs {
		if id == "" {
			continue
		}
		if packed {
			next.ids[id] = struct{}{}
		} else {
			delete(next.ids, id)
		}
	}
	return next
}

func (s PackedSet) clone() PackedSet {
	ids := make(map[string]struct{}, len(s.ids))
	for id := range s.ids {
		ids[id] = struct{}{}
	}
	return PackedSet{ids: ids}
}

// MarshalJSON encodes the set as a sorted array of posting ids
func (s PackedSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.IDs())
}

// UnmarshalJSON decodes an array of posting ids
func (s *PackedSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewPackedSet(ids...)
	return nil
}
