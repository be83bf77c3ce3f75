package codec

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Set holds one codec per logical feature. It is read-only once loaded.
type Set map[string]*Codec

// Get returns the codec for feature.
func (s Set) Get(feature string) (*Codec, bool) {
	c, ok := s[feature]
	return c, ok
}

// Features returns the encoded feature names in sorted order.
func (s Set) Features() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type codecJSON struct {
	Classes []string `json:"classes"`
}

// MarshalJSON writes {"feature": {"classes": [...]}}.
func (s Set) MarshalJSON() ([]byte, error) {
	out := make(map[string]codecJSON, len(s))
	for name, c := range s {
		out[name] = codecJSON{Classes: c.classes}
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores codecs from their persisted class lists.
func (s *Set) UnmarshalJSON(data []byte) error {
	var raw map[string]codecJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	set := make(Set, len(raw))
	for name, rc := range raw {
		c, err := FromClasses(name, rc.Classes)
		if err != nil {
			return fmt.Errorf("decode codec: %w", err)
		}
		set[name] = c
	}
	*s = set
	return nil
}
