package transport

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// StatusRef is a status given by id or by name. On the wire it is either a
// JSON number or a JSON string.
type StatusRef struct {
	Value string
}

func NewStatusRef(v string) *StatusRef {
	return &StatusRef{Value: v}
}

func (s *StatusRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		s.Value = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &s.Value)
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("status must be a number or a string")
	}
	s.Value = n.String()
	return nil
}

func (s StatusRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Value)
}

func (s *StatusRef) IsZero() bool {
	return s == nil || strings.TrimSpace(s.Value) == ""
}
