package session

import (
	"encoding/json"
	"fmt"
)

// Status is the lifecycle state of a poem-generation session. Absence of a
// record is the implicit pre-generating state.
type Status int

const (
	StatusUnknown Status = iota
	StatusGenerating
	StatusCompleted
)

var statusNames = map[Status]string{
	StatusUnknown:    "unknown",
	StatusGenerating: "generating",
	StatusCompleted:  "completed",
}

var statusFromName = map[string]Status{
	"unknown":    StatusUnknown,
	"generating": StatusGenerating,
	"completed":  StatusCompleted,
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further transitions are accepted.
func (s Status) Terminal() bool {
	return s == StatusCompleted
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	if v, ok := statusFromName[name]; ok {
		*s = v
	}
	return nil
}

// ParseStatus converts a wire-format status name. Unlike UnmarshalJSON it
// rejects unrecognized names instead of defaulting to unknown.
func ParseStatus(name string) (Status, error) {
	if v, ok := statusFromName[name]; ok {
		return v, nil
	}
	return StatusUnknown, fmt.Errorf("unknown status %q", name)
}
