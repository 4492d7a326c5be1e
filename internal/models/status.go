package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// BlockStatus is the progress of a routine block for the current day.
type BlockStatus string

const (
	StatusNull       BlockStatus = "NULL"
	StatusVisualized BlockStatus = "VISUALIZED"
	StatusDone       BlockStatus = "DONE"
)

// ErrInvalidTransition is returned when a status change is not in the
// transition table.
var ErrInvalidTransition = errors.New("invalid block status transition")

// transitions lists, for every status, the statuses it may move to. The
// guided flow only ever takes the first entry.
var transitions = map[BlockStatus][]BlockStatus{
	StatusNull:       {StatusVisualized, StatusDone},
	StatusVisualized: {StatusDone},
	StatusDone:       {},
}

// AllStatuses returns the statuses in guided order.
func AllStatuses() []BlockStatus {
	return []BlockStatus{StatusNull, StatusVisualized, StatusDone}
}

func joinStatuses(statuses []BlockStatus) string {
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}
	return strings.Join(names, ", ")
}

// ParseBlockStatus accepts the API spelling in any case; an empty string is
// NULL.
func ParseBlockStatus(s string) (BlockStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NULL", "NONE":
		return StatusNull, nil
	case "VISUALIZED":
		return StatusVisualized, nil
	case "DONE":
		return StatusDone, nil
	default:
		return "", fmt.Errorf("invalid block status %q (want one of %s)", s, joinStatuses(AllStatuses()))
	}
}

// Next returns the guided successor: NULL→VISUALIZED→DONE→DONE.
func (s BlockStatus) Next() BlockStatus {
	next := transitions[s.normalize()]
	if len(next) == 0 {
		return s.normalize()
	}
	return next[0]
}

// IsTerminal reports whether no further transition is offered.
func (s BlockStatus) IsTerminal() bool {
	return len(transitions[s.normalize()]) == 0
}

// CanTransition reports whether moving from s to to is allowed.
func (s BlockStatus) CanTransition(to BlockStatus) bool {
	for _, allowed := range transitions[s.normalize()] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition validates a move from s to to.
func (s BlockStatus) Transition(to BlockStatus) (BlockStatus, error) {
	if !s.CanTransition(to) {
		return s, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.normalize(), to)
	}
	return to, nil
}

// Label is the Spanish text shown next to a block.
func (s BlockStatus) Label() string {
	switch s.normalize() {
	case StatusVisualized:
		return "Visualizado"
	case StatusDone:
		return "Hecho"
	default:
		return "Pendiente"
	}
}

func (s BlockStatus) normalize() BlockStatus {
	if s == "" {
		return StatusNull
	}
	return s
}

func (s BlockStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s.normalize()))
}

func (s *BlockStatus) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = StatusNull
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseBlockStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
