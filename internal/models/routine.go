package models

import (
	"fmt"
	"sort"
)

// RoutineBlock is one activity inside a routine day.
type RoutineBlock struct {
	ID           string      `json:"id"`
	RoutineDayID string      `json:"routineDayId"`
	WeekDay      WeekDay     `json:"weekDay"`
	Title        string      `json:"title"`
	Description  string      `json:"description,omitempty"`
	Color        string      `json:"color,omitempty"`
	Order        int         `json:"order"`
	Status       BlockStatus `json:"status"`
}

// BlockInput is the payload for creating or updating a block.
type BlockInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Order       *int   `json:"order,omitempty"`
}

// RoutineDay groups the blocks of one weekday.
type RoutineDay struct {
	ID        string         `json:"id"`
	RoutineID string         `json:"routineId"`
	WeekDay   WeekDay        `json:"weekDay"`
	Blocks    []RoutineBlock `json:"blocks"`
}

// SortBlocks orders blocks by their Order field, keeping ties stable.
func (d *RoutineDay) SortBlocks() {
	sort.SliceStable(d.Blocks, func(i, j int) bool {
		return d.Blocks[i].Order < d.Blocks[j].Order
	})
}

// Renumber rewrites Order as the dense zero-based position.
func (d *RoutineDay) Renumber() {
	Renumber(d.Blocks)
}

// Block returns the index of the block with the given id, or -1.
func (d RoutineDay) Block(id string) int {
	for i, b := range d.Blocks {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// Renumber rewrites Order on every block to its slice index.
func Renumber(blocks []RoutineBlock) {
	for i := range blocks {
		blocks[i].Order = i
	}
}

// Routine is the user's private weekly routine.
type Routine struct {
	ID     string       `json:"id"`
	UserID string       `json:"userId,omitempty"`
	Days   []RoutineDay `json:"days"`
}

// Day returns the day for the weekday, or nil.
func (r *Routine) Day(wd WeekDay) *RoutineDay {
	for i := range r.Days {
		if r.Days[i].WeekDay == wd {
			return &r.Days[i]
		}
	}
	return nil
}

// DayByID returns the day with the given id, or nil.
func (r *Routine) DayByID(id string) *RoutineDay {
	for i := range r.Days {
		if r.Days[i].ID == id {
			return &r.Days[i]
		}
	}
	return nil
}

// FindBlock returns the day and index holding the block, or nil and -1.
func (r *Routine) FindBlock(id string) (*RoutineDay, int) {
	for i := range r.Days {
		if idx := r.Days[i].Block(id); idx >= 0 {
			return &r.Days[i], idx
		}
	}
	return nil, -1
}

// Validate checks that no weekday appears twice.
func (r Routine) Validate() error {
	seen := make(map[WeekDay]bool, len(r.Days))
	for _, d := range r.Days {
		if seen[d.WeekDay] {
			return fmt.Errorf("routine %s has more than one day for %s", r.ID, d.WeekDay)
		}
		seen[d.WeekDay] = true
	}
	return nil
}
