package models

import "time"

// Dream is a goal the user visualizes once per day.
type Dream struct {
	ID                  string          `json:"id"`
	Title               string          `json:"title"`
	Text                string          `json:"text"`
	IsArchived          bool            `json:"isArchived"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
	Visualizations      []Visualization `json:"visualizations,omitempty"`
	TodayVisualizations int             `json:"todayVisualizations"`
	SlotVisualized      bool            `json:"slotVisualized"`
	CanVisualize        bool            `json:"canVisualize"`
}

// MarkVisualized consumes today's slot. CanVisualize and SlotVisualized are
// kept mutually exclusive.
func (d *Dream) MarkVisualized() {
	d.SlotVisualized = true
	d.CanVisualize = false
}

// Visualized reports whether today's slot is already consumed.
func (d Dream) Visualized() bool {
	return d.SlotVisualized || !d.CanVisualize
}

// Visualization is an immutable record of one visualization.
type Visualization struct {
	ID        string    `json:"id"`
	DreamID   string    `json:"dreamId"`
	CreatedAt time.Time `json:"createdAt"`
}

// DreamInput is the payload for creating or updating a dream.
type DreamInput struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// DreamImage is an uploaded image attached to a dream. SignedURL is a
// time-limited URL, StorageURL is the permanent location.
type DreamImage struct {
	ID         string    `json:"id"`
	DreamID    string    `json:"dreamId"`
	FileName   string    `json:"fileName"`
	FileSize   int64     `json:"fileSize"`
	MimeType   string    `json:"mimeType"`
	StorageURL string    `json:"storageUrl"`
	SignedURL  string    `json:"signedUrl,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
