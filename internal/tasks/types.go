package tasks

import "time"

type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

type Status int

const (
	StatusPending Status = iota
	StatusInProgress
	StatusCompleted
)

const (
	procTaskCreate = "functional.spTaskCreate"

	// newCategoryColor is the color of categories created alongside a task.
	newCategoryColor = "#CCCCCC"
)

// CreateParams is a validated task-creation request.
type CreateParams struct {
	Title       string
	Description string
	Deadline    *time.Time
	Priority    Priority
	IDCategory  *int64
	NewCategory *string
}

// ConflictingCategory reports whether both an existing and a new category
// were selected.
func (p CreateParams) ConflictingCategory() bool {
	return p.IDCategory != nil && p.NewCategory != nil
}

type CreateResult struct {
	IDTask          int64     `json:"idTask"`
	Title           string    `json:"title"`
	DateCreated     time.Time `json:"dateCreated"`
	CategoryCreated bool      `json:"categoryCreated"`
	CategoryName    string    `json:"categoryName,omitempty"`
}
