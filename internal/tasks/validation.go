package tasks

import (
	"time"

	"task-manager-backend/internal/validate"
)

type createInput struct {
	Title       string     `json:"title" validate:"required,min=3,max=100"`
	Description string     `json:"description" validate:"max=500"`
	Deadline    *time.Time `json:"deadline" validate:"omitempty,notpast"`
	Priority    *int64     `json:"priority" validate:"omitempty,min=0,max=2"`
	IDCategory  *int64     `json:"idCategory" validate:"omitempty,gt=0"`
	NewCategory *string    `json:"newCategory" validate:"omitempty,min=2,max=50"`
}

var fieldOrder = []string{"title", "description", "deadline", "priority", "idCategory", "newCategory"}

var createCodes = validate.Codes{
	"title.required":  "titleRequired",
	"title.min":       "titleTooShort",
	"title.max":       "titleTooLong",
	"title":           "titleRequired",
	"description":     "descriptionTooLong",
	"deadline":        "deadlineInPast",
	"priority":        "invalidPriority",
	"idCategory":      "invalidCategoryId",
	"newCategory.min": "newCategoryTooShort",
	"newCategory.max": "newCategoryTooLong",
	"newCategory":     "newCategoryInvalid",
}

// ParseCreate validates a task-creation request. The category exclusivity
// rule is left to the caller.
func ParseCreate(v *validate.Validator, in validate.Input) (CreateParams, error) {
	vs := validate.NewViolations(fieldOrder...)
	var raw createInput

	if title, ok := in.TrimmedString("title"); !ok {
		vs.Add("title", "titleRequired")
	} else if title != nil {
		raw.Title = *title
	}
	if desc, ok := in.String("description"); !ok {
		vs.Add("description", "invalidDescription")
	} else if desc != nil {
		raw.Description = *desc
	}
	if deadline, ok := in.Date("deadline", v.Now().Location()); !ok {
		vs.Add("deadline", "invalidDate")
	} else {
		raw.Deadline = deadline
	}
	if priority, ok := in.Int("priority"); !ok {
		vs.Add("priority", "invalidPriority")
	} else {
		raw.Priority = priority
	}
	if id, ok := in.Int("idCategory"); !ok {
		vs.Add("idCategory", "invalidCategoryId")
	} else {
		raw.IDCategory = id
	}
	if name, ok := in.TrimmedString("newCategory"); !ok {
		vs.Add("newCategory", "newCategoryInvalid")
	} else {
		raw.NewCategory = name
	}

	v.Struct(raw, createCodes, vs)
	if err := vs.Err(); err != nil {
		return CreateParams{}, err
	}

	p := CreateParams{
		Title:       raw.Title,
		Description: raw.Description,
		Deadline:    raw.Deadline,
		Priority:    PriorityMedium,
		IDCategory:  raw.IDCategory,
		NewCategory: raw.NewCategory,
	}
	if raw.Priority != nil {
		p.Priority = Priority(*raw.Priority)
	}
	return p, nil
}
