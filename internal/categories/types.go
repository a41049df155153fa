package categories

import "time"

// DefaultColor is applied when a category is created without one.
const DefaultColor = "#CCCCCC"

const (
	procCreate = "functional.spCategoryCreate"
	procList   = "functional.spCategoryList"
)

type Category struct {
	IDCategory  int64     `json:"idCategory"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	DateCreated time.Time `json:"dateCreated"`
}

// ListItem is one row of the category listing.
type ListItem struct {
	IDCategory int64  `json:"idCategory"`
	Name       string `json:"name"`
	Color      string `json:"color"`
}

type CreateParams struct {
	Name  string `json:"name" validate:"required,min=2,max=50"`
	Color string `json:"color" validate:"omitempty,rgbhex"`
}
