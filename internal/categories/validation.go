package categories

import (
	"strings"

	"task-manager-backend/internal/validate"
)

var createCodes = validate.Codes{
	"name.required": "nameRequired",
	"name.min":      "nameTooShort",
	"name.max":      "nameTooLong",
	"name":          "nameRequired",
	"color":         "invalidColor",
}

// ParseCreate validates the input of a direct category creation.
func ParseCreate(v *validate.Validator, in validate.Input) (CreateParams, error) {
	vs := validate.NewViolations("name", "color")
	var p CreateParams

	if name, ok := in.TrimmedString("name"); !ok {
		vs.Add("name", createCodes["name"])
	} else if name != nil {
		p.Name = *name
	}
	if color, ok := in.TrimmedString("color"); !ok {
		vs.Add("color", createCodes["color"])
	} else if color != nil {
		p.Color = strings.ToUpper(*color)
	}

	v.Struct(p, createCodes, vs)
	if err := vs.Err(); err != nil {
		return CreateParams{}, err
	}
	if p.Color == "" {
		p.Color = DefaultColor
	}
	return p, nil
}
