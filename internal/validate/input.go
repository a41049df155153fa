package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"task-manager-backend/internal/apperr"
)

const maxBodyBytes = 1 << 20

// Input is the merged request input: query values overlaid by JSON body keys.
type Input map[string]any

// FromRequest merges r's query string and JSON object body. An empty body is
// allowed.
func FromRequest(r *http.Request) (Input, error) {
	in := Input{}
	for k, vals := range r.URL.Query() {
		if len(vals) > 0 {
			in[k] = vals[len(vals)-1]
		}
	}

	if r.Body == nil || r.Body == http.NoBody {
		return in, nil
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, invalidBody(err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return in, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, invalidBody(err)
	}
	for k, v := range body {
		in[k] = v
	}
	return in, nil
}

func invalidBody(err error) error {
	e := apperr.Validation([]apperr.FieldError{{Field: "body", Message: "invalidBody"}})
	e.Err = err
	return e
}

var errNotInteger = errors.New("not an integer")

// String returns the value of key when it is a string. ok is false for any
// other type. A missing or null key yields (nil, true).
func (in Input) String(key string) (*string, bool) {
	v, present := in[key]
	if !present || v == nil {
		return nil, true
	}
	s, ok := v.(string)
	if !ok {
		return nil, false
	}
	return &s, true
}

// TrimmedString is String with surrounding whitespace removed.
func (in Input) TrimmedString(key string) (*string, bool) {
	s, ok := in.String(key)
	if s != nil {
		t := strings.TrimSpace(*s)
		s = &t
	}
	return s, ok
}

// Int coerces numbers and numeric strings to an integer. Fractions, booleans
// and other types are rejected. A missing or null key yields (nil, true).
func (in Input) Int(key string) (*int64, bool) {
	v, present := in[key]
	if !present || v == nil {
		return nil, true
	}
	n, err := toInt(v)
	if err != nil {
		return nil, false
	}
	return &n, true
}

func toInt(v any) (int64, error) {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, nil
		}
		f, err := x.Float64()
		if err != nil {
			return 0, err
		}
		return floatToInt(f)
	case float64:
		return floatToInt(x)
	case int:
		return int64(x), nil
	case int64:
		return x, nil
	case string:
		s := strings.TrimSpace(x)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		return floatToInt(f)
	}
	return 0, fmt.Errorf("%T: %w", v, errNotInteger)
}

func floatToInt(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, errNotInteger
	}
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, errNotInteger
	}
	return int64(f), nil
}

// Date parses key as YYYY-MM-DD (local midnight) or RFC 3339. Empty strings
// count as absent. ok is false when the value is present but unparseable.
func (in Input) Date(key string, loc *time.Location) (*time.Time, bool) {
	s, ok := in.TrimmedString(key)
	if !ok {
		return nil, false
	}
	if s == nil || *s == "" {
		return nil, true
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation(time.DateOnly, *s, loc); err == nil {
		return &t, true
	}
	if t, err := time.Parse(time.RFC3339, *s); err == nil {
		return &t, true
	}
	return nil, false
}
