package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// FlexID is an identifier that may arrive as a JSON number, a numeric string, or null.
// The zero value is an absent id.
type FlexID struct {
	raw   string
	valid bool
}

// NewFlexID wraps a known integer id.
func NewFlexID(id int) FlexID {
	return FlexID{raw: strconv.Itoa(id), valid: true}
}

// FlexIDFrom wraps an arbitrary decoded value. Nil yields an absent id.
func FlexIDFrom(v any) FlexID {
	if v == nil {
		return FlexID{}
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return FlexID{}
	}
	return FlexID{raw: s, valid: true}
}

// Present reports whether a value was supplied, coercible or not.
func (f FlexID) Present() bool {
	return f.valid
}

// Int coerces the id to a positive integer. Only base-10 digits are accepted, so
// "0603" is 603 and "0x25B" is not an id. A zero fraction ("603.0") is allowed.
func (f FlexID) Int() (int, bool) {
	if !f.valid {
		return 0, false
	}
	s := strings.TrimSpace(f.raw)
	if whole, frac, ok := strings.Cut(s, "."); ok && frac != "" && strings.Trim(frac, "0") == "" {
		s = whole
	}
	n, err := strconv.ParseInt(s, 10, 0)
	if err != nil || n <= 0 {
		return 0, false
	}
	return int(n), true
}

func (f FlexID) String() string {
	return f.raw
}

func (f *FlexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = FlexID{}
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexID{raw: s, valid: s != ""}
	case '{', '[', 't', 'f':
		// objects, arrays and booleans are never ids
		*f = FlexID{}
	default:
		*f = FlexID{raw: string(b), valid: true}
	}
	return nil
}

func (f FlexID) MarshalJSON() ([]byte, error) {
	if !f.valid {
		return []byte("null"), nil
	}
	if n, ok := f.Int(); ok {
		return []byte(strconv.Itoa(n)), nil
	}
	return json.Marshal(f.raw)
}
