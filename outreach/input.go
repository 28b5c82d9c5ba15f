// ABOUTME: JSON helper types for request inputs
// ABOUTME: TagList accepts a list or a comma separated string; Optional distinguishes null from absent
package outreach

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/harperreed/outreach/models"
)

// TagList decodes from either ["a","b"] or "a, b".
type TagList []string

func (t *TagList) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*t = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = TagList(models.SplitTags(s))
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return BadRequest("Invalid tags")
	}
	*t = TagList(models.NewTagList(list))
	return nil
}

// Optional records whether a JSON field was present and whether it was null.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(b, []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

// Some returns a present, non-null Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// Null returns a present, explicitly null Optional.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// parseTime accepts RFC3339 timestamps and plain dates.
func parseTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func trimAll(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}
