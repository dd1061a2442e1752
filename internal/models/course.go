package models

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"time"
)

// Course is a course record as stored under courses/{id}. The id is the
// store key and is not part of the stored value.
type Course struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	OwnerID     string  `json:"ownerId"`
	CreatedAt   string  `json:"createdAt"`
	Lessons     Lessons `json:"lessons,omitempty"`
}

// CoursePreview is the denormalized view of a course used for list rendering.
// ImageURL, AuthorName and OwnerProfilePicture are derived per page-load.
type CoursePreview struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Description         string `json:"description"`
	OwnerID             string `json:"ownerId"`
	CreatedAt           string `json:"createdAt"`
	ImageURL            string `json:"imageUrl,omitempty"`
	AuthorName          string `json:"authorName"`
	OwnerProfilePicture string `json:"ownerProfilePicture"`
}

type CourseDetail struct {
	CoursePreview
	Lessons []string `json:"lessons"`
}

func (c Course) Preview() CoursePreview {
	return CoursePreview{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		OwnerID:     c.OwnerID,
		CreatedAt:   c.CreatedAt,
	}
}

// Lessons is the ordered list of lesson titles of a course. The store may
// return it either as an array (sequential indexes, holes as null) or as an
// object keyed by index.
type Lessons []string

func (l *Lessons) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] == '[' {
		var raw []*string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		out := make(Lessons, len(raw))
		for i, s := range raw {
			if s != nil {
				out[i] = *s
			}
		}
		*l = out
		return nil
	}

	var byIndex map[string]string
	if err := json.Unmarshal(data, &byIndex); err != nil {
		return err
	}
	indexes := make([]int, 0, len(byIndex))
	for k := range byIndex {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 {
			continue
		}
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	if len(indexes) == 0 {
		*l = nil
		return nil
	}
	out := make(Lessons, indexes[len(indexes)-1]+1)
	for _, i := range indexes {
		out[i] = byIndex[strconv.Itoa(i)]
	}
	*l = out
	return nil
}

const isoLayout = "2006-01-02T15:04:05.000Z"

// ISOTime formats t as a UTC ISO-8601 timestamp with millisecond precision.
func ISOTime(t time.Time) string {
	return t.UTC().Format(isoLayout)
}
