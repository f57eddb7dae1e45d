package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrMalformedCatalog is returned when a catalog body cannot be decoded.
var ErrMalformedCatalog = errors.New("malformed activity catalog")

// Catalog maps activity names to their details, keeping the key order of the
// JSON object it was decoded from.
type Catalog struct {
	activities []Activity
	index      map[string]int
}

// NewCatalog builds a catalog from activities in the given order.
func NewCatalog(activities ...Activity) Catalog {
	var c Catalog
	for _, a := range activities {
		c.Set(a.Name, a.Details)
	}
	return c
}

// Len returns the number of activities.
func (c Catalog) Len() int {
	return len(c.activities)
}

// Activities returns the activities in catalog order.
func (c Catalog) Activities() []Activity {
	out := make([]Activity, len(c.activities))
	copy(out, c.activities)
	return out
}

// Names returns the activity names in catalog order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c.activities))
	for _, a := range c.activities {
		names = append(names, a.Name)
	}
	return names
}

// Get looks up an activity by name.
func (c Catalog) Get(name string) (ActivityDetails, bool) {
	i, ok := c.index[name]
	if !ok {
		return ActivityDetails{}, false
	}
	return c.activities[i].Details, true
}

// Set inserts or replaces an activity. A replaced activity keeps its position.
func (c *Catalog) Set(name string, details ActivityDetails) {
	if details.Participants == nil {
		details.Participants = []string{}
	}
	if c.index == nil {
		c.index = make(map[string]int)
	}
	if i, ok := c.index[name]; ok {
		c.activities[i].Details = details
		return
	}
	c.index[name] = len(c.activities)
	c.activities = append(c.activities, Activity{Name: name, Details: details})
}

type wireDetails struct {
	Description     string    `json:"description"`
	Schedule        string    `json:"schedule"`
	MaxParticipants int       `json:"max_participants"`
	Participants    *[]string `json:"participants"`
}

// DecodeCatalog reads a single JSON object of activity name to details from r.
// A missing or null participants list, a non-object body, or trailing data
// yields ErrMalformedCatalog.
func DecodeCatalog(r io.Reader) (Catalog, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return Catalog{}, fmt.Errorf("%w: %v", ErrMalformedCatalog, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return Catalog{}, fmt.Errorf("%w: expected object, got %v", ErrMalformedCatalog, tok)
	}

	var catalog Catalog
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Catalog{}, fmt.Errorf("%w: %v", ErrMalformedCatalog, err)
		}
		name, ok := tok.(string)
		if !ok {
			return Catalog{}, fmt.Errorf("%w: unexpected key %v", ErrMalformedCatalog, tok)
		}

		var wire wireDetails
		if err := dec.Decode(&wire); err != nil {
			return Catalog{}, fmt.Errorf("%w: activity %q: %v", ErrMalformedCatalog, name, err)
		}
		if wire.Participants == nil {
			return Catalog{}, fmt.Errorf("%w: activity %q has no participants list", ErrMalformedCatalog, name)
		}

		catalog.Set(name, ActivityDetails{
			Description:     wire.Description,
			Schedule:        wire.Schedule,
			MaxParticipants: wire.MaxParticipants,
			Participants:    append([]string{}, (*wire.Participants)...),
		})
	}

	if _, err := dec.Token(); err != nil {
		return Catalog{}, fmt.Errorf("%w: %v", ErrMalformedCatalog, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Catalog{}, fmt.Errorf("%w: trailing data after object", ErrMalformedCatalog)
	}
	return catalog, nil
}

// UnmarshalJSON implements json.Unmarshaler using DecodeCatalog.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeCatalog(bytes.NewReader(data))
	if err != nil {
		return err
	}
	*c = decoded
	return nil
}

// MarshalJSON encodes the catalog as an object in catalog order.
func (c Catalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, a := range c.activities {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(a.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(a.Details)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
