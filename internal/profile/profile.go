package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingID   = errors.New("profile missing id")
	ErrMissingName = errors.New("profile missing name")
)

// Profile is one attendee as supplied by registration. Only ID and Name are
// guaranteed; every other field may be empty and is treated as such.
type Profile struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Title        string      `json:"title,omitempty"`
	Organization string      `json:"organization,omitempty"`
	Mandate      string      `json:"mandate,omitempty"`
	Product      string      `json:"product,omitempty"`
	Thesis       string      `json:"thesis,omitempty"`
	Focus        StringList  `json:"focus,omitempty"`
	LookingFor   []string    `json:"looking_for,omitempty"`
	Bio          string      `json:"bio,omitempty"`
	Website      string      `json:"website,omitempty"`
	Enrichment   *Enrichment `json:"enrichment,omitempty"`
}

// Validate checks the minimum upstream contract: a non-empty id and name.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: %s", ErrMissingName, p.ID)
	}
	return nil
}

// ValidateAll returns the first validation failure in the list, if any.
func ValidateAll(profiles []Profile) error {
	for i, p := range profiles {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("profile %d: %w", i, err)
		}
	}
	return nil
}

// StringList accepts either a JSON string or a JSON array of strings.
// Registration forms send focus both ways.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*l = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "\"") {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*l = nil
			return nil
		}
		*l = StringList{s}
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("focus must be a string or list of strings: %w", err)
	}
	*l = items
	return nil
}

// Find returns the profile with the given id.
func Find(profiles []Profile, id string) (Profile, bool) {
	for _, p := range profiles {
		if p.ID == id {
			return p, true
		}
	}
	return Profile{}, false
}
