package profile

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Decode reads a JSON array of profiles and validates each one.
func Decode(r io.Reader) ([]Profile, error) {
	var profiles []Profile
	if err := json.NewDecoder(r).Decode(&profiles); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	if err := ValidateAll(profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// LoadFile reads the profiles JSON file at path.
func LoadFile(path string) ([]Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profiles: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
