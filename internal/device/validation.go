package device

import (
	"fmt"
	"strings"
)

const maxNameLength = 100

// Normalise trims surrounding whitespace from the string fields.
func Normalise(d *Device) {
	d.Name = strings.TrimSpace(d.Name)
	d.Type = strings.TrimSpace(d.Type)
}

// Validate normalises d and checks the required fields.
func Validate(d *Device) error {
	Normalise(d)

	if d.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDevice)
	}
	if len(d.Name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidDevice, maxNameLength)
	}
	if d.Year != nil && *d.Year < 0 {
		return fmt.Errorf("%w: year must not be negative", ErrInvalidDevice)
	}
	return nil
}
