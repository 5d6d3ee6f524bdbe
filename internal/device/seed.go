package device

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// seedFile is the YAML layout of a device seed file:
//
//	devices:
//	  - name: "Boiler feed pump"
//	    year: 2019
//	    type: "pump"
type seedFile struct {
	Devices []Device `yaml:"devices"`
}

// LoadSeed reads and validates the devices listed in a YAML seed file.
func LoadSeed(path string) ([]Device, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}

	for i := range f.Devices {
		if err := Validate(&f.Devices[i]); err != nil {
			return nil, fmt.Errorf("seed device %d: %w", i, err)
		}
	}
	return f.Devices, nil
}

// Seed inserts devices when the collection is empty and returns how many
// were inserted. A non-empty collection is left untouched.
func Seed(ctx context.Context, repo Repository, devices []Device) (int, error) {
	existing, err := repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("checking existing devices: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	for i := range devices {
		d := devices[i]
		if err := repo.Create(ctx, &d); err != nil {
			return i, fmt.Errorf("seeding device %q: %w", d.Name, err)
		}
	}
	return len(devices), nil
}
