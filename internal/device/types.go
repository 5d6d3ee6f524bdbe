package device

// Collection is the document collection devices are stored in.
const Collection = "devices"

// Device is a piece of field equipment tasks are recorded against.
// Devices are read-only over HTTP and created from the seed file.
type Device struct {
	// ID is the store-assigned identifier (24 lowercase hex characters).
	ID string `json:"id,omitempty" yaml:"-"`

	// Name is required and stored trimmed.
	Name string `json:"name" yaml:"name"`

	// Year of manufacture or installation, optional. Any JSON number is
	// accepted.
	Year *float64 `json:"year,omitempty" yaml:"year,omitempty"`

	// Type is a free-form classification such as "pump" or "valve".
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
}
