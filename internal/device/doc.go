// Package device holds the read-only device catalogue.
//
// Devices are the equipment maintenance tasks are recorded against. They
// are created at startup from a YAML seed file (only when the collection is
// empty) and served over HTTP through list and view operations.
//
// Key pieces:
//   - Device: name (required, trimmed), optional year and type
//   - Repository / StoreRepository: persistence over document.Store
//   - LoadSeed / Seed: YAML seed loading and first-run insertion
package device
