// Package task manages maintenance tasks recorded against devices.
//
// A task is valid only when criticality, target, recordTime, description
// and state are all present and non-empty. String fields are trimmed and
// recordTime (RFC 3339 or YYYY-MM-DD) is normalised to RFC 3339 UTC.
//
// Key pieces:
//   - Validate / Parse: ordered validation messages and the stored form
//   - Repository / StoreRepository: persistence over document.Store
//   - Service: validation plus task.created / task.updated / task.deleted
//     events delivered to a Publisher
package task
