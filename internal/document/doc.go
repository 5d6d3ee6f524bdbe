// Package document is the persistence collaborator behind the HTTP
// resources: a narrow collection-oriented CRUD interface with four
// backends.
//
//   - SQLStore: one documents table holding JSON bodies, on SQLite
//     (github.com/mattn/go-sqlite3) or PostgreSQL (github.com/jackc/pgx/v5)
//   - MongoStore: native MongoDB collections (go.mongodb.org/mongo-driver)
//   - MemoryStore: process-local, for tests and throwaway runs
//
// Every backend issues 24-character lowercase hex ids (MongoDB ObjectIDs)
// and exposes them under the "id" key.
package document
