// Package repositories implements persistence for the user directory.
//
// The directory is always read and written as one document; there are no partial updates.
//
// Key Implementations:
//   - [FileStore] : a JSON file replaced atomically (temp file + rename) on every save
//   - [SQLiteStore] : the same document held in one row of a SQLite table
//
// A missing document loads as an empty directory. Malformed content and I/O failures
// wrap [shared.ErrStorage] and are never swallowed.
//
// Neither store locks. The tasks package serialises load/mutate/save cycles.
package repositories
