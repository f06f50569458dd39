// Package models defines the domain entities of the favtunes user directory.
//
// The package contains two categories of types:
//
// 1. Persistent entities, stored in the directory document
//   - [User] : a directory entry with its favorite lists
//   - [ArtistRef] : snapshot of a catalog artist taken when it was favorited
//   - [SongRef] : snapshot of a catalog track taken when it was favorited
//   - [Directory] : the whole store, user ID to [User]
//
// 2. Catalog results, never persisted
//   - [Artist], [Song] : the first search match, with popularity when the catalog reports it
//   - [ArtistInfo], [SongInfo] : response shapes of the catalog lookup endpoints
//
// Directory IDs are dense: they start at 1 and [Directory.Renumber] closes gaps after a delete.
package models
