// Package tasks implements the user directory and favorites operations.
//
// # Directory Engine
//
// [DirectoryEngine] owns a [repositories.Store] and a [services.Catalog]. Every operation takes the
// engine's mutex, loads the whole directory, applies its change and saves it back, so concurrent
// HTTP handlers in one process cannot lose each other's writes.
//
// User lookups happen before any catalog call; an unknown user never costs a catalog round trip.
// Favorites are deduplicated by catalog ID and removed by exact display name or title.
// Deleting a user renumbers the remaining users to 1..N in their previous order.
//
// # Bulk Export
//
// [DirectoryEngine.BulkExport] writes each user's favorites to its own file through a small worker pool
// and reports progress over a non-blocking [ProgressUpdate] channel, then writes export_manifest.json.
package tasks
