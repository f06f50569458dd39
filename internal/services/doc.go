// Package services implements the external music catalog behind the favorites directory, and an HTTP client for the directory's own API.
//
// # Catalog
//
// [Catalog] is the narrow view the directory engine has of a music catalog: search for an artist,
// search for a track, and list an artist's top tracks. [SpotifySearchResponse] and friends are decoded
// into typed structs and mapped explicitly, so a result missing its id, name, external URL or
// (for tracks) artist fails with [shared.ErrCatalog] instead of producing a half-empty favorite.
//
// # Tokens
//
// [SpotifyService] authenticates with an app-only bearer token obtained through the OAuth2 client
// credentials grant. [TokenCache] memoizes one token and reuses it until its expiry
// (expires_in from the token endpoint, or [DefaultTokenTTL] when omitted). Concurrent callers
// that find the memo expired share a single exchange.
//
// # Throttling & Retries
//
// Requests pass through a [rate.Limiter] before each attempt. Transport errors and 5xx responses
// are retried a bounded number of times; other non-2xx statuses fail immediately.
//
// # Error Handling
//
//   - [shared.ErrAuthFailed] : token exchange failed
//   - [shared.ErrArtistNotFound], [shared.ErrSongNotFound] : search returned zero results
//   - [shared.ErrCatalog] : non-2xx status, undecodable body, or missing fields
//
// # API Client
//
// [APIService] is a thin JSON client for the favtunes HTTP API, used by the `api` CLI commands.
package services
