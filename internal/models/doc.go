// Package models defines the records materialized by an ingestion run and the repository contract that stores them.
//
// Records fall into two groups:
//
// 1. Catalog records, created once per external id and never updated:
//   - [Artist] : a related artist of the seed, with follower count, image and ordered genre tags
//   - [Song] : one of an artist's top tracks, carrying album image, album name and the artist's genres
//   - [Album] : one of an artist's albums
//
// 2. Supporting values:
//   - [Tag] : a genre term in the "genres" vocabulary, keyed by exact name
//   - [StoredAsset] : the durable reference to a downloaded image
//   - [Credentials] and [AccessToken] : client credentials and the run-scoped bearer token
//
// Every catalog record implements [Record], and [Repository] is the create-once contract both store backends satisfy.
// Genre tag lists are persisted as a single string joined with [GenreDelimiter]; see [JoinGenres] and [SplitGenres].
package models
