// Package repositories implements the SQLite content store for ingested records.
//
// Each repository handles one record kind and follows the create-once rule: records are
// inserted with ON CONFLICT DO NOTHING against their natural key, and a conflicting
// insert loads the stored row instead of failing. Rows are never updated or deleted.
//
// Key Implementations:
//   - [ArtistRepository] : artists keyed by external id
//   - [SongRepository] : songs keyed by external id, referencing their artist
//   - [AlbumRepository] : albums keyed by external id, referencing their artist
//   - [TagRepository] : genre tags keyed by (vocabulary, name)
//
// [Store] bundles the four repositories behind models.ContentStore.
// The Postgres implementation lives in the pg subpackage.
package repositories
