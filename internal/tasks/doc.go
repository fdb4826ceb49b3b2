// Package tasks runs the catalog ingestion with progress reporting.
//
// # Run
//
// [Engine.Run] performs one ingestion:
//
//  1. Acquire an access token. Failure aborts before any catalog call.
//  2. Fetch the related artists of the seed. Failure aborts the run.
//  3. For each artist:
//     - Reuse the stored artist when its external id is known, without refetching its image or genres
//     - Otherwise download its image, resolve its genres and create it
//     - Ingest its top tracks as songs, then its albums
//
// Failures below the related-artists fetch are contained to the smallest unit (artist, song or album).
// They are logged, counted in [RunResult] and never flip the run's outcome.
//
// [Engine.Load] wraps Run for triggers that only report success or failure. It recovers panics.
//
// # Progress Reporting
//
// Run accepts an optional channel of [ProgressUpdate]. Updates use select with default so a slow reader
// never blocks ingestion.
//
// # Concurrency
//
// Runs are sequential and one Engine allows a single run at a time; a concurrent call returns
// [shared.ErrRunInProgress]. Separate processes rely on the store's unique constraints.
package tasks
