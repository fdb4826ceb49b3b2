// Package assets downloads catalog images and persists them in a blob store.
//
// [Fetcher] performs the download and names each file after the record's external id
// ({externalId}.jpeg). Storage is delegated to a [BlobStore]:
//   - [FileStore] : a local directory
//   - [S3Store] : an S3 (or S3-compatible) bucket
//   - [GCSStore] : a Google Cloud Storage bucket
//   - [AzureStore] : an Azure Blob Storage container
//
// Identical images are never deduplicated; every record owns its own file.
package assets
