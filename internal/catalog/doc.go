// Package catalog reads related artists, top tracks and albums from the Spotify Web API.
//
// [Client] wraps github.com/zmb3/spotify/v2 and converts its payloads into the small descriptor
// types an ingestion run needs ([ArtistDescriptor], [TrackDescriptor], [AlbumDescriptor]).
// Every call takes the run's access token; nothing is cached between calls.
//
// Only the single page each endpoint returns is read. Any non-2xx response or transport failure
// is returned wrapped in shared.ErrFetch.
//
// [ParseReleaseDate] normalizes year and year-month release dates to the first day of the period.
package catalog
