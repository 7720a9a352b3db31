// Package media relays uploaded files into object storage.
//
// # Overview
//
// The relay is route middleware: it intercepts multipart requests, validates
// each file against a MIME allow-list, moves the content into object
// storage, and rewrites the request body as JSON with the stored URL under
// the configured field. Downstream handlers only ever parse JSON.
//
// Images are re-encoded to JPEG (quality 80, or 100 when configured) before
// upload. Audio is stored byte for byte; its duration is measured by
// decoding (WAV header math or MP3 frame walk) and written back alongside
// the URL. Multiple-image routes upload concurrently while keeping the URL
// array in input order.
//
// Object keys are namespaced as
//
//	{folder}/{prefix}-{uuid}-{unixMillis}.jpg        (images)
//	{folder}/{prefix}-{uuid}-{unixMillis}-{name}     (audio)
//
// Deletion by URL is best effort: failures are logged, never surfaced.
package media
