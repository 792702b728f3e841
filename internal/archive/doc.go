// Package archive reads and writes .eng container files.
//
// An archive is a read-only bundle of logical files with per-entry
// compression and CRC32 integrity checks, plus an optional manifest
// entry at the well-known path "manifest.json".
//
// Layout:
//
//	[8-byte magic][entry data ...][JSON index][8-byte index length][8-byte footer magic]
//
// The index is a JSON array of entries in insertion order; listing
// operations preserve that order. The boundary layer never depends on
// this layout - only on the Reader/Writer surface.
package archive
