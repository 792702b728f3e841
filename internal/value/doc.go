// Package value implements the codec between dynamic JSON values and
// SQLite storage types.
//
// Value is a sealed tagged variant covering the full JSON value space
// (null, bool, int, float, string, array, object). EncodeSQL maps a
// Value onto a storage type; DecodeSQL maps a scanned column back.
// Structured values (arrays, objects) are stored as canonical JSON
// text, which makes that direction deterministic but lossy: decoding
// yields the text, not the structure.
package value
