// Package id generates the identifiers used across game documents.
//
// An identifier is a UUIDv4 encoded as unpadded base32 (RFC 4648),
// lowercased: 26 characters, safe for URLs, filenames, and database
// keys.
package id
