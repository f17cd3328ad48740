// Package shared groups helpers used across the auction server packages that
// belong to no single layer.
//
// The testutil subpackage provides:
//
//	- a buffered slog handler for asserting on log output
//	- environment isolation and dotenv fixtures for configuration tests
//	- in-memory fakes for the storage interfaces
//
// Nothing here may import business packages other than storage, and nothing
// outside tests should import testutil.
package shared
