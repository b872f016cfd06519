// Package live runs the contract catalog against the real service.
//
// Run with: go test -tags=live ./tests/live/...
// Set API_BASE_URL to point the suite elsewhere.
package live
