// Package contract replays recorded responses of the posts/comments API
// through the scenario runner. It verifies the catalog against real payloads
// without making network calls.
//
// Refresh recordings with cmd/recordapi, then regenerate goldens with:
//
//	RECORD=1 go test -tags=contract ./tests/contract/...
//
// Run with: go test -tags=contract ./tests/contract/...
package contract
