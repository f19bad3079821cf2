// Package matching implements the pairing engine of a music mapping
// exercise: the shuffled display order, the pending selection that turns
// two clicks into a pair, the registry of user pairs, and the check overlay
// that classifies pairs against the answer key.
//
// A Session owns all mutable state of one exercise instance. It is not safe
// for concurrent use; the UI drives it from a single event loop.
package matching
