// Package corpus loads and deduplicates a year's worth of bookmark records
// from JSON source documents.
//
// Source documents are parsed concurrently on a worker pool, but the merge
// into the final record list is strictly sequential in lexicographic path
// order, so deduplication (first occurrence wins) and id assignment are
// deterministic regardless of pool size.
package corpus
