// Store-priority ranking and query batching helpers shared by the value,
// category, and media resolvers.
package eav

import (
	"database/sql"
	"strings"
)

// attributeChunkSize bounds the number of attribute ids per IN clause to
// respect bound-parameter limits of the underlying store.
const attributeChunkSize = 200

// storeRank returns the priority rank of a row's store id; lower is better.
// Two explicit sentinels order the degenerate cases: a store id absent from
// the priority list ranks len(priority), and a NULL store id ranks
// len(priority)+1, worse than any concrete store.
func storeRank(priority []int64, storeID sql.NullInt64) int {
	if !storeID.Valid {
		return len(priority) + 1
	}
	for i, id := range priority {
		if id == storeID.Int64 {
			return i
		}
	}
	return len(priority)
}

// chunkIDs splits ids into consecutive chunks of at most size elements.
func chunkIDs(ids []int64, size int) [][]int64 {
	if len(ids) == 0 {
		return nil
	}
	var chunks [][]int64
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

// placeholders returns n comma-separated SQL placeholders, e.g. "?, ?, ?".
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// int64Args converts ids to driver argument values.
func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
