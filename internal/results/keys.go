package results

import "strings"

// KeyDelimiter separates document ids in a session's composite key and in
// the img_uuids query parameter.
const KeyDelimiter = "|"

// CompositeKey derives the persistence key for a grouped session: the
// document ids joined in submission order. The key is deliberately
// order-sensitive: the same ids in a different order form a different key,
// and retrieval depends on that.
func CompositeKey(documentIDs []string) string {
	return strings.Join(documentIDs, KeyDelimiter)
}

// SplitKey splits a composite key (or the img_uuids parameter) back into
// document ids, dropping empty segments.
func SplitKey(key string) []string {
	parts := strings.Split(key, KeyDelimiter)
	ids := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}
