package age

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// DefaultDelimiterLength is the length of the dollar-quote tag used when the
// connector is not configured otherwise.
const DefaultDelimiterLength = 64

const (
	letters      = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	alphanumeric = letters + "0123456789"
)

// newDelimiter returns a random alphanumeric tag of length n whose first
// character is a letter, making it a valid dollar-quote tag.
func newDelimiter(n int) (string, error) {
	if n < 1 {
		n = DefaultDelimiterLength
	}
	buf := make([]byte, n)
	var sb strings.Builder
	sb.Grow(n)
	for sb.Len() < n {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate delimiter: %w", err)
		}
		for _, b := range buf {
			if sb.Len() == n {
				break
			}
			alphabet := alphanumeric
			if sb.Len() == 0 {
				alphabet = letters
			}
			// Reject bytes past the largest multiple of the alphabet size to keep the draw uniform.
			limit := 256 - 256%len(alphabet)
			if int(b) >= limit {
				continue
			}
			sb.WriteByte(alphabet[int(b)%len(alphabet)])
		}
	}
	return sb.String(), nil
}

// wrapCypher embeds query into AGE's cypher() call using delimiter as the
// dollar-quote tag. It fails with ErrInsecureQuery when the query contains
// the delimiter.
func wrapCypher(graph, delimiter, query string) (string, error) {
	if strings.Contains(query, delimiter) {
		return "", ErrInsecureQuery
	}
	return fmt.Sprintf(
		"SELECT * FROM ag_catalog.cypher('%s', $%s$ %s $%s$) AS (result ag_catalog.agtype)",
		graph, delimiter, query, delimiter,
	), nil
}
