package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/openshift-hyperfleet/kartograph-sub001/internal/config"
)

// Options bound a single read query. Zero values select the defaults.
type Options struct {
	TimeoutSeconds int
	MaxRows        int
}

// Limits holds the defaults and hard caps applied to Options.
type Limits struct {
	DefaultTimeoutSeconds int
	MaxTimeoutSeconds     int
	DefaultMaxRows        int
	MaxRowsCap            int
}

// DefaultLimits are used when no configuration is supplied.
var DefaultLimits = Limits{
	DefaultTimeoutSeconds: 30,
	MaxTimeoutSeconds:     300,
	DefaultMaxRows:        1000,
	MaxRowsCap:            10000,
}

// LimitsFromConfig reads the query limits from the graph settings.
func LimitsFromConfig(cfg *config.Config) Limits {
	return Limits{
		DefaultTimeoutSeconds: cfg.Graph.QueryDefaultTimeoutSeconds,
		MaxTimeoutSeconds:     cfg.Graph.QueryMaxTimeoutSeconds,
		DefaultMaxRows:        cfg.Graph.QueryDefaultMaxRows,
		MaxRowsCap:            cfg.Graph.QueryMaxRowsCap,
	}
}

// Resolve applies defaults to non-positive values and clamps the rest to
// the caps.
func (l Limits) Resolve(opts Options) Options {
	return Options{
		TimeoutSeconds: bound(opts.TimeoutSeconds, l.DefaultTimeoutSeconds, l.MaxTimeoutSeconds),
		MaxRows:        bound(opts.MaxRows, l.DefaultMaxRows, l.MaxRowsCap),
	}
}

func bound(v, def, ceiling int) int {
	if v <= 0 {
		v = def
	}
	return min(v, ceiling)
}

var (
	forbiddenPattern = regexp.MustCompile(`(?i)\b(CREATE|DELETE|SET|REMOVE|MERGE)\b`)
	limitPattern     = regexp.MustCompile(`(?i)\bLIMIT\s+\d+`)
)

// Screen returns the first mutating keyword found in text, uppercased, or
// "" when the text is read-only. String literals are not exempt.
func Screen(text string) string {
	m := forbiddenPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1])
}

// BoundRows appends a LIMIT clause unless text already has one outside
// string literals and comments. The clause goes on its own line so a trailing
// line comment cannot swallow it.
func BoundRows(text string, maxRows int) string {
	if limitPattern.MatchString(maskLiterals(text)) {
		return text
	}
	return fmt.Sprintf("%s\nLIMIT %d", strings.TrimRight(text, "; \t\r\n"), maxRows)
}

// maskLiterals blanks quoted strings, quoted identifiers and comments,
// keeping the text length unchanged.
func maskLiterals(text string) string {
	b := []byte(text)
	for i := 0; i < len(b); i++ {
		switch {
		case b[i] == '\'' || b[i] == '"' || b[i] == '`':
			q := b[i]
			for i++; i < len(b) && b[i] != q; i++ {
				if b[i] == '\\' && q != '`' && i+1 < len(b) {
					b[i] = ' '
					i++
				}
				b[i] = ' '
			}
		case b[i] == '/' && i+1 < len(b) && b[i+1] == '/':
			for ; i < len(b) && b[i] != '\n'; i++ {
				b[i] = ' '
			}
		case b[i] == '/' && i+1 < len(b) && b[i+1] == '*':
			for ; i < len(b) && !(b[i] == '*' && i+1 < len(b) && b[i+1] == '/'); i++ {
				b[i] = ' '
			}
			if i < len(b) {
				b[i] = ' '
				if i+1 < len(b) {
					i++
					b[i] = ' '
				}
			}
		}
	}
	return string(b)
}
