package query

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/age"
)

// Gateway runs ad-hoc read queries on one connected client.
type Gateway struct {
	gw     age.Gateway
	limits Limits
	log    *slog.Logger
}

// NewGateway wraps a connected client.
func NewGateway(gw age.Gateway, limits Limits, log *slog.Logger) *Gateway {
	return &Gateway{gw: gw, limits: limits, log: log}
}

// Execute screens text for mutating keywords, bounds the row count and runs
// it in a read-only transaction with a server-side statement timeout. Every
// failure is an *Error.
func (g *Gateway) Execute(ctx context.Context, text string, opts Options) ([]map[string]any, error) {
	if kw := Screen(text); kw != "" {
		return nil, forbidden(text, kw)
	}
	opts = g.limits.Resolve(opts)
	bounded := BoundRows(text, opts.MaxRows)

	var raw []string
	err := g.gw.Transaction(ctx, func(s age.Session) error {
		if err := s.Exec(ctx, "SET TRANSACTION READ ONLY"); err != nil {
			return err
		}
		if err := s.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = %d", opts.TimeoutSeconds*1000)); err != nil {
			return err
		}
		res, err := s.ExecuteCypher(ctx, bounded)
		if err != nil {
			return err
		}
		raw = res.Rows
		return nil
	})
	if err != nil {
		return nil, classify(text, opts.TimeoutSeconds, err)
	}

	rows := make([]map[string]any, 0, len(raw))
	for _, r := range raw {
		row, err := NormalizeRow(r)
		if err != nil {
			return nil, &Error{Type: ErrorUnknown, Message: err.Error(), Query: text, Err: err}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
