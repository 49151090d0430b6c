// Package gql holds the GraphQL schema and its root resolver.
package gql

import (
	"context"
	_ "embed"

	"github.com/cockroachdb/errors"
	"github.com/graph-gophers/graphql-go"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/northslopehq/nsapp/backend/internal/tracelog"
)

//go:embed schema.graphqls
var schemaString string

// Resolver is the root GraphQL resolver, backed by the stage database.
type Resolver struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewResolver creates the root resolver.
func NewResolver(pool *pgxpool.Pool, logger *zap.Logger) *Resolver {
	return &Resolver{pool: pool, logger: logger}
}

// NewSchema parses the embedded schema against the root resolver.
func NewSchema(resolver *Resolver) (*graphql.Schema, error) {
	schema, err := graphql.ParseSchema(schemaString, resolver)
	if err != nil {
		return nil, errors.Wrap(err, "parse GraphQL schema")
	}
	return schema, nil
}

// Ok returns "ok" for health checks.
func (r *Resolver) Ok() string {
	return "ok"
}

// ServerVersion reports the database server's version string.
func (r *Resolver) ServerVersion(ctx context.Context) (string, error) {
	var version string
	if err := r.pool.QueryRow(ctx, "select version()").Scan(&version); err != nil {
		tracelog.Error(ctx, r.logger, "query server version", err)
		return "", errors.Wrap(err, "query server version")
	}
	return version, nil
}
