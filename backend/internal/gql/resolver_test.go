package gql_test

import (
	"context"
	"encoding/json"
	"testing"

	"go.uber.org/zap"

	"github.com/northslopehq/nsapp/backend/internal/gql"
)

func TestNewSchema(t *testing.T) {
	t.Parallel()

	resolver := gql.NewResolver(nil, zap.NewNop())
	schema, err := gql.NewSchema(resolver)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if schema == nil {
		t.Fatal("schema should not be nil")
	}
}

func TestOkQuery(t *testing.T) {
	t.Parallel()

	resolver := gql.NewResolver(nil, zap.NewNop())
	schema, err := gql.NewSchema(resolver)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := schema.Exec(context.Background(), `{ ok }`, "", nil)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}

	var data struct {
		Ok string `json:"ok"`
	}
	if err := json.Unmarshal(result.Data, &data); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if data.Ok != "ok" {
		t.Errorf("ok = %q, want %q", data.Ok, "ok")
	}
}
