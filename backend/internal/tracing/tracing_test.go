package tracing

import (
	"context"
	"strings"
	"testing"
)

func TestNewExporter(t *testing.T) {
	ctx := context.Background()

	t.Run("stdout exporter", func(t *testing.T) {
		t.Setenv("NS_OTEL_EXPORTER", "stdout")

		exp, err := newExporter(ctx)
		if err != nil {
			t.Fatalf("newExporter error: %v", err)
		}
		if exp == nil {
			t.Fatal("expected non-nil exporter")
		}
	})

	t.Run("unsupported exporter returns error", func(t *testing.T) {
		t.Setenv("NS_OTEL_EXPORTER", "invalid")

		_, err := newExporter(ctx)
		if err == nil {
			t.Fatal("expected error for unsupported exporter")
		}
		if !strings.Contains(err.Error(), "unsupported NS_OTEL_EXPORTER") {
			t.Errorf("unexpected error message: %s", err)
		}
	})
}

func TestShutdown_WithoutInit(t *testing.T) {
	if err := Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown without Init should be a no-op, got: %v", err)
	}
}
