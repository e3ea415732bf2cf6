package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitOTelDisabled(t *testing.T) {
	logger := NewLogger(ErrorLevel, &bytes.Buffer{})

	providers, err := InitOTel(context.Background(), OTelConfig{Enabled: false}, logger)
	if err != nil {
		t.Fatalf("Disabled init returned error: %v", err)
	}
	if providers != nil {
		t.Error("Disabled init should return nil providers")
	}
}

func TestShutdownOTelNilProviders(t *testing.T) {
	logger := NewLogger(ErrorLevel, &bytes.Buffer{})

	if err := ShutdownOTel(context.Background(), nil, logger); err != nil {
		t.Errorf("Nil providers should be a no-op, got %v", err)
	}
}

func TestShutdownOTelFlushesProviders(t *testing.T) {
	logger := NewLogger(ErrorLevel, &bytes.Buffer{})
	providers := &OTelProviders{
		TracerProvider: sdktrace.NewTracerProvider(),
	}

	if err := ShutdownOTel(context.Background(), providers, logger); err != nil {
		t.Errorf("Shutdown of exporter-less provider failed: %v", err)
	}
}

func TestUpdateLoggerWithTraceContext(t *testing.T) {
	t.Run("no span leaves logger unchanged", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(InfoLevel, &buf)

		enriched := UpdateLoggerWithTraceContext(context.Background(), logger)
		enriched.Info("no trace")

		var entry map[string]interface{}
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("Failed to unmarshal log entry: %v", err)
		}
		if _, exists := entry["trace_id"]; exists {
			t.Error("Expected no trace_id without an active span")
		}
	})

	t.Run("recording span adds trace fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(InfoLevel, &buf)

		tp := sdktrace.NewTracerProvider()
		defer tp.Shutdown(context.Background())

		ctx, span := tp.Tracer("test").Start(context.Background(), "presign")
		defer span.End()

		enriched := UpdateLoggerWithTraceContext(ctx, logger)
		enriched.Info("traced")

		var entry map[string]interface{}
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("Failed to unmarshal log entry: %v", err)
		}
		if entry["trace_id"] == nil || entry["trace_id"] == "" {
			t.Error("Expected trace_id field on traced log line")
		}
		if entry["span_id"] == nil || entry["span_id"] == "" {
			t.Error("Expected span_id field on traced log line")
		}
	})
}
