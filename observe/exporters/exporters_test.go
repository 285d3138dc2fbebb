package exporters

import (
	"context"
	"errors"
	"testing"
)

func TestNewTracingExporter(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		exporter  string
		wantErr   error
		wantNoErr bool
	}{
		{name: "stdout", exporter: "stdout", wantNoErr: true},
		{name: "none", exporter: "none", wantNoErr: true},
		{name: "empty", exporter: "", wantNoErr: true},
		{name: "otlp without endpoint", exporter: "otlp", wantErr: ErrEndpointNotConfigured},
		{name: "jaeger without endpoint", exporter: "jaeger", wantErr: ErrEndpointNotConfigured},
		{name: "unknown", exporter: "zipkin", wantErr: ErrUnknownExporter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp, err := NewTracingExporter(ctx, tt.exporter)
			if tt.wantNoErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if exp == nil {
					t.Fatal("expected exporter, got nil")
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewTracingExporterOTLPWithEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")

	exp, err := NewTracingExporter(context.Background(), "otlp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exp == nil {
		t.Fatal("expected exporter, got nil")
	}
}

func TestNewMetricsReader(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		exporter  string
		wantErr   error
		wantNoErr bool
	}{
		{name: "stdout", exporter: "stdout", wantNoErr: true},
		{name: "prometheus", exporter: "prometheus", wantNoErr: true},
		{name: "none", exporter: "none", wantNoErr: true},
		{name: "empty", exporter: "", wantNoErr: true},
		{name: "otlp without endpoint", exporter: "otlp", wantErr: ErrEndpointNotConfigured},
		{name: "unknown", exporter: "statsd", wantErr: ErrUnknownExporter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader, err := NewMetricsReader(ctx, tt.exporter)
			if tt.wantNoErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if reader == nil {
					t.Fatal("expected reader, got nil")
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEndpointFromEnv(t *testing.T) {
	t.Setenv("EXPORTERS_TEST_A", "")
	t.Setenv("EXPORTERS_TEST_B", "b-value")

	if got := endpointFromEnv("EXPORTERS_TEST_A", "EXPORTERS_TEST_B"); got != "b-value" {
		t.Errorf("endpointFromEnv = %q, want %q", got, "b-value")
	}
	if got := endpointFromEnv("EXPORTERS_TEST_A"); got != "" {
		t.Errorf("endpointFromEnv = %q, want empty", got)
	}
}
