package telemetry

import (
	"context"
	"testing"
)

func TestInitTelemetry_NoEndpoint(t *testing.T) {
	shutdown, err := InitTelemetry(context.Background(), "test-service", "v1.0.0", "test", "", nil)
	if err != nil {
		t.Fatalf("InitTelemetry failed: %v", err)
	}
	if shutdown == nil {
		t.Fatal("expected a shutdown func")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("no-op shutdown returned error: %v", err)
	}
}

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Endpoint
	}{
		{
			name: "plain https host",
			raw:  "https://otlp.example.com",
			want: Endpoint{Host: "otlp.example.com", TracePath: "/v1/traces", LogPath: "/"},
		},
		{
			name: "local http collector",
			raw:  "http://localhost:4318",
			want: Endpoint{Host: "localhost:4318", Insecure: true, TracePath: "/v1/traces", LogPath: "/"},
		},
		{
			name: "grafana otlp path",
			raw:  "https://otlp-gateway.grafana.net/otlp",
			want: Endpoint{Host: "otlp-gateway.grafana.net", TracePath: "/otlp/v1/traces", LogPath: "/otlp/v1/logs"},
		},
		{
			name: "custom base path with signal suffix",
			raw:  "https://collector.example.com/ingest/v1/traces",
			want: Endpoint{Host: "collector.example.com", TracePath: "/ingest/v1/traces", LogPath: "/ingest/v1/logs"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseEndpoint(tt.raw)
			if got != tt.want {
				t.Errorf("ParseEndpoint(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestTracer(t *testing.T) {
	tracer := Tracer("test-tracer")
	if tracer == nil {
		t.Fatal("Tracer returned nil")
	}
}
