package instrumentation

import (
	"context"
	"testing"
	"time"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: "prometheus",
		TracingExporter: "none",
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	t.Cleanup(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = provider.Shutdown(shutdownCtx)
	})

	return provider
}

func TestMetrics_RecordHTTPRequest(t *testing.T) {
	provider := newTestProvider(t)

	metrics := provider.Metrics()
	if metrics == nil {
		t.Fatal("expected metrics to be non-nil")
	}

	// Should not panic
	ctx := context.Background()
	metrics.RecordHTTPRequest(ctx, "POST", "/calendar/create-event", 200, 100*time.Millisecond)
	metrics.RecordHTTPRequest(ctx, "POST", "/calendar/create-event", 500, 50*time.Millisecond)
}

func TestMetrics_RecordGoogleAPIOperation(t *testing.T) {
	provider := newTestProvider(t)
	metrics := provider.Metrics()

	ctx := context.Background()
	metrics.RecordGoogleAPIOperation(ctx, ServiceCalendar, "create", StatusSuccess, 200*time.Millisecond)
	metrics.RecordGoogleAPIOperation(ctx, ServiceGmail, "send", StatusError, 500*time.Millisecond)
}

func TestMetrics_RecordOAuthAndInvites(t *testing.T) {
	provider := newTestProvider(t)
	metrics := provider.Metrics()

	ctx := context.Background()
	metrics.RecordOAuthAuth(ctx, StatusSuccess)
	metrics.RecordOAuthAuth(ctx, StatusError)
	metrics.RecordInviteSent(ctx, StatusSuccess)
	metrics.RecordInviteSent(ctx, StatusError)
}

func TestMetrics_ZeroValueIsNoop(t *testing.T) {
	m := &Metrics{}

	// All recorders must be safe on an uninitialized Metrics.
	ctx := context.Background()
	m.RecordHTTPRequest(ctx, "POST", "/", 200, time.Millisecond)
	m.RecordGoogleAPIOperation(ctx, ServiceCalendar, "create", StatusSuccess, time.Millisecond)
	m.RecordOAuthAuth(ctx, StatusSuccess)
	m.RecordInviteSent(ctx, StatusSuccess)
}

func TestProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	provider, err := NewProvider(ctx, Config{Enabled: false})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	if provider.Enabled() {
		t.Error("Enabled() = true for disabled provider")
	}
	if provider.Metrics() == nil {
		t.Error("disabled provider must still return a no-op metrics recorder")
	}
	if err := provider.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "valid defaults",
			config:  Config{MetricsExporter: ExporterPrometheus, TracingExporter: ExporterNone, TraceSamplingRate: 0.1},
			wantErr: false,
		},
		{
			name:    "invalid metrics exporter",
			config:  Config{MetricsExporter: "statsd"},
			wantErr: true,
		},
		{
			name:    "otlp metrics without endpoint",
			config:  Config{MetricsExporter: ExporterOTLP},
			wantErr: true,
		},
		{
			name:    "otlp tracing without endpoint",
			config:  Config{MetricsExporter: ExporterPrometheus, TracingExporter: ExporterOTLP},
			wantErr: true,
		},
		{
			name:    "sampling rate out of range",
			config:  Config{MetricsExporter: ExporterPrometheus, TraceSamplingRate: 1.5},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
