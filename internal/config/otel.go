package config

import "time"

// OtelConfig controls span export. Spans are only exported when Endpoint is set.
type OtelConfig struct {
	Endpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	Insecure    bool          `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	Timeout     time.Duration `env:"OTEL_EXPORTER_OTLP_TIMEOUT" envDefault:"10s"`
	ServiceName string        `env:"OTEL_SERVICE_NAME" envDefault:"kartograph-graph"`

	// SampleRatio is the fraction of root traces kept; child spans follow their parent.
	SampleRatio float64 `env:"OTEL_SAMPLING_RATE" envDefault:"1.0" validate:"min=0,max=1"`
}

// Enabled reports whether an OTLP endpoint is configured.
func (c OtelConfig) Enabled() bool {
	return c.Endpoint != ""
}
