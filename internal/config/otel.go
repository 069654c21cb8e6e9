package config

// Otel configures trace export. Without a CollectorURL spans are sampled
// but not exported.
type Otel struct {
	ServiceName    string `env:"OTEL_SERVICE_NAME" envDefault:"storefront"`
	ServiceVersion string `env:"OTEL_SERVICE_VERSION"`

	CollectorURL  string `env:"OTEL_COLLECTOR_URL"`
	CollectorAuth string `env:"OTEL_COLLECTOR_AUTH"`
	Insecure      bool   `env:"OTEL_INSECURE"`

	// TraceIDRatio is the fraction of root spans sampled, in [0, 1].
	TraceIDRatio float64 `env:"OTEL_TRACE_ID_RATIO" envDefault:"0.1"`

	K8sPodName   string `env:"K8S_POD_NAME"`
	K8sNamespace string `env:"K8S_NAMESPACE"`
}
