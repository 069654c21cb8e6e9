package config

type Kafka struct {
	Enabled   bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	Addresses []string `env:"KAFKA_ADDRESSES" envSeparator:"," envDefault:"localhost:9092"`
	Group     string   `env:"KAFKA_GROUP" envDefault:"storefront"`
	ClientID  string   `env:"KAFKA_CLIENT_ID" envDefault:"storefront"`
}
