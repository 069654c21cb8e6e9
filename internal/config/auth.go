package config

import "time"

type Auth struct {
	JWTSecret      string        `env:"JWT_SECRET,required,notEmpty"`
	JWTIssuer      string        `env:"JWT_ISSUER" envDefault:"storefront"`
	JWTAudience    string        `env:"JWT_AUDIENCE" envDefault:"storefront"`
	AccessTokenTTL time.Duration `env:"JWT_ACCESS_TOKEN_TTL" envDefault:"1h"`
	BcryptCost     int           `env:"BCRYPT_COST" envDefault:"12"`
}
