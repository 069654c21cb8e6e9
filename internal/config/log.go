package config

import (
	"fmt"
	"log/slog"
	"strings"
)

type Log struct {
	Format    LogFormat  `env:"LOG_FORMAT" envDefault:"JSON"`
	Level     slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	AddSource bool       `env:"LOG_ADD_SOURCE" envDefault:"true"`

	// NoColor disables ANSI colors of the TEXT format.
	NoColor bool `env:"LOG_NO_COLOR"`
}

// LogFormat selects the slog handler: JSON for shipping, TEXT for terminals.
type LogFormat uint8

const (
	LogFormatJSON LogFormat = iota
	LogFormatText
)

var logFormatNames = map[LogFormat]string{
	LogFormatJSON: "JSON",
	LogFormatText: "TEXT",
}

func (f LogFormat) String() string {
	if name, ok := logFormatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("LogFormat(%d)", uint8(f))
}

// UnmarshalText implements [encoding.TextUnmarshaler]. Matching is case
// insensitive and "tint" is accepted as TEXT.
func (f *LogFormat) UnmarshalText(text []byte) error {
	name := strings.ToUpper(strings.TrimSpace(string(text)))
	if name == "TINT" {
		name = "TEXT"
	}

	for format, n := range logFormatNames {
		if n == name {
			*f = format
			return nil
		}
	}
	return fmt.Errorf("unknown log format: %q", text)
}

func (f LogFormat) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}
