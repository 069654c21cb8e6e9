package config

import (
	"fmt"
	"strings"
)

type Storage struct {
	Driver StorageDriver `env:"STORAGE_DRIVER" envDefault:"POSTGRES"`
}

// StorageDriver selects the backing store of the repositories.
type StorageDriver uint8

const (
	StorageDriverPostgres StorageDriver = iota
	StorageDriverMemory
)

func (d StorageDriver) String() string {
	return []string{"POSTGRES", "MEMORY"}[d]
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *StorageDriver) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "POSTGRES":
		*d = StorageDriverPostgres
	case "MEMORY":
		*d = StorageDriverMemory
	default:
		return fmt.Errorf("unknown storage driver: %s", text)
	}
	return nil
}

func (d StorageDriver) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
