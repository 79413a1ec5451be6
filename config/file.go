package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration parses the same "60s"/"5m"-style strings time.ParseDuration
// accepts, since yaml.v3 has no built-in notion of time.Duration.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// File is the optional broker.yaml, carrying operational knobs outside
// Kafka's own server.properties surface. The broker must run with zero
// configuration, so every field here has a usable default.
type File struct {
	Metrics struct {
		Interval Duration `yaml:"interval"`
	} `yaml:"metrics"`
	Server struct {
		MaxConnections  int64    `yaml:"max_connections"`
		ShutdownTimeout Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
}

// DefaultFile returns the broker.yaml defaults used when no -broker-config
// flag is given.
func DefaultFile() File {
	var f File
	f.Metrics.Interval = Duration(60 * time.Second)
	f.Server.MaxConnections = 0 // 0 means unbounded, per SPEC_FULL.md §4A.7
	f.Server.ShutdownTimeout = Duration(5 * time.Second)
	return f
}

// LoadFile reads and parses path as YAML, starting from DefaultFile so any
// field the file omits keeps its default.
func LoadFile(path string) (File, error) {
	f := DefaultFile()
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, err
	}
	return f, nil
}
