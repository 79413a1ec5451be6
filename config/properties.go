// Package config loads this broker's two configuration surfaces: the
// Kafka-standard server.properties file, and an optional broker.yaml for
// knobs Kafka's own config format has no room for.
package config

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// DefaultLogDir is used when server.properties is absent or omits
// log.dirs, matching SPEC_FULL.md §6.
const DefaultLogDir = "/tmp/kraft-combined-logs"

// DefaultListener is used when server.properties is absent or omits
// listeners.
const DefaultListener = "127.0.0.1:9092"

// Properties holds the handful of server.properties keys this broker
// actually consults; every other key in the file is read and discarded
// without error, since Kafka's real server.properties carries dozens of
// keys this broker has no business validating.
type Properties struct {
	LogDir   string
	Listener string
}

// DefaultProperties returns the zero-configuration defaults.
func DefaultProperties() Properties {
	return Properties{LogDir: DefaultLogDir, Listener: DefaultListener}
}

// LoadProperties parses a Java-properties-style file (key=value, '#' or '!'
// comment lines, blank lines skipped) from path, overlaying DefaultProperties
// with whatever of log.dirs/listeners it finds.
func LoadProperties(path string) (Properties, error) {
	f, err := os.Open(path)
	if err != nil {
		return Properties{}, err
	}
	defer f.Close()
	return parseProperties(f)
}

func parseProperties(r io.Reader) (Properties, error) {
	props := DefaultProperties()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "log.dirs":
			// Kafka allows a comma-separated list; this broker reads a
			// single metadata log directory, so only the first is used.
			if first, _, _ := strings.Cut(value, ","); first != "" {
				props.LogDir = first
			}
		case "listeners":
			if listener := firstListenerAddress(value); listener != "" {
				props.Listener = listener
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Properties{}, err
	}
	return props, nil
}

// firstListenerAddress strips a PLAINTEXT://-style scheme prefix from the
// first entry of a comma-separated listeners value, since this broker only
// ever binds one plaintext address.
func firstListenerAddress(value string) string {
	first, _, _ := strings.Cut(value, ",")
	first = strings.TrimSpace(first)
	if idx := strings.Index(first, "://"); idx >= 0 {
		first = first[idx+3:]
	}
	return first
}
