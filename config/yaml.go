// Package config loads flag defaults from YAML configuration files.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"
)

// DefaultPaths are the configuration files read when present
var DefaultPaths = []string{
	"~/.config/vidshrink/config.yaml",
	".vidshrink.yaml",
}

// YAML is a kong.ConfigurationLoader for YAML files. Keys are flag names,
// with either dashes or underscores, e.g.:
//
//	destination_folder: /data/shrunk
//	crf: "24"
//	log_level: debug
func YAML(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	// The JSON resolver already knows how to match flags to keys
	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("unsupported value in YAML config: %w", err)
	}
	return kong.JSON(bytes.NewReader(data))
}
