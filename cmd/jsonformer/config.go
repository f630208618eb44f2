package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/lemon-mint/jsonformer/former"
	"github.com/lemon-mint/jsonformer/schema"
)

// fileConfig is the layout of the --config file. Flags override its values.
type fileConfig struct {
	Backend     string `yaml:"backend"`
	Model       string `yaml:"model"`
	BaseURL     string `yaml:"base_url"`
	Encoding    string `yaml:"encoding"`
	TopLogprobs int    `yaml:"top_logprobs"`

	Generation former.Config `yaml:"generation"`
}

func defaultFileConfig() *fileConfig {
	return &fileConfig{
		Backend:    "ollama",
		Model:      "llama3",
		Generation: former.DefaultConfig(),
	}
}

func loadConfig(path string) (*fileConfig, error) {
	c := defaultFileConfig()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return c, nil
}

// loadSchema reads a schema file. Files ending in .json are parsed as JSON,
// everything else as YAML.
func loadSchema(path string) (*schema.Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}

	var n schema.Node
	if strings.EqualFold(filepath.Ext(path), ".json") {
		n, err = schema.ParseJSON(data)
	} else {
		n, err = schema.ParseYAML(data)
	}
	if err != nil {
		return nil, err
	}

	obj, ok := n.(*schema.Object)
	if !ok || len(obj.Properties) == 0 {
		return nil, fmt.Errorf("%w: %s: top level schema must be an object with properties", former.ErrConfiguration, path)
	}
	return obj, nil
}
