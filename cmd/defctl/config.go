package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type fileConfig struct {
	LogLevel   string   `toml:"log_level"`
	SortFields bool     `toml:"sort_fields"`
	Schemas    []string `toml:"schemas"`
}

type toolConfig struct {
	LogLevel   string
	SortFields bool
	Schemas    []string
}

func defaultToolConfig() toolConfig {
	return toolConfig{
		LogLevel:   "info",
		SortFields: true,
	}
}

func loadToolConfig(path string) (toolConfig, error) {
	cfg := defaultToolConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return toolConfig{}, fmt.Errorf("load defctl config: %w", err)
	}

	if meta.IsDefined("log_level") {
		level := strings.TrimSpace(raw.LogLevel)
		if level != "" {
			cfg.LogLevel = level
		}
	}
	if meta.IsDefined("sort_fields") {
		cfg.SortFields = raw.SortFields
	}
	if meta.IsDefined("schemas") {
		cfg.Schemas = normalizePaths(raw.Schemas)
	}
	return cfg, nil
}

func normalizePaths(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		v := strings.TrimSpace(p)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
