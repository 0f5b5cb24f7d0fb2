/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ConfigLoader decodes a configuration file into dst.
type ConfigLoader interface {
	Load(ctx context.Context, path string, dst interface{}) error
}

// FileConfigLoader loads configuration from a local JSON file.
type FileConfigLoader struct{}

// Load implements ConfigLoader by reading and unmarshaling a JSON file.
func (*FileConfigLoader) Load(_ context.Context, path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file '%s': %w", path, err)
	}

	err = json.Unmarshal(data, dst)
	if err != nil {
		return fmt.Errorf("failed to unmarshal JSON from '%s': %w", path, err)
	}

	return nil
}

// YAMLConfigLoader loads configuration from a YAML file.
type YAMLConfigLoader struct{}

func (*YAMLConfigLoader) Load(_ context.Context, path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file '%s': %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("failed to unmarshal YAML from '%s': %w", path, err)
	}

	return nil
}

// TOMLConfigLoader loads configuration from a TOML file.
type TOMLConfigLoader struct{}

func (*TOMLConfigLoader) Load(_ context.Context, path string, dst interface{}) error {
	if _, err := toml.DecodeFile(path, dst); err != nil {
		return fmt.Errorf("failed to unmarshal TOML from '%s': %w", path, err)
	}

	return nil
}

// LoaderFor picks a loader by file extension.
func LoaderFor(path string) (ConfigLoader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return &FileConfigLoader{}, nil
	case ".yaml", ".yml":
		return &YAMLConfigLoader{}, nil
	case ".toml":
		return &TOMLConfigLoader{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnsupportedFormat, filepath.Ext(path))
	}
}

// Validator is implemented by configurations that check themselves after loading.
type Validator interface {
	Validate() error
}

// ValidateConfig validates a configuration if it implements Validator.
func ValidateConfig(cfg interface{}) error {
	v, ok := cfg.(Validator)
	if !ok {
		return nil
	}

	return v.Validate()
}

// LoadAndValidate loads path into cfg with the loader matching its extension
// and validates the result.
func LoadAndValidate(ctx context.Context, path string, cfg interface{}) error {
	if cfg == nil {
		return errInvalidConfigPtr
	}

	loader, err := LoaderFor(path)
	if err != nil {
		return err
	}

	if err := loader.Load(ctx, path, cfg); err != nil {
		return err
	}

	return ValidateConfig(cfg)
}
