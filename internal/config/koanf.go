// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/mixtape/config.yaml",
	"/etc/mixtape/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Dir:           "data",
			SliceStarts:   []int{0},
			ChallengePath: "",
			Workers:       4,
		},
		Dataset: DatasetConfig{
			NumPlaylists:  0, // derived from the largest training pid
			SkipMalformed: false,
		},
		Sampler: SamplerConfig{
			NumNegatives: 4,
			MaxRetries:   1000,
			Workers:      4,
			Seed:         42,
		},
		Model: ModelConfig{
			LatentDim:       8,
			RegPlaylist:     0,
			RegTrack:        0,
			LearningRate:    0.001,
			BatchSize:       200,
			Epochs:          15,
			ValidationSplit: 0.2,
			Seed:            42,
		},
		Recommend: RecommendConfig{
			K:            500,
			OutputPath:   "recommendations.json",
			IncludeKnown: false,
		},
		Storage: StorageConfig{
			Path:         "/data/mixtape",
			InMemory:     false,
			SyncWrites:   false,
			KeepVersions: 5,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: MIXTAPE_* overrides
//
// The result is validated before it is returned.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// MIXTAPE_SAMPLER_NUM_NEGATIVES -> sampler.num_negatives
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first config file found, or "" if none.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// intSliceConfigPaths are parsed as comma-separated integer lists when they
// arrive as strings.
var intSliceConfigPaths = []string{
	"data.slice_starts",
}

// processSliceFields converts comma-separated env values to slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range intSliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}

		parts := strings.Split(strVal, ",")
		values := make([]int, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			n, err := strconv.Atoi(p)
			if err != nil {
				return fmt.Errorf("%s: invalid integer %q: %w", path, p, err)
			}
			values = append(values, n)
		}
		if err := k.Set(path, values); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
var envMappings = map[string]string{
	"mixtape_data_dir":            "data.dir",
	"mixtape_data_slice_starts":   "data.slice_starts",
	"mixtape_data_challenge_path": "data.challenge_path",
	"mixtape_data_workers":        "data.workers",

	"mixtape_dataset_num_playlists":  "dataset.num_playlists",
	"mixtape_dataset_skip_malformed": "dataset.skip_malformed",

	"mixtape_sampler_num_negatives": "sampler.num_negatives",
	"mixtape_sampler_max_retries":   "sampler.max_retries",
	"mixtape_sampler_workers":       "sampler.workers",
	"mixtape_sampler_seed":          "sampler.seed",

	"mixtape_model_latent_dim":       "model.latent_dim",
	"mixtape_model_reg_playlist":     "model.reg_playlist",
	"mixtape_model_reg_track":        "model.reg_track",
	"mixtape_model_learning_rate":    "model.learning_rate",
	"mixtape_model_batch_size":       "model.batch_size",
	"mixtape_model_epochs":           "model.epochs",
	"mixtape_model_validation_split": "model.validation_split",
	"mixtape_model_seed":             "model.seed",

	"mixtape_recommend_k":             "recommend.k",
	"mixtape_recommend_output_path":   "recommend.output_path",
	"mixtape_recommend_include_known": "recommend.include_known",

	"mixtape_storage_path":          "storage.path",
	"mixtape_storage_in_memory":     "storage.in_memory",
	"mixtape_storage_sync_writes":   "storage.sync_writes",
	"mixtape_storage_keep_versions": "storage.keep_versions",

	"mixtape_metrics_enabled": "metrics.enabled",
	"mixtape_metrics_addr":    "metrics.addr",

	"mixtape_log_level":  "logging.level",
	"mixtape_log_format": "logging.format",
	"mixtape_log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to a koanf path.
// Unmapped names return "" so unrelated variables never reach the config.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
