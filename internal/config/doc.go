// Package config provides centralized configuration management for spireport.
// It handles loading configuration from multiple sources, validation, and
// path resolution for every input and output file the pipeline touches.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern SPI_* for namespacing:
//
//	SPI_INPUTS_HOUSE=data/house_progressive_score.csv
//	SPI_CACHE_PATH=data/congress.csv
//	SPI_MATCHING_STRATEGY=ratio
//	SPI_JOIN_STRICT=true
//	SPI_LOGGING_LEVEL=debug
//	SPI_TELEMETRY_METRICS_FILE=metrics/spireport.prom
//
// SPI_CONFIG_FILE points at a YAML file; otherwise spireport.yaml and
// configs/spireport.yaml are tried.
//
// # Paths
//
// Relative paths resolve against the working directory through Paths:
//
//	paths, _ := config.WorkingPaths()
//	cfg.ResolvePaths(paths)
//
// # Validation
//
// Load validates the merged configuration with struct tags
// (go-playground/validator), so a bad strategy name or a cutoff outside
// (0, 1] fails at startup rather than mid-pipeline.
//
// # Testing
//
// Default() returns the fixed-path configuration without touching the
// environment.
package config
