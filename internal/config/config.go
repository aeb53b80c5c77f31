package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Inputs    InputsConfig    `yaml:"inputs" split_words:"true"`
	Columns   ColumnsConfig   `yaml:"columns" split_words:"true"`
	Matching  MatchingConfig  `yaml:"matching" split_words:"true"`
	Join      JoinConfig      `yaml:"join" split_words:"true"`
	Cache     CacheConfig     `yaml:"cache" split_words:"true"`
	Report    ReportConfig    `yaml:"report" split_words:"true"`
	Export    ExportConfig    `yaml:"export" split_words:"true"`
	Logging   LoggingConfig   `yaml:"logging" split_words:"true"`
	Telemetry TelemetryConfig `yaml:"telemetry" split_words:"true"`
}

// InputsConfig lists the four source tables
type InputsConfig struct {
	SocialProgress string `yaml:"social_progress" split_words:"true" validate:"required"`
	StateMetadata  string `yaml:"state_metadata" split_words:"true" validate:"required"`
	House          string `yaml:"house" split_words:"true" validate:"required"`
	Senate         string `yaml:"senate" split_words:"true" validate:"required"`
}

// ColumnsConfig names the source columns the pipeline reads
type ColumnsConfig struct {
	Composite    string `yaml:"composite" split_words:"true" validate:"required"`
	StateName    string `yaml:"state_name" split_words:"true" validate:"required"`
	StateCode    string `yaml:"state_code" split_words:"true" validate:"required"`
	District     string `yaml:"district" split_words:"true" validate:"required"`
	State        string `yaml:"state" split_words:"true" validate:"required"`
	Party        string `yaml:"party" split_words:"true" validate:"required"`
	ChamberScore string `yaml:"chamber_score" split_words:"true" validate:"required"`
}

// MatchingConfig selects the state-name reconciliation strategy
type MatchingConfig struct {
	Strategy      string  `yaml:"strategy" split_words:"true" validate:"oneof=ratio exact normalized"`
	Cutoff        float64 `yaml:"cutoff" split_words:"true" validate:"gt=0,lte=1"`
	MaxCandidates int     `yaml:"max_candidates" split_words:"true" validate:"gte=1"`
}

// JoinConfig controls the state inner join
type JoinConfig struct {
	// Strict turns metadata rows without a score match into a JoinError.
	Strict bool `yaml:"strict" split_words:"true"`
}

// CacheConfig locates the joined-table cache file
type CacheConfig struct {
	Path string `yaml:"path" split_words:"true" validate:"required"`
}

// ReportConfig contains chart and regression settings
type ReportConfig struct {
	PartyPlot       string  `yaml:"party_plot" split_words:"true" validate:"required"`
	OverallPlot     string  `yaml:"overall_plot" split_words:"true" validate:"required"`
	WidthInches     float64 `yaml:"width_inches" split_words:"true" validate:"gt=0"`
	HeightInches    float64 `yaml:"height_inches" split_words:"true" validate:"gt=0"`
	Dependent       string  `yaml:"dependent" split_words:"true" validate:"required"`
	Independent     string  `yaml:"independent" split_words:"true" validate:"required"`
	PartyDegree     int     `yaml:"party_degree" split_words:"true" validate:"gte=1"`
	OverallDegree   int     `yaml:"overall_degree" split_words:"true" validate:"gte=1"`
	SmoothPoints    int     `yaml:"smooth_points" split_words:"true" validate:"gte=2"`
	ConfidenceLevel float64 `yaml:"confidence_level" split_words:"true" validate:"gt=0,lt=1"`
}

// ExportConfig contains optional extra outputs
type ExportConfig struct {
	// Workbook, when set, receives an xlsx copy of the joined table.
	Workbook string `yaml:"workbook" split_words:"true"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" split_words:"true" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" split_words:"true" validate:"oneof=json text"`
	Output   string `yaml:"output" split_words:"true" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" split_words:"true"`
}

// TelemetryConfig contains tracing and metrics export settings
type TelemetryConfig struct {
	TraceExporter string `yaml:"trace_exporter" split_words:"true" validate:"oneof=none stdout file"`
	TraceFile     string `yaml:"trace_file" split_words:"true" validate:"required_if=TraceExporter file"`
	// MetricsFile, when set, receives a Prometheus textfile at shutdown.
	MetricsFile string `yaml:"metrics_file" split_words:"true"`
}

// Load loads configuration from defaults, an optional YAML file and the
// environment, in that order of increasing precedence.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit YAML file path. An empty path skips the
// file layer.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Only SPI_-prefixed names are read. Fields use split_words, not envconfig
	// tags: a tagged field falls back to its bare name (PATH, STATE, LEVEL)
	// when the prefixed variable is unset.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks struct constraints on the configuration
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// ResolvePaths rewrites every relative file path against paths.BaseDir
func (c *Config) ResolvePaths(paths *Paths) {
	c.Inputs.SocialProgress = paths.Resolve(c.Inputs.SocialProgress)
	c.Inputs.StateMetadata = paths.Resolve(c.Inputs.StateMetadata)
	c.Inputs.House = paths.Resolve(c.Inputs.House)
	c.Inputs.Senate = paths.Resolve(c.Inputs.Senate)
	c.Cache.Path = paths.Resolve(c.Cache.Path)
	c.Report.PartyPlot = paths.Resolve(c.Report.PartyPlot)
	c.Report.OverallPlot = paths.Resolve(c.Report.OverallPlot)
	if c.Export.Workbook != "" {
		c.Export.Workbook = paths.Resolve(c.Export.Workbook)
	}
	if c.Logging.FilePath != "" {
		c.Logging.FilePath = paths.Resolve(c.Logging.FilePath)
	}
	if c.Telemetry.TraceFile != "" {
		c.Telemetry.TraceFile = paths.Resolve(c.Telemetry.TraceFile)
	}
	if c.Telemetry.MetricsFile != "" {
		c.Telemetry.MetricsFile = paths.Resolve(c.Telemetry.MetricsFile)
	}
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(EnvConfigFile); explicit != "" {
		return explicit
	}

	locations := []string{
		"spireport.yaml",
		"configs/spireport.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Inputs: InputsConfig{
			SocialProgress: DefaultSocialProgressCSV,
			StateMetadata:  DefaultStateMetadataCSV,
			House:          DefaultHouseCSV,
			Senate:         DefaultSenateCSV,
		},
		Columns: ColumnsConfig{
			Composite:    DefaultCompositeColumn,
			StateName:    DefaultStateNameColumn,
			StateCode:    DefaultStateCodeColumn,
			District:     DefaultDistrictColumn,
			State:        DefaultStateColumn,
			Party:        DefaultPartyColumn,
			ChamberScore: DefaultChamberScoreColumn,
		},
		Matching: MatchingConfig{
			Strategy:      MatchStrategyRatio,
			Cutoff:        DefaultMatchCutoff,
			MaxCandidates: DefaultMatchCandidates,
		},
		Cache: CacheConfig{
			Path: DefaultCacheCSV,
		},
		Report: ReportConfig{
			PartyPlot:       DefaultPartyPlot,
			OverallPlot:     DefaultOverallPlot,
			WidthInches:     DefaultPlotSizeInches,
			HeightInches:    DefaultPlotSizeInches,
			Dependent:       SocialProgressIndexColumn,
			Independent:     ProgressivenessColumn,
			PartyDegree:     DefaultPartyDegree,
			OverallDegree:   DefaultOverallDegree,
			SmoothPoints:    DefaultSmoothPoints,
			ConfidenceLevel: DefaultConfidenceLevel,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Telemetry: TelemetryConfig{
			TraceExporter: "none",
		},
	}
}
