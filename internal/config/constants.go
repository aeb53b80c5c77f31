package config

// Application constants
const (
	AppName    = "spireport"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable (SPI_*).
	EnvPrefix = "SPI"

	// EnvConfigFile names the variable that points at a YAML config file.
	EnvConfigFile = "SPI_CONFIG_FILE"

	// Source files, relative to the working directory
	DefaultSocialProgressCSV = "data/social_progressive_index.csv"
	DefaultStateMetadataCSV  = "data/us_states.csv"
	DefaultHouseCSV          = "data/house_progressive_score.csv"
	DefaultSenateCSV         = "data/senate_progressive_score.csv"

	// Joined table cache
	DefaultCacheCSV = "data/congress.csv"

	// Chart outputs
	DefaultPartyPlot   = "social_progress_by_congress_progressiveness_parties.png"
	DefaultOverallPlot = "social_progress_by_congress_progressiveness.png"

	// Source column names
	DefaultCompositeColumn    = "state_and_score"
	DefaultStateNameColumn    = "name"
	DefaultStateCodeColumn    = "code"
	DefaultDistrictColumn     = "district"
	DefaultStateColumn        = "state"
	DefaultPartyColumn        = "party"
	DefaultChamberScoreColumn = "crucial_vote_score"

	// Derived column names in the joined table
	SocialProgressIndexColumn = "social_progress_index"
	ProgressivenessColumn     = "congressperson_progressiveness_score"
	SenateColumn              = "senate"

	// Matching
	MatchStrategyRatio      = "ratio"
	MatchStrategyExact      = "exact"
	MatchStrategyNormalized = "normalized"
	DefaultMatchCutoff      = 0.6
	DefaultMatchCandidates  = 3

	// Chart geometry and smoothing
	DefaultPlotSizeInches  = 8.0
	DefaultPartyDegree     = 2
	DefaultOverallDegree   = 1
	DefaultSmoothPoints    = 80
	DefaultConfidenceLevel = 0.95

	DefaultLogFile = "logs/spireport.log"
)
