package config

// Source indicates where a configuration value came from.
type Source string

// Configuration source constants.
const (
	// SourceDefault indicates the value is a built-in default.
	SourceDefault Source = "default"

	// SourceGlobal indicates the value came from the config file, either
	// its shared top level or the selected profile
	// (e.g., ~/.config/hylable/config.yaml).
	SourceGlobal Source = "global"

	// SourceDotEnv indicates the value came from a .env file.
	SourceDotEnv Source = "dotenv"

	// SourceEnv indicates the value came from an environment variable.
	SourceEnv Source = "env"

	// SourceFlag indicates the value was set via command-line flag.
	SourceFlag Source = "flag"
)
