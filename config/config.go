// Package config loads csvpresto's ambient settings from the environment.
//
// Every setting has a default and may be overridden by a CSVPRESTO_*
// variable, optionally placed in a .env file. Command-line options take
// precedence over both.
package config

// Config holds all application configuration.
type Config struct {
	Input   InputConfig
	Output  OutputConfig
	Logging LoggingConfig
}

// InputConfig holds settings for reading rows.
type InputConfig struct {
	// Delimiter separates fields in text input (default: ",")
	Delimiter string `env:"CSVPRESTO_DELIMITER" default:","`

	// OnMalformed is what to do with a row whose field count differs from
	// the header: skip or abort (default: skip)
	OnMalformed string `env:"CSVPRESTO_ON_MALFORMED" default:"skip"`
}

// OutputConfig holds settings for rendering results.
type OutputConfig struct {
	// AvgPrecision is the number of decimals averages render with (default: 2)
	AvgPrecision int `env:"CSVPRESTO_AVG_PRECISION" default:"2"`

	// CSV selects CSV output instead of aligned text (default: false)
	CSV bool `env:"CSVPRESTO_CSV" default:"false"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: warn)
	Level string `env:"CSVPRESTO_LOG_LEVEL" default:"warn"`

	// Format is the log format: text or json (default: text)
	Format string `env:"CSVPRESTO_LOG_FORMAT" default:"text"`
}
