package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/razeghi71/csvpresto/query"
)

// LoadDotEnv reads variables from the named files (default .env) without
// overriding variables already set. Missing files are not an error.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, name := range filenames {
		if err := godotenv.Load(name); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// loadStruct recursively populates struct fields from environment variables.
func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		if envName == "" {
			continue
		}

		value, ok := os.LookupEnv(envName)
		if !ok || value == "" {
			value = field.Tag.Get("default")
		}
		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	if _, err := query.ParseDelimiter(c.Input.Delimiter); err != nil {
		errs = append(errs, fmt.Sprintf("CSVPRESTO_DELIMITER: %v", err))
	}
	switch strings.ToLower(c.Input.OnMalformed) {
	case query.MalformedSkip, query.MalformedAbort:
	default:
		errs = append(errs, fmt.Sprintf("CSVPRESTO_ON_MALFORMED (%q) must be skip or abort", c.Input.OnMalformed))
	}

	if c.Output.AvgPrecision < 0 || c.Output.AvgPrecision > 17 {
		errs = append(errs, fmt.Sprintf("CSVPRESTO_AVG_PRECISION (%d) must be 0-17", c.Output.AvgPrecision))
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("CSVPRESTO_LOG_LEVEL (%q) must be debug, info, warn or error", c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("CSVPRESTO_LOG_FORMAT (%q) must be text or json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Apply fills the query's unset settings from the configuration and returns
// the completed query. The input query is not modified.
func (c *Config) Apply(q *query.Query) *query.Query {
	out := *q
	if out.Precision < 0 {
		out.Precision = c.Output.AvgPrecision
	}
	if out.OnMalformed == "" {
		out.OnMalformed = strings.ToLower(c.Input.OnMalformed)
	}
	if out.Delimiter == 0 && c.Input.Delimiter != "," {
		// Validate has already accepted the delimiter.
		out.Delimiter, _ = query.ParseDelimiter(c.Input.Delimiter)
	}
	if c.Output.CSV {
		out.CSV = true
	}
	return &out
}
