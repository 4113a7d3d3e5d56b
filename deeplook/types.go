package deeplook

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidComma is returned for a delimiter that is not a single ASCII byte
	// or that collides with quoting or line breaks.
	ErrInvalidComma = errors.New("delimiter must be one ASCII character other than quote or line break")
	// ErrNoSources is returned when a load is asked to read zero result sources
	// from a location that should have contained some.
	ErrNoSources = errors.New("no result sources found")
)

// WatchConfig controls the result directory watcher.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// Config aggregates runtime settings persisted to deeplook.yaml.
type Config struct {
	GuidancePath string           `yaml:"guidancePath"`
	ResultPaths  []string         `yaml:"resultPaths,omitempty"`
	ResultDir    string           `yaml:"resultDir,omitempty"`
	Encoding     string           `yaml:"encoding"`
	Delimiter    string           `yaml:"delimiter"`
	TopN         int              `yaml:"topN"`
	Concurrency  int              `yaml:"concurrency"`
	Columns      ColumnCandidates `yaml:"columns"`
	Watch        WatchConfig      `yaml:"watch"`
	Metrics      MetricsConfig    `yaml:"metrics"`
}

// DefaultConfig returns the configuration used when no file exists. The result
// list names the sample reports shipped next to the checklist.
func DefaultConfig() Config {
	cfg := Config{
		GuidancePath: "Content/CIIP Checklist.csv",
		ResultPaths: []string{
			"Content/(260101)HP_DEV_Cent7.csv",
			"Content/(260102)HP_Windows.csv",
			"Content/(260103)HP_Window.csv",
			"Content/(260104)HP_Windows.csv",
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// Clone creates a deep copy of the configuration so callers can mutate safely.
func (c Config) Clone() Config {
	out := c
	out.ResultPaths = cloneStrings(c.ResultPaths)
	out.Columns = c.Columns.clone()
	return out
}

// ApplyDefaults populates zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Encoding == "" {
		c.Encoding = EncodingAuto
	}
	if c.Delimiter == "" {
		c.Delimiter = ","
	}
	if c.TopN <= 0 {
		c.TopN = DefaultTopN
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = 500 * time.Millisecond
	}
	c.Columns = c.Columns.withDefaults()
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if _, err := delimiterByte(c.Delimiter); err != nil {
		return err
	}
	if c.TopN <= 0 {
		return fmt.Errorf("topN must be positive, got %d", c.TopN)
	}
	if len(c.Columns.ItemCode) == 0 {
		return errors.New("columns.itemCode needs at least one candidate")
	}
	return nil
}

func delimiterByte(d string) (byte, error) {
	if d == `\t` || d == "tab" {
		return '\t', nil
	}
	if len(d) != 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidComma, d)
	}
	switch c := d[0]; {
	case c == '"', c == '\r', c == '\n', c >= 0x80:
		return 0, fmt.Errorf("%w: %q", ErrInvalidComma, d)
	default:
		return c, nil
	}
}
