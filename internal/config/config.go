package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"pdp-recon/internal/findings"
	"pdp-recon/internal/model"
	"pdp-recon/internal/reconcile"
)

// EnvPrefix namespaces environment overrides (PDP_RECON_RUN_SECTION, ...)
const EnvPrefix = "PDP_RECON"

// Config represents the application configuration
type Config struct {
	Run       RunConfig       `mapstructure:"run"`
	Workbook  WorkbookConfig  `mapstructure:"workbook"`
	Artifacts ArtifactsConfig `mapstructure:"artifacts"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Store     StoreConfig     `mapstructure:"store"`
	Checks    ChecksConfig    `mapstructure:"checks"`
	Reconcile ReconcileConfig `mapstructure:"reconcile"`
	Output    OutputConfig    `mapstructure:"output"`
	Server    ServerConfig    `mapstructure:"server"`
}

// RunConfig holds the per-process selectors
type RunConfig struct {
	Section     string `mapstructure:"section"`      // MARKDOWNS or NEWNESS
	Region      string `mapstructure:"region"`       // USA, CAN-EN or CAN-FR
	WorkerIndex string `mapstructure:"worker_index"` // "" or "0" runs setup and reconcile

	// Workers is the number of check processes sharing the store; the
	// designated worker reconciles once all of them reported done or
	// WaitTimeout elapsed.
	Workers     int           `mapstructure:"workers"`
	WaitTimeout time.Duration `mapstructure:"wait_timeout"`
}

// WorkbookConfig locates the product workbook
type WorkbookConfig struct {
	Path       string `mapstructure:"path"`
	HeaderRows int    `mapstructure:"header_rows"`
	// Sheets maps section -> header group -> sheet name (keys lower case)
	Sheets map[string]map[string]string `mapstructure:"sheets"`
}

// ArtifactsConfig holds the header map directory
type ArtifactsConfig struct {
	Dir         string        `mapstructure:"dir"`
	LockTimeout time.Duration `mapstructure:"lock_timeout"`
}

// CatalogConfig holds the crawler output directory
type CatalogConfig struct {
	Dir string `mapstructure:"dir"`
}

// StoreConfig selects the findings store backend
type StoreConfig struct {
	Driver      string        `mapstructure:"driver"` // sqlite or memory
	Path        string        `mapstructure:"path"`
	BusyTimeout time.Duration `mapstructure:"busy_timeout"`
}

// ChecksConfig bounds the check worker pool
type ChecksConfig struct {
	Workers       int           `mapstructure:"workers"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
	Burst         int           `mapstructure:"burst"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Observations  string        `mapstructure:"observations"` // captured page snapshots
}

// ReconcileConfig holds the spreadsheet write settings
type ReconcileConfig struct {
	// NoteOccurrence maps section -> region -> note column block (keys lower case)
	NoteOccurrence map[string]map[string]int `mapstructure:"note_occurrence"`
	Highlight      HighlightConfig           `mapstructure:"highlight"`
}

// HighlightConfig holds the price and name formatting settings
type HighlightConfig struct {
	PriceHeader     string   `mapstructure:"price_header"`
	PriceOccurrence int      `mapstructure:"price_occurrence"`
	NameHeader      string   `mapstructure:"name_header"`
	FillColor       string   `mapstructure:"fill_color"`
	SkipRegions     []string `mapstructure:"skip_regions"`
}

// OutputConfig holds output settings
type OutputConfig struct {
	Dir          string   `mapstructure:"dir"`           // Output directory
	FileName     string   `mapstructure:"file_name"`     // Report file name (without extension)
	Formats      []string `mapstructure:"formats"`       // Report formats
	WordTemplate string   `mapstructure:"word_template"` // Optional custom .docx template
}

// ServerConfig holds the findings HTTP service settings
type ServerConfig struct {
	Addr        string `mapstructure:"addr"`
	Environment string `mapstructure:"environment"` // development or production
}

// Load reads the configuration from a file or uses defaults
// If configPath is empty, it looks for "config.yaml" in the current directory
// If the file doesn't exist, it uses sensible defaults
// Environment variables override both (PDP_RECON_*, plus SECTION, CRAWL_REGION
// and WORKER_INDEX)
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set sensible defaults
	setDefaults(v)
	bindEnv(v)

	// Determine config file to use
	if configPath == "" {
		configPath = "config.yaml"
	}

	// Set config file
	v.SetConfigFile(configPath)

	// Read config file (ignore error if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			// Config file not found - use defaults
			fmt.Println("==========================================")
			fmt.Println("Config file not found. Using defaults:")
			fmt.Println("  Workbook: ./data/products.xlsx")
			fmt.Println("  Output:   ./output")
			fmt.Println("==========================================")
		} else {
			// Config file found but has some other error
			return nil, fmt.Errorf("%w: failed to read config file: %v", model.ErrConfiguration, err)
		}
	} else {
		fmt.Printf("Loaded config from: %s\n", v.ConfigFileUsed())
	}

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal config: %v", model.ErrConfiguration, err)
	}

	// Normalize paths
	if err := cfg.normalizePaths(); err != nil {
		return nil, err
	}

	// Create output directory if it doesn't exist
	if err := cfg.EnsureOutputDir(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults configures sensible default values
func setDefaults(v *viper.Viper) {
	v.SetDefault("run.section", "")
	v.SetDefault("run.region", "")
	v.SetDefault("run.worker_index", "")
	v.SetDefault("run.workers", 1)
	v.SetDefault("run.wait_timeout", "30m")

	// Workbook defaults
	v.SetDefault("workbook.path", "./data/products.xlsx")
	v.SetDefault("workbook.header_rows", 2)
	v.SetDefault("workbook.sheets.markdowns.usa", "USA Markdowns")
	v.SetDefault("workbook.sheets.markdowns.can", "CAN Markdowns")
	v.SetDefault("workbook.sheets.newness.usa", "USA Newness")
	v.SetDefault("workbook.sheets.newness.can", "CAN Newness")

	v.SetDefault("artifacts.dir", "./artifacts")
	v.SetDefault("artifacts.lock_timeout", "30s")
	v.SetDefault("catalog.dir", "./artifacts")

	// Store defaults
	v.SetDefault("store.driver", findings.DriverSQLite)
	v.SetDefault("store.path", "./artifacts/findings.db")
	v.SetDefault("store.busy_timeout", "5s")

	// Check pool defaults
	v.SetDefault("checks.workers", 4)
	v.SetDefault("checks.rate_per_second", 2.0)
	v.SetDefault("checks.burst", 1)
	v.SetDefault("checks.timeout", "2m")
	v.SetDefault("checks.observations", "")

	// Markdowns write the first note block, newness the second
	for _, r := range model.Regions {
		v.SetDefault("reconcile.note_occurrence.markdowns."+r.Lower(), 0)
		v.SetDefault("reconcile.note_occurrence.newness."+r.Lower(), 1)
	}
	v.SetDefault("reconcile.highlight.price_header", model.HeaderMDPrice)
	v.SetDefault("reconcile.highlight.price_occurrence", 0)
	v.SetDefault("reconcile.highlight.name_header", model.HeaderEcommName)
	v.SetDefault("reconcile.highlight.fill_color", reconcile.DefaultFillColor)
	v.SetDefault("reconcile.highlight.skip_regions", []string{string(model.RegionCANFR)})

	// Output defaults
	v.SetDefault("output.dir", "./output")
	v.SetDefault("output.file_name", "pdp-recon-report")
	v.SetDefault("output.formats", []string{"excel", "html", "word", "json", "yaml"})
	v.SetDefault("output.word_template", "")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.environment", "production")
}

// bindEnv wires PDP_RECON_* overrides and the legacy selector variables
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.BindEnv("run.section", EnvPrefix+"_RUN_SECTION", "SECTION")
	v.BindEnv("run.region", EnvPrefix+"_RUN_REGION", "CRAWL_REGION")
	v.BindEnv("run.worker_index", EnvPrefix+"_RUN_WORKER_INDEX", "WORKER_INDEX")
}

// normalizePaths converts relative paths to absolute paths
func (c *Config) normalizePaths() error {
	paths := []struct {
		key string
		val *string
	}{
		{"workbook.path", &c.Workbook.Path},
		{"artifacts.dir", &c.Artifacts.Dir},
		{"catalog.dir", &c.Catalog.Dir},
		{"store.path", &c.Store.Path},
		{"checks.observations", &c.Checks.Observations},
		{"output.dir", &c.Output.Dir},
		{"output.word_template", &c.Output.WordTemplate},
	}
	for _, p := range paths {
		if *p.val == "" {
			continue
		}
		abs, err := filepath.Abs(*p.val)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", p.key, err)
		}
		*p.val = abs
	}
	return nil
}

// EnsureOutputDir creates the output directory if it doesn't exist
func (c *Config) EnsureOutputDir() error {
	if err := os.MkdirAll(c.Output.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// GetOutputPath returns the full path of a report file with the given extension
func (c *Config) GetOutputPath(ext string) string {
	return filepath.Join(c.Output.Dir, c.Output.FileName+"."+strings.TrimPrefix(ext, "."))
}

// Section returns the validated section selector
func (c *Config) Section() (model.Section, error) {
	return model.ParseSection(c.Run.Section)
}

// Region returns the validated region selector
func (c *Config) Region() (model.Region, error) {
	return model.ParseRegion(c.Run.Region)
}

// IsDesignatedWorker reports whether this process runs setup and reconcile
func (c *Config) IsDesignatedWorker() bool {
	idx := strings.TrimSpace(c.Run.WorkerIndex)
	return idx == "" || idx == "0"
}

// WorkerID returns the normalized worker index ("0" for the designated worker)
func (c *Config) WorkerID() string {
	if c.IsDesignatedWorker() {
		return "0"
	}
	return strings.TrimSpace(c.Run.WorkerIndex)
}

// ExpectedWorkers returns how many check processes reconcile waits for
func (c *Config) ExpectedWorkers() int {
	if c.Run.Workers < 1 {
		return 1
	}
	return c.Run.Workers
}

// SheetName returns the configured sheet for a section and header group
func (c *Config) SheetName(section model.Section, group model.HeaderGroup) string {
	return c.Workbook.Sheets[strings.ToLower(string(section))][strings.ToLower(string(group))]
}

// NoteOccurrence returns the note column block written for a section and region
func (c *Config) NoteOccurrence(section model.Section, region model.Region) (int, error) {
	occ, ok := c.Reconcile.NoteOccurrence[strings.ToLower(string(section))][region.Lower()]
	if !ok {
		return 0, fmt.Errorf("%w: reconcile.note_occurrence.%s.%s is not set",
			model.ErrConfiguration, strings.ToLower(string(section)), region.Lower())
	}
	if occ < 0 {
		return 0, fmt.Errorf("%w: reconcile.note_occurrence.%s.%s must not be negative",
			model.ErrConfiguration, strings.ToLower(string(section)), region.Lower())
	}
	return occ, nil
}

// SkipHighlight reports whether price and name formatting is disabled for region
func (c *Config) SkipHighlight(region model.Region) bool {
	return slices.ContainsFunc(c.Reconcile.Highlight.SkipRegions, func(s string) bool {
		return strings.EqualFold(strings.TrimSpace(s), string(region))
	})
}

// ReconcileOptions assembles the writer options for a section and region
func (c *Config) ReconcileOptions(section model.Section, region model.Region) (reconcile.Options, error) {
	occ, err := c.NoteOccurrence(section, region)
	if err != nil {
		return reconcile.Options{}, err
	}
	h := c.Reconcile.Highlight
	return reconcile.Options{
		HeaderRows:      c.Workbook.HeaderRows,
		NoteOccurrence:  occ,
		PriceHeader:     h.PriceHeader,
		PriceOccurrence: h.PriceOccurrence,
		NameHeader:      h.NameHeader,
		FillColor:       h.FillColor,
		SkipHighlight:   c.SkipHighlight(region),
	}, nil
}

// Validate checks if the configuration is valid
// Every failure is a configuration error; the run must abort before mutating anything
func (c *Config) Validate() error {
	section, err := c.Section()
	if err != nil {
		return err
	}
	region, err := c.Region()
	if err != nil {
		return err
	}
	if _, err := c.NoteOccurrence(section, region); err != nil {
		return err
	}
	if c.SheetName(section, region.HeaderGroup()) == "" {
		return fmt.Errorf("%w: workbook.sheets.%s.%s is not set",
			model.ErrConfiguration, strings.ToLower(string(section)), region.HeaderGroup().Lower())
	}
	if c.Workbook.HeaderRows <= 0 {
		return fmt.Errorf("%w: workbook.header_rows must be positive", model.ErrConfiguration)
	}

	switch c.Store.Driver {
	case findings.DriverSQLite, findings.DriverMemory:
	default:
		return fmt.Errorf("%w: unknown store.driver %q (want sqlite or memory)", model.ErrConfiguration, c.Store.Driver)
	}
	if c.Store.Driver == findings.DriverSQLite && c.Store.Path == "" {
		return fmt.Errorf("%w: store.path cannot be empty for the sqlite driver", model.ErrConfiguration)
	}

	if c.Run.Workers < 0 {
		return fmt.Errorf("%w: run.workers must not be negative", model.ErrConfiguration)
	}
	if c.ExpectedWorkers() > 1 && c.Store.Driver == findings.DriverMemory {
		return fmt.Errorf("%w: run.workers > 1 needs a store shared between processes (store.driver: sqlite)", model.ErrConfiguration)
	}

	if c.Checks.Workers <= 0 {
		return fmt.Errorf("%w: checks.workers must be positive", model.ErrConfiguration)
	}
	if c.Checks.RatePerSecond < 0 {
		return fmt.Errorf("%w: checks.rate_per_second cannot be negative", model.ErrConfiguration)
	}

	// Check if output filename is not empty
	if c.Output.FileName == "" {
		return fmt.Errorf("%w: output.file_name cannot be empty", model.ErrConfiguration)
	}

	return nil
}

// Print displays the current configuration
func (c *Config) Print() {
	fmt.Println("=== PDP Recon Configuration ===")
	fmt.Printf("Section:          %s\n", c.Run.Section)
	fmt.Printf("Region:           %s\n", c.Run.Region)
	fmt.Printf("Worker Index:     %q (designated: %v)\n", c.Run.WorkerIndex, c.IsDesignatedWorker())
	fmt.Printf("Workers:          %d (wait up to %s)\n", c.ExpectedWorkers(), c.Run.WaitTimeout)
	fmt.Printf("Workbook:         %s\n", c.Workbook.Path)
	fmt.Printf("Header Rows:      %d\n", c.Workbook.HeaderRows)
	fmt.Printf("Artifacts Dir:    %s\n", c.Artifacts.Dir)
	fmt.Printf("Catalog Dir:      %s\n", c.Catalog.Dir)
	fmt.Printf("Store:            %s (%s)\n", c.Store.Driver, c.Store.Path)
	fmt.Printf("Check Workers:    %d @ %.1f/s\n", c.Checks.Workers, c.Checks.RatePerSecond)
	fmt.Printf("Observations:     %s\n", c.Checks.Observations)
	fmt.Printf("Skip Highlight:   %v\n", c.Reconcile.Highlight.SkipRegions)
	fmt.Printf("Output Directory: %s\n", c.Output.Dir)
	fmt.Printf("Report Formats:   %v\n", c.Output.Formats)
	fmt.Println("===============================")
}
