package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"gpgsweep/version"
)

type Config struct {
	Directory      string   `json:"directory"`
	Recursive      bool     `json:"recursive"`
	SuppressOutput bool     `json:"suppress_output"`
	OutFile        string   `json:"out_file"`
	AllowClobber   bool     `json:"allow_clobber"`
	OutputFormat   string   `json:"output_format"`
	Detail         bool     `json:"detail"`
	HashAlgorithms []string `json:"hash_algorithms"`
	MaxIOPerSecond int      `json:"max_io_per_second"`
	LogLevel       string   `json:"log_level"`
	ConfigFile     string   `json:"-"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		OutputFormat:   "csv",
		HashAlgorithms: []string{"sha256"},
		LogLevel:       "info",
	}

	var directory, outFile, format, hashes, logLevel, configFile string
	var recursive, suppress, allowClobber, detail bool
	var maxIO int

	flag.StringVar(&directory, "d", "", "The directory to check (required).")
	flag.StringVar(&directory, "directory", "", "The directory to check (required).")
	flag.BoolVar(&recursive, "r", cfg.Recursive, "Enable recursive processing of files.")
	flag.BoolVar(&recursive, "recursive", cfg.Recursive, "Enable recursive processing of files.")
	flag.BoolVar(&suppress, "s", cfg.SuppressOutput, "Do not write the table to standard output.")
	flag.BoolVar(&suppress, "suppress_output", cfg.SuppressOutput, "Do not write the table to standard output.")
	flag.StringVar(&outFile, "o", "", "Path of the report file to write (default: none).")
	flag.StringVar(&outFile, "out_file", "", "Path of the report file to write (default: none).")
	flag.BoolVar(&allowClobber, "a", cfg.AllowClobber, "Allow overwriting an existing report file.")
	flag.BoolVar(&allowClobber, "allow_clobber", cfg.AllowClobber, "Allow overwriting an existing report file.")
	flag.StringVar(&format, "format", cfg.OutputFormat, fmt.Sprintf("Report file format: csv or ndjson (default: %s).", cfg.OutputFormat))
	flag.BoolVar(&detail, "detail", cfg.Detail, "Include file times, MIME type, and digests in ndjson records.")
	flag.StringVar(&hashes, "hashes", strings.Join(cfg.HashAlgorithms, ","), fmt.Sprintf("Comma-separated list of digest algorithms for detail records (default: %s).", strings.Join(cfg.HashAlgorithms, ",")))
	flag.IntVar(&maxIO, "max-io-per-second", cfg.MaxIOPerSecond, "Maximum files classified per second, 0 for unlimited (default: 0).")
	flag.StringVar(&logLevel, "log-level", cfg.LogLevel, fmt.Sprintf("Log level: debug, info, warn, error, fatal, or panic (default: %s).", cfg.LogLevel))
	flag.StringVar(&configFile, "config", "", "Path to JSON configuration file (default: none).")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Usage = displayHelp
	flag.Parse()

	if *showVersion {
		fmt.Printf("gpgsweep version %s\n", version.Version)
		os.Exit(0)
	}

	if configFile != "" {
		cfg.ConfigFile = configFile
		if err := cfg.loadFromFile(cfg.ConfigFile); err != nil {
			return nil, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "d", "directory":
			cfg.Directory = directory
		case "r", "recursive":
			cfg.Recursive = recursive
		case "s", "suppress_output":
			cfg.SuppressOutput = suppress
		case "o", "out_file":
			cfg.OutFile = outFile
		case "a", "allow_clobber":
			cfg.AllowClobber = allowClobber
		case "format":
			cfg.OutputFormat = strings.ToLower(format)
		case "detail":
			cfg.Detail = detail
		case "hashes":
			cfg.HashAlgorithms = parseCommaSeparated(hashes)
		case "max-io-per-second":
			cfg.MaxIOPerSecond = maxIO
		case "log-level":
			cfg.LogLevel = logLevel
		}
	})

	cfg.OutputFormat = strings.ToLower(strings.TrimSpace(cfg.OutputFormat))
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = "csv"
	}
	cfg.HashAlgorithms = normalizeAlgorithms(cfg.HashAlgorithms)
	if len(cfg.HashAlgorithms) == 0 {
		cfg.HashAlgorithms = []string{"sha256"}
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func displayHelp() {
	fmt.Println("gpgsweep - Checks a directory and looks for GPG encrypted files")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  gpgsweep -d <directory> [-r] [-s] [-o <out_file>] [-a] [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  gpgsweep -d /srv/backups")
	fmt.Println("  gpgsweep -d /srv/backups -r -o report.csv -a")
	fmt.Println("  gpgsweep -d /srv/backups -r -s -o report.ndjson --format ndjson --detail")
}

func (cfg *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read config file: %v", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("invalid config file format: %v", err)
	}
	return nil
}

func (cfg *Config) validate() error {
	if strings.TrimSpace(cfg.Directory) == "" {
		return fmt.Errorf("a directory to check must be specified with -d/--directory")
	}
	if cfg.OutputFormat != "csv" && cfg.OutputFormat != "ndjson" {
		return fmt.Errorf("invalid output format: %s (csv and ndjson are supported)", cfg.OutputFormat)
	}
	for _, algo := range cfg.HashAlgorithms {
		switch algo {
		case "md5", "sha1", "sha256", "xxh64", "blake3":
		default:
			return fmt.Errorf("unsupported hash algorithm: %s", algo)
		}
	}
	if cfg.MaxIOPerSecond < 0 {
		return fmt.Errorf("max-io-per-second must be zero or positive")
	}
	if cfg.LogLevel != "debug" && cfg.LogLevel != "info" && cfg.LogLevel != "warn" &&
		cfg.LogLevel != "error" && cfg.LogLevel != "fatal" && cfg.LogLevel != "panic" {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}
	return nil
}

func parseCommaSeparated(input string) []string {
	if input == "" {
		return []string{}
	}
	items := strings.Split(input, ",")
	for i, item := range items {
		items[i] = strings.TrimSpace(item)
	}
	return items
}

func normalizeAlgorithms(items []string) []string {
	normalized := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.ToLower(strings.TrimSpace(item))
		if item == "" {
			continue
		}
		normalized = append(normalized, item)
	}
	return normalized
}
