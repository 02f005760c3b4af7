package config

import (
	"os"
	"testing"
)

func TestParseCommaSeparated(t *testing.T) {
	res := parseCommaSeparated("a,b , c")
	if len(res) != 3 || res[1] != "b" {
		t.Fatalf("unexpected result: %v", res)
	}
	if res := parseCommaSeparated(""); len(res) != 0 {
		t.Fatalf("expected empty slice")
	}
}

func TestNormalizeAlgorithms(t *testing.T) {
	res := normalizeAlgorithms([]string{" SHA256", "", "XXH64 "})
	if len(res) != 2 || res[0] != "sha256" || res[1] != "xxh64" {
		t.Fatalf("unexpected result: %v", res)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmp, err := os.CreateTemp("", "cfg*.json")
	if err != nil {
		t.Fatalf("temp: %v", err)
	}
	tmp.WriteString(`{"directory":"/tmp","recursive":true,"hash_algorithms":["blake3"]}`)
	tmp.Close()
	defer os.Remove(tmp.Name())

	cfg := &Config{}
	if err := cfg.loadFromFile(tmp.Name()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Directory != "/tmp" || !cfg.Recursive || cfg.HashAlgorithms[0] != "blake3" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmp, err := os.CreateTemp("", "cfg*.json")
	if err != nil {
		t.Fatalf("temp: %v", err)
	}
	tmp.WriteString(`{not json`)
	tmp.Close()
	defer os.Remove(tmp.Name())

	cfg := &Config{}
	if err := cfg.loadFromFile(tmp.Name()); err == nil {
		t.Fatal("expected error for invalid config file")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Directory:      "/tmp",
			OutputFormat:   "csv",
			HashAlgorithms: []string{"sha256"},
			LogLevel:       "info",
		}
	}

	if err := base().validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cfg := base()
	cfg.Directory = " "
	if err := cfg.validate(); err == nil {
		t.Fatal("expected error for missing directory")
	}

	cfg = base()
	cfg.OutputFormat = "xml"
	if err := cfg.validate(); err == nil {
		t.Fatal("expected error for bad format")
	}

	cfg = base()
	cfg.HashAlgorithms = []string{"crc32"}
	if err := cfg.validate(); err == nil {
		t.Fatal("expected error for bad hash algorithm")
	}

	cfg = base()
	cfg.MaxIOPerSecond = -1
	if err := cfg.validate(); err == nil {
		t.Fatal("expected error for negative rate limit")
	}

	cfg = base()
	cfg.LogLevel = "loud"
	if err := cfg.validate(); err == nil {
		t.Fatal("expected error for bad log level")
	}
}

func TestValidateNoOpOutputAllowed(t *testing.T) {
	// Suppressed table with no out file is a valid configuration.
	cfg := &Config{
		Directory:      "/tmp",
		SuppressOutput: true,
		OutputFormat:   "csv",
		HashAlgorithms: []string{"sha256"},
		LogLevel:       "info",
	}
	if err := cfg.validate(); err != nil {
		t.Fatalf("no-op config rejected: %v", err)
	}
}
