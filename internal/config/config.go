package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/docker/go-units"
	"gopkg.in/yaml.v3"

	"github.com/p-arndt/pfand/protocol"
)

// Sandbox holds the resource limits applied to every pooled container.
type Sandbox struct {
	CPULimit       float64 `yaml:"cpu_limit"`
	MemLimit       string  `yaml:"mem_limit"` // human-readable, e.g. "512m"
	PidsLimit      int     `yaml:"pids_limit"`
	NetworkMode    string  `yaml:"network_mode"`
	ReadonlyRootfs bool    `yaml:"readonly_rootfs"`
}

// MemLimitBytes parses MemLimit ("512m", "2g", ...) into bytes.
func (s Sandbox) MemLimitBytes() (int64, error) {
	n, err := units.RAMInBytes(s.MemLimit)
	if err != nil {
		return 0, fmt.Errorf("parsing mem_limit %q: %w", s.MemLimit, err)
	}
	return n, nil
}

type Config struct {
	Listen              string  `yaml:"listen"`
	APIKey              string  `yaml:"api_key"`
	DBPath              string  `yaml:"db_path"`
	Image               string  `yaml:"image"`
	Capacity            int     `yaml:"capacity"`
	LeaseTTLSeconds     int     `yaml:"lease_ttl_seconds"`
	ReapIntervalSeconds int     `yaml:"reap_interval_seconds"`
	Sandbox             Sandbox `yaml:"sandbox"`
}

func Load(yamlPath string) (*Config, error) {
	cfg := &Config{
		Listen:              "127.0.0.1:8070",
		DBPath:              "./pfand.db",
		Image:               "sandbox-runtime:base",
		Capacity:            4,
		LeaseTTLSeconds:     protocol.DefaultTTLSeconds,
		ReapIntervalSeconds: 30,
		Sandbox: Sandbox{
			CPULimit:       1.0,
			MemLimit:       "512m",
			PidsLimit:      256,
			NetworkMode:    "none",
			ReadonlyRootfs: true,
		},
	}

	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if cfg.Capacity <= 0 {
		return nil, fmt.Errorf("capacity must be positive, got %d", cfg.Capacity)
	}
	if _, err := cfg.Sandbox.MemLimitBytes(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PFAND_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("PFAND_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("PFAND_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("PFAND_IMAGE"); v != "" {
		cfg.Image = v
	}
	if v := os.Getenv("PFAND_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Capacity = n
		}
	}
	if v := os.Getenv("PFAND_LEASE_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.LeaseTTLSeconds = n
		}
	}
	if v := os.Getenv("PFAND_REAP_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ReapIntervalSeconds = n
		}
	}
	if v := os.Getenv("PFAND_CPU_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Sandbox.CPULimit = f
		}
	}
	if v := os.Getenv("PFAND_MEM_LIMIT"); v != "" {
		cfg.Sandbox.MemLimit = v
	}
	if v := os.Getenv("PFAND_PIDS_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Sandbox.PidsLimit = n
		}
	}
	if v := os.Getenv("PFAND_NETWORK_MODE"); v != "" {
		cfg.Sandbox.NetworkMode = v
	}
}
