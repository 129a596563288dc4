// Package config loads the harness configuration: where the collaborators
// live and the default timing budgets for scenario execution.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Gateway   GatewayConfig   `yaml:"gateway"`
	LogStore  LogStoreConfig  `yaml:"logStore"`
	Simulator SimulatorConfig `yaml:"simulator"`
	Run       RunConfig       `yaml:"run"`
}

// GatewayConfig points at the protocol entry point (the Evidence Requester
// gateway's submit endpoint).
type GatewayConfig struct {
	BaseURL string `yaml:"baseUrl"`
}

type LogStoreConfig struct {
	Addresses        []string `yaml:"addresses"`
	Index            string   `yaml:"index"`
	CorrelationField string   `yaml:"correlationField"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
}

type SimulatorConfig struct {
	// BaseURL is where the runner reaches the simulator.
	BaseURL string `yaml:"baseUrl"`
	// ListenAddr is what `evidenceflow simulator` binds to.
	ListenAddr string `yaml:"listenAddr"`
	// ReturnURL is the bridge endpoint that receives the simulator's
	// callback when a scenario emulates a completed external flow.
	ReturnURL string `yaml:"returnUrl"`
}

// RunConfig carries the timing defaults; individual catalog paths may
// override the wait budget and step timeout.
type RunConfig struct {
	WaitBudgetMS   int `yaml:"waitBudgetMs"`
	PollIntervalMS int `yaml:"pollIntervalMs"`
	StepTimeoutMS  int `yaml:"stepTimeoutMs"`
	QuerySize      int `yaml:"querySize"`
}

func (r RunConfig) WaitBudget() time.Duration   { return time.Duration(r.WaitBudgetMS) * time.Millisecond }
func (r RunConfig) PollInterval() time.Duration { return time.Duration(r.PollIntervalMS) * time.Millisecond }
func (r RunConfig) StepTimeout() time.Duration  { return time.Duration(r.StepTimeoutMS) * time.Millisecond }

// Default returns the configuration for a local docker-compose deployment.
func Default() Config {
	return Config{
		Gateway: GatewayConfig{
			BaseURL: "http://localhost:8280",
		},
		LogStore: LogStoreConfig{
			Addresses: []string{"http://localhost:9200"},
			Index:     "logs-bridge-*",
		},
		Simulator: SimulatorConfig{
			BaseURL:    "http://localhost:8480",
			ListenAddr: ":8480",
			ReturnURL:  "http://localhost:8380/preview/return",
		},
		Run: RunConfig{
			WaitBudgetMS:   20000,
			PollIntervalMS: 1000,
			StepTimeoutMS:  30000,
			QuerySize:      50,
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}
