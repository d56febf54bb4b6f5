// Package config provides XML-based configuration management for air-gapped
// deployment. The file is auto-created with defaults on first run; the
// simulation must function with no config supplied at all.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/warehouse-sim/backend/internal/engine"
	"github.com/warehouse-sim/backend/internal/notify"
	"github.com/warehouse-sim/backend/internal/orders"
	"github.com/warehouse-sim/backend/internal/sim"
	"github.com/warehouse-sim/backend/internal/timing"
	"github.com/warehouse-sim/backend/internal/trail"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"WarehouseSimulator"`

	// HTTP server configuration
	Server ServerConfig `xml:"Server"`

	// Simulation timing and order generation
	Simulation SimulationConfig `xml:"Simulation"`

	// Movement trail visualization
	Trail TrailConfig `xml:"Trail"`

	// Optional MQTT notification sink
	Notifier NotifierConfig `xml:"Notifier"`

	// Storage configuration
	Storage StorageConfig `xml:"Storage"`

	// Advanced options
	Advanced AdvancedConfig `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// SimulationConfig contains movement timing and order generation settings
type SimulationConfig struct {
	AisleTraversalTime      float64 `xml:"AisleTraversalTimeSeconds"`
	HorizontalMovementTime  float64 `xml:"HorizontalMovementTimeSeconds"`
	MaxTimingVariance       float64 `xml:"MaxTimingVariance"`
	PickingDuration         float64 `xml:"PickingDurationSeconds"`
	DirectionChangeCooldown float64 `xml:"DirectionChangeCooldownSeconds"`
	TickIntervalMs          int     `xml:"TickIntervalMilliseconds"`
	Speed                   float64 `xml:"Speed"`
	OrderIntervalSeconds    int     `xml:"OrderIntervalSeconds"`
	MinItemsPerOrder        int     `xml:"MinItemsPerOrder"`
	MaxItemsPerOrder        int     `xml:"MaxItemsPerOrder"`
	MaxOrders               int     `xml:"MaxOrders"`
	RandomSeed              int64   `xml:"RandomSeed"`
}

// TrailConfig contains trail visualization settings
type TrailConfig struct {
	MaxTrailLength       int     `xml:"MaxTrailLength"`
	TrailDurationSeconds float64 `xml:"TrailDurationSeconds"`
	FadeRate             float64 `xml:"FadeRate"`
}

// NotifierConfig contains the optional MQTT sink settings.
// An empty Broker disables the notifier.
type NotifierConfig struct {
	Broker    string `xml:"Broker"`
	ClientID  string `xml:"ClientID"`
	Username  string `xml:"Username"`
	Password  string `xml:"Password"`
	TopicBase string `xml:"TopicBase"`
}

// StorageConfig contains data directory settings
type StorageConfig struct {
	DataDirectory   string `xml:"DataDirectory"`
	LayoutRulesFile string `xml:"LayoutRulesFile"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	LogLevel             string `xml:"LogLevel"`
	EnableRequestLogging bool   `xml:"EnableRequestLogging"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8090,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  120,
			BodyLimit:    "10M",
		},
		Simulation: SimulationConfig{
			AisleTraversalTime:      7.0,
			HorizontalMovementTime:  0.35,
			MaxTimingVariance:       0.10,
			PickingDuration:         3.0,
			DirectionChangeCooldown: 0.5,
			TickIntervalMs:          50,
			Speed:                   1.0,
			OrderIntervalSeconds:    20,
			MinItemsPerOrder:        1,
			MaxItemsPerOrder:        5,
			MaxOrders:               0,
			RandomSeed:              0,
		},
		Trail: TrailConfig{
			MaxTrailLength:       500,
			TrailDurationSeconds: 10.0,
			FadeRate:             0.1,
		},
		Notifier: NotifierConfig{
			Broker:    "",
			ClientID:  "warehouse-sim",
			TopicBase: "warehouse/robot",
		},
		Storage: StorageConfig{
			DataDirectory:   "./data",
			LayoutRulesFile: "",
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			EnableRequestLogging: true,
		},
	}
}

// LoadConfig loads configuration from XML file
func LoadConfig(configPath string) (*AppConfig, error) {
	config := &AppConfig{}

	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config = DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := xml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	// Resolve relative paths
	config.resolvePaths(filepath.Dir(configPath))

	// Bad timing values abort startup, never a running simulation
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- Warehouse Simulator Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
	}

	if broker := os.Getenv("MQTT_BROKER"); broker != "" {
		c.Notifier.Broker = broker
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if !filepath.IsAbs(c.Storage.DataDirectory) {
		c.Storage.DataDirectory = filepath.Join(configDir, c.Storage.DataDirectory)
	}
	if c.Storage.LayoutRulesFile != "" && !filepath.IsAbs(c.Storage.LayoutRulesFile) {
		c.Storage.LayoutRulesFile = filepath.Join(configDir, c.Storage.LayoutRulesFile)
	}
}

// Validate checks every section eagerly so misconfiguration is caught before
// the simulation starts, not mid-route.
func (c *AppConfig) Validate() error {
	if err := c.TimingConfig().Validate(); err != nil {
		return err
	}
	if err := c.EngineConfig().Validate(); err != nil {
		return err
	}
	if err := c.TrailSettings().Validate(); err != nil {
		return err
	}
	if err := c.GeneratorConfig().Validate(); err != nil {
		return err
	}
	if err := c.SimConfig().Validate(); err != nil {
		return err
	}
	return nil
}

// TimingConfig builds the timing manager configuration.
func (c *AppConfig) TimingConfig() timing.Config {
	return timing.Config{
		AisleTraversalTime:     c.Simulation.AisleTraversalTime,
		HorizontalMovementTime: c.Simulation.HorizontalMovementTime,
		MaxTimingVariance:      c.Simulation.MaxTimingVariance,
	}
}

// EngineConfig builds the movement engine configuration.
func (c *AppConfig) EngineConfig() engine.Config {
	return engine.Config{
		PickingDuration:         c.Simulation.PickingDuration,
		DirectionChangeCooldown: c.Simulation.DirectionChangeCooldown,
	}
}

// TrailSettings builds the trail manager configuration.
func (c *AppConfig) TrailSettings() trail.Config {
	return trail.Config{
		MaxTrailLength: c.Trail.MaxTrailLength,
		TrailDuration:  c.Trail.TrailDurationSeconds,
		FadeRate:       c.Trail.FadeRate,
	}
}

// GeneratorConfig builds the order generator configuration.
func (c *AppConfig) GeneratorConfig() orders.GeneratorConfig {
	return orders.GeneratorConfig{
		MinItemsPerOrder: c.Simulation.MinItemsPerOrder,
		MaxItemsPerOrder: c.Simulation.MaxItemsPerOrder,
		MaxOrders:        c.Simulation.MaxOrders,
	}
}

// SimConfig builds the frame loop configuration.
func (c *AppConfig) SimConfig() sim.Config {
	return sim.Config{
		TickInterval:  time.Duration(c.Simulation.TickIntervalMs) * time.Millisecond,
		Speed:         c.Simulation.Speed,
		OrderInterval: time.Duration(c.Simulation.OrderIntervalSeconds) * time.Second,
	}
}

// NotifierSettings builds the MQTT notifier configuration.
func (c *AppConfig) NotifierSettings() notify.Config {
	return notify.Config{
		Broker:    c.Notifier.Broker,
		ClientID:  c.Notifier.ClientID,
		Username:  c.Notifier.Username,
		Password:  c.Notifier.Password,
		TopicBase: c.Notifier.TopicBase,
	}
}

// GetDataDir returns the absolute data directory path
func (c *AppConfig) GetDataDir() string {
	return c.Storage.DataDirectory
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	if err := os.MkdirAll(c.Storage.DataDirectory, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", c.Storage.DataDirectory, err)
	}
	return nil
}
