// Package config defines Kolibri's on-disk configuration surface,
// generalized from src/core/config/types.go and src/core/config/loader.go:
// the same Default/Validate/Load/LoadOrDefault/Save shape, now describing
// genome, pool, swarm, and symbol-table settings instead of USB-collector
// settings.
package config

import "github.com/kolibri/core/internal/kerrors"

// Config is the complete Kolibri node configuration.
type Config struct {
	Genome      GenomeConfig      `yaml:"genome"`
	Pool        PoolConfig        `yaml:"pool"`
	Swarm       SwarmConfig       `yaml:"swarm"`
	SymbolTable SymbolTableConfig `yaml:"symbol_table"`
}

// GenomeConfig locates the ledger file and its HMAC key.
type GenomeConfig struct {
	// Path is the ledger file on disk.
	Path string `yaml:"path"`
	// KeyHex is the hex-encoded HMAC-SHA-256 key (1-64 raw bytes).
	KeyHex string `yaml:"key_hex"`
}

// PoolConfig seeds the formula pool and its initial controls.
type PoolConfig struct {
	Seed          uint64  `yaml:"seed"`
	LambdaB       float64 `yaml:"lambda_b"`
	LambdaD       float64 `yaml:"lambda_d"`
	CoherenceGain float64 `yaml:"coherence_gain"`
	Temperature   float64 `yaml:"temperature"`
	TopK          int     `yaml:"top_k"`
	GenerationsPerTick int `yaml:"generations_per_tick"`
}

// PeerConfig is one statically-configured swarm peer.
type PeerConfig struct {
	Addr   string `yaml:"addr"`
	NodeID uint32 `yaml:"node_id"`
}

// SwarmConfig controls the UDP gossip transport.
type SwarmConfig struct {
	Enabled  bool         `yaml:"enabled"`
	NodeID   uint32       `yaml:"node_id"`
	BindAddr string       `yaml:"bind_addr"`
	Port     uint16       `yaml:"port"`
	KeyHex   string       `yaml:"key_hex"`
	Peers    []PeerConfig `yaml:"peers"`
}

// SymbolTableConfig toggles default-alphabet seeding.
type SymbolTableConfig struct {
	SeedDefaults bool `yaml:"seed_defaults"`
}

// Default returns a Config with safe, standalone-node defaults.
func Default() *Config {
	return &Config{
		Genome: GenomeConfig{
			Path:   "kolibri.genome",
			KeyHex: "",
		},
		Pool: PoolConfig{
			Seed:               1,
			LambdaB:            0,
			LambdaD:            0,
			CoherenceGain:      0,
			Temperature:        1.0,
			TopK:               24,
			GenerationsPerTick: 1,
		},
		Swarm: SwarmConfig{
			Enabled:  false,
			NodeID:   1,
			BindAddr: "0.0.0.0",
			Port:     5000,
			KeyHex:   "",
		},
		SymbolTable: SymbolTableConfig{
			SeedDefaults: true,
		},
	}
}

// Validate checks Config's documented invariants.
func (c *Config) Validate() error {
	if c.Genome.Path == "" {
		return kerrors.New(kerrors.InvalidArgument, "config.Validate", errEmptyGenomePath)
	}
	if c.Pool.Temperature <= 0 || c.Pool.Temperature > 2 {
		return kerrors.New(kerrors.InvalidArgument, "config.Validate", errTemperatureRange)
	}
	if c.Pool.TopK < 1 {
		return kerrors.New(kerrors.InvalidArgument, "config.Validate", errTopKRange)
	}
	if c.Pool.GenerationsPerTick < 1 {
		return kerrors.New(kerrors.InvalidArgument, "config.Validate", errGenerationsRange)
	}
	if c.Swarm.Enabled {
		if c.Swarm.Port == 0 {
			return kerrors.New(kerrors.InvalidArgument, "config.Validate", errSwarmPortZero)
		}
		if c.Swarm.KeyHex == "" {
			return kerrors.New(kerrors.InvalidArgument, "config.Validate", errSwarmKeyEmpty)
		}
	}
	return nil
}
