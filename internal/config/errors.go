package config

import "errors"

var (
	errEmptyGenomePath  = errors.New("config: genome.path must not be empty")
	errTemperatureRange = errors.New("config: pool.temperature must be in (0,2]")
	errTopKRange        = errors.New("config: pool.top_k must be >= 1")
	errGenerationsRange = errors.New("config: pool.generations_per_tick must be >= 1")
	errSwarmPortZero    = errors.New("config: swarm.port must be set when swarm.enabled")
	errSwarmKeyEmpty    = errors.New("config: swarm.key_hex must be set when swarm.enabled")
)
