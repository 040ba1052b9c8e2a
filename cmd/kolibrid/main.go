// Command kolibrid runs one standalone Kolibri node: it loads
// configuration, opens the genome ledger, seeds the symbol table, starts
// the swarm transport (if enabled), and runs a periodic tick loop,
// broadcasting the best formula after each tick.
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/kolibri/core/internal/config"
	"github.com/kolibri/core/internal/formula"
	"github.com/kolibri/core/internal/genome"
	"github.com/kolibri/core/internal/ioutil"
	"github.com/kolibri/core/internal/kolibri"
	"github.com/kolibri/core/internal/swarm"
	"github.com/kolibri/core/internal/symboltable"
	"github.com/kolibri/core/internal/telemetry"
)

const (
	exitSuccess = 0
	exitConfig  = 1
	exitGenome  = 2
	exitSwarm   = 3
)

func main() {
	var configPath string
	var tickInterval time.Duration
	flag.StringVar(&configPath, "config", "kolibri.yaml", "path to the node configuration file")
	flag.DurationVar(&tickInterval, "tick-interval", 2*time.Second, "interval between formula-pool ticks")
	flag.Parse()

	log, err := telemetry.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "kolibrid: logger init failed: %v\n", err)
		os.Exit(exitConfig)
	}
	defer log.Sync()

	cfg := config.LoadOrDefault(configPath)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", telemetry.Err(err))
		os.Exit(exitConfig)
	}

	genomeKey, err := resolveKey(cfg.Genome.KeyHex)
	if err != nil {
		log.Error("invalid genome key", telemetry.Err(err))
		os.Exit(exitGenome)
	}

	// genome.Open does not create the ledger's parent directory; the
	// config file's genome.path is routinely nested (e.g. "data/node.genome")
	// under a directory that doesn't exist yet on a fresh checkout.
	if err := ioutil.EnsureDirectory(filepath.Dir(cfg.Genome.Path)); err != nil {
		log.Error("genome directory setup failed", telemetry.String("path", cfg.Genome.Path), telemetry.Err(err))
		os.Exit(exitGenome)
	}
	fresh := !ioutil.FileExists(cfg.Genome.Path)

	g, err := genome.Open(cfg.Genome.Path, genomeKey)
	if err != nil {
		log.Error("genome open failed", telemetry.String("path", cfg.Genome.Path), telemetry.Err(err))
		os.Exit(exitGenome)
	}
	defer g.Close()
	if fresh {
		log.Info("bootstrapped new genome ledger", telemetry.String("path", cfg.Genome.Path))
	} else {
		log.Info("resumed existing genome ledger", telemetry.String("path", cfg.Genome.Path), telemetry.Uint64("next_index", g.NextIndex()))
	}

	symbols := symboltable.New()
	if err := symbols.LoadFromGenome(&symboltable.GenomeAdapter{Ctx: g}); err != nil {
		log.Warn("symbol table replay failed", telemetry.Err(err))
	}
	symbols.Attach(&symboltable.GenomeAdapter{Ctx: g})
	if cfg.SymbolTable.SeedDefaults {
		symbols.SeedDefaults()
	}

	pool := formula.NewPool(cfg.Pool.Seed, symbols)
	pool.SetPenalties(cfg.Pool.LambdaB, cfg.Pool.LambdaD)
	pool.SetCoherenceGain(cfg.Pool.CoherenceGain)
	pool.SetSampling(cfg.Pool.Temperature, cfg.Pool.TopK)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var sw *swarm.Swarm
	if cfg.Swarm.Enabled {
		swarmKey, err := resolveKey(cfg.Swarm.KeyHex)
		if err != nil {
			log.Error("invalid swarm key", telemetry.Err(err))
			os.Exit(exitSwarm)
		}
		sw, err = swarm.New(cfg.Swarm.NodeID, cfg.Swarm.BindAddr, cfg.Swarm.Port, swarmKey)
		if err != nil {
			log.Error("swarm bind failed", telemetry.Err(err))
			os.Exit(exitSwarm)
		}
		if err := sw.Start(ctx); err != nil {
			log.Error("swarm start failed", telemetry.Err(err))
			os.Exit(exitSwarm)
		}
		defer sw.Stop()

		for _, p := range cfg.Swarm.Peers {
			addr, err := net.ResolveUDPAddr("udp4", p.Addr)
			if err != nil {
				log.Warn("skipping malformed peer address", telemetry.String("addr", p.Addr))
				continue
			}
			if err := sw.AddPeer(addr, p.NodeID); err != nil {
				log.Warn("add peer failed", telemetry.String("addr", p.Addr), telemetry.Err(err))
			}
		}
	}

	core := kolibri.New(g, symbols, pool, sw, log)
	runTickLoop(ctx, core, tickInterval, cfg.Pool.GenerationsPerTick, log)
	os.Exit(exitSuccess)
}

func runTickLoop(ctx context.Context, core *kolibri.Core, interval time.Duration, generations int, log telemetry.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			return
		case <-ticker.C:
			core.Tick(generations)
			for _, e := range core.DrainSwarmEvents() {
				log.Debug("swarm event", telemetry.Uint32("node_id", e.NodeID))
			}
			if err := core.BroadcastBest(); err != nil {
				log.Warn("broadcast best formula failed", telemetry.Err(err))
			}
		}
	}
}

func resolveKey(keyHex string) ([]byte, error) {
	if keyHex == "" {
		return []byte("kolibri-default-dev-key"), nil
	}
	return hex.DecodeString(keyHex)
}
