package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"slam-robot-sim/internal/config"
	"slam-robot-sim/internal/noise"
	"slam-robot-sim/internal/robot"
	"slam-robot-sim/internal/simulation"
	"time"

	"github.com/charmbracelet/log"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "slam-sim",
	})

	// --- Configuration ---
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	configPath := fs.String("config", "", "path to a YAML config file")
	printConfig := fs.Bool("print-config", false, "print the effective config and exit")
	config.Default().Bind(fs)
	_ = fs.Parse(os.Args[1:])

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadYaml(*configPath)
	} else {
		cfg, err = config.LoadEnv()
	}
	if err != nil {
		logger.Fatal("Error loading config", "err", err)
	}

	// Flags given on the command line win over the loaded values; validation
	// runs once on the result.
	if err := cfg.ApplyFlags(fs); err != nil {
		logger.Fatal("Error applying flags", "err", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Error in config", "err", err)
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Fatal("Error parsing log level", "level", cfg.LogLevel, "err", err)
	}
	logger.SetLevel(level)

	if *printConfig {
		out, err := cfg.YAML()
		if err != nil {
			logger.Fatal("Error rendering config", "err", err)
		}
		fmt.Print(out)
		return
	}

	// --- Create robot and driver on one shared source ---
	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	logger.Info("Seeding noise source", "seed", seed)
	src := noise.NewSeeded(seed)

	r := robot.New(cfg.Robot, src)
	sim, err := simulation.NewSimulation(r, src, cfg.Simulation, logger)
	if err != nil {
		logger.Fatal("Error creating simulation", "err", err)
	}

	// --- Run ---
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	data, err := sim.Run(ctx)
	if err != nil {
		logger.Fatal("Simulation failed", "err", err)
	}

	fmt.Println("Landmarks:", data.Landmarks)
	fmt.Println(r)
	fmt.Println(simulation.Summarize(data))
}
