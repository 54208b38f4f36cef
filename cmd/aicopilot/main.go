// main.go
// Copyright(c) 2024-2026 AICopilotFS contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

// This file contains the implementation of the main() function, which
// initializes the system and then runs the copilot control loop until
// the flight shuts down.

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/Plane14/AICopilotFS-sub000/aviation"
	"github.com/Plane14/AICopilotFS-sub000/bridge"
	"github.com/Plane14/AICopilotFS-sub000/log"
	"github.com/Plane14/AICopilotFS-sub000/nav"
	"github.com/Plane14/AICopilotFS-sub000/perf"
	"github.com/Plane14/AICopilotFS-sub000/pilot"
	"github.com/Plane14/AICopilotFS-sub000/taws"
	"github.com/Plane14/AICopilotFS-sub000/terrain"
	"github.com/Plane14/AICopilotFS-sub000/util"

	gomath "math"

	"github.com/shirou/gopsutil/v3/cpu"
	"golang.org/x/sync/errgroup"
)

var (
	simName     = flag.String("s", string(bridge.SimMSFS2024), "simulator: msfs2024 or p3dv6")
	simAddress  = flag.String("addr", "", "simulator bridge address (default depends on -s)")
	verbose     = flag.Bool("v", false, "dump aircraft state on each phase change")
	logLevel    = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir      = flag.String("logdir", "", "log file directory")
	terrainDir  = flag.String("terrain", "terrain", "directory holding .hgt elevation tiles")
	runwaysFile = flag.String("runways", "", "CSV runway database")
	metars      = flag.String("metar", "", "semicolon-separated METAR observations to seed weather")
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: aicopilot [-s msfs2024|p3dv6] [-v] [aircraft.cfg] [flightplan.pln]\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()
	os.Exit(run())
}

func run() int {
	lg := log.New(*logLevel, *logDir)
	defer lg.CatchAndSaveCrash()

	sim := bridge.Sim(*simName)
	switch sim {
	case bridge.SimMSFS2024, bridge.SimP3Dv6:
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown simulator\n", *simName)
		usage()
		return 1
	}

	var cfgPath, planPath string
	args := flag.Args()
	if len(args) > 2 {
		usage()
		return 1
	}
	if len(args) > 0 {
		cfgPath = args[0]
	}
	if len(args) > 1 {
		planPath = args[1]
	}

	// The input files are independent; load them in parallel.
	var (
		acft    *perf.AircraftConfig
		plan    *nav.FlightPlan
		runways *aviation.RunwayDB
		eg      errgroup.Group
	)
	eg.Go(func() error {
		if cfgPath == "" {
			acft = perf.DefaultAircraftConfig()
			return nil
		}
		var err error
		acft, err = perf.LoadAircraftConfig(cfgPath)
		if err != nil {
			return fmt.Errorf("%s: %w", cfgPath, err)
		}
		return nil
	})
	eg.Go(func() error {
		if planPath == "" {
			plan = &nav.FlightPlan{}
			return nil
		}
		var err error
		plan, err = nav.LoadFlightPlan(planPath)
		if err != nil {
			return fmt.Errorf("%s: %w", planPath, err)
		}
		return nil
	})
	eg.Go(func() error {
		if *runwaysFile == "" {
			return nil
		}
		var err error
		runways, err = aviation.LoadRunwayDB(*runwaysFile)
		if err != nil {
			return fmt.Errorf("%s: %w", *runwaysFile, err)
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		lg.Errorf("initialization: %v", err)
		fmt.Fprintf(os.Stderr, "aicopilot: %v\n", err)
		return 1
	}
	lg.Infof("aircraft %q, plan %q -> %q with %d waypoints",
		acft.Name, plan.Departure, plan.Arrival, len(plan.Waypoints))

	b, err := bridge.Dial(sim, *simAddress, lg)
	if err != nil {
		lg.Errorf("bridge: %v", err)
		fmt.Fprintf(os.Stderr, "aicopilot: %v\n", err)
		return 1
	}
	defer b.Close()

	p := pilot.New(b, pilot.Config{
		Nav:      nav.NewNav(plan, lg),
		Terrain:  taws.NewSystem(terrain.NewStore(*terrainDir, lg), lg),
		Runways:  runways,
		Aircraft: acft,
		Verbose:  *verbose,
	}, lg)

	for _, raw := range util.MapSlice(strings.Split(*metars, ";"), strings.TrimSpace) {
		if raw == "" {
			continue
		}
		if err := p.Observe(raw); err != nil {
			lg.Warnf("METAR %q: %v", raw, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandler(p)
	go logResourceUsage(ctx, lg)

	if err := p.Run(ctx); err != nil && err != context.Canceled {
		lg.Errorf("flight aborted: %v", err)
		fmt.Fprintf(os.Stderr, "aicopilot: %v\n", err)
		return 1
	}
	lg.Infof("flight complete")
	return 0
}

func setupSignalHandler(p *pilot.Pilot) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "Caught signal, shutting down the flight...")
		p.Stop()
	}()
}

// logResourceUsage periodically records process statistics so that
// long flights leave a performance trail in the logs.
func logResourceUsage(ctx context.Context, lg *log.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			usage, _ := cpu.Percent(time.Second, false)

			pct := 0
			if len(usage) > 0 {
				pct = int(gomath.Round(usage[0]))
			}
			lg.Infof("CPU: %d%% alloc: %dMB total alloc: %dMB sys mem: %dMB goroutines: %d",
				pct, m.Alloc/(1024*1024), m.TotalAlloc/(1024*1024), m.Sys/(1024*1024),
				runtime.NumGoroutine())
		}
	}
}
