// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/snailbrook/staking/cmd/snail/httpserver"
	"github.com/snailbrook/staking/genesis"
	"github.com/snailbrook/staking/log"
	"github.com/snailbrook/staking/lvldb"
	"github.com/snailbrook/staking/metrics"
	"github.com/snailbrook/staking/staking"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("snail %s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Snail",
		Usage:     "Staking rewards engine of Snail Brook",
		Copyright: "2025 Snail Brook",
		Flags: []cli.Flag{
			dataDirFlag,
			genesisFlag,
			cacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiEventsLimitFlag,
			apiBacklogLimitFlag,
			enableAPILogsFlag,
			apiSlowQueriesThresholdFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			gaugesScheduleFlag,
			disableNTPFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "solo",
				Usage: "run with a manually advanced clock for test & dev",
				Flags: []cli.Flag{
					dataDirFlag,
					genesisFlag,
					persistFlag,
					launchTimeFlag,
					apiAddrFlag,
					apiCorsFlag,
					apiEventsLimitFlag,
					apiBacklogLimitFlag,
					enableAPILogsFlag,
					verbosityFlag,
					jsonLogsFlag,
					enableMetricsFlag,
					metricsAddrFlag,
					gaugesScheduleFlag,
				},
				Action: soloAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { log.Info("exited") }()

	initLogger(ctx)

	metricsURL, closeMetrics, err := startMetrics(ctx)
	if err != nil {
		return err
	}
	defer closeMetrics()

	dataDir, err := makeDataDir(ctx)
	if err != nil {
		return err
	}
	mainDB, err := openMainDB(ctx, dataDir)
	if err != nil {
		return err
	}
	defer func() { log.Info("closing main database..."); mainDB.Close() }()

	engine, err := staking.New(mainDB, &staking.SystemClock{}, staking.Options{})
	if err != nil {
		return err
	}
	defer func() { log.Info("stopping engine..."); engine.Close() }()

	if err := ensureDeployed(engine, func() (*genesis.Config, error) {
		path := ctx.String(genesisFlag.Name)
		if path == "" {
			return nil, errors.Errorf("database is empty, use -%s to deploy", genesisFlag.Name)
		}
		return genesis.Load(path)
	}); err != nil {
		return err
	}

	return serve(ctx, exitSignal, engine, nil, func(apiURL string) {
		printStartupMessage(engine, dataDir, apiURL, metricsURL)
	})
}

func soloAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { log.Info("exited") }()

	initLogger(ctx)

	_, closeMetrics, err := startMetrics(ctx)
	if err != nil {
		return err
	}
	defer closeMetrics()

	var (
		mainDB  *lvldb.LevelDB
		dataDir = "Memory"
	)
	if ctx.Bool(persistFlag.Name) {
		if dataDir, err = makeDataDir(ctx); err != nil {
			return err
		}
		if mainDB, err = openMainDB(ctx, dataDir); err != nil {
			return err
		}
	} else {
		if mainDB, err = lvldb.NewMem(); err != nil {
			return err
		}
	}
	defer func() { log.Info("closing main database..."); mainDB.Close() }()

	launchTime := ctx.Uint64(launchTimeFlag.Name)
	if launchTime == 0 {
		launchTime = uint64(time.Now().Unix())
	}
	clock := staking.NewManualClock(launchTime)

	engine, err := staking.New(mainDB, clock, staking.Options{})
	if err != nil {
		return err
	}
	defer func() { log.Info("stopping engine..."); engine.Close() }()

	if err := ensureDeployed(engine, func() (*genesis.Config, error) {
		if path := ctx.String(genesisFlag.Name); path != "" {
			return genesis.Load(path)
		}
		return genesis.DevConfig(), nil
	}); err != nil {
		return err
	}

	return serve(ctx, exitSignal, engine, clock, func(apiURL string) {
		printSoloStartupMessage(engine, dataDir, apiURL)
	})
}

func startMetrics(ctx *cli.Context) (string, func(), error) {
	if !ctx.Bool(enableMetricsFlag.Name) {
		return "", func() {}, nil
	}
	metrics.InitializePrometheusMetrics()
	url, closeFunc, err := httpserver.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
	if err != nil {
		return "", nil, errors.WithMessage(err, "start metrics server")
	}
	log.Info("metrics server started", "url", url)
	return url, func() { log.Info("stopping metrics server..."); closeFunc() }, nil
}

// serve runs the API and housekeeping until exitSignal is done.
func serve(ctx *cli.Context, exitSignal context.Context, engine *staking.Engine, soloClock *staking.ManualClock, printStartup func(apiURL string)) error {
	enableAPILogs := &atomic.Bool{}
	enableAPILogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	apiURL, closeAPI, err := httpserver.StartAPIServer(ctx.String(apiAddrFlag.Name), engine, httpserver.APIConfig{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		EventsLimit:          ctx.Uint64(apiEventsLimitFlag.Name),
		BacklogLimit:         ctx.Uint64(apiBacklogLimitFlag.Name),
		EnableReqLogger:      enableAPILogs,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
		SoloClock:            soloClock,
	})
	if err != nil {
		return err
	}
	defer func() { log.Info("stopping API server..."); closeAPI() }()

	if err := engine.RefreshGauges(); err != nil {
		return err
	}
	stopRefresher, err := startGaugeRefresher(engine, ctx.String(gaugesScheduleFlag.Name))
	if err != nil {
		return errors.WithMessage(err, "schedule gauges refresh")
	}
	defer stopRefresher()

	printStartup(apiURL)

	g, gctx := errgroup.WithContext(exitSignal)
	if soloClock == nil && !ctx.Bool(disableNTPFlag.Name) {
		g.Go(func() error {
			checkClockOffset()
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})
	return g.Wait()
}
