// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/snailbrook/staking/genesis"
	"github.com/snailbrook/staking/log"
	"github.com/snailbrook/staking/lvldb"
	"github.com/snailbrook/staking/snail"
	"github.com/snailbrook/staking/staking"
)

func initLogger(ctx *cli.Context) *slog.LevelVar {
	level := new(slog.LevelVar)
	level.Set(log.FromLegacyLevel(ctx.Int(verbosityFlag.Name)))

	output := io.Writer(os.Stdout)
	var handler slog.Handler
	switch {
	case ctx.Bool(jsonLogsFlag.Name):
		handler = log.JSONHandlerWithLevel(output, level)
	case isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()):
		handler = log.NewTerminalHandlerWithLevel(output, level, os.Getenv("TERM") != "dumb")
	default:
		// piped or redirected output
		handler = log.LogfmtHandlerWithLevel(output, level)
	}
	log.SetDefault(log.NewLogger(handler))
	return level
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		log.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func makeDataDir(ctx *cli.Context) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", fmt.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create data dir [%v]", dataDir)
	}
	return dataDir, nil
}

func openMainDB(ctx *cli.Context, dataDir string) (*lvldb.LevelDB, error) {
	cacheMB := normalizeCacheSize(ctx.Int(cacheFlag.Name))
	log.Debug("cache size(MB)", "size", cacheMB)

	fdCache, err := suggestFDCache()
	if err != nil {
		return nil, err
	}
	log.Debug("fd cache", "n", fdCache)

	path := filepath.Join(dataDir, "main.db")
	db, err := lvldb.New(path, lvldb.Options{
		CacheSize:              cacheMB,
		OpenFilesCacheCapacity: fdCache,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open main database [%v]", path)
	}
	return db, nil
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 16 {
		sizeMB = 16
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		log.Warn("failed to get total mem", "err", err)
	} else {
		// limit to 1/4 os physical ram
		limitMB := int(mem.Total / 1024 / 1024 / 4)
		if sizeMB > limitMB {
			sizeMB = limitMB
			log.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func suggestFDCache() (int, error) {
	limit, err := fdlimit.Current()
	if err != nil {
		return 0, errors.Wrap(err, "get fd limit")
	}
	if limit <= 1024 {
		log.Warn("low fd limit, increase it if possible", "limit", limit)
	}

	n := limit / 2
	if n > 1024 {
		return 1024, nil
	}
	return n, nil
}

// ensureDeployed applies the genesis to a fresh database. A deployed database is left untouched.
func ensureDeployed(engine *staking.Engine, load func() (*genesis.Config, error)) error {
	deployed, err := engine.Deployed()
	if err != nil {
		return err
	}
	if deployed {
		log.Info("engine already deployed, genesis skipped")
		return nil
	}
	cfg, err := load()
	if err != nil {
		return err
	}
	if err := genesis.Apply(engine, cfg); err != nil {
		return errors.WithMessage(err, "apply genesis")
	}
	log.Info("genesis applied", "operator", cfg.Operator, "pools", len(cfg.Pools))
	return nil
}

func printStartupMessage(engine *staking.Engine, dataDir, apiURL, metricsURL string) {
	period, err := engine.Period()
	if err != nil {
		log.Warn("failed to read period", "err", err)
	}
	count, _ := engine.PoolCount()

	fmt.Printf(`Starting %v
    Period       [ %v - %v ]
    Pools        [ %v ]
    Stake ledger [ %v ]
    Reward pot   [ %v ]
    Data dir     [ %v ]
    API portal   [ %v ]
    Metrics      [ %v ]
`,
		fullVersion(),
		time.Unix(int64(period.Start), 0).UTC(), time.Unix(int64(period.End), 0).UTC(),
		count,
		snail.StakeLedgerAccount,
		snail.RewardPotAccount,
		dataDir,
		apiURL,
		metricsOrDisabled(metricsURL))
}

func printSoloStartupMessage(engine *staking.Engine, dataDir, apiURL string) {
	tableHead := `
┌────────────────────────────────────────────┬────────────────────────────────────────────────────────────────────┐
│                   Address                  │                             Private Key                            │`
	tableContent := `
├────────────────────────────────────────────┼────────────────────────────────────────────────────────────────────┤
│ %v │ %v │`
	tableEnd := `
└────────────────────────────────────────────┴────────────────────────────────────────────────────────────────────┘`

	period, _ := engine.Period()
	info := fmt.Sprintf(`Starting %v solo
    Clock        [ %v ]
    Period       [ %v - %v ]
    Stake ledger [ %v ]
    Reward pot   [ %v ]
    Data dir     [ %v ]
    API portal   [ %v ]`,
		fullVersion(),
		engine.Now(),
		period.Start, period.End,
		snail.StakeLedgerAccount,
		snail.RewardPotAccount,
		dataDir,
		apiURL)

	info += tableHead
	for _, a := range genesis.DevAccounts() {
		info += fmt.Sprintf(tableContent, a.Address, hexutil.Encode(crypto.FromECDSA(a.PrivateKey)))
	}
	info += tableEnd + "\r\n"

	fmt.Print(info)
}

func metricsOrDisabled(url string) string {
	if url == "" {
		return "disabled"
	}
	return url
}

// copy from go-ethereum
func defaultDataDir() string {
	if home := homeDir(); home != "" {
		switch runtime.GOOS {
		case "darwin":
			return filepath.Join(home, "Library", "Application Support", "org.snailbrook.staking")
		case "windows":
			return filepath.Join(home, "AppData", "Roaming", "org.snailbrook.staking")
		default:
			return filepath.Join(home, ".org.snailbrook.staking")
		}
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}
