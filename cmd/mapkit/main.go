// mapkit is a CLI utility for working with Illarion map files and
// coordinates.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/Faultbox/illarion-mapkit/internal/config"
	"github.com/Faultbox/illarion-mapkit/internal/logger"
	"github.com/Faultbox/illarion-mapkit/internal/mapstore"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	store, err := mapstore.FromConfig(cfg, logger.Named("mapstore"))
	if err != nil {
		logger.Fatal("failed to open map store", zap.Error(err))
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := &app{cfg: cfg, store: store, out: os.Stdout}
	if err := app.run(ctx, flag.Args()); err != nil {
		if err == errUsage {
			printUsage()
		}
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `mapkit - Illarion map and coordinate utility

Usage:
  mapkit [flags] <command> [arguments]

Flags:
  -config <file>   Config file (default ./config.yaml)
  -maps <dir>      Map directory
  -charset <name>  Map file charset (utf-8, latin1, cp1252)
  -debug           Enable debug logging

Commands:
  list                           List maps in the map directory
  info [-v] <name>               Show map header, contents and skipped lines
  convert <name> [outdir]        Rewrite a map in the current format
  cell <name> <x> <y> [z]        Show the tile at a server coordinate
  coord [-layer l] <x> <y> <z>   Show map and display projections
  dir <x1> <y1> <x2> <y2>        Show the direction between two positions
  config [file]                  Write the effective configuration

Examples:
  mapkit -maps ./maps info gobaith
  mapkit convert trolls_bane ./converted
  mapkit coord -layer chars 10 5 0
  mapkit dir 0 0 3 -1`)
}
