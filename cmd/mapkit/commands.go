package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/illarion-mapkit/internal/config"
	"github.com/Faultbox/illarion-mapkit/internal/logger"
	"github.com/Faultbox/illarion-mapkit/internal/mapstore"
	"github.com/Faultbox/illarion-mapkit/pkg/coord"
	"github.com/Faultbox/illarion-mapkit/pkg/mapfile"
)

var errUsage = errors.New("usage")

type app struct {
	cfg   *config.Config
	store *mapstore.Service
	out   io.Writer
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errUsage
	}

	command, args := args[0], args[1:]
	logger.Debug("running command", zap.String("command", command), zap.Strings("args", args))

	err := a.dispatch(ctx, command, args)
	if err != nil && !errors.Is(err, errUsage) {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
	}
	return err
}

func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "list", "ls":
		return a.cmdList()
	case "info":
		return a.cmdInfo(ctx, args)
	case "convert":
		return a.cmdConvert(ctx, args)
	case "cell":
		return a.cmdCell(ctx, args)
	case "coord":
		return a.cmdCoord(args)
	case "dir":
		return a.cmdDir(args)
	case "config":
		return a.cmdConfig(args)
	case "help", "-h", "--help":
		return errUsage
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

func (a *app) cmdList() error {
	names, err := a.store.List()
	if err != nil {
		return err
	}
	logger.Sugar.Debugf("found %d maps in %s", len(names), a.store.Root())
	for _, name := range names {
		fmt.Fprintln(a.out, name)
	}
	fmt.Fprintf(a.out, "\n%d maps in %s\n", len(names), a.store.Root())
	return nil
}

func (a *app) cmdInfo(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "List skipped lines")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return fmt.Errorf("usage: mapkit info [-v] <name>")
	}

	m, report, err := a.store.Load(ctx, pos[0])
	if err != nil {
		return err
	}
	stats := m.Stats()

	fmt.Fprintf(a.out, "Map:         %s\n", m.Name)
	fmt.Fprintf(a.out, "Version:     %d\n", report.Version)
	fmt.Fprintf(a.out, "Size:        %dx%d\n", m.Width, m.Height)
	fmt.Fprintf(a.out, "Origin:      %s\n", m.Origin())
	fmt.Fprintf(a.out, "Tiles:       %d\n", stats.Tiles)
	fmt.Fprintf(a.out, "Items:       %d\n", stats.Items)
	fmt.Fprintf(a.out, "Warps:       %d\n", stats.Warps)
	fmt.Fprintf(a.out, "Annotations: %d\n", stats.Annotations)
	fmt.Fprintf(a.out, "Skipped:     %d\n", len(report.Skipped))

	if *verbose {
		for _, e := range report.Skipped {
			fmt.Fprintf(a.out, "  %s\n", e)
		}
	}
	return nil
}

func (a *app) cmdConvert(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: mapkit convert <name> [outdir]")
	}

	m, report, err := a.store.Load(ctx, args[0])
	if err != nil {
		return err
	}

	if len(args) > 1 {
		outDir := args[1]
		if err := a.store.Codec().SaveTo(ctx, m, outDir); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Converted %s (v%d) to %s\n", m.Name, report.Version, filepath.Join(outDir, m.Name+mapfile.TilesSuffix))
	} else {
		if err := a.store.Save(ctx, m); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Converted %s (v%d) in place\n", m.Name, report.Version)
	}

	logger.Info("map converted",
		zap.String("map", m.Name),
		zap.Int("from_version", report.Version),
		zap.Int("to_version", mapfile.LatestVersion),
	)
	if n := len(report.Skipped); n > 0 {
		logger.Warn("converted map dropped lines", zap.String("map", m.Name), zap.Int("skipped", n))
	}
	return nil
}

func (a *app) cmdCell(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: mapkit cell <name> <x> <y> [z]")
	}

	m, _, err := a.store.Load(ctx, args[0])
	if err != nil {
		return err
	}
	nums, err := parseInts(args[1:])
	if err != nil {
		return err
	}
	pos := coord.NewServerCoordinate(nums[0], nums[1], m.Level)
	if len(nums) > 2 {
		pos.Z = nums[2]
	}

	x, y, ok := m.Local(pos)
	if !ok {
		return fmt.Errorf("%s is outside map %s", pos, m.Name)
	}

	fmt.Fprintf(a.out, "Position: %s (local %d,%d)\n", pos, x, y)
	tile := m.PeekTile(x, y)
	if tile == nil || tile.IsEmpty() {
		fmt.Fprintln(a.out, "Tile:     empty")
		return nil
	}

	fmt.Fprintf(a.out, "Tile:     base %d overlay %d shape %d (id %d)\n", tile.BaseID, tile.OverlayID, tile.ShapeID, tile.PackedID())
	fmt.Fprintf(a.out, "Music:    %d\n", tile.MusicID)
	if tile.Annotation != "" {
		fmt.Fprintf(a.out, "Note:     %s\n", tile.Annotation)
	}
	if tile.Warp != nil {
		fmt.Fprintf(a.out, "Warp:     %s\n", tile.Warp.Target)
	}
	for i, it := range tile.Items {
		line := fmt.Sprintf("Item %d:   id %d quality %d", i+1, it.ID, it.QualityDurability)
		if len(it.Data) > 0 {
			line += " [" + strings.Join(it.Data, ", ") + "]"
		}
		if it.Annotation != "" {
			line += " note: " + it.Annotation
		}
		fmt.Fprintln(a.out, line)
	}
	return nil
}

func (a *app) cmdCoord(args []string) error {
	fs := flag.NewFlagSet("coord", flag.ContinueOnError)
	layerName := fs.String("layer", "tiles", "Render layer")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 3 {
		return fmt.Errorf("usage: mapkit coord [-layer l] <x> <y> <z>")
	}
	layer, err := coord.ParseLayer(*layerName)
	if err != nil {
		return err
	}
	nums, err := parseInts(pos)
	if err != nil {
		return err
	}

	geo := a.store.Geometry()
	server := coord.NewServerCoordinate(nums[0], nums[1], nums[2])
	disp := server.DisplayCoordinate(geo, layer)

	fmt.Fprintf(a.out, "Server:  %s\n", server)
	fmt.Fprintf(a.out, "Map:     %s\n", server.MapCoordinate())
	fmt.Fprintf(a.out, "Display: %s (%s)\n", disp, layer)
	fmt.Fprintf(a.out, "Back:    %s\n", disp.ToServer(geo, server.Z))
	return nil
}

func (a *app) cmdDir(args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("usage: mapkit dir <x1> <y1> <x2> <y2>")
	}
	nums, err := parseInts(args)
	if err != nil {
		return err
	}

	from := coord.NewServerCoordinate(nums[0], nums[1], 0)
	to := coord.NewServerCoordinate(nums[2], nums[3], 0)
	d := from.DirectionTo(to)

	fmt.Fprintf(a.out, "Direction: %s (wire 0x%02X)\n", d, d.WireCode())
	fmt.Fprintf(a.out, "Steps:     %d\n", from.StepDistance(to))
	fmt.Fprintf(a.out, "Distance:  %.3f\n", from.Distance(to))
	return nil
}

func (a *app) cmdConfig(args []string) error {
	path := filepath.Join(config.ConfigDir(), "config.yaml")
	if len(args) > 0 {
		path = args[0]
	}
	if err := a.cfg.SaveTo(path); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Wrote %s\n", path)
	return nil
}

// parseArgs parses the flags of fs wherever they appear in args and returns
// the remaining positional arguments. Negative numbers are positional and
// everything after "--" is positional.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var pos []string
	for len(args) > 0 {
		arg := args[0]
		if arg == "--" {
			return append(pos, args[1:]...), nil
		}
		if len(arg) < 2 || arg[0] != '-' || isNumber(arg) {
			pos = append(pos, arg)
			args = args[1:]
			continue
		}

		name, _, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		f := fs.Lookup(name)
		if f == nil {
			return nil, fmt.Errorf("flag provided but not defined: %s", arg)
		}
		n := 2
		if b, ok := f.Value.(interface{ IsBoolFlag() bool }); hasValue || (ok && b.IsBoolFlag()) {
			n = 1
		}
		if n > len(args) {
			return nil, fmt.Errorf("flag needs an argument: %s", arg)
		}
		if err := fs.Parse(args[:n]); err != nil {
			return nil, err
		}
		args = args[n:]
	}
	return pos, nil
}

func isNumber(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

// parseInts parses 32-bit decimal arguments.
func parseInts(args []string) ([]int32, error) {
	nums := make([]int32, len(args))
	for i, s := range args {
		v, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", s)
		}
		nums[i] = int32(v)
	}
	return nums, nil
}
