package mapfile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/illarion-mapkit/pkg/encoding"
)

// File name suffixes of the four files making up one map.
const (
	TilesSuffix       = ".tiles.txt"
	ItemsSuffix       = ".items.txt"
	WarpsSuffix       = ".warps.txt"
	AnnotationsSuffix = ".annot.txt"
)

// ctxCheckInterval is how many lines are processed between context checks.
const ctxCheckInterval = 1024

// maxLineLength bounds a single line of a map file.
const maxLineLength = 1 << 20

// Files holds the paths of the four files of one map.
type Files struct {
	Tiles       string
	Items       string
	Warps       string
	Annotations string
}

// FilesFor returns the file paths of map name in dir.
func FilesFor(dir, name string) Files {
	base := filepath.Join(dir, name)
	return Files{
		Tiles:       base + TilesSuffix,
		Items:       base + ItemsSuffix,
		Warps:       base + WarpsSuffix,
		Annotations: base + AnnotationsSuffix,
	}
}

// LoadReport describes a finished load.
type LoadReport struct {
	Version int
	// Skipped lists the data lines that were dropped, in file order:
	// tiles, items, warps, annotations.
	Skipped []*LineError
}

// Err combines all skipped line errors, or returns nil.
func (r *LoadReport) Err() error {
	var err error
	for _, e := range r.Skipped {
		err = multierr.Append(err, e)
	}
	return err
}

// Codec reads and writes maps.
type Codec struct {
	log         *zap.Logger
	charset     encoding.Charset
	legacyLevel int32
}

// Option configures a Codec.
type Option func(*Codec)

// WithLogger sets the logger used for skipped lines.
func WithLogger(log *zap.Logger) Option {
	return func(c *Codec) {
		if log != nil {
			c.log = log
		}
	}
}

// WithCharset sets the text encoding of map files.
func WithCharset(cs encoding.Charset) Option {
	return func(c *Codec) {
		c.charset = cs
	}
}

// WithLegacyLevel sets the level assigned to version 1 maps, which do not
// record one.
func WithLegacyLevel(level int32) Option {
	return func(c *Codec) {
		c.legacyLevel = level
	}
}

// NewCodec creates a codec. Without options it reads UTF-8 and logs nothing.
func NewCodec(opts ...Option) *Codec {
	c := &Codec{log: zap.NewNop(), charset: encoding.UTF8}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type itemRecord struct {
	x, y int
	item *Item
}

type warpRecord struct {
	x, y int
	warp *WarpPoint
}

type annotationRecord struct {
	src   line
	x, y  int
	index int
	note  string
}

// Load reads map name from dir.
//
// The four files are read in parallel. The tile header is parsed before
// items, warps and annotations are decoded, again in parallel, and merged
// into the map. Fatal problems return an error wrapping ErrFormat; single
// bad data lines are skipped, logged and listed in the report.
func (c *Codec) Load(ctx context.Context, dir, name string) (*Map, *LoadReport, error) {
	files := FilesFor(dir, name)

	var tileLines, itemLines, warpLines, annotLines []line
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tileLines, err = c.readLines(gctx, files.Tiles)
		if errors.Is(err, fs.ErrNotExist) {
			return &FormatError{File: files.Tiles, Err: fmt.Errorf("%w: %w", ErrMissingTiles, err)}
		}
		return err
	})
	g.Go(func() (err error) {
		itemLines, err = c.readOptionalLines(gctx, files.Items)
		return err
	})
	g.Go(func() (err error) {
		warpLines, err = c.readOptionalLines(gctx, files.Warps)
		return err
	})
	g.Go(func() (err error) {
		annotLines, err = c.readOptionalLines(gctx, files.Annotations)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	dec, tileLines, err := selectDecoder(files.Tiles, tileLines, c.legacyLevel)
	if err != nil {
		return nil, nil, err
	}
	m, tileLines, err := dec.NewMap(name, dir, tileLines)
	if err != nil {
		return nil, nil, err
	}

	report := &LoadReport{Version: dec.Version()}
	skip := func(skipped *[]*LineError, file string, l line, err error) {
		*skipped = append(*skipped, &LineError{File: file, Line: l.num, Text: l.text, Err: err})
	}

	var tileSkipped []*LineError
	for i, l := range tileLines {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}
		x, y, t, err := dec.DecodeTile(l.text)
		if err != nil {
			skip(&tileSkipped, files.Tiles, l, err)
			continue
		}
		if !m.SetTileAt(x, y, t) {
			skip(&tileSkipped, files.Tiles, l, ErrOutOfBounds)
		}
	}

	var (
		items  []itemRecord
		warps  []warpRecord
		annots []annotationRecord

		itemSkipped, warpSkipped, annotSkipped []*LineError
	)
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		return eachLine(gctx, itemLines, func(l line) {
			x, y, it, err := dec.DecodeItem(l.text)
			if err == nil && !m.Contains(x, y) {
				err = ErrOutOfBounds
			}
			if err != nil {
				skip(&itemSkipped, files.Items, l, err)
				return
			}
			items = append(items, itemRecord{x: x, y: y, item: it})
		})
	})
	g.Go(func() error {
		return eachLine(gctx, warpLines, func(l line) {
			x, y, w, err := dec.DecodeWarp(l.text)
			if err == nil && !m.Contains(x, y) {
				err = ErrOutOfBounds
			}
			if err != nil {
				skip(&warpSkipped, files.Warps, l, err)
				return
			}
			warps = append(warps, warpRecord{x: x, y: y, warp: w})
		})
	})
	if dec.SupportsAnnotations() {
		g.Go(func() error {
			return eachLine(gctx, annotLines, func(l line) {
				x, y, index, note, err := dec.DecodeAnnotation(l.text)
				if err == nil && !m.Contains(x, y) {
					err = ErrOutOfBounds
				}
				if err != nil {
					skip(&annotSkipped, files.Annotations, l, err)
					return
				}
				annots = append(annots, annotationRecord{src: l, x: x, y: y, index: index, note: note})
			})
		})
	} else if len(annotLines) > 0 {
		c.log.Debug("ignoring annotations of legacy map",
			zap.String("file", files.Annotations),
			zap.Int("version", dec.Version()),
		)
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	for _, r := range items {
		m.TileAt(r.x, r.y).AddItem(r.item)
	}
	for _, r := range warps {
		// Last warp line for a cell wins.
		m.TileAt(r.x, r.y).Warp = r.warp
	}
	for _, r := range annots {
		t := m.TileAt(r.x, r.y)
		if r.index == 0 {
			t.Annotation = r.note
			continue
		}
		if r.index > len(t.Items) {
			skip(&annotSkipped, files.Annotations, r.src, fmt.Errorf("no item %d on tile", r.index))
			continue
		}
		t.Items[r.index-1].Annotation = r.note
	}

	for _, skipped := range [][]*LineError{tileSkipped, itemSkipped, warpSkipped, annotSkipped} {
		report.Skipped = append(report.Skipped, skipped...)
	}
	for _, e := range report.Skipped {
		c.log.Warn("skipped map line",
			zap.String("file", e.File),
			zap.Int("line", e.Line),
			zap.Error(e.Err),
		)
	}
	c.log.Debug("map loaded",
		zap.String("map", name),
		zap.Int("version", report.Version),
		zap.Int("width", m.Width),
		zap.Int("height", m.Height),
		zap.Int("skipped", len(report.Skipped)),
	)

	return m, report, nil
}

// eachLine calls fn for every line, checking ctx periodically.
func eachLine(ctx context.Context, lines []line, fn func(line)) error {
	for i, l := range lines {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		fn(l)
	}
	return nil
}

// readOptionalLines reads a file that may be absent.
func (c *Codec) readOptionalLines(ctx context.Context, path string) ([]line, error) {
	lines, err := c.readLines(ctx, path)
	if errors.Is(err, fs.ErrNotExist) {
		c.log.Debug("optional map file missing", zap.String("file", path))
		return nil, nil
	}
	return lines, err
}

// readLines returns the non-blank, non-comment lines of path.
func (c *Codec) readLines(ctx context.Context, path string) ([]line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(c.charset.NewReader(f))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	var lines []line
	num := 0
	for sc.Scan() {
		num++
		if num%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		text := strings.TrimSuffix(sc.Text(), "\r")
		if trimmed := strings.TrimSpace(text); trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		// Free text fields keep their surrounding spaces.
		lines = append(lines, line{num: num, text: text})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return lines, ctx.Err()
}

// Save writes m into m.Dir using the latest format version.
func (c *Codec) Save(ctx context.Context, m *Map) error {
	if m.Dir == "" {
		return fmt.Errorf("map %q has no directory", m.Name)
	}
	return c.SaveTo(ctx, m, m.Dir)
}

// SaveTo writes m into dir using the latest format version. All four
// files are rewritten; empty ones are still created.
func (c *Codec) SaveTo(ctx context.Context, m *Map, dir string) error {
	if err := checkItemData(m); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating map directory: %w", err)
	}
	files := FilesFor(dir, m.Name)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.writeFile(gctx, files.Tiles, func(w *bufio.Writer) { writeTiles(w, m) }) })
	g.Go(func() error { return c.writeFile(gctx, files.Items, func(w *bufio.Writer) { writeItems(w, m) }) })
	g.Go(func() error { return c.writeFile(gctx, files.Warps, func(w *bufio.Writer) { writeWarps(w, m) }) })
	g.Go(func() error {
		return c.writeFile(gctx, files.Annotations, func(w *bufio.Writer) { writeAnnotations(w, m) })
	})
	if err := g.Wait(); err != nil {
		return err
	}

	c.log.Debug("map saved",
		zap.String("map", m.Name),
		zap.String("dir", dir),
		zap.Int("version", LatestVersion),
	)
	return nil
}

// writeFile creates path and fills it through body. Flush and close errors
// are combined with the write error.
func (c *Codec) writeFile(ctx context.Context, path string, body func(w *bufio.Writer)) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	enc := c.charset.NewWriter(f)
	w := bufio.NewWriter(enc)
	body(w)
	if err := w.Flush(); err != nil {
		return multierr.Append(fmt.Errorf("writing %s: %w", path, err), enc.Close())
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return ctx.Err()
}

func writeTiles(w *bufio.Writer, m *Map) {
	fmt.Fprintf(w, "V: %d\n", LatestVersion)
	fmt.Fprintf(w, "L: %d\n", m.Level)
	fmt.Fprintf(w, "X: %d\n", m.OriginX)
	fmt.Fprintf(w, "Y: %d\n", m.OriginY)
	fmt.Fprintf(w, "W: %d\n", m.Width)
	fmt.Fprintf(w, "H: %d\n", m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			var id, music int32
			if t := m.PeekTile(x, y); t != nil {
				id, music = t.PackedID(), t.MusicID
			}
			writeFields(w, strconv.Itoa(x), strconv.Itoa(y), itoa(id), itoa(music))
		}
	}
}

func writeItems(w *bufio.Writer, m *Map) {
	m.Each(func(x, y int, t *Tile) {
		for _, it := range t.Items {
			f := []string{strconv.Itoa(x), strconv.Itoa(y), itoa(it.ID), itoa(it.storedQuality())}
			for _, d := range it.Data {
				f = append(f, sanitize(d))
			}
			writeFields(w, f...)
		}
	})
}

func writeWarps(w *bufio.Writer, m *Map) {
	m.Each(func(x, y int, t *Tile) {
		if t.Warp == nil {
			return
		}
		target := t.Warp.Target
		writeFields(w, strconv.Itoa(x), strconv.Itoa(y), itoa(target.X), itoa(target.Y), itoa(target.Z))
	})
}

func writeAnnotations(w *bufio.Writer, m *Map) {
	m.Each(func(x, y int, t *Tile) {
		if t.Annotation != "" {
			writeFields(w, strconv.Itoa(x), strconv.Itoa(y), "0", sanitize(t.Annotation))
		}
		for i, it := range t.Items {
			if it.Annotation != "" {
				writeFields(w, strconv.Itoa(x), strconv.Itoa(y), strconv.Itoa(i+1), sanitize(it.Annotation))
			}
		}
	})
}

// writeFields writes one ';'-separated, '\n'-terminated line.
// bufio.Writer keeps the first error, which Flush reports.
func writeFields(w io.StringWriter, f ...string) {
	_, _ = w.WriteString(strings.Join(f, ";"))
	_, _ = w.WriteString("\n")
}

func itoa(v int32) string {
	return strconv.FormatInt(int64(v), 10)
}

// checkItemData rejects item data tokens that would split into several
// fields when read back.
func checkItemData(m *Map) error {
	var err error
	m.Each(func(x, y int, t *Tile) {
		for i, it := range t.Items {
			for _, d := range it.Data {
				if strings.Contains(d, ";") {
					err = multierr.Append(err, fmt.Errorf("%w: item %d at %d,%d: data token %q contains ';'", ErrData, i, x, y, d))
				}
			}
		}
	})
	return err
}

// sanitize keeps free text on a single line.
func sanitize(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}
