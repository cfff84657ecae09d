package mapfile

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Supported format versions.
const (
	// Version1 files have no header; the map size follows from the data.
	Version1 = 1
	// Version2 files start with V/L/X/Y/W/H headers and may have annotations.
	Version2 = 2

	// LatestVersion is the version written by Save.
	LatestVersion = Version2
)

var (
	versionPattern = regexp.MustCompile(`^\s*V:\s*(\S*)\s*$`)
	headerPattern  = regexp.MustCompile(`^\s*([A-Za-z]):\s*(\S*)\s*$`)
)

// line is one non-blank, non-comment line of a map file.
type line struct {
	num  int
	text string
}

// Decoder turns the lines of one format generation into map content.
type Decoder interface {
	// Version returns the format version handled.
	Version() int
	// NewMap creates the map from the tile file lines and returns the
	// remaining tile data lines. Errors are fatal format errors.
	NewMap(name, dir string, tiles []line) (*Map, []line, error)
	// DecodeTile parses one tile data line.
	DecodeTile(text string) (x, y int, t *Tile, err error)
	// DecodeItem parses one item line.
	DecodeItem(text string) (x, y int, it *Item, err error)
	// DecodeWarp parses one warp line.
	DecodeWarp(text string) (x, y int, w *WarpPoint, err error)
	// SupportsAnnotations reports whether annotation files are read.
	SupportsAnnotations() bool
	// DecodeAnnotation parses one annotation line. index 0 is the tile,
	// k > 0 is item k-1.
	DecodeAnnotation(text string) (x, y, index int, note string, err error)
}

// selectDecoder inspects the first tile line and picks the decoder. The
// version line, if any, is consumed.
func selectDecoder(file string, tiles []line, legacyLevel int32) (Decoder, []line, error) {
	if len(tiles) == 0 {
		return nil, nil, &FormatError{File: file, Err: fmt.Errorf("no tile data")}
	}
	first := tiles[0]
	if !strings.HasPrefix(strings.TrimSpace(first.text), "V:") {
		return &decoderV1{file: file, level: legacyLevel}, tiles, nil
	}
	m := versionPattern.FindStringSubmatch(first.text)
	if m == nil {
		return nil, nil, &FormatError{File: file, Line: first.num, Text: first.text, Err: fmt.Errorf("bad version line")}
	}
	version, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, nil, &FormatError{File: file, Line: first.num, Text: first.text, Err: fmt.Errorf("bad version number")}
	}
	switch version {
	case Version1:
		return &decoderV1{file: file, level: legacyLevel}, tiles[1:], nil
	case Version2:
		return &decoderV2{file: file}, tiles[1:], nil
	default:
		return nil, nil, &FormatError{File: file, Line: first.num, Text: first.text, Err: fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)}
	}
}

// fields splits a data line and checks the field count.
func fields(text string, minCount, maxCount int) ([]string, error) {
	f := strings.Split(text, ";")
	if len(f) < minCount || (maxCount > 0 && len(f) > maxCount) {
		if minCount == maxCount {
			return nil, fmt.Errorf("expected %d fields, got %d", minCount, len(f))
		}
		return nil, fmt.Errorf("expected %d to %d fields, got %d", minCount, maxCount, len(f))
	}
	return f, nil
}

func parseInt(field, what string) (int32, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(field), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("bad %s %q", what, field)
	}
	return int32(v), nil
}

func parseCell(f []string) (x, y int, err error) {
	xv, err := parseInt(f[0], "x")
	if err != nil {
		return 0, 0, err
	}
	yv, err := parseInt(f[1], "y")
	if err != nil {
		return 0, 0, err
	}
	return int(xv), int(yv), nil
}

// baseDecoder holds the line formats shared by all versions.
type baseDecoder struct{}

func (baseDecoder) DecodeItem(text string) (int, int, *Item, error) {
	f, err := fields(text, 4, 0)
	if err != nil {
		return 0, 0, nil, err
	}
	x, y, err := parseCell(f)
	if err != nil {
		return 0, 0, nil, err
	}
	id, err := parseInt(f[2], "item id")
	if err != nil {
		return 0, 0, nil, err
	}
	quality, err := parseInt(f[3], "quality")
	if err != nil {
		return 0, 0, nil, err
	}
	if quality < QualityNone {
		return 0, 0, nil, fmt.Errorf("bad quality %d", quality)
	}
	it := NewItem(id, quality)
	if len(f) > 4 {
		it.Data = append([]string(nil), f[4:]...)
	}
	return x, y, it, nil
}

func (baseDecoder) DecodeWarp(text string) (int, int, *WarpPoint, error) {
	f, err := fields(text, 5, 5)
	if err != nil {
		return 0, 0, nil, err
	}
	x, y, err := parseCell(f)
	if err != nil {
		return 0, 0, nil, err
	}
	var target [3]int32
	for i, what := range []string{"target x", "target y", "target z"} {
		if target[i], err = parseInt(f[2+i], what); err != nil {
			return 0, 0, nil, err
		}
	}
	return x, y, NewWarpPoint(target[0], target[1], target[2]), nil
}

// decoderV1 reads header-less files. The map spans the bounding box of the
// tile lines, starting at origin (0, 0) on a caller supplied level.
type decoderV1 struct {
	baseDecoder
	file  string
	level int32
}

func (d *decoderV1) Version() int { return Version1 }

func (d *decoderV1) NewMap(name, dir string, tiles []line) (*Map, []line, error) {
	maxX, maxY := -1, -1
	for _, l := range tiles {
		f, err := fields(l.text, 2, 0)
		if err != nil {
			continue
		}
		x, y, err := parseCell(f)
		if err != nil || x < 0 || y < 0 {
			continue
		}
		maxX = max(maxX, x)
		maxY = max(maxY, y)
	}
	if maxX < 0 || maxY < 0 {
		return nil, nil, &FormatError{File: d.file, Err: fmt.Errorf("no valid tile lines")}
	}
	m, err := New(name, maxX+1, maxY+1, 0, 0, d.level)
	if err != nil {
		return nil, nil, &FormatError{File: d.file, Err: err}
	}
	m.Dir = dir
	return m, tiles, nil
}

// DecodeTile accepts "x;y;tile;music" with an optional unused fifth field.
func (d *decoderV1) DecodeTile(text string) (int, int, *Tile, error) {
	f, err := fields(text, 4, 5)
	if err != nil {
		return 0, 0, nil, err
	}
	x, y, err := parseCell(f)
	if err != nil {
		return 0, 0, nil, err
	}
	id, err := parseInt(f[2], "tile id")
	if err != nil {
		return 0, 0, nil, err
	}
	music, err := parseInt(f[3], "music id")
	if err != nil {
		return 0, 0, nil, err
	}
	return x, y, &Tile{BaseID: id, MusicID: music}, nil
}

func (d *decoderV1) SupportsAnnotations() bool { return false }

func (d *decoderV1) DecodeAnnotation(string) (int, int, int, string, error) {
	return 0, 0, 0, "", fmt.Errorf("annotations need version %d", Version2)
}

// decoderV2 reads files with an explicit header.
type decoderV2 struct {
	baseDecoder
	file string
}

func (d *decoderV2) Version() int { return Version2 }

func (d *decoderV2) NewMap(name, dir string, tiles []line) (*Map, []line, error) {
	values := make(map[string]int32, 5)
	n := 0
	for ; n < len(tiles); n++ {
		l := tiles[n]
		m := headerPattern.FindStringSubmatch(l.text)
		if m == nil {
			break
		}
		key := strings.ToUpper(m[1])
		switch key {
		case "L", "X", "Y", "W", "H":
		default:
			return nil, nil, d.headerError(l, fmt.Errorf("unknown header %q", key))
		}
		if _, dup := values[key]; dup {
			return nil, nil, d.headerError(l, fmt.Errorf("duplicate header %q", key))
		}
		v, err := strconv.ParseInt(m[2], 10, 32)
		if err != nil {
			return nil, nil, d.headerError(l, fmt.Errorf("bad value for header %q", key))
		}
		values[key] = int32(v)
	}

	for _, key := range []string{"L", "X", "Y", "W", "H"} {
		if _, ok := values[key]; !ok {
			return nil, nil, &FormatError{File: d.file, Err: fmt.Errorf("missing header %q", key)}
		}
	}

	m, err := New(name, int(values["W"]), int(values["H"]), values["X"], values["Y"], values["L"])
	if err != nil {
		return nil, nil, &FormatError{File: d.file, Err: err}
	}
	m.Dir = dir
	return m, tiles[n:], nil
}

func (d *decoderV2) headerError(l line, err error) error {
	return &FormatError{File: d.file, Line: l.num, Text: l.text, Err: err}
}

// DecodeTile accepts exactly "x;y;packedTile;music".
func (d *decoderV2) DecodeTile(text string) (int, int, *Tile, error) {
	f, err := fields(text, 4, 4)
	if err != nil {
		return 0, 0, nil, err
	}
	x, y, err := parseCell(f)
	if err != nil {
		return 0, 0, nil, err
	}
	id, err := parseInt(f[2], "tile id")
	if err != nil {
		return 0, 0, nil, err
	}
	music, err := parseInt(f[3], "music id")
	if err != nil {
		return 0, 0, nil, err
	}
	return x, y, NewTile(id, music), nil
}

func (d *decoderV2) SupportsAnnotations() bool { return true }

// DecodeAnnotation keeps everything after the third separator as the note,
// so notes may contain ';'.
func (d *decoderV2) DecodeAnnotation(text string) (int, int, int, string, error) {
	f := strings.SplitN(text, ";", 4)
	if len(f) != 4 {
		return 0, 0, 0, "", fmt.Errorf("expected 4 fields, got %d", len(f))
	}
	x, y, err := parseCell(f)
	if err != nil {
		return 0, 0, 0, "", err
	}
	index, err := parseInt(f[2], "item index")
	if err != nil {
		return 0, 0, 0, "", err
	}
	if index < 0 {
		return 0, 0, 0, "", fmt.Errorf("bad item index %d", index)
	}
	return x, y, int(index), f[3], nil
}
