package coord

import (
	"testing"

	"github.com/Faultbox/illarion-mapkit/pkg/netcomm"
)

func TestDirection_ReverseInvolution(t *testing.T) {
	for _, d := range Directions() {
		if got := d.Reverse().Reverse(); got != d {
			t.Errorf("%s: reverse(reverse) = %s", d, got)
		}
		if d.Reverse() == d {
			t.Errorf("%s: reverse must differ from itself", d)
		}
	}
	if NoDirection.Reverse() != NoDirection {
		t.Error("NoDirection must reverse to NoDirection")
	}
}

func TestDirection_Reverse(t *testing.T) {
	tests := []struct {
		d, want Direction
	}{
		{North, South},
		{NorthEast, SouthWest},
		{East, West},
		{SouthEast, NorthWest},
	}
	for _, tc := range tests {
		if got := tc.d.Reverse(); got != tc.want {
			t.Errorf("%s.Reverse() = %s, want %s", tc.d, got, tc.want)
		}
	}
}

func TestDirection_Vectors(t *testing.T) {
	for _, d := range Directions() {
		dx, dy := d.DX(), d.DY()
		if dx == 0 && dy == 0 {
			t.Errorf("%s has a zero step", d)
		}
		if dx < -1 || dx > 1 || dy < -1 || dy > 1 {
			t.Errorf("%s step (%d,%d) is not a unit step", d, dx, dy)
		}
		if d.IsDiagonal() != (dx != 0 && dy != 0) {
			t.Errorf("%s: IsDiagonal inconsistent with step (%d,%d)", d, dx, dy)
		}
		if d.Reverse().DX() != -dx || d.Reverse().DY() != -dy {
			t.Errorf("%s: reverse step is not negated", d)
		}
	}
}

func TestDirection_WireCodes(t *testing.T) {
	for i, d := range Directions() {
		if d.WireCode() != i {
			t.Errorf("%s: expected wire code %d, got %d", d, i, d.WireCode())
		}
		got, ok := FromWireCode(i)
		if !ok || got != d {
			t.Errorf("FromWireCode(%d) = %s, %v", i, got, ok)
		}
	}

	for _, code := range []int{NoDirectionWireCode, 8, 9, 0x0B, -1, 255} {
		if d, ok := FromWireCode(code); ok || d != NoDirection {
			t.Errorf("FromWireCode(%#x) = %s, %v; want NoDirection, false", code, d, ok)
		}
	}
}

func TestDirection_EncodeDecode(t *testing.T) {
	values := append(Directions(), NoDirection)
	for _, d := range values {
		buf := &netcomm.Buffer{}
		EncodeDirection(buf, d)
		got, err := DecodeDirection(buf)
		if err != nil {
			t.Fatalf("%s: decode failed: %v", d, err)
		}
		if got != d {
			t.Errorf("round trip %s -> %s", d, got)
		}
	}

	buf := &netcomm.Buffer{}
	EncodeDirection(buf, NoDirection)
	if b := buf.Bytes(); len(b) != 1 || b[0] != NoDirectionWireCode {
		t.Errorf("NoDirection must encode as %#x, got %v", NoDirectionWireCode, b)
	}

	if d, err := DecodeDirection(netcomm.NewBuffer([]byte{0x42})); err != nil || d != NoDirection {
		t.Errorf("unknown code: got %s, %v", d, err)
	}
	if _, err := DecodeDirection(netcomm.NewBuffer(nil)); err == nil {
		t.Error("expected error on empty buffer")
	}
}

func TestNearestOctant(t *testing.T) {
	tests := []struct {
		name   string
		tx, ty int32
		want   Direction
	}{
		{"north", 0, -1, North},
		{"north east", 1, -1, NorthEast},
		{"east", 1, 0, East},
		{"south east", 1, 1, SouthEast},
		{"south", 0, 1, South},
		{"south west", -1, 1, SouthWest},
		{"west", -1, 0, West},
		{"north west", -1, -1, NorthWest},
		{"far east", 100, 0, East},
		{"east slightly north", 10, -1, East},
		{"east slightly south", 10, 1, East},
		{"steep south east", 2, 3, SouthEast},
		{"mostly south", 1, 5, South},
		{"same", 0, 0, NoDirection},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := NearestOctant(0, 0, tc.tx, tc.ty); got != tc.want {
				t.Errorf("NearestOctant(0,0,%d,%d) = %s, want %s", tc.tx, tc.ty, got, tc.want)
			}
		})
	}
}

func TestNearestOctant_MatchesStep(t *testing.T) {
	origin := NewServerCoordinate(50, -20, 0)
	for _, d := range Directions() {
		for _, n := range []int32{1, 2, 7} {
			target := origin.Step(d, n)
			if got := origin.DirectionTo(target); got != d {
				t.Errorf("%d steps %s: DirectionTo = %s", n, d, got)
			}
			if got := target.DirectionTo(origin); got != d.Reverse() {
				t.Errorf("%d steps %s back: DirectionTo = %s", n, d, got)
			}
		}
	}
}

func TestDirection_String(t *testing.T) {
	if North.String() != "North" || NorthWest.String() != "NorthWest" {
		t.Error("unexpected direction names")
	}
	if NoDirection.String() != "None" {
		t.Errorf("expected None, got %s", NoDirection)
	}
	if Direction(12).String() != "Direction(12)" {
		t.Errorf("unexpected name %s", Direction(12))
	}
}
