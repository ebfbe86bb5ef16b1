package lzma2

import "testing"

func TestStateUpdateLiteral(t *testing.T) {
	cases := []struct {
		state uint32
		want  uint32
	}{
		{0, 0}, {3, 0},
		{4, 1}, {9, 6},
		{10, 4}, {11, 5},
	}
	for _, c := range cases {
		if got := stateUpdateLiteral(c.state); got != c.want {
			t.Errorf("stateUpdateLiteral(%d) = %d, want %d", c.state, got, c.want)
		}
	}
}

func TestStateUpdateMatchRepShortRep(t *testing.T) {
	if stateUpdateMatch(0) != 7 || stateUpdateMatch(9) != 10 {
		t.Fatalf("stateUpdateMatch wrong")
	}
	if stateUpdateRep(0) != 8 || stateUpdateRep(9) != 11 {
		t.Fatalf("stateUpdateRep wrong")
	}
	if stateUpdateShortRep(0) != 9 || stateUpdateShortRep(9) != 11 {
		t.Fatalf("stateUpdateShortRep wrong")
	}
}

func TestStateIsCharState(t *testing.T) {
	for s := uint32(0); s < numStates; s++ {
		want := s < 7
		if got := stateIsCharState(s); got != want {
			t.Errorf("stateIsCharState(%d) = %v, want %v", s, got, want)
		}
	}
}

func TestLenToPosState(t *testing.T) {
	cases := []struct {
		length uint32
		want   uint32
	}{
		{2, 0}, {3, 1}, {4, 2}, {5, 3}, {6, 3}, {273, 3},
	}
	for _, c := range cases {
		if got := lenToPosState(c.length); got != c.want {
			t.Errorf("lenToPosState(%d) = %d, want %d", c.length, got, c.want)
		}
	}
}

func TestGetPosSlot(t *testing.T) {
	cases := []struct {
		dist uint32
		want uint32
	}{
		{0, 0}, {1, 1}, {2, 2}, {3, 3},
		{4, 4}, {5, 4}, {6, 5}, {7, 5},
		{8, 6}, {15, 7},
	}
	for _, c := range cases {
		if got := getPosSlot(c.dist); got != c.want {
			t.Errorf("getPosSlot(%d) = %d, want %d", c.dist, got, c.want)
		}
	}
}
