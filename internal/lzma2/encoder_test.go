package lzma2

import "testing"

func TestNewEncoder_InitialState(t *testing.T) {
	e := NewEncoder(DefaultParams())
	if e.state != 0 {
		t.Fatalf("initial state = %d, want 0", e.state)
	}
	for _, r := range e.reps {
		if r != 0 {
			t.Fatalf("initial reps should be zero, got %v", e.reps)
		}
	}
}

func TestEncodeLiteral_AdvancesState(t *testing.T) {
	e := NewEncoder(DefaultParams())
	rc := NewRangeEncoder()
	data := []byte("hello world")
	e.encodeLiteral(rc, data, 0)
	if !stateIsCharState(e.state) {
		t.Fatalf("state after literal should remain a char state, got %d", e.state)
	}
}

func TestEncodeMatch_UpdatesRepsAndState(t *testing.T) {
	e := NewEncoder(DefaultParams())
	rc := NewRangeEncoder()
	e.encodeMatch(rc, 0, 4, 10)
	if e.reps[0] != 10 {
		t.Fatalf("reps[0] = %d, want 10", e.reps[0])
	}
	if stateIsCharState(e.state) {
		t.Fatalf("state after match should not be a char state")
	}
}

func TestEncodeRepMatch_RotatesReps(t *testing.T) {
	e := NewEncoder(DefaultParams())
	rc := NewRangeEncoder()
	e.reps = [4]uint32{5, 10, 15, 20}
	e.encodeRepMatch(rc, 0, 4, 2)
	if e.reps[0] != 15 {
		t.Fatalf("reps[0] = %d, want 15 (promoted from reps[2])", e.reps[0])
	}
	if e.reps[1] != 5 || e.reps[2] != 10 {
		t.Fatalf("reps after rotation = %v, want [15 5 10 20]", e.reps)
	}
}

func TestPosState_MasksToConfiguredBits(t *testing.T) {
	e := NewEncoder(Params{LC: 3, LP: 0, PB: 2})
	if got := e.posState(5); got != 1 {
		t.Fatalf("posState(5) with pb=2 = %d, want 1", got)
	}
	if got := e.posState(4); got != 0 {
		t.Fatalf("posState(4) with pb=2 = %d, want 0", got)
	}
}
