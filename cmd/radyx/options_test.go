package main

import "testing"

func TestParseSizeSuffix(t *testing.T) {
	cases := []struct {
		in   string
		want uint64
	}{
		{"1024", 1024},
		{"64k", 64 << 10},
		{"64K", 64 << 10},
		{"32m", 32 << 20},
		{"2g", 2 << 30},
	}
	for _, c := range cases {
		got, err := parseSizeSuffix(c.in)
		if err != nil {
			t.Fatalf("parseSizeSuffix(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("parseSizeSuffix(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseSizeSuffix_Invalid(t *testing.T) {
	if _, err := parseSizeSuffix("abc"); err == nil {
		t.Fatalf("expected an error for a non-numeric size")
	}
}

func TestParseSolidPolicy_Off(t *testing.T) {
	p, err := parseSolidPolicy("off")
	if err != nil {
		t.Fatalf("parseSolidPolicy: %v", err)
	}
	if !p.disabled {
		t.Fatalf("expected disabled=true for off")
	}
}

func TestParseSolidPolicy_FileCount(t *testing.T) {
	p, err := parseSolidPolicy("10f")
	if err != nil {
		t.Fatalf("parseSolidPolicy: %v", err)
	}
	if p.fileCap != 10 {
		t.Fatalf("fileCap = %d, want 10", p.fileCap)
	}
}

func TestParseSolidPolicy_ExtensionGrouping(t *testing.T) {
	p, err := parseSolidPolicy("e")
	if err != nil {
		t.Fatalf("parseSolidPolicy: %v", err)
	}
	if !p.byExt {
		t.Fatalf("expected byExt=true for 'e'")
	}
}

func TestParseSolidPolicy_Composition(t *testing.T) {
	p, err := parseSolidPolicy("10f|64m")
	if err != nil {
		t.Fatalf("parseSolidPolicy: %v", err)
	}
	if p.fileCap != 10 || p.sizeCap != 64<<20 {
		t.Fatalf("got %+v", p)
	}
}

func TestResolveThreadCount(t *testing.T) {
	if resolveThreadCount("-") != 1 {
		t.Fatalf("'-' should resolve to a single thread")
	}
	if resolveThreadCount("4") != 4 {
		t.Fatalf("'4' should resolve to 4 threads")
	}
}

func TestPresetForLevel_ExactAndFallback(t *testing.T) {
	p5 := presetForLevel(5)
	if p5.fastLength != 64 {
		t.Fatalf("level 5 fastLength = %d, want 64", p5.fastLength)
	}
	p6 := presetForLevel(6)
	if p6.fastLength != 64 {
		t.Fatalf("level 6 should fall back to level 5's preset, got fastLength=%d", p6.fastLength)
	}
}

func TestFilterSet_IncludeExclude(t *testing.T) {
	fset := filterSet{include: []string{"*.txt"}, exclude: []string{"secret*"}}
	if !fset.allows("a.txt") {
		t.Fatalf("a.txt should be allowed")
	}
	if fset.allows("a.bin") {
		t.Fatalf("a.bin should not match the include pattern")
	}
	if fset.allows("secret.txt") {
		t.Fatalf("secret.txt should be excluded")
	}
}
