package main

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/radyx/radyx/internal/scheduler"
)

// levelPreset mirrors a per-level (dict_size, fast_length) parameter
// table, generalized from LZO's 1..9 levels to -mx{1..12}
// and from byte-copy strategies to LZMA2's bit-model parameters.
type levelPreset struct {
	dictSize   int
	fastLength uint32
}

var levelPresets = map[int]levelPreset{
	1:  {dictSize: 1 << 20, fastLength: 32},
	3:  {dictSize: 1 << 22, fastLength: 32},
	5:  {dictSize: 1 << 24, fastLength: 64},
	7:  {dictSize: 1 << 25, fastLength: 64},
	9:  {dictSize: 1 << 26, fastLength: 128},
	11: {dictSize: 1 << 27, fastLength: 192},
	12: {dictSize: 1 << 27, fastLength: 273},
}

// presetForLevel rounds a level with no table entry down to the
// nearest defined preset, the way a per-level table commonly falls back
// for levels it has no dedicated row for.
func presetForLevel(level int) levelPreset {
	best, bestLevel := levelPresets[1], 1
	for l, p := range levelPresets {
		if l <= level && l >= bestLevel {
			best, bestLevel = p, l
		}
	}
	return best
}

// parseSizeSuffix parses a decimal size with an optional k/m/g suffix,
// as -md{N}[kmg] and -ms{size} accept.
func parseSizeSuffix(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}
	mult := uint64(1)
	switch s[len(s)-1] {
	case 'k', 'K':
		mult = 1 << 10
		s = s[:len(s)-1]
	case 'm', 'M':
		mult = 1 << 20
		s = s[:len(s)-1]
	case 'g', 'G':
		mult = 1 << 30
		s = s[:len(s)-1]
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return n * mult, nil
}

// solidPolicy is the result of parsing -ms[=...]: a composition of
// off/on/Nf/Nb|k|m|g/e joined by '|'.
type solidPolicy struct {
	disabled bool
	fileCap  int
	sizeCap  uint64
	byExt    bool
}

func parseSolidPolicy(s string) (solidPolicy, error) {
	var p solidPolicy
	if s == "" || s == "on" {
		return p, nil
	}
	if s == "off" {
		p.disabled = true
		return p, nil
	}
	for _, part := range strings.Split(s, "|") {
		part = strings.TrimSpace(part)
		switch {
		case part == "e":
			p.byExt = true
		case strings.HasSuffix(part, "f"):
			n, err := strconv.Atoi(strings.TrimSuffix(part, "f"))
			if err != nil {
				return p, fmt.Errorf("invalid solid file-count %q: %w", part, err)
			}
			p.fileCap = n
		case part != "":
			n, err := parseSizeSuffix(strings.TrimSuffix(part, "b"))
			if err != nil {
				return p, fmt.Errorf("invalid solid size %q: %w", part, err)
			}
			p.sizeCap = n
		}
	}
	return p, nil
}

// resolveThreadCount turns -mmt[-|N] into a concrete worker count: "-"
// means single-threaded, a bare flag with no value means
// GOMAXPROCS-wide, and a number is used directly.
func resolveThreadCount(raw string) int {
	switch raw {
	case "", "on":
		return runtime.GOMAXPROCS(0)
	case "-", "off":
		return 1
	}
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}

// applyLevel seeds opts with the -mx preset, to be overridden by any
// more specific -m* flag the caller also passed.
func applyLevel(opts *scheduler.Options, level int) {
	p := presetForLevel(level)
	opts.DictionarySize = p.dictSize
	opts.FastLength = p.fastLength
}
