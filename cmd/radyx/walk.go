package main

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/radyx/radyx/internal/archive"
	"github.com/radyx/radyx/internal/scheduler"
)

// recursion is the -r/-r-/-r0 mode.
type recursion int

const (
	recurseWildcardsOnly recursion = iota // -r0: expand wildcards, no subdirectories
	recurseOn                             // -r: descend into subdirectories
	recurseOff                            // -r-: never descend, even past a bare directory arg
)

// filterSet holds the combined include/exclude name patterns from
// -i@list/-i!pattern/-x@list/-x!pattern.
type filterSet struct {
	include []string // glob patterns; empty means "include everything"
	exclude []string // glob patterns
}

func (flt filterSet) allows(name string) bool {
	if len(flt.include) > 0 {
		ok := false
		for _, p := range flt.include {
			if m, _ := filepath.Match(p, name); m {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, p := range flt.exclude {
		if m, _ := filepath.Match(p, name); m {
			return false
		}
	}
	return true
}

// loadListFile reads one pattern per line from path, as -i@list/-x@list expect.
func loadListFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}

// discoverEntries walks args (files or directories) per mode and
// filters, building one scheduler.Entry per regular file found, with
// RootOffset set so StoredPath strips each file's whole directory
// unless storeFullPaths requests the full path be kept. Without
// storeFullPaths, subdirectories below a walked argument are not kept
// in stored names.
func discoverEntries(args []string, mode recursion, filters filterSet, storeFullPaths bool) ([]scheduler.Entry, error) {
	interner := archive.NewDirInterner()
	var entries []scheduler.Entry

	addFile := func(path string, info fs.FileInfo) {
		if !filters.allows(filepath.Base(path)) {
			return
		}
		dirPath, name := filepath.Split(path)
		d := interner.Intern(dirPath)
		r := &archive.FileRecord{
			Dir:  d,
			Name: name,
			Size: uint64(info.Size()),
		}
		if dot := strings.LastIndexByte(name, '.'); dot > 0 {
			r.ExtOffset = dot + 1
		}
		if !storeFullPaths {
			r.RootOffset = len(dirPath)
		}
		mt := info.ModTime()
		r.ModTime = &mt
		if attr := platformAttributes(info); attr != nil {
			r.Attributes = attr
		}
		scheduler.AssignExtIndex(r)
		entries = append(entries, scheduler.Entry{Record: r})
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			addFile(arg, info)
			continue
		}
		if mode == recurseOff {
			continue
		}
		err = filepath.Walk(arg, func(path string, fi fs.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if fi.IsDir() {
				if path != arg && mode == recurseWildcardsOnly {
					return filepath.SkipDir
				}
				return nil
			}
			addFile(path, fi)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return entries, nil
}
