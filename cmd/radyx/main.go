package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/radyx/radyx/internal/interrupt"
	"github.com/radyx/radyx/internal/logging"
	"github.com/radyx/radyx/internal/progress"
	"github.com/radyx/radyx/internal/radyxerr"
	"github.com/radyx/radyx/internal/scheduler"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	flag := &interrupt.Flag{}
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sig:
			flag.Set()
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sig)
	}()

	app := &cli.App{
		Name:                   "radyx",
		Usage:                  "multi-threaded LZMA2/7z archiver",
		UseShortOptionHandling: true,
		Commands: []*cli.Command{
			newCmd_Add(flag),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "radyx:", err)
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, radyxerr.ErrInvalidArgument):
		return 2
	case errors.Is(err, radyxerr.ErrInterrupted):
		return 130
	default:
		return 1
	}
}

func newCmd_Add(flag *interrupt.Flag) *cli.Command {
	return &cli.Command{
		Name:      "a",
		Usage:     "add files to a new 7z archive",
		ArgsUsage: "archive.7z file1 [file2 ...]",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "mx", Value: 5, Usage: "compression level preset (1..12)"},
			&cli.StringFlag{Name: "md", Usage: "dictionary size, e.g. 64m"},
			&cli.StringFlag{Name: "mfb", Usage: "fast length"},
			&cli.StringFlag{Name: "mmt", Usage: "thread count: N, -, or omitted for all cores"},
			&cli.StringFlag{Name: "mlc", Value: "3", Usage: "number of literal context bits"},
			&cli.StringFlag{Name: "mlp", Value: "0", Usage: "number of literal position bits"},
			&cli.StringFlag{Name: "mpb", Value: "2", Usage: "number of position bits"},
			&cli.StringFlag{Name: "mo", Usage: "block overlap, log2 of bytes (1..14)"},
			&cli.StringFlag{Name: "mf", Value: "BCJ", Usage: "filter: on, off, or BCJ"},
			&cli.BoolFlag{Name: "mtc", Usage: "store creation time"},
			&cli.StringFlag{Name: "ms", Usage: "solid-unit policy: off, on, Nf, Nb|k|m|g, e, or a | composition"},
			&cli.StringSliceFlag{Name: "i-list", Usage: "file of include patterns (-i@list)"},
			&cli.StringSliceFlag{Name: "i-pattern", Usage: "include pattern (-i!pattern)"},
			&cli.StringSliceFlag{Name: "x-list", Usage: "file of exclude patterns (-x@list)"},
			&cli.StringSliceFlag{Name: "x-pattern", Usage: "exclude pattern (-x!pattern)"},
			&cli.StringFlag{Name: "r", Value: "on", Usage: "recursion: on, off, or wildcards-only (r0)"},
			&cli.BoolFlag{Name: "spf", Usage: "store full paths instead of stripping each file's directory"},
			&cli.BoolFlag{Name: "q", Usage: "quiet: suppress the progress meter"},
		},
		Action: func(c *cli.Context) error {
			return runAdd(c, flag)
		},
	}
}

func runAdd(c *cli.Context, intr *interrupt.Flag) error {
	args := c.Args().Slice()
	if len(args) < 2 {
		return radyxerr.WithPath(radyxerr.ErrInvalidArgument, "usage: radyx a archive.7z file...")
	}
	outPath, inputs := args[0], args[1:]

	if _, err := os.Stat(outPath); err == nil {
		return radyxerr.WithPath(radyxerr.ErrArchiveExists, outPath)
	}

	opts := scheduler.DefaultOptions()
	applyLevel(&opts, c.Int("mx"))

	if v := c.String("md"); v != "" {
		n, err := parseSizeSuffix(v)
		if err != nil {
			return radyxerr.WithPath(radyxerr.ErrInvalidArgument, v)
		}
		opts.DictionarySize = int(n)
	}
	if v := c.String("mfb"); v != "" {
		n, err := parseSizeSuffix(v)
		if err != nil {
			return radyxerr.WithPath(radyxerr.ErrInvalidArgument, v)
		}
		opts.FastLength = uint32(n)
	}
	opts.ThreadCount = resolveThreadCount(c.String("mmt"))
	if v := c.String("mlc"); v != "" {
		if n, err := parseUintFlag(v); err == nil {
			opts.LC = n
		}
	}
	if v := c.String("mlp"); v != "" {
		if n, err := parseUintFlag(v); err == nil {
			opts.LP = n
		}
	}
	if v := c.String("mpb"); v != "" {
		if n, err := parseUintFlag(v); err == nil {
			opts.PB = n
		}
	}
	if v := c.String("mo"); v != "" {
		if n, err := parseUintFlag(v); err == nil {
			opts.BlockOverlap = 1 << n
		}
	}
	switch c.String("mf") {
	case "off":
		opts.UseBCJ = false
	default:
		opts.UseBCJ = true
	}
	opts.StoreCreateTime = c.Bool("mtc")
	opts.StoreFullPaths = c.Bool("spf")
	opts.Interrupt = intr

	if v := c.String("ms"); v != "" {
		policy, err := parseSolidPolicy(v)
		if err != nil {
			return radyxerr.WithPath(radyxerr.ErrInvalidArgument, v)
		}
		if policy.disabled {
			opts.SolidUnitSize = 0
			opts.SolidFileCount = 0
		}
		if policy.fileCap > 0 {
			opts.SolidFileCount = policy.fileCap
		}
		if policy.sizeCap > 0 {
			opts.SolidUnitSize = policy.sizeCap
		}
		opts.SolidByExt = policy.byExt
	}

	mode := recurseOn
	switch c.String("r") {
	case "off", "-":
		mode = recurseOff
	case "0":
		mode = recurseWildcardsOnly
	}

	filters, err := buildFilterSet(c)
	if err != nil {
		return err
	}

	entries, err := discoverEntries(inputs, mode, filters, opts.StoreFullPaths)
	if err != nil {
		return radyxerr.WithPath(radyxerr.ErrIoOpen, err.Error())
	}
	entries, err = scheduler.Prepare(entries, opts.StoreFullPaths)
	if err != nil {
		return err
	}

	log := logging.New()
	var meter progress.Meter = progress.NoOp{}
	var totalBytes int64
	for _, e := range entries {
		totalBytes += int64(e.Record.Size)
	}
	if !c.Bool("q") {
		meter = progress.New(os.Stderr, totalBytes)
	}

	session := scheduler.NewSession(opts, log, meter)
	if err := session.Run(entries, outPath); err != nil {
		return err
	}
	meter.Finish()
	log.Summary()

	var outBytes uint64
	if fi, statErr := os.Stat(outPath); statErr == nil {
		outBytes = uint64(fi.Size())
	}
	fmt.Println(progress.FormatSummary(len(entries), uint64(totalBytes), outBytes))
	return nil
}

func buildFilterSet(c *cli.Context) (filterSet, error) {
	var fset filterSet
	fset.include = append(fset.include, c.StringSlice("i-pattern")...)
	fset.exclude = append(fset.exclude, c.StringSlice("x-pattern")...)
	for _, listPath := range c.StringSlice("i-list") {
		pats, err := loadListFile(listPath)
		if err != nil {
			return fset, radyxerr.WithPath(radyxerr.ErrIoOpen, listPath)
		}
		fset.include = append(fset.include, pats...)
	}
	for _, listPath := range c.StringSlice("x-list") {
		pats, err := loadListFile(listPath)
		if err != nil {
			return fset, radyxerr.WithPath(radyxerr.ErrIoOpen, listPath)
		}
		fset.exclude = append(fset.exclude, pats...)
	}
	return fset, nil
}

func parseUintFlag(s string) (uint32, error) {
	var n uint32
	_, err := fmt.Sscanf(s, "%d", &n)
	return n, err
}
