// Command symcc-run is the harness binary described in the MODULE MAP:
// it links runtime+libc+solver+instrument the way a real instrumented
// binary would, for local/manual exploration of the reference demo
// programs and for batch seed-corpus replay (spec's supplemented
// corpus-replay feature). It is not a general bitcode loader — the host
// bitcode toolchain is an out-of-scope external collaborator (spec §1) —
// it only ever runs the small set of built-in demo functions in demo.go.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/symcc-go/symcc/config"
	"github.com/symcc-go/symcc/corpus"
	"github.com/symcc-go/symcc/coverage"
	"github.com/symcc-go/symcc/instrument"
	"github.com/symcc-go/symcc/libc"
	"github.com/symcc-go/symcc/runtime"
	"github.com/symcc-go/symcc/testcase"
)

func main() {
	os.Exit(run())
}

func run() int {
	demoName := flag.String("demo", "byte_eq", "built-in demo function to run (see -list)")
	listDemos := flag.Bool("list", false, "list available demo names and exit")
	corpusDir := flag.String("corpus", "", "replay every seed under this directory, feeding mined cases back in, until two dry generations")
	manifestPath := flag.String("manifest", "", "replay every seed named in this corpus.yaml/corpus.json manifest")
	flag.Parse()

	if *listDemos {
		for _, n := range demoNames() {
			fmt.Println(n)
		}
		return 0
	}

	d, ok := demos[*demoName]
	if !ok {
		fmt.Fprintf(os.Stderr, "symcc-run: unknown demo %q (available: %v)\n", *demoName, demoNames())
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "symcc-run: %s\n", err)
		return 1
	}

	closeLog, err := wireLogFile(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "symcc-run: %s\n", err)
		return 1
	}
	if closeLog != nil {
		defer closeLog()
	}

	switch {
	case *corpusDir != "":
		return runCorpus(cfg, *demoName, d, *corpusDir)
	case *manifestPath != "":
		return runManifest(cfg, *demoName, d, *manifestPath)
	default:
		return runOnce(cfg, *demoName, d, os.Stdout)
	}
}

// wireLogFile implements SYMCC_LOG_FILE (spec §6): when set, runtime and
// libc diagnostics (normally fmt.Printf to stdout) are redirected to the
// named file instead, the same Errorf-hook pattern the teacher's vm
// package uses for its own diagnostics.
func wireLogFile(cfg *config.Config) (close func(), err error) {
	if cfg.LogFile == "" {
		return nil, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file %q: %w", cfg.LogFile, err)
	}
	runtime.Errorf = func(format string, args ...any) { fmt.Fprintf(f, format+"\n", args...) }
	libc.Errorf = func(format string, args ...any) { fmt.Fprintf(f, format+"\n", args...) }
	return func() { f.Close() }, nil
}

// newHarness wires one Runtime/Libc/coverage.Map/Interpreter quadruple for
// a single demo run, registering both the libc externals and the demo's
// own constant externals.
func newHarness(cfg *config.Config, demoName string) (*runtime.Runtime, *instrument.Interpreter, *coverage.Map, error) {
	rt := runtime.New(cfg)
	lc := libc.New(rt)
	var cov *coverage.Map
	if cfg.CoverageMapPath != "" {
		cov = coverage.New()
	}
	in := instrument.New(rt, lc, cov)
	if err := registerDemoExternals(in, demoName); err != nil {
		return nil, nil, nil, err
	}
	return rt, in, cov, nil
}

// loadInputBytes reads the configured input source in full: a named file,
// stdin, or (for None/Memory, where get_input_byte is never driven by a
// harness-level read) an empty slice.
func loadInputBytes(cfg *config.Config) ([]byte, error) {
	switch cfg.InputSource {
	case config.InputFile:
		return os.ReadFile(cfg.InputFile)
	case config.InputStdin:
		return io.ReadAll(os.Stdin)
	default:
		return nil, nil
	}
}

// buildArgs turns raw input bytes into a demo's concolic parameter Cells:
// one input byte per parameter slot, symbolized via GetInputByte unless the
// configured input source is None/Memory (in which case the harness itself
// never introduces a symbolic byte, matching spec §3's "no input is treated
// as symbolic" / "only explicit symcc_make_symbolic calls introduce
// symbolic bytes").
func buildArgs(rt *runtime.Runtime, cfg *config.Config, nparams int, raw []byte) []instrument.Cell {
	symbolic := cfg.InputSource == config.InputFile || cfg.InputSource == config.InputStdin
	return buildArgsForced(rt, nparams, raw, symbolic)
}

// buildArgsForced is buildArgs without the InputSource gate, for the
// -corpus/-manifest replay modes: a seed file is always the symbolic input,
// regardless of which input source is configured for a single -demo run.
func buildArgsForced(rt *runtime.Runtime, nparams int, raw []byte, symbolic bool) []instrument.Cell {
	args := make([]instrument.Cell, nparams)
	for i := 0; i < nparams; i++ {
		var b byte
		if i < len(raw) {
			b = raw[i]
		}
		if symbolic {
			args[i] = instrument.Cell{Concrete: uint64(b), Sym: rt.GetInputByte(i, b)}
		} else {
			args[i] = instrument.Cell{Concrete: uint64(b)}
		}
	}
	return args
}

func runOnce(cfg *config.Config, demoName string, d demo, out io.Writer) int {
	rt, in, cov, err := newHarness(cfg, demoName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "symcc-run: %s\n", err)
		return 1
	}

	raw, err := loadInputBytes(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "symcc-run: reading input: %s\n", err)
		return 1
	}

	var mined int
	rt.SetTestCaseHandler(func(bytes []byte) { mined++ })

	fn := d.build()
	args := buildArgs(rt, cfg, len(d.params), raw)

	result, err := in.Run(fn, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "symcc-run: %s\n", err)
		return 1
	}

	fmt.Fprintf(out, "demo=%s result=%#x mined_test_cases=%d\n", demoName, result.Concrete, mined)
	if cov != nil {
		fmt.Fprintf(out, "coverage_edges=%d\n", cov.HitCount())
		if err := cov.Save(cfg.CoverageMapPath); err != nil {
			fmt.Fprintf(os.Stderr, "symcc-run: saving coverage map: %s\n", err)
			return 1
		}
	}
	return 0
}

// runCorpus drains -corpus dir through the chosen demo, feeding every
// newly mined test case back into the queue (the batch replay driver from
// SUPPLEMENTED FEATURES item 2).
func runCorpus(cfg *config.Config, demoName string, d demo, dir string) int {
	q, err := corpus.NewQueue(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "symcc-run: %s\n", err)
		return 1
	}

	replay := func(seed string) ([]string, error) {
		raw, err := os.ReadFile(seed)
		if err != nil {
			return nil, fmt.Errorf("reading seed %q: %w", seed, err)
		}
		rt, in, _, err := newHarness(cfg, demoName)
		if err != nil {
			return nil, err
		}
		var newPaths []string
		store := testcase.NewStore(dir)
		rt.SetTestCaseHandler(func(bytes []byte) {
			path, created, err := store.Save(bytes)
			if err != nil {
				fmt.Fprintf(os.Stderr, "symcc-run: saving mined case: %s\n", err)
				return
			}
			if created {
				newPaths = append(newPaths, path)
			}
		})

		fn := d.build()
		args := buildArgsForced(rt, len(d.params), raw, true)
		if _, err := in.Run(fn, args); err != nil {
			return nil, fmt.Errorf("replaying seed %q: %w", seed, err)
		}
		return newPaths, nil
	}

	stats, err := corpus.Drain(q, replay)
	if err != nil {
		fmt.Fprintf(os.Stderr, "symcc-run: %s\n", err)
		return 1
	}
	fmt.Printf("generations=%d replayed=%d discovered=%d\n", stats.Generations, stats.Replayed, stats.Discovered)
	return 0
}

// runManifest replays every seed named in a corpus.yaml/corpus.json
// manifest and reports whether each one ran without error; it does not
// (yet) check ExpectSiteID/ExpectPolarity against the run, since doing so
// needs a call-site-indexed trace this harness does not currently record.
func runManifest(cfg *config.Config, demoName string, d demo, manifestPath string) int {
	m, err := corpus.LoadManifest(manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "symcc-run: %s\n", err)
		return 1
	}

	failures := 0
	for _, seed := range m.Seeds {
		raw, err := os.ReadFile(seed.Path)
		if err != nil {
			fmt.Printf("FAIL %s: %s\n", seed.Path, err)
			failures++
			continue
		}
		rt, in, _, err := newHarness(cfg, demoName)
		if err != nil {
			fmt.Printf("FAIL %s: %s\n", seed.Path, err)
			failures++
			continue
		}
		fn := d.build()
		args := buildArgsForced(rt, len(d.params), raw, true)
		if _, err := in.Run(fn, args); err != nil {
			fmt.Printf("FAIL %s: %s\n", seed.Path, err)
			failures++
			continue
		}
		fmt.Printf("OK   %s (%s)\n", seed.Path, seed.Description)
	}
	if failures > 0 {
		return 1
	}
	return 0
}
