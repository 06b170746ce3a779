// Package config loads the process-wide, immutable configuration that
// selects an instrumented program's input source, output locations and
// garbage-collection threshold. It is read once, at runtime initialization,
// from environment variables (see Load) and never mutated afterwards.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// InputKind selects where the instrumented program's symbolic input bytes
// come from.
type InputKind int

const (
	// InputNone means no input is treated as symbolic; the program still
	// runs but get_input_byte never produces a fresh symbol.
	InputNone InputKind = iota
	// InputStdin symbolizes bytes read from file descriptor 0.
	InputStdin
	// InputMemory allows only explicit symcc_make_symbolic calls to
	// introduce symbolic bytes.
	InputMemory
	// InputFile symbolizes bytes read from a named file.
	InputFile
)

func (k InputKind) String() string {
	switch k {
	case InputNone:
		return "none"
	case InputStdin:
		return "stdin"
	case InputMemory:
		return "memory"
	case InputFile:
		return "file"
	default:
		return "invalid"
	}
}

// DefaultOutputDir is used when SYMCC_OUTPUT_DIR is unset.
const DefaultOutputDir = "/tmp/output"

// DefaultGCThreshold is used when SYMCC_GC_THRESHOLD is unset or empty.
const DefaultGCThreshold = 5_000_000

// Config is the process-wide record described in spec §3. It is built once
// by Load and never mutated; callers pass it by value or keep a single
// *Config shared read-only.
type Config struct {
	InputSource InputKind
	InputFile   string // valid only when InputSource == InputFile

	OutputDir       string
	LogFile         string
	Pruning         bool
	CoverageMapPath string
	GCThreshold     int
}

// Load reads the SYMCC_* environment variables documented in spec §6 and
// returns a validated Config, or an error describing the first problem
// found. It never calls os.Exit or panics; the caller decides how to
// surface a configuration error.
func Load() (*Config, error) {
	return load(os.Getenv)
}

// load is the environment-variable-agnostic core of Load, split out so
// tests can supply a fake os.Getenv without mutating the process
// environment.
func load(getenv func(string) string) (*Config, error) {
	c := &Config{
		OutputDir:   DefaultOutputDir,
		GCThreshold: DefaultGCThreshold,
	}

	if v := getenv("SYMCC_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	c.LogFile = getenv("SYMCC_LOG_FILE")
	c.CoverageMapPath = getenv("SYMCC_AFL_COVERAGE_MAP")

	memoryInput, err := parseFlag("SYMCC_MEMORY_INPUT", getenv("SYMCC_MEMORY_INPUT"))
	if err != nil {
		return nil, err
	}
	noSymbolicInput, err := parseFlag("SYMCC_NO_SYMBOLIC_INPUT", getenv("SYMCC_NO_SYMBOLIC_INPUT"))
	if err != nil {
		return nil, err
	}
	pruning, err := parseFlag("SYMCC_ENABLE_LINEARIZATION", getenv("SYMCC_ENABLE_LINEARIZATION"))
	if err != nil {
		return nil, err
	}
	c.Pruning = pruning

	inputFile := getenv("SYMCC_INPUT_FILE")
	if memoryInput && inputFile != "" {
		return nil, fmt.Errorf("config: SYMCC_MEMORY_INPUT and SYMCC_INPUT_FILE are mutually exclusive")
	}

	switch {
	case noSymbolicInput:
		c.InputSource = InputNone
	case memoryInput:
		c.InputSource = InputMemory
	case inputFile != "":
		c.InputSource = InputFile
		c.InputFile = inputFile
	default:
		c.InputSource = InputStdin
	}

	if raw := getenv("SYMCC_GC_THRESHOLD"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("config: invalid SYMCC_GC_THRESHOLD %q: must be a positive integer", raw)
		}
		c.GCThreshold = n
	}

	return c, nil
}

// parseFlag implements the boolean vocabulary from spec §6: "1|on|yes" is
// true, empty or "0|off|no" is false, anything else is a startup error.
func parseFlag(name, raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "on", "yes":
		return true, nil
	case "", "0", "off", "no":
		return false, nil
	default:
		return false, fmt.Errorf("config: invalid value %q for %s (want 1/on/yes or 0/off/no)", raw, name)
	}
}
