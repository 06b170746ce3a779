package config

import "testing"

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadDefaults(t *testing.T) {
	c, err := load(envFrom(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.InputSource != InputStdin {
		t.Fatalf("default input source = %v, want stdin", c.InputSource)
	}
	if c.OutputDir != DefaultOutputDir {
		t.Fatalf("default output dir = %q, want %q", c.OutputDir, DefaultOutputDir)
	}
	if c.GCThreshold != DefaultGCThreshold {
		t.Fatalf("default gc threshold = %d, want %d", c.GCThreshold, DefaultGCThreshold)
	}
	if c.Pruning {
		t.Fatalf("pruning should default to false")
	}
}

func TestLoadInputFile(t *testing.T) {
	c, err := load(envFrom(map[string]string{"SYMCC_INPUT_FILE": "/tmp/seed"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.InputSource != InputFile || c.InputFile != "/tmp/seed" {
		t.Fatalf("got source=%v file=%q", c.InputSource, c.InputFile)
	}
}

func TestLoadMemoryInput(t *testing.T) {
	c, err := load(envFrom(map[string]string{"SYMCC_MEMORY_INPUT": "yes"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.InputSource != InputMemory {
		t.Fatalf("got source=%v, want memory", c.InputSource)
	}
}

func TestLoadNoSymbolicInputWins(t *testing.T) {
	c, err := load(envFrom(map[string]string{
		"SYMCC_NO_SYMBOLIC_INPUT": "1",
		"SYMCC_INPUT_FILE":        "/tmp/seed",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.InputSource != InputNone {
		t.Fatalf("got source=%v, want none", c.InputSource)
	}
}

func TestLoadConflictingInputModes(t *testing.T) {
	_, err := load(envFrom(map[string]string{
		"SYMCC_MEMORY_INPUT": "on",
		"SYMCC_INPUT_FILE":   "/tmp/seed",
	}))
	if err == nil {
		t.Fatalf("expected an error for conflicting input modes")
	}
}

func TestLoadBadFlagValue(t *testing.T) {
	_, err := load(envFrom(map[string]string{"SYMCC_MEMORY_INPUT": "maybe"}))
	if err == nil {
		t.Fatalf("expected an error for an unrecognized flag value")
	}
}

func TestLoadBadGCThreshold(t *testing.T) {
	for _, v := range []string{"not-a-number", "0", "-5"} {
		if _, err := load(envFrom(map[string]string{"SYMCC_GC_THRESHOLD": v})); err == nil {
			t.Fatalf("expected an error for SYMCC_GC_THRESHOLD=%q", v)
		}
	}
}

func TestParseFlagVocabulary(t *testing.T) {
	cases := map[string]bool{
		"1": true, "on": true, "ON": true, "yes": true, "Yes": true,
		"": false, "0": false, "off": false, "no": false,
	}
	for raw, want := range cases {
		got, err := parseFlag("TEST", raw)
		if err != nil {
			t.Fatalf("parseFlag(%q): %v", raw, err)
		}
		if got != want {
			t.Fatalf("parseFlag(%q) = %v, want %v", raw, got, want)
		}
	}
	if _, err := parseFlag("TEST", "maybe"); err == nil {
		t.Fatalf("expected error for unrecognized flag value")
	}
}
