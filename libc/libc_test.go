package libc

import (
	"testing"

	"github.com/symcc-go/symcc/config"
	"github.com/symcc-go/symcc/runtime"
)

func newTestLibc(t *testing.T, cfg *config.Config) (*Libc, *runtime.Runtime) {
	t.Helper()
	if cfg.OutputDir == "" {
		cfg.OutputDir = t.TempDir()
	}
	if cfg.GCThreshold == 0 {
		cfg.GCThreshold = config.DefaultGCThreshold
	}
	rt := runtime.New(cfg)
	return New(rt), rt
}

func TestReadFromStdinFillsSymbolicInput(t *testing.T) {
	l, rt := newTestLibc(t, &config.Config{InputSource: config.InputStdin})
	l.Read(0, 0x1000, 4, []byte{'a', 'b', 'c', 'd'})
	if rt.Memory.IsConcrete(0x1000, 4) {
		t.Fatalf("expected fd 0 reads to be symbolic under the default stdin input source")
	}
}

func TestReadFromUnrelatedFDConcretizes(t *testing.T) {
	l, rt := newTestLibc(t, &config.Config{InputSource: config.InputNone})
	fd := l.Open("/etc/hostname")
	l.Read(fd, 0x2000, 4, []byte{1, 2, 3, 4})
	if !rt.Memory.IsConcrete(0x2000, 4) {
		t.Fatalf("expected a non-input descriptor's read to concretize shadow memory")
	}
}

func TestOpenLatchesConfiguredInputFile(t *testing.T) {
	l, rt := newTestLibc(t, &config.Config{InputSource: config.InputFile, InputFile: "in.bin"})
	fd := l.Open("in.bin")
	l.Read(fd, 0x3000, 2, []byte{7, 8})
	if rt.Memory.IsConcrete(0x3000, 2) {
		t.Fatalf("expected the latched input file's reads to be symbolic")
	}
	other := l.Open("/dev/null")
	l.Read(other, 0x4000, 2, []byte{9, 9})
	if !rt.Memory.IsConcrete(0x4000, 2) {
		t.Fatalf("expected an unrelated path's reads to stay concrete")
	}
}

func TestLseekAdvancesInputCursor(t *testing.T) {
	l, rt := newTestLibc(t, &config.Config{InputSource: config.InputStdin})
	l.Lseek(0, 10, SeekSet)
	l.Read(0, 0x5000, 1, []byte{'z'})

	got := rt.ReadMemory(0x5000, 1, true, []byte{'z'})
	if got == nil || len(got.Args) != 1 {
		t.Fatalf("expected a single-byte extract of an input-byte node, got %v", got)
	}
	offset, ok := got.Args[0].Imm.(int)
	if !ok || offset != 10 {
		t.Fatalf("Lseek(10) then Read landed on input offset %v, want 10", got.Args[0].Imm)
	}
}

func TestNtohlSwapsOnLittleEndianHost(t *testing.T) {
	l, rt := newTestLibc(t, &config.Config{})
	sym := rt.GetInputByte(0, 0x12)
	wide := rt.BuildZext(sym, 32)
	swapped := l.Ntohl(wide)
	if swapped == nil {
		t.Fatalf("expected a symbolic bswap node")
	}
}

func TestMemcmpPushesConjunctionConstraint(t *testing.T) {
	l, rt := newTestLibc(t, &config.Config{InputSource: config.InputStdin})
	var got []byte
	rt.SetTestCaseHandler(func(b []byte) { got = append([]byte(nil), b...) })

	l.Read(0, 0x6000, 2, []byte{'h', 'i'})
	l.Memcmp(0x6000, 0x7000, 2, []byte{'h', 'i'}, []byte{'x', 'y'}, -1, 1)

	if got == nil {
		t.Fatalf("expected memcmp's negative-result branch to mine an equal-bytes test case")
	}
}

func TestStrchrPushesInequalityPerByte(t *testing.T) {
	l, rt := newTestLibc(t, &config.Config{InputSource: config.InputStdin})
	var got []byte
	rt.SetTestCaseHandler(func(b []byte) { got = append([]byte(nil), b...) })

	l.Read(0, 0x8000, 3, []byte{'a', 'b', 'c'})
	// real strchr(..., 'z') scanned all 3 bytes without finding 'z'
	l.Strchr(0x8000, 'z', []byte{'a', 'b', 'c'}, -1, 2)

	if got == nil {
		t.Fatalf("expected at least one byte's inequality constraint to mine a test case")
	}
}
