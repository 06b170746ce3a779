// Package libc implements the symbolic libc wrapper layer from spec §4.4:
// predictably-named shims (malloc_symbolized, read_symbolized, ...) that the
// instrumentation pass redirects calls to. Each wrapper follows the same
// three-step shape the spec lays out: assert-and-mine on any symbolic
// pointer/size argument via runtime.TryAlternative, let the caller perform
// the real libc call on concrete values (this package never touches actual
// memory or file descriptors itself), then update shadow state to reflect
// what the call did.
package libc

import (
	"sync"

	"github.com/symcc-go/symcc/config"
	"github.com/symcc-go/symcc/runtime"
)

// PointerBits is the pointer/size-argument width tryAlternative asserts
// equality over; the reference target is a 64-bit host.
const PointerBits = 64

// streamKind classifies a file descriptor or FILE* handle: either it is the
// configured symbolic input source, or it is concrete and reads through it
// only concretize shadow memory.
type streamKind int

const (
	kindConcrete streamKind = iota
	kindInput
)

type stream struct {
	kind   streamKind
	cursor int
}

// Libc holds the descriptor/handle bookkeeping the wrapper layer needs on
// top of runtime.Runtime: which open files are "the input" for the purposes
// of get_input_byte, and each one's current inputOffset cursor.
type Libc struct {
	rt *runtime.Runtime

	mu         sync.Mutex
	fds        map[int]*stream
	nextFD     int
	handles    map[uintptr]*stream
	nextHandle uintptr
}

// New wraps rt, seeding file descriptor 0 as the symbolic input source iff
// the runtime's configured input source is stdin (spec §6's default).
func New(rt *runtime.Runtime) *Libc {
	l := &Libc{
		rt:         rt,
		fds:        make(map[int]*stream),
		nextFD:     3,
		handles:    make(map[uintptr]*stream),
		nextHandle: 1,
	}
	st := &stream{kind: kindConcrete}
	if rt.Config().InputSource == config.InputStdin {
		st.kind = kindInput
	}
	l.fds[0] = st
	return l
}

// Open implements open_symbolized(path): latches the returned descriptor as
// the symbolic input iff the configured input source is a named file and
// path matches it, per spec §4.4 "open/fopen compare the path to the
// configured input filename and latch the descriptor."
func (l *Libc) Open(path string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	fd := l.nextFD
	l.nextFD++
	l.fds[fd] = l.newStreamForPath(path)
	return fd
}

// Fopen is Open's FILE*-handle counterpart for the fopen/fread/fseek/getc
// family; it returns an opaque handle value instead of an int fd.
func (l *Libc) Fopen(path string) uintptr {
	l.mu.Lock()
	defer l.mu.Unlock()
	h := l.nextHandle
	l.nextHandle++
	l.handles[h] = l.newStreamForPath(path)
	return h
}

func (l *Libc) newStreamForPath(path string) *stream {
	cfg := l.rt.Config()
	if cfg.InputSource == config.InputFile && path == cfg.InputFile {
		return &stream{kind: kindInput}
	}
	return &stream{kind: kindConcrete}
}

// Close/Fclose drop a descriptor/handle's bookkeeping; a subsequent read
// through a stale value behaves like an unknown descriptor (concretize and
// warn), matching spec §7 item 7.
func (l *Libc) Close(fd int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.fds, fd)
}

func (l *Libc) Fclose(h uintptr) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.handles, h)
}

func (l *Libc) streamFor(fd int) *stream {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fds[fd]
}

func (l *Libc) streamForHandle(h uintptr) *stream {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.handles[h]
}
