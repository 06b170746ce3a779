package libc

// SEEK_SET/SEEK_CUR/SEEK_END mirror the POSIX whence constants fseek/lseek
// take; SEEK_END is accepted but does not move the cursor since this
// package has no notion of the underlying file's total size.
const (
	SeekSet = 0
	SeekCur = 1
	SeekEnd = 2
)

// fill is the shared body of read/fread/getc/fgetc/fgets: iff st is the
// symbolic input stream, it advances the stream's cursor and fills
// [addr, addr+n) with fresh input-byte expressions linked to that cursor;
// otherwise it concretizes the touched region, warning first if st is nil
// (an unrecognized descriptor is the "neither input nor concrete" mismatch
// spec §7 item 7 calls out).
func (l *Libc) fill(st *stream, addr uint64, n int, concreteBytes []byte) {
	if st != nil && st.kind == kindInput {
		l.mu.Lock()
		off := st.cursor
		st.cursor += n
		l.mu.Unlock()
		l.rt.MakeSymbolic(addr, n, off, concreteBytes)
		return
	}
	if st == nil {
		warnf("read from unrecognized descriptor at %#x (%d bytes): concretizing", addr, n)
	}
	l.rt.WriteMemory(addr, n, nil, true)
}

// Read implements read_symbolized(fd, buf, n).
func (l *Libc) Read(fd int, addr uint64, n int, concreteBytes []byte) {
	l.fill(l.streamFor(fd), addr, n, concreteBytes)
}

// Fread implements fread_symbolized(stream, buf, n).
func (l *Libc) Fread(handle uintptr, addr uint64, n int, concreteBytes []byte) {
	l.fill(l.streamForHandle(handle), addr, n, concreteBytes)
}

// Getc/Fgetc read a single byte through a raw fd or a FILE* handle.
func (l *Libc) Getc(fd int, addr uint64, concreteByte byte) {
	l.fill(l.streamFor(fd), addr, 1, []byte{concreteByte})
}

func (l *Libc) Fgetc(handle uintptr, addr uint64, concreteByte byte) {
	l.fill(l.streamForHandle(handle), addr, 1, []byte{concreteByte})
}

// Fgets reads up to n bytes (the line actually read by the real fgets,
// including its terminating NUL if the caller included it in concreteBytes)
// through a FILE* handle.
func (l *Libc) Fgets(handle uintptr, addr uint64, concreteBytes []byte) {
	l.fill(l.streamForHandle(handle), addr, len(concreteBytes), concreteBytes)
}

// Lseek/Fseek/Rewind implement spec §4.4's "lseek/fseek/rewind update an
// inputOffset cursor when applied to the input descriptor." Applied to any
// other descriptor they are no-ops from this package's point of view: the
// real seek already happened, and non-input streams carry no cursor.
func (l *Libc) Lseek(fd int, offset int, whence int) {
	l.seek(l.streamFor(fd), offset, whence)
}

func (l *Libc) Fseek(handle uintptr, offset int, whence int) {
	l.seek(l.streamForHandle(handle), offset, whence)
}

func (l *Libc) Rewind(handle uintptr) {
	l.seek(l.streamForHandle(handle), 0, SeekSet)
}

func (l *Libc) seek(st *stream, offset int, whence int) {
	if st == nil || st.kind != kindInput {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	switch whence {
	case SeekSet:
		st.cursor = offset
	case SeekCur:
		st.cursor += offset
	case SeekEnd:
		// total input length is unknown to this package; leave the cursor
		// where it is rather than guess.
	}
}
