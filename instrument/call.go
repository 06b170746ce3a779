package instrument

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/symcc-go/symcc/libc"
	"github.com/symcc-go/symcc/ssair"
)

// execCall implements spec §4.5's call/invoke row: notify_call before the
// call, set_parameter_expression for each argument, clear_return_expression,
// dispatch to the external, then set_return_expression/get_return_expression
// and notify_ret after it returns. OpInvoke is treated identically to
// OpCall in this interpreter: the landing-pad edge an invoke's unwind target
// would take is out of scope (OpLandingPad/OpResume are unreachable here —
// there is no exception unwinding to simulate without a native ABI).
func (in *Interpreter) execCall(inst *ssair.Value, env map[*ssair.Value]Cell) (Cell, error) {
	name, ok := inst.Imm.(string)
	if !ok {
		return Cell{}, fmt.Errorf("instrument: call instruction has no target name")
	}
	fn, ok := in.externals[name]
	if !ok {
		known := maps.Keys(in.externals)
		slices.Sort(known)
		return Cell{}, fmt.Errorf("instrument: call to unregistered external %q (registered: %v)", name, known)
	}

	args := make([]Cell, len(inst.Args))
	for i, a := range inst.Args {
		c := env[a]
		args[i] = c
		in.RT.SetParameterExpression(i, c.Sym)
	}
	in.RT.ClearReturnExpression()

	siteID := in.nextSite()
	in.RT.NotifyCall(siteID)
	result := fn(in, args)
	in.RT.SetReturnExpression(result.Sym)
	in.RT.NotifyRet(siteID)

	return Cell{Concrete: result.Concrete, Sym: in.RT.GetReturnExpression()}, nil
}

// registerLibcExternals wires the predictably-named symbolic libc wrappers
// (spec §4.4) as call targets, so instrumented code that calls e.g. "memcpy"
// drives libc.Libc the same way the real rewritten native call site would.
// Each wrapper performs the concrete operation itself (there is no separate
// real libc call happening elsewhere to observe the result of, unlike the
// production pass this interpreter stands in for) and then reports it to
// Libc for shadow-state bookkeeping.
//
// The file-descriptor family (open/read/fopen/fread/seek/...) is exercised
// directly by libc_test.go instead of through this table: filling a real
// input stream's bytes requires a concrete I/O source this interpreter has
// no notion of, so wiring it here would mean fabricating input data rather
// than exercising the wrapper.
func registerLibcExternals(in *Interpreter) {
	in.RegisterExternal("malloc", func(in *Interpreter, args []Cell) Cell {
		size := args[0]
		addr := in.alloc(int(size.Concrete))
		in.Lc.Malloc(size.Sym, size.Concrete, in.nextSite())
		return concrete(addr)
	})

	in.RegisterExternal("mmap", func(in *Interpreter, args []Cell) Cell {
		length := args[len(args)-1]
		addr := in.alloc(int(length.Concrete))
		in.Lc.Mmap(length.Sym, length.Concrete, in.nextSite())
		return concrete(addr)
	})

	in.RegisterExternal("memcpy", func(in *Interpreter, args []Cell) Cell {
		dst, src, n := args[0], args[1], int(args[2].Concrete)
		data := in.readConcrete(src.Concrete, n)
		in.writeConcrete(dst.Concrete, data)
		in.Lc.Memcpy(dst.Concrete, src.Concrete, dst.Sym, src.Sym, dst.Concrete, src.Concrete, n, in.nextSite())
		return dst
	})

	in.RegisterExternal("memmove", func(in *Interpreter, args []Cell) Cell {
		dst, src, n := args[0], args[1], int(args[2].Concrete)
		data := in.readConcrete(src.Concrete, n)
		in.writeConcrete(dst.Concrete, data)
		in.Lc.Memmove(dst.Concrete, src.Concrete, dst.Sym, src.Sym, dst.Concrete, src.Concrete, n, in.nextSite())
		return dst
	})

	in.RegisterExternal("strncpy", func(in *Interpreter, args []Cell) Cell {
		dst, src, n := args[0], args[1], int(args[2].Concrete)
		data := in.readConcrete(src.Concrete, n)
		in.writeConcrete(dst.Concrete, data)
		in.Lc.Strncpy(dst.Concrete, src.Concrete, dst.Sym, src.Sym, dst.Concrete, src.Concrete, n, in.nextSite())
		return dst
	})

	in.RegisterExternal("memset", func(in *Interpreter, args []Cell) Cell {
		dst, val, n := args[0], args[1], int(args[2].Concrete)
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(val.Concrete)
		}
		in.writeConcrete(dst.Concrete, data)
		in.Lc.Memset(dst.Concrete, dst.Sym, dst.Concrete, val.Sym, n, in.nextSite())
		return dst
	})

	in.RegisterExternal("bzero", func(in *Interpreter, args []Cell) Cell {
		dst, n := args[0], int(args[1].Concrete)
		in.writeConcrete(dst.Concrete, make([]byte, n))
		in.Lc.Bzero(dst.Concrete, dst.Sym, dst.Concrete, n, in.nextSite())
		return Cell{}
	})

	in.RegisterExternal("memcmp", func(in *Interpreter, args []Cell) Cell {
		return concrete(uint64(in.compareMemory(args)))
	})
	in.RegisterExternal("bcmp", func(in *Interpreter, args []Cell) Cell {
		return concrete(uint64(in.compareMemory(args)))
	})

	in.RegisterExternal("strchr", func(in *Interpreter, args []Cell) Cell {
		addr, c := args[0], byte(args[1].Concrete)
		const maxScan = 4096
		var scanned []byte
		foundIndex := -1
		for i := 0; i < maxScan; i++ {
			b := in.readConcrete(addr.Concrete+uint64(i), 1)[0]
			scanned = append(scanned, b)
			if b == c {
				foundIndex = i
				break
			}
			if b == 0 {
				break
			}
		}
		in.Lc.Strchr(addr.Concrete, c, scanned, foundIndex, in.nextSite())
		if foundIndex < 0 {
			return Cell{}
		}
		return concrete(addr.Concrete + uint64(foundIndex))
	})

	in.RegisterExternal("ntohl", func(in *Interpreter, args []Cell) Cell {
		v := args[0]
		sym := in.Lc.Ntohl(v.Sym)
		c := uint32(v.Concrete)
		if libc.HostLittleEndian {
			c = bswap32(c)
		}
		return Cell{Concrete: uint64(c), Sym: sym}
	})
}

func (in *Interpreter) compareMemory(args []Cell) int32 {
	a, b, n := args[0], args[1], int(args[2].Concrete)
	bytes1 := in.readConcrete(a.Concrete, n)
	bytes2 := in.readConcrete(b.Concrete, n)
	result := int32(0)
	for i := 0; i < n; i++ {
		if bytes1[i] != bytes2[i] {
			result = int32(bytes1[i]) - int32(bytes2[i])
			break
		}
	}
	in.Lc.Memcmp(a.Concrete, b.Concrete, n, bytes1, bytes2, int(result), in.nextSite())
	return result
}

func bswap32(v uint32) uint32 {
	return v<<24 | (v&0xff00)<<8 | (v>>8)&0xff00 | v>>24
}
