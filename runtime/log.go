package runtime

import "fmt"

// Errorf is a global diagnostic hook a host can set during init() to route
// runtime warnings somewhere other than stdout, where they go while it is
// nil; cmd/symcc-run sets it to write to the configured log file. This is
// the same pattern vm/log.go uses for bytecode diagnostics.
var Errorf func(f string, args ...any)

func warnf(f string, args ...any) {
	if Errorf != nil {
		Errorf(f, args...)
		return
	}
	fmt.Printf("symcc: "+f+"\n", args...)
}
