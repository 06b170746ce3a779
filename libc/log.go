package libc

import "fmt"

// Errorf lets a host reroute libc-wrapper diagnostics the same way
// runtime.Errorf does, instead of the fmt.Printf fallback below.
var Errorf func(f string, args ...any)

func warnf(f string, args ...any) {
	if Errorf != nil {
		Errorf(f, args...)
		return
	}
	fmt.Printf("symcc: libc: "+f+"\n", args...)
}
