// Command symcc-cc is the compiler invocation driver from spec §6: the
// thin boundary around the host bitcode toolchain, which is an
// out-of-scope external collaborator (spec §1). It never parses or
// rewrites bitcode itself; it only decides which real compiler to run and
// forwards every argument unchanged, the way a real symcc-clang/symcc-clang++
// wrapper defers everything except flag-forwarding to the real compiler.
package main

import (
	"fmt"
	"os"
	"os/exec"
)

// defaultCC is used when SYMCC_CC is unset; a real instrumented build
// would point this at a bitcode-capable clang, but picking which compiler
// that is is itself an external-toolchain concern this driver never
// second-guesses.
const defaultCC = "cc"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cc := os.Getenv("SYMCC_CC")
	if cc == "" {
		cc = defaultCC
	}

	cmd := exec.Command(cc, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "symcc-cc: invoking %s: %s\n", cc, err)
		return 1
	}
	return 0
}
