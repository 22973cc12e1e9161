// Command llamac is the whole-program compiler's entry point: it reads
// source from standard input, runs it through internal/driver, and
// exits 0 on success or 1 on any reported error (§6).
package main

import (
	"os"

	"github.com/ZOrfeas/llamac/internal/driver"
)

func main() {
	os.Exit(driver.Run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
