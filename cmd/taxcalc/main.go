// Command taxcalc computes slab-based income tax from the command line using
// the same configuration as the tax service.
//
// Usage:
//
//	taxcalc calculate --salary 1200000 --deductions 50000
//	taxcalc calculate --salary 1200000 --json
//	taxcalc slabs
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
