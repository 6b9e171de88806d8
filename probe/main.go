// Command probe is linked into an instrumented binary by the covregion tool.
// It queries the counter region accessors, checks the region invariants from
// inside the instrumented process, and prints a single report line for the
// parent tool to verify. Instrumented packages are linked in through a
// generated imports.go, so their init-time counters land in the region
// before the report is taken.
package main

import (
	"fmt"
	"log"
	"os"
)

func main() {
	rep, err := buildReport()
	if err != nil {
		log.Fatalf("probe: %v", err)
	}
	fmt.Fprintln(os.Stdout, rep.format())
}
