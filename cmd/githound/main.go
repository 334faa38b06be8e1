// Command githound is a thin demonstration binary wiring the search
// orchestration engine, incremental indexer, and ranking pipeline together.
// It is not a production CLI façade for the engine.
package main

import (
	"fmt"
	"os"

	"github.com/Aman-CERP/githound-engine/cmd/githound/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
