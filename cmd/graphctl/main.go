// Command graphctl applies mutation batches, runs read-only queries and
// maintains indexes without going through the HTTP API.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/openshift-hyperfleet/kartograph-sub001/internal/graphctl"
)

func main() {
	_ = godotenv.Load(".env")

	if err := graphctl.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
