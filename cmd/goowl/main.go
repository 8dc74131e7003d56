// Command goowl writes ownership and lifetime facts of Go functions as JSON
// records for visualization tools.
package main

import (
	"os"

	"github.com/mpyw/goowl/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
