// Idiomatic entrypoint for Cobra CLI that delegates handling to the Cobra root command in cmd/root.go

package main

import (
	"github.com/rail-sim/rail-sim/cmd"
)

func main() {
	cmd.Execute()
}
