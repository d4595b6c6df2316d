// main is the entry point of the provstats CLI.
package main

import (
	"github.com/huangsam/provstats/cmd"
	"github.com/huangsam/provstats/internal/contract"
)

func main() {
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("provstats", err)
	}
}
