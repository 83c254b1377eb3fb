// main is the entrypoint for the entrain CLI.
package main

import (
	"fmt"
	"os"

	"github.com/entrain-io/entrain/cmd"
	"github.com/entrain-io/entrain/internal/contract"
	"github.com/entrain-io/entrain/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)

	err := cmd.Execute()

	// Cleanup runs before exit so profiles and connections are flushed
	// even when a command fails.
	if perr := cmd.StopProfiling(); perr != nil {
		contract.LogWarn("Failed to stop profiling", perr)
	}
	iocache.CloseStores()

	if err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}
