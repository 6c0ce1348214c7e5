// Command landmarkctl annotates local images from saved detector output,
// without calling any detector.
package main

import (
	"os"

	"LandmarkGolang/pkg/log"

	cli "github.com/spf13/cobra"
)

var rootCmd = &cli.Command{
	Use:           "landmarkctl",
	Short:         "Offline tools for the landmark annotation service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(log.Fields{"error": err.Error()}, "landmarkctl failed")
		os.Exit(1)
	}
}
