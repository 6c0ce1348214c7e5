package main

import (
	"LandmarkGolang/pkg/catalog"

	cli "github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var modelsCmd = &cli.Command{
	Use:   "models",
	Short: "Print the hosted model catalogue",
	Args:  cli.NoArgs,
	RunE: func(cmd *cli.Command, args []string) error {
		c, err := catalog.Load()
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(c.List())
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
