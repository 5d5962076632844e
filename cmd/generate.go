package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/drt/sim/generator"
)

var (
	genCfg generator.Config
	genOut string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a random demand scenario on a grid network",
	Args:  cobra.NoArgs,
	RunE:  generateScenario,
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&genCfg.Name, "name", "", "scenario name")
	f.StringVar(&genCfg.Mode, "mode", "", "transport mode served by the taxis")
	f.IntVar(&genCfg.Rows, "rows", 0, "grid rows")
	f.IntVar(&genCfg.Cols, "cols", 0, "grid columns")
	f.IntVar(&genCfg.Taxis, "taxis", 2, "number of taxis")
	f.IntVar(&genCfg.Passengers, "passengers", 20, "number of passengers")
	f.Float64Var(&genCfg.HorizonSeconds, "horizon", 0, "departures are spread over this many seconds")
	f.Float64Var(&genCfg.PrebookShare, "prebook", 0.3, "share of passengers booking in advance")
	f.Int64Var(&genCfg.Seed, "seed", 1, "random seed")
	f.StringVarP(&genOut, "output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(generateCmd)
}

func generateScenario(cmd *cobra.Command, _ []string) error {
	g, err := generator.New(genCfg)
	if err != nil {
		return err
	}
	var w io.Writer = cmd.OutOrStdout()
	if genOut != "" {
		f, err := os.Create(genOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", genOut, err)
		}
		defer f.Close()
		w = f
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(g.Generate()); err != nil {
		return err
	}
	return enc.Close()
}
