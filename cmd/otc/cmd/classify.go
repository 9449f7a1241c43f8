package cmd

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/network"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/schematic"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/solver"
)

var classifyJSON bool

var classifyCmd = &cobra.Command{
	Use:   "classify <schematic.ckt>",
	Short: "Classify and solve a text schematic",
	Long: `Parse a schematic description, join touching terminals into nodes and
report whether the network is solvable, shorted, open or unpowered. Solvable
networks print node voltages and element currents.

Example schematic:
  battery B1 9V (0,0) -> (0,100)
  resistor R1 220 (0,100) -> (100,100)
  wire W1 (100,100) -> (100,0)
  switch S1 closed (100,0) -> (0,0)`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "print the result as JSON")
}

func runClassify(cmd *cobra.Command, args []string) error {
	elems, err := schematic.LoadElements(args[0])
	if err != nil {
		return err
	}
	res, err := network.Classify(elems, cfg.NetworkOptions())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if classifyJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Fprintf(out, "Status: %s\n", res.Status)
	if res.Reason != "" {
		fmt.Fprintf(out, "  %s\n", res.Reason)
	}
	if res.Solution == nil {
		return nil
	}

	sol := res.Solution
	fmt.Fprintf(out, "Source power: %s\n", solver.FormatPower(sol.SourcePower))
	fmt.Fprintln(out, "Node voltages:")
	for _, n := range slices.Sorted(maps.Keys(sol.NodeVoltages)) {
		fmt.Fprintf(out, "  %-6s %s\n", n, solver.FormatVoltage(sol.NodeVoltages[n]))
	}
	fmt.Fprintln(out, "Element currents:")
	for _, e := range elems {
		if i, ok := sol.ElementCurrents[e.ID]; ok {
			fmt.Fprintf(out, "  %-6s %-9s %s\n", e.ID, e.Kind, solver.FormatCurrent(i))
		}
	}
	return nil
}
