package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/connectivity"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/document"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/router"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/topology"
)

// check flags
var (
	sourcePairs []string
	checkJSON   bool
)

var checkCmd = &cobra.Command{
	Use:   "check <document>",
	Short: "Report whether a drawing forms a closed powered loop",
	Long: `Load a circuit document, rebuild its connectivity and report the completion
status, connected components, open wire endpoints and independent loops.

A power source is given as the ids of its two terminal nodes. Without one,
any connected group of two or more nodes counts as powered.

Examples:
  otc check board.json
  otc check board.csx --source pinA:pinB
  otc check --json board.json`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

var connectedCmd = &cobra.Command{
	Use:   "connected <document> <nodeA> <nodeB>",
	Short: "Report whether two nodes share a connected path",
	Args:  cobra.ExactArgs(3),
	RunE:  runConnected,
}

// draw flags
var (
	drawFrom   string
	drawTo     string
	drawMode   string
	drawInvert bool
	drawOutput string
)

var drawCmd = &cobra.Command{
	Use:   "draw <document>",
	Short: "Draw one wire into a document",
	Long: `Run a press, move and release gesture through the wire router and save the
result. The start and end snap to nearby nodes and wires, crossings become
junctions and close nodes are merged, exactly as in the interactive editor.

A missing document is created.

Examples:
  otc draw board.json --from 0,0 --to 100,50
  otc draw board.json --from 0,0 --to 100,50 --mode schematic --invert
  otc draw board.json --from 0,0 --to 200,0 --mode routing -o routed.csx`,
	Args: cobra.ExactArgs(1),
	RunE: runDraw,
}

var migrateOutput string

var migrateCmd = &cobra.Command{
	Use:   "migrate <legacy.json>",
	Short: "Convert a bare-polyline drawing to the current document format",
	Args:  cobra.ExactArgs(1),
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(checkCmd, connectedCmd, drawCmd, migrateCmd)

	checkCmd.Flags().StringSliceVarP(&sourcePairs, "source", "s", nil,
		"power source terminals as positive:negative node ids")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "print the status as JSON")

	drawCmd.Flags().StringVar(&drawFrom, "from", "", "start point x,y")
	drawCmd.Flags().StringVar(&drawTo, "to", "", "end point x,y")
	drawCmd.Flags().StringVarP(&drawMode, "mode", "m", "",
		"path mode (free, schematic, star, routing); default from config")
	drawCmd.Flags().BoolVar(&drawInvert, "invert", false, "swap the schematic leg order")
	drawCmd.Flags().StringVarP(&drawOutput, "output", "o", "", "output document (default: overwrite input)")
	drawCmd.MarkFlagRequired("from")
	drawCmd.MarkFlagRequired("to")

	migrateCmd.Flags().StringVarP(&migrateOutput, "output", "o", "", "output document (.json or .csx)")
	migrateCmd.MarkFlagRequired("output")
}

func loadCircuit(path string) (*topology.Circuit, *connectivity.AdjacencyGraph, error) {
	d, err := document.Load(path)
	if err != nil {
		return nil, nil, err
	}
	return d.Circuit(cfg.AnalyzerOptions())
}

func runCheck(cmd *cobra.Command, args []string) error {
	c, g, err := loadCircuit(args[0])
	if err != nil {
		return err
	}

	var pairs []connectivity.PowerSourcePair
	for _, s := range sourcePairs {
		pos, neg, ok := strings.Cut(s, ":")
		if !ok {
			return fmt.Errorf("source %q: want positive:negative", s)
		}
		pairs = append(pairs, connectivity.PowerSourcePair{Positive: pos, Negative: neg})
	}

	status := connectivity.CheckCircuitCompletion(c.Wires(), c.Nodes(), pairs, cfg.AnalyzerOptions())
	loops := connectivity.CycleBasis(g)

	out := cmd.OutOrStdout()
	if checkJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			connectivity.CircuitStatus
			Loops [][]string `json:"loops"`
		}{status, loops})
	}

	fmt.Fprintf(out, "%s\n", status.Message)
	fmt.Fprintf(out, "  Nodes: %d  Wires: %d  Connections: %d\n", c.NodeCount(), c.WireCount(), g.EdgeCount())
	fmt.Fprintf(out, "  Closed: %t  Loop: %t  Powered: %t\n", status.IsClosed, status.HasLoop, status.PowerSourceConnected)
	fmt.Fprintf(out, "  Independent loops: %d\n", len(loops))
	fmt.Fprintf(out, "  Components: %d\n", len(status.Components))
	if verbose {
		for i, comp := range status.Components {
			fmt.Fprintf(out, "    %d: %s\n", i+1, strings.Join(comp, " "))
		}
	}
	if len(status.OpenEndpoints) > 0 {
		fmt.Fprintf(out, "  Open endpoints: %s\n", strings.Join(status.OpenEndpoints, " "))
	}
	return nil
}

func runConnected(cmd *cobra.Command, args []string) error {
	c, _, err := loadCircuit(args[0])
	if err != nil {
		return err
	}
	a, b := args[1], args[2]
	for _, id := range []string{a, b} {
		if c.Node(id) == nil {
			return fmt.Errorf("no node %q in %s", id, args[0])
		}
	}
	if connectivity.AreNodesConnected(a, b, c.Wires(), c.Nodes(), cfg.AnalyzerOptions()) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s and %s are connected\n", a, b)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s and %s are not connected\n", a, b)
	return nil
}

func runDraw(cmd *cobra.Command, args []string) error {
	from, err := parsePoint(drawFrom)
	if err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	to, err := parsePoint(drawTo)
	if err != nil {
		return fmt.Errorf("--to: %w", err)
	}
	mode := cfg.RouterMode()
	if drawMode != "" {
		if mode, err = router.ParseMode(drawMode); err != nil {
			return err
		}
	}

	c, _, err := loadCircuit(args[0])
	if errors.Is(err, fs.ErrNotExist) {
		c, err = topology.NewCircuit(), nil
	}
	if err != nil {
		return err
	}

	r := router.New(c, cfg.RouterOptions())
	r.SetMode(mode)
	r.SetInvert(drawInvert)
	if err := r.Start(from); err != nil {
		return err
	}
	if err := r.Move(to); err != nil {
		r.Cancel()
		return err
	}
	res, err := r.Release(to)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if res.Aborted {
		fmt.Fprintln(out, "Wire has no length; nothing drawn")
		return nil
	}
	fmt.Fprintf(out, "Drew %s from %s to %s (%s)\n", res.WireID, res.StartNodeID, res.EndNodeID, mode)
	if len(res.Junctions) > 0 {
		fmt.Fprintf(out, "  Junctions: %s\n", strings.Join(res.Junctions, " "))
	}
	if len(res.Absorbed) > 0 {
		fmt.Fprintf(out, "  Merged: %s\n", strings.Join(res.Absorbed, " "))
	}

	dest := drawOutput
	if dest == "" {
		dest = args[0]
	}
	if err := document.Save(dest, document.FromCircuit(r.Circuit())); err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved %s\n", dest)
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var legacy document.LegacyDocument
	if err := json.Unmarshal(data, &legacy); err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	d := document.Migrate(&legacy)
	if err := document.Save(migrateOutput, d); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d wire(s) with %d anchor(s) to %s\n",
		len(d.Wires), len(d.Nodes), migrateOutput)
	return nil
}
