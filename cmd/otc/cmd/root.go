package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceCircuit/internal/config"
	"github.com/OpenTraceLab/OpenTraceCircuit/internal/logging"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geometry"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// cfg is loaded before every command runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "otc",
	Short: "OpenTraceCircuit - circuit drawing, connectivity and solver tools",
	Long: `OpenTraceCircuit (otc) works with hand-drawn circuit documents:
  - connectivity and completion checks on saved drawings
  - wire drawing with the interactive router's snapping and routing modes
  - DC and AC electrical calculations
  - fault classification of text schematics

Examples:
  otc check board.json                         # Is the loop closed?
  otc draw board.json --from 0,0 --to 100,50   # Add a wire
  otc dc --voltage 12 --resistance 6           # Derive I and P
  otc classify loop.ckt                        # Solve a schematic`,
	Version:           "0.3.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file (default: $"+config.EnvConfigPath+", ./"+config.ConfigFileName+" or ~/.config/otc/config.yaml)")
}

func setup(cmd *cobra.Command, args []string) error {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))

	var (
		path string
		err  error
	)
	if configPath != "" {
		cfg, path, err = config.LoadFromPath(configPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return err
	}
	if path != "" {
		logging.Logger().Debug("config loaded", "path", path)
	}
	return nil
}

// parsePoint reads an "x,y" flag value.
func parsePoint(s string) (geometry.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return geometry.Point{}, fmt.Errorf("point %q: want x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return geometry.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return geometry.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	return geometry.Pt(x, y), nil
}
