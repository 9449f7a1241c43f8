package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/solver"
)

var dcValues = map[solver.Quantity]*float64{
	solver.Voltage:    new(float64),
	solver.Current:    new(float64),
	solver.Resistance: new(float64),
	solver.Watts:      new(float64),
}

var dcCmd = &cobra.Command{
	Use:   "dc",
	Short: "Derive the missing DC quantities of a wire",
	Long: `Give any two of voltage, current, resistance and power; the rest are derived
with Ohm's law and the power relations, and the formula used for each is
printed.

Examples:
  otc dc --voltage 12 --resistance 6
  otc dc --watts 60 --current 0.5`,
	RunE: runDC,
}

var acIn solver.ACInput

var acCmd = &cobra.Command{
	Use:   "ac",
	Short: "Solve a series RLC load on a sinusoidal source",
	Long: `Compute reactances, impedance, phase, current and the power triangle for a
series resistor, inductor and capacitor. Inductance or capacitance of zero
leaves that part out.

Examples:
  otc ac --voltage 120 --frequency 60 --resistance 20
  otc ac --voltage 10 --frequency 1000 --resistance 100 --inductance 0.01 --capacitance 1e-6`,
	RunE: runAC,
}

func init() {
	rootCmd.AddCommand(dcCmd, acCmd)

	for q, p := range dcValues {
		dcCmd.Flags().Float64Var(p, q.String(), 0, q.String()+" ("+unitFor(q)+")")
	}

	acCmd.Flags().Float64Var(&acIn.Voltage, "voltage", 0, "source RMS voltage (V)")
	acCmd.Flags().Float64Var(&acIn.Frequency, "frequency", 0, "source frequency (Hz)")
	acCmd.Flags().Float64Var(&acIn.Resistance, "resistance", 0, "series resistance (Ω)")
	acCmd.Flags().Float64Var(&acIn.Inductance, "inductance", 0, "series inductance (H)")
	acCmd.Flags().Float64Var(&acIn.Capacitance, "capacitance", 0, "series capacitance (F)")
}

func unitFor(q solver.Quantity) string {
	switch q {
	case solver.Voltage:
		return "V"
	case solver.Current:
		return "A"
	case solver.Resistance:
		return "Ω"
	}
	return "W"
}

func runDC(cmd *cobra.Command, args []string) error {
	known := solver.Known{}
	for q, p := range dcValues {
		if cmd.Flags().Changed(q.String()) {
			known[q] = *p
		}
	}

	m, err := solver.SolveWireMetrics(known, cfg.DCOptions())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Voltage:    %s\n", solver.FormatVoltage(m.Voltage))
	fmt.Fprintf(out, "Current:    %s\n", solver.FormatCurrent(m.Current))
	fmt.Fprintf(out, "Resistance: %s\n", solver.FormatResistance(m.Resistance))
	fmt.Fprintf(out, "Power:      %s\n", solver.FormatPower(m.Watts))
	if len(m.Derivations) > 0 {
		fmt.Fprintf(out, "\nDerived in %d pass(es):\n", m.Iterations)
		for _, d := range m.Derivations {
			fmt.Fprintf(out, "  %-10s %s = %s\n", d.Quantity, d.Formula, solver.FormatMetric(d.Value, unitFor(d.Quantity)))
		}
	}
	return nil
}

func runAC(cmd *cobra.Command, args []string) error {
	r, err := solver.SolveACCircuit(acIn)
	var verrs solver.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, len(verrs))
		for i, e := range verrs {
			msgs[i] = "  --" + e.Field + ": " + e.Message
		}
		return fmt.Errorf("invalid input:\n%s", strings.Join(msgs, "\n"))
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Inductive reactance:  %s\n", solver.FormatImpedance(r.InductiveReactance))
	fmt.Fprintf(out, "Capacitive reactance: %s\n", solver.FormatImpedance(r.CapacitiveReactance))
	fmt.Fprintf(out, "Impedance:            %s\n", solver.FormatImpedance(r.Impedance))
	fmt.Fprintf(out, "Phase angle:          %s\n", solver.FormatPhase(r.PhaseAngleDegrees))
	fmt.Fprintf(out, "Current:              %s\n", solver.FormatCurrent(r.Current))
	fmt.Fprintf(out, "Power factor:         %.3f\n", r.PowerFactor)
	fmt.Fprintf(out, "Real power:           %s\n", solver.FormatPower(r.RealPower))
	fmt.Fprintf(out, "Reactive power:       %s\n", solver.FormatMetric(r.ReactivePower, "var"))
	fmt.Fprintf(out, "Apparent power:       %s\n", solver.FormatMetric(r.ApparentPower, "VA"))
	return nil
}
