// Package solver computes electrical metrics from plain numbers.
//
// SolveWireMetrics fills in voltage, current, resistance and power from any
// two of them and records the formula behind each derived value.
// SolveACCircuit solves a series RLC load, and ValidateACInput reports every
// bad field at once. The Format helpers render values with SI prefixes for
// display.
//
// Nothing here reads the circuit graph; callers extract the quantities first.
package solver
