// internal/report/report.go
// Renderers for derivative tables and propagated uncertainties. Text output
// is aligned TSV for terminals; JSON is stable for downstream tooling. Rows
// are emitted in sorted order so output is deterministic.

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"co2sys-core/deriv"
	"co2sys-core/uncert"
)

// Derivatives writes one row per (output, input) pair.
func Derivatives(w io.Writer, table deriv.Table, dxs map[string]float64) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "output\twrt\tdx\tderivative")
	for _, of := range sortedKeys(table) {
		row := table[of]
		for _, wrt := range sortedKeys(row) {
			fmt.Fprintf(tw, "%s\t%s\t%.6g\t%s\n", of, wrt, dxs[wrt], formatVector(row[wrt]))
		}
	}
	return tw.Flush()
}

// Uncertainties writes the total per output followed by one row per source.
func Uncertainties(w io.Writer, totals map[string][]float64, components uncert.Components) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "output\tsource\tuncertainty")
	for _, of := range sortedKeys(totals) {
		fmt.Fprintf(tw, "%s\ttotal\t%s\n", of, formatVector(totals[of]))
		comp := components[of]
		for _, src := range sortedKeys(comp) {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", of, src, formatVector(comp[src]))
		}
	}
	return tw.Flush()
}

type derivativesDoc struct {
	Derivatives deriv.Table        `json:"derivatives"`
	Steps       map[string]float64 `json:"steps"`
}

// DerivativesJSON writes the table and realized steps as one JSON document.
func DerivativesJSON(w io.Writer, table deriv.Table, dxs map[string]float64) error {
	return writeJSON(w, derivativesDoc{Derivatives: table, Steps: dxs})
}

type uncertaintiesDoc struct {
	Uncertainties map[string][]float64 `json:"uncertainties"`
	Components    uncert.Components    `json:"components"`
}

// UncertaintiesJSON writes totals and per-source components as one JSON
// document.
func UncertaintiesJSON(w io.Writer, totals map[string][]float64, components uncert.Components) error {
	return writeJSON(w, uncertaintiesDoc{Uncertainties: totals, Components: components})
}

func writeJSON(w io.Writer, doc any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func formatVector(v []float64) string {
	out := ""
	for i, x := range v {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("%.6g", x)
	}
	return out
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
