// core/carbonate/carbonate.go
// Reference seawater carbonate system solver for the DIC + total alkalinity
// input pair. It implements the solver.Func boundary consumed by the
// uncertainty engine: named measurement arguments in, named result arrays
// out, with the three override maps forcing totals or equilibrium constants
// to caller-supplied values.
//
// Measurements: par1 (DIC, umol/kg), par2 (TA, umol/kg), salinity,
// temperature_in/out (degC), pressure_in/out (dbar). Results carry the
// carbonate speciation at both conditions plus the realized constants under
// "<K>input"/"<K>output" keys so perturbation seeding can read them back.

package carbonate

import (
	"fmt"
	"math"

	"co2sys-core/equilibria"
	"co2sys-core/solver"
)

// Config holds the pH iteration parameters.
type Config struct {
	MaxIter int     // iteration cap per sample (0 = 100)
	Tol     float64 // pH convergence tolerance (0 = 1e-8)
}

// Engine solves the carbonate system with a given config.
type Engine struct {
	cfg Config
}

// New creates a new Engine, applying defaults.
func New(c Config) *Engine {
	if c.MaxIter <= 0 {
		c.MaxIter = 100
	}
	if c.Tol <= 0 {
		c.Tol = 1e-8
	}
	return &Engine{cfg: c}
}

// Func adapts the engine to the solver boundary.
func (e *Engine) Func() solver.Func { return e.Solve }

// Vocabulary declares what this solver lets the uncertainty engine perturb
// and differentiate.
func Vocabulary() solver.Vocabulary {
	return solver.Vocabulary{
		Measurements: []string{
			"par1", "par2", "salinity",
			"temperature_in", "temperature_out",
			"pressure_in", "pressure_out",
		},
		Totals:    []string{"TB", "TF", "TSO4"},
		Constants: []string{"K0", "K1", "K2", "KB", "KW", "KSO4", "KF"},
		Factors:   []string{"RGas", "FugFac"},
		Gradables: []string{
			"pH_in", "pH_out",
			"pco2_in", "pco2_out",
			"fco2_in", "fco2_out",
			"hco3_in", "hco3_out",
			"co3_in", "co3_out",
			"co2aq_in", "co2aq_out",
		},
	}
}

// DefaultPKUncertainties are the standard 1-sigma pK uncertainties of
// Orr et al. (2018), keyed by this solver's input-condition target names.
var DefaultPKUncertainties = map[string][]float64{
	"pK0input": {0.002},
	"pK1input": {0.0075},
	"pK2input": {0.015},
	"pKBinput": {0.01},
	"pKWinput": {0.01},
}

// constants holds one sample's equilibrium constants at one condition.
type constants struct {
	k0, k1, k2, kb, kw, kso4, kf float64
	rGas, fugFac                 float64
}

// totals holds one sample's total salt concentrations (mol/kg).
type totals struct {
	tb, tf, tso4 float64
}

// Solve computes the carbonate system for every sample. DIC and TA are
// conservative, so output-condition speciation re-solves pH with the
// output-condition constants only.
func (e *Engine) Solve(in solver.Input) (solver.Result, error) {
	m, n, err := conditionMeasurements(in)
	if err != nil {
		return nil, err
	}
	ov, err := conditionOverrides(in, n)
	if err != nil {
		return nil, err
	}

	res := solver.Result{}
	for name, v := range m {
		res[name] = v
	}
	for _, key := range []string{
		"TB", "TF", "TSO4",
		"K0input", "K1input", "K2input", "KBinput", "KWinput", "KSO4input", "KFinput",
		"RGasinput", "FugFacinput",
		"K0output", "K1output", "K2output", "KBoutput", "KWoutput", "KSO4output", "KFoutput",
		"RGasoutput", "FugFacoutput",
		"pH_in", "pH_out", "pco2_in", "pco2_out", "fco2_in", "fco2_out",
		"hco3_in", "hco3_out", "co3_in", "co3_out", "co2aq_in", "co2aq_out",
	} {
		res[key] = make([]float64, n)
	}

	optBorate := in.Options["opt_total_borate"]

	for i := 0; i < n; i++ {
		dic := m["par1"][i] * 1e-6
		ta := m["par2"][i] * 1e-6
		sal := m["salinity"][i]
		if dic <= 0 || ta <= 0 {
			return nil, fmt.Errorf("carbonate: sample %d: par1 and par2 must be positive", i)
		}

		tot := totals{
			tb:   pick(ov.totals["TB"], i, equilibria.TotalBorate(sal, optBorate)),
			tf:   pick(ov.totals["TF"], i, equilibria.TotalFluoride(sal)),
			tso4: pick(ov.totals["TSO4"], i, equilibria.TotalSulfate(sal)),
		}
		res["TB"][i] = tot.tb
		res["TF"][i] = tot.tf
		res["TSO4"][i] = tot.tso4

		kin := assembleConstants(ov.eqIn, i, sal, m["temperature_in"][i], m["pressure_in"][i], tot)
		kout := assembleConstants(ov.eqOut, i, sal, m["temperature_out"][i], m["pressure_out"][i], tot)
		echoConstants(res, "input", i, kin)
		echoConstants(res, "output", i, kout)

		for _, c := range []struct {
			suffix string
			k      constants
		}{{"in", kin}, {"out", kout}} {
			h, err := e.solvePH(dic, ta, c.k, tot)
			if err != nil {
				return nil, fmt.Errorf("carbonate: sample %d (%s): %w", i, c.suffix, err)
			}
			sp := speciate(dic, h, c.k)
			res["pH_"+c.suffix][i] = -math.Log10(h)
			res["hco3_"+c.suffix][i] = sp.hco3 * 1e6
			res["co3_"+c.suffix][i] = sp.co3 * 1e6
			res["co2aq_"+c.suffix][i] = sp.co2aq * 1e6
			fco2 := sp.co2aq / c.k.k0 * 1e6 // uatm
			res["fco2_"+c.suffix][i] = fco2
			res["pco2_"+c.suffix][i] = fco2 / c.k.fugFac
		}
	}
	return res, nil
}

// pick returns the override value for sample i when present, else fallback.
func pick(ov []float64, i int, fallback float64) float64 {
	if ov != nil {
		return ov[i]
	}
	return fallback
}

func assembleConstants(eq map[string][]float64, i int, sal, tempC, presDbar float64, tot totals) constants {
	c := equilibria.Conditions{
		TempK: tempC + 273.15,
		Sal:   sal,
		Pbar:  presDbar / 10,
	}
	var k constants
	k.rGas = pick(eq["RGas"], i, equilibria.RGas)
	c.R = k.rGas
	k.k0 = pick(eq["K0"], i, equilibria.K0(c))
	k.k1 = pick(eq["K1"], i, equilibria.K1(c))
	k.k2 = pick(eq["K2"], i, equilibria.K2(c))
	k.kb = pick(eq["KB"], i, equilibria.KB(c))
	k.kso4 = pick(eq["KSO4"], i, equilibria.KSO4(c))
	k.kf = pick(eq["KF"], i, equilibria.KF(c))
	// KW is formulated on the seawater scale; everything else here is total.
	k.kw = pick(eq["KW"], i,
		equilibria.KWsws(c)*equilibria.SWStoTOT(c, tot.tso4, k.kso4, tot.tf, k.kf))
	k.fugFac = pick(eq["FugFac"], i, equilibria.FugFac(c.TempK, k.rGas))
	return k
}

func echoConstants(res solver.Result, suffix string, i int, k constants) {
	res["K0"+suffix][i] = k.k0
	res["K1"+suffix][i] = k.k1
	res["K2"+suffix][i] = k.k2
	res["KB"+suffix][i] = k.kb
	res["KW"+suffix][i] = k.kw
	res["KSO4"+suffix][i] = k.kso4
	res["KF"+suffix][i] = k.kf
	res["RGas"+suffix][i] = k.rGas
	res["FugFac"+suffix][i] = k.fugFac
}

type speciation struct {
	hco3, co3, co2aq float64 // mol/kg
}

func speciate(dic, h float64, k constants) speciation {
	denom := h*h + k.k1*h + k.k1*k.k2
	return speciation{
		hco3:  dic * k.k1 * h / denom,
		co3:   dic * k.k1 * k.k2 / denom,
		co2aq: dic * h * h / denom,
	}
}

// alkParts evaluates total alkalinity (total pH scale) from DIC and [H+].
func alkParts(dic, h float64, k constants, tot totals) float64 {
	free2tot := 1 + tot.tso4/k.kso4
	hfree := h / free2tot
	sp := speciate(dic, h, k)
	boh4 := tot.tb * k.kb / (k.kb + h)
	oh := k.kw / h
	hso4 := tot.tso4 / (1 + k.kso4/hfree)
	hf := tot.tf / (1 + k.kf/hfree)
	return sp.hco3 + 2*sp.co3 + boh4 + oh - hfree - hso4 - hf
}

// solvePH finds [H+] (total scale) matching the sample's alkalinity by a
// damped Newton iteration in pH space, after the classic CO2SYS scheme.
func (e *Engine) solvePH(dic, ta float64, k constants, tot totals) (float64, error) {
	ln10 := math.Ln10
	pH := 8.0
	for iter := 0; iter < e.cfg.MaxIter; iter++ {
		h := math.Pow(10, -pH)
		residual := ta - alkParts(dic, h, k, tot)
		denom := h*h + k.k1*h + k.k1*k.k2
		slope := ln10 * (dic*k.k1*h*(h*h+k.k1*k.k2+4*h*k.k2)/(denom*denom) +
			tot.tb*k.kb*h/((k.kb+h)*(k.kb+h)) +
			k.kw/h + h)
		deltapH := residual / slope
		// Halve overlong steps so the iteration cannot shoot past the root.
		for math.Abs(deltapH) > 1 {
			deltapH /= 2
		}
		pH += deltapH
		if math.Abs(deltapH) < e.cfg.Tol {
			return math.Pow(10, -pH), nil
		}
	}
	return 0, fmt.Errorf("pH iteration did not converge within %d steps", e.cfg.MaxIter)
}

// conditionMeasurements broadcasts every measurement to the common sample
// count (the longest argument).
func conditionMeasurements(in solver.Input) (map[string][]float64, int, error) {
	names := Vocabulary().Measurements
	n := 1
	for _, name := range names {
		v, ok := in.Measurements[name]
		if !ok || len(v) == 0 {
			return nil, 0, fmt.Errorf("carbonate: missing measurement %q", name)
		}
		if len(v) > n {
			n = len(v)
		}
	}
	out := make(map[string][]float64, len(names))
	for _, name := range names {
		bv, err := solver.Broadcast(in.Measurements[name], n)
		if err != nil {
			return nil, 0, fmt.Errorf("carbonate: measurement %q: %w", name, err)
		}
		out[name] = bv
	}
	return out, n, nil
}

type overrides struct {
	totals map[string][]float64
	eqIn   map[string][]float64
	eqOut  map[string][]float64
}

func conditionOverrides(in solver.Input, n int) (overrides, error) {
	cond := func(m map[string][]float64, group string) (map[string][]float64, error) {
		if m == nil {
			return nil, nil
		}
		out := make(map[string][]float64, len(m))
		for k, v := range m {
			bv, err := solver.Broadcast(v, n)
			if err != nil {
				return nil, fmt.Errorf("carbonate: override %s[%q]: %w", group, k, err)
			}
			out[k] = bv
		}
		return out, nil
	}
	var ov overrides
	var err error
	if ov.totals, err = cond(in.Totals, "totals"); err != nil {
		return ov, err
	}
	if ov.eqIn, err = cond(in.EquilibriaIn, "equilibria_in"); err != nil {
		return ov, err
	}
	if ov.eqOut, err = cond(in.EquilibriaOut, "equilibria_out"); err != nil {
		return ov, err
	}
	return ov, nil
}
