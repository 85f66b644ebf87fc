// core/equilibria/pressure.go
// Pressure corrections for equilibrium constants after Millero (1995,
// 1983): K(P)/K(0) = exp((-deltaV + 0.5*kappa*P) * P / (R*T)), with deltaV
// in cm3/mol and kappa in cm3/(mol bar), both polynomial in temperature /
// degC.

package equilibria

import "math"

type pressCoeffs struct {
	v0, v1, v2 float64 // deltaV  = v0 + v1*TC + v2*TC^2
	k0, k1     float64 // kappa   = (k0 + k1*TC) / 1000
}

var (
	k1Press   = pressCoeffs{v0: -25.50, v1: 0.1271, k0: -3.08, k1: 0.0877}
	k2Press   = pressCoeffs{v0: -15.82, v1: -0.0219, k0: 1.13, k1: -0.1475}
	kbPress   = pressCoeffs{v0: -29.48, v1: 0.1622, v2: -0.002608, k0: -2.84}
	kwPress   = pressCoeffs{v0: -20.02, v1: 0.1119, v2: -0.001409, k0: -5.13, k1: 0.0794}
	kso4Press = pressCoeffs{v0: -18.03, v1: 0.0466, v2: 0.000316, k0: -4.53, k1: 0.0900}
	kfPress   = pressCoeffs{v0: -9.78, v1: -0.0090, v2: -0.000942, k0: -3.91, k1: 0.0540}
)

func pressureFactor(pc pressCoeffs, c Conditions) float64 {
	if c.Pbar == 0 {
		return 1
	}
	tc := c.TempK - 273.15
	deltaV := pc.v0 + pc.v1*tc + pc.v2*tc*tc
	kappa := (pc.k0 + pc.k1*tc) / 1000
	return math.Exp((-deltaV + 0.5*kappa*c.Pbar) * c.Pbar / (c.rGas() * c.TempK))
}
