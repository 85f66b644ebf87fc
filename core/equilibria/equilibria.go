// core/equilibria/equilibria.go
// Equilibrium constants of the seawater carbonate system at 1 atm, with
// salinity-derived total salt concentrations. Units: mol/kg-sw unless noted;
// temperature in K, salinity on the practical scale.
//
// Sources: Weiss (1974) K0; Lueker et al. (2000) K1/K2, total scale;
// Dickson (1990a) KSO4, free scale; Dickson (1990b) KB, total scale;
// Millero (1995) KW, seawater scale; Dickson & Riley (1979) KF, free scale;
// Uppström (1974) / Lee et al. (2010) TB; Riley (1965) TF;
// Morris & Riley (1966) TSO4.

package equilibria

import "math"

// RGas is the gas constant in cm3 bar / (mol K), as used by the pressure
// correction terms.
const RGas = 83.1451

// Conditions fixes temperature, salinity and pressure for one evaluation.
type Conditions struct {
	TempK float64 // temperature / K
	Sal   float64 // practical salinity
	Pbar  float64 // in-water pressure / bar (0 at the surface)
	R     float64 // gas constant override; 0 means RGas
}

func (c Conditions) rGas() float64 {
	if c.R > 0 {
		return c.R
	}
	return RGas
}

// ionicStrength from salinity (mol/kg-H2O).
func ionicStrength(sal float64) float64 {
	return 19.924 * sal / (1000 - 1.005*sal)
}

// TotalBorate returns TB in mol/kg-sw. opt 1 is Uppström (1974), opt 2 is
// Lee et al. (2010); anything else falls back to Uppström.
func TotalBorate(sal float64, opt int) float64 {
	if opt == 2 {
		return 0.0004326 * sal / 35
	}
	return 0.0004157 * sal / 35
}

// TotalFluoride returns TF in mol/kg-sw (Riley 1965).
func TotalFluoride(sal float64) float64 {
	return (0.000067 / 18.998) * (sal / 1.80655)
}

// TotalSulfate returns TSO4 in mol/kg-sw (Morris & Riley 1966).
func TotalSulfate(sal float64) float64 {
	return (0.14 / 96.062) * (sal / 1.80655)
}

// K0 is the CO2 solubility in mol/(kg-sw atm), Weiss (1974).
func K0(c Conditions) float64 {
	t100 := c.TempK / 100
	lnK0 := -60.2409 + 93.4517*(100/c.TempK) + 23.3585*math.Log(t100) +
		c.Sal*(0.023517-0.023656*t100+0.0047036*t100*t100)
	return math.Exp(lnK0)
}

// K1 is the first carbonic acid dissociation constant, total scale,
// Lueker et al. (2000).
func K1(c Conditions) float64 {
	pK1 := 3633.86/c.TempK - 61.2172 + 9.6777*math.Log(c.TempK) -
		0.011555*c.Sal + 0.0001152*c.Sal*c.Sal
	return math.Pow(10, -pK1) * pressureFactor(k1Press, c)
}

// K2 is the second carbonic acid dissociation constant, total scale,
// Lueker et al. (2000).
func K2(c Conditions) float64 {
	pK2 := 471.78/c.TempK + 25.929 - 3.16967*math.Log(c.TempK) -
		0.01781*c.Sal + 0.0001122*c.Sal*c.Sal
	return math.Pow(10, -pK2) * pressureFactor(k2Press, c)
}

// KB is the boric acid dissociation constant, total scale, Dickson (1990b).
func KB(c Conditions) float64 {
	sqS := math.Sqrt(c.Sal)
	lnKB := (-8966.90-2890.53*sqS-77.942*c.Sal+1.728*c.Sal*sqS-0.0996*c.Sal*c.Sal)/c.TempK +
		148.0248 + 137.1942*sqS + 1.62142*c.Sal +
		(-24.4344-25.085*sqS-0.2474*c.Sal)*math.Log(c.TempK) +
		0.053105*sqS*c.TempK
	return math.Exp(lnKB) * pressureFactor(kbPress, c)
}

// KWsws is the water dissociation constant on the seawater pH scale,
// Millero (1995).
func KWsws(c Conditions) float64 {
	sqS := math.Sqrt(c.Sal)
	lnKW := 148.9802 - 13847.26/c.TempK - 23.6521*math.Log(c.TempK) +
		(118.67/c.TempK-5.977+1.0495*math.Log(c.TempK))*sqS - 0.01615*c.Sal
	return math.Exp(lnKW) * pressureFactor(kwPress, c)
}

// KSO4 is the bisulfate dissociation constant, free scale, mol/kg-sw,
// Dickson (1990a).
func KSO4(c Conditions) float64 {
	is := ionicStrength(c.Sal)
	sqI := math.Sqrt(is)
	lnK := -4276.1/c.TempK + 141.328 - 23.093*math.Log(c.TempK) +
		(-13856/c.TempK+324.57-47.986*math.Log(c.TempK))*sqI +
		(35474/c.TempK-771.54+114.723*math.Log(c.TempK))*is -
		2698/c.TempK*is*sqI + 1776/c.TempK*is*is
	// mol/kg-H2O -> mol/kg-sw
	return math.Exp(lnK) * (1 - 0.001005*c.Sal) * pressureFactor(kso4Press, c)
}

// KF is the hydrogen fluoride dissociation constant, free scale, mol/kg-sw,
// Dickson & Riley (1979).
func KF(c Conditions) float64 {
	lnKF := 1590.2/c.TempK - 12.641 + 1.525*math.Sqrt(ionicStrength(c.Sal))
	return math.Exp(lnKF) * (1 - 0.001005*c.Sal) * pressureFactor(kfPress, c)
}

// SWStoTOT converts constants from the seawater to the total pH scale.
func SWStoTOT(c Conditions, tso4, kso4, tf, kf float64) float64 {
	free2tot := 1 + tso4/kso4
	sws2free := 1 / (1 + tso4/kso4 + tf/kf)
	return free2tot * sws2free
}

// FugFac is the CO2 fugacity factor at 1 atm total pressure, from the CO2
// virial coefficients of Weiss (1974).
func FugFac(tempK float64, rGas float64) float64 {
	b := -1636.75 + 12.0408*tempK - 0.0327957*tempK*tempK + 3.16528e-5*tempK*tempK*tempK
	delta := 57.7 - 0.118*tempK
	const pAtm = 1.01325 // bar
	return math.Exp((b + 2*delta) * pAtm / (rGas * tempK))
}
