package pvmodule

import "math"

// SingleDiode solves the single-diode equation
//
//	I = IL - I0*(exp((V + I*Rs)/nNsVth) - 1) - (V + I*Rs)/Rsh
//
// using the explicit Lambert-W solutions of Jain and Kapoor (2004) and
// returns the characteristic IV curve points. A non-positive photocurrent
// yields an all-zero result.
func SingleDiode(params DiodeParams) IVCurvePoints {
	if params.Photocurrent <= 0 || math.IsNaN(params.Photocurrent) {
		return IVCurvePoints{}
	}

	voc := VoltageAtCurrent(0, params)
	isc := CurrentAtVoltage(0.01, params)

	vmp, pmp := maxPowerPoint(voc, params)
	imp := 0.0
	if vmp > 0 {
		imp = pmp / vmp
	}

	return IVCurvePoints{
		ISC: isc,
		VOC: voc,
		IMP: imp,
		VMP: vmp,
		PMP: pmp,
		IX:  CurrentAtVoltage(0.5*voc, params),
		IXX: CurrentAtVoltage(0.5*(voc+vmp), params),
	}
}

// CurrentAtVoltage returns the device current at terminal voltage v using
// the Lambert-W form of the single-diode equation.
func CurrentAtVoltage(v float64, p DiodeParams) float64 {
	il, i0 := p.Photocurrent, p.SaturationCurrent
	rs, rsh, nNsVth := p.ResistanceSeries, p.ResistanceShunt, p.NNsVth

	if math.IsInf(rsh, 1) {
		// Ideal shunt, the diode equation reduces to
		// I = IL - I0*(exp((V+I*Rs)/nNsVth) - 1).
		if rs == 0 {
			return il - i0*(math.Exp(v/nNsVth)-1)
		}
		logArg := math.Log(i0*rs/nNsVth) + (rs*(il+i0)+v)/nNsVth
		return (il + i0 - v/rs) - nNsVth/rs*lambertWExp(logArg)
	}

	if rs == 0 {
		return il - i0*(math.Exp(v/nNsVth)-1) - v/rsh
	}

	// Jain & Kapoor eq. 2, evaluated with the Lambert-W argument kept in
	// log space to avoid overflow of the inner exponential.
	logArg := math.Log(rs*i0*rsh/(nNsVth*(rs+rsh))) +
		rsh*(rs*(il+i0)+v)/(nNsVth*(rs+rsh))

	return -v/(rs+rsh) - nNsVth/rs*lambertWExp(logArg) + rsh*(il+i0)/(rs+rsh)
}

// VoltageAtCurrent returns the terminal voltage at device current i using
// the Lambert-W form of the single-diode equation.
func VoltageAtCurrent(i float64, p DiodeParams) float64 {
	il, i0 := p.Photocurrent, p.SaturationCurrent
	rs, rsh, nNsVth := p.ResistanceSeries, p.ResistanceShunt, p.NNsVth

	if math.IsInf(rsh, 1) {
		return nNsVth*math.Log((il+i0-i)/i0) - i*rs
	}

	// Jain & Kapoor eq. 3.
	logArg := math.Log(i0*rsh/nNsVth) + rsh*(-i+il+i0)/nNsVth

	return -i*(rs+rsh) + il*rsh - nNsVth*lambertWExp(logArg) + i0*rsh
}

// maxPowerPoint locates the maximum of P(V) = V * I(V) on [0, voc] by
// golden-section search.
func maxPowerPoint(voc float64, p DiodeParams) (vmp, pmp float64) {
	if voc <= 0 {
		return 0, 0
	}

	const invPhi = 0.6180339887498949

	a, b := 0.0, voc
	power := func(v float64) float64 { return v * CurrentAtVoltage(v, p) }

	x1 := b - invPhi*(b-a)
	x2 := a + invPhi*(b-a)
	f1, f2 := power(x1), power(x2)

	for i := 0; i < 200 && b-a > 1e-9*voc; i++ {
		if f1 > f2 {
			b, x2, f2 = x2, x1, f1
			x1 = b - invPhi*(b-a)
			f1 = power(x1)
		} else {
			a, x1, f1 = x1, x2, f2
			x2 = a + invPhi*(b-a)
			f2 = power(x2)
		}
	}

	vmp = 0.5 * (a + b)
	pmp = power(vmp)
	if pmp < 0 {
		return 0, 0
	}
	return vmp, pmp
}

// lambertWExp computes W0(exp(logArg)) for real arguments. Working from
// the logarithm of the argument keeps the computation finite where the
// single-diode exponentials overflow float64.
func lambertWExp(logArg float64) float64 {
	if logArg < 600 {
		return lambertW(math.Exp(logArg))
	}
	// For large arguments W(x) ~ ln x - ln ln x. Refine with Newton steps
	// on f(w) = w + ln w - logArg.
	w := logArg - math.Log(logArg)
	for i := 0; i < 50; i++ {
		delta := (w + math.Log(w) - logArg) / (1 + 1/w)
		w -= delta
		if math.Abs(delta) < 1e-12*w {
			break
		}
	}
	return w
}

// lambertW computes the principal branch W0 for x >= 0 by Halley
// iteration.
func lambertW(x float64) float64 {
	if x == 0 {
		return 0
	}
	w := math.Log1p(x)
	if w == 0 {
		w = x
	}
	for i := 0; i < 100; i++ {
		ew := math.Exp(w)
		f := w*ew - x
		delta := f / (ew*(w+1) - (w+2)*f/(2*w+2))
		w -= delta
		if math.Abs(delta) < 1e-14*(1+math.Abs(w)) {
			break
		}
	}
	return w
}
