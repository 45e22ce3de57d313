package sarimax

import "gonum.org/v1/gonum/mat"

// yuleWalker estimates initial AR coefficients by solving the Yule-Walker
// equations R*phi = r, where R is the Toeplitz matrix of autocorrelations.
// Returns nil if the system is singular; callers fall back to default
// initial values.
func yuleWalker(acf []float64, order int) []float64 {
	if order <= 0 || len(acf) <= order {
		return nil
	}

	rData := make([]float64, order*order)
	rhs := make([]float64, order)
	for i := 0; i < order; i++ {
		rhs[i] = acf[i+1]
		for j := 0; j < order; j++ {
			idx := i - j
			if idx < 0 {
				idx = -idx
			}
			rData[i*order+j] = acf[idx]
		}
	}

	r := mat.NewDense(order, order, rData)
	b := mat.NewVecDense(order, rhs)

	var phi mat.VecDense
	if err := phi.SolveVec(r, b); err != nil {
		return nil
	}

	out := make([]float64, order)
	for i := range out {
		out[i] = phi.AtVec(i)
	}
	return out
}
