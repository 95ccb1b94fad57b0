package qop

const (
	expmMaxTerms = 64
	expmTol      = 1e-16
)

// Expm returns exp(scale·a) by scaling and squaring with a truncated Taylor
// series. The argument is halved until its 1-norm is below 0.5, the series
// is summed to machine precision, and the result squared back up.
func (a *Operator) Expm(scale complex128) *Operator {
	b := a.Clone()
	b.Scale(scale)

	squarings := 0
	for norm := b.norm1(); norm > 0.5; norm /= 2 {
		squarings++
	}
	if squarings > 0 {
		b.Scale(complex(1/float64(int(1)<<squarings), 0))
	}

	sum := Identity(a.n)
	term := Identity(a.n)
	scratch := NewOperator(a.n)
	for k := 1; k <= expmMaxTerms; k++ {
		term.MulInto(scratch, b)
		scratch.Scale(complex(1/float64(k), 0))
		term, scratch = scratch, term
		sum.AddScaled(1, term)
		if term.norm1() < expmTol*sum.norm1() {
			break
		}
	}

	for s := 0; s < squarings; s++ {
		sum.MulInto(scratch, sum)
		sum, scratch = scratch, sum
	}
	return sum
}
