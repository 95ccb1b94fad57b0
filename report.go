package krotov

import (
	"fmt"
	"io"
)

// reporter is the default info hook. It prints one fixed-width table
// row per iteration and contributes nothing to Result.Records.
type reporter struct {
	out        io.Writer
	result     *Result
	headerDone bool
}

func newReporter(out io.Writer, result *Result) *reporter {
	return &reporter{out: out, result: result}
}

func (rp *reporter) hook(wrk *Workspace, iter int, updated, guess [][]float64) any {
	if !rp.headerDone {
		fmt.Fprintf(rp.out, "%6s %12s %12s %12s %12s %12s %8s\n",
			"iter", "J_T", "g_a_int", "J", "dJ_T", "dJ", "secs")
		rp.headerDone = true
	}

	ga := 0.0
	for _, g := range wrk.GaInt {
		ga += g
	}
	r := rp.result
	j := r.JT + ga

	dJT, dJ := "n/a", "n/a"
	if iter > r.IterStart {
		dJT = fmt.Sprintf("%12.2e", r.JT-r.JTPrev)
		dJ = fmt.Sprintf("%12.2e", r.JT-r.JTPrev+ga)
	}
	fmt.Fprintf(rp.out, "%6d %12.2e %12.2e %12.2e %12s %12s %8.1f\n",
		iter, r.JT, ga, j, dJT, dJ, r.Secs)
	return nil
}
