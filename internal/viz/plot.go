package viz

import (
	"math"

	"github.com/guptarohit/asciigraph"
)

// ConvergencePlot renders J_T per iteration on a log10 axis.
func ConvergencePlot(jts []float64) string {
	data := make([]float64, len(jts))
	for i, jt := range jts {
		if jt > 0 {
			data[i] = math.Log10(jt)
		} else {
			data[i] = math.Inf(-1)
		}
	}
	floorInfs(data)
	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("log10 J_T vs iteration"),
	)
	return GraphStyle.Render(graph)
}

// PulsePlot renders guess and optimised pulses in one frame.
func PulsePlot(guess, optimized []float64, caption string) string {
	graph := asciigraph.PlotMany([][]float64{guess, optimized},
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.Gray, asciigraph.Green),
	)
	return GraphStyle.Render(graph)
}

// SpectrumPlot renders the low-frequency quarter of a pulse's power
// spectrum and reports the dominant frequency in cycles per time unit.
func SpectrumPlot(pulse []float64, duration float64, caption string) (string, float64) {
	ps := PowerSpectrum(pulse)
	plotData := ps[:len(ps)/4]

	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)

	maxPower := 0.0
	maxIdx := 0
	for i := 1; i < len(plotData); i++ {
		if plotData[i] > maxPower {
			maxPower = plotData[i]
			maxIdx = i
		}
	}
	// Bin k of the zero-padded transform lies at k/(n·dt), with n the
	// padded length and dt the sample spacing.
	dt := duration / float64(len(pulse))
	freq := float64(maxIdx) / (float64(2*len(ps)) * dt)
	return GraphStyle.Render(graph), freq
}

// floorInfs replaces -Inf entries (zero cost) with the finite minimum
// so asciigraph can scale the axis.
func floorInfs(data []float64) {
	minVal := math.Inf(1)
	for _, v := range data {
		if !math.IsInf(v, -1) && v < minVal {
			minVal = v
		}
	}
	if math.IsInf(minVal, 1) {
		minVal = -16
	}
	for i, v := range data {
		if math.IsInf(v, -1) {
			data[i] = minVal
		}
	}
}
