package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/krotov"
	"github.com/san-kum/krotov/internal/config"
	"github.com/san-kum/krotov/internal/store"
	"github.com/san-kum/krotov/internal/viz"
	"github.com/san-kum/krotov/pulse"
	"github.com/san-kum/krotov/qop"
	"github.com/san-kum/krotov/shapes"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	iterStop   int
	jtStop     float64
	propMethod string
	useThreads bool
	verbose    bool
	noSave     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "krotov",
		Short: "quantum optimal control with Krotov's method",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".krotov", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run an optimisation",
		Args:  cobra.ExactArgs(1),
		RunE:  runOptimization,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().IntVar(&iterStop, "iters", config.DefaultIterStop, "iteration limit")
	runCmd.Flags().Float64Var(&jtStop, "jt-stop", config.DefaultJTStop, "convergence threshold on J_T")
	runCmd.Flags().StringVar(&propMethod, "prop", "", "propagation method (expm, rk4)")
	runCmd.Flags().BoolVar(&useThreads, "threads", false, "parallelise across trajectories")
	runCmd.Flags().BoolVar(&verbose, "verbose", false, "narrative output")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "skip writing the run directory")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list presets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if presets == nil {
				return fmt.Errorf("unknown model: %s", args[0])
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	spectrumCmd := &cobra.Command{
		Use:   "spectrum [run_id]",
		Short: "power spectrum of a saved run's optimised pulse",
		Args:  cobra.ExactArgs(1),
		RunE:  plotSpectrum,
	}

	rootCmd.AddCommand(runCmd, presetsCmd, listCmd, spectrumCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func resolveConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Model = model

	if preset != "" {
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		*cfg = *p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		*cfg = *loaded
	}

	if cmd.Flags().Changed("iters") {
		cfg.IterStop = iterStop
	}
	if cmd.Flags().Changed("jt-stop") {
		cfg.JTStop = jtStop
	}
	if cmd.Flags().Changed("prop") {
		cfg.PropMethod = propMethod
	}
	if cmd.Flags().Changed("threads") {
		cfg.UseThreads = useThreads
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = verbose
	}
	return cfg, cfg.Validate()
}

// buildProblem assembles the optimisation for a named model. "tls" is
// a driven two-level system with a sigma_x control steering |0> to |1>.
func buildProblem(cfg *config.Config) (krotov.Problem, []*pulse.Control, error) {
	if cfg.Model != "tls" {
		return krotov.Problem{}, nil, fmt.Errorf("unknown model: %s", cfg.Model)
	}

	tlist := cfg.Grid()
	tStop := cfg.Tlist.Stop
	rise := cfg.Pulse.RiseTime
	amp := cfg.Pulse.Amplitude

	drift := qop.NewOperatorFrom(2, []complex128{
		complex(-0.5, 0), 0,
		0, complex(0.5, 0),
	})
	sigmaX := qop.NewOperatorFrom(2, []complex128{0, 1, 1, 0})

	eps := pulse.NewControl("eps", func(t float64) float64 {
		return amp * shapes.FlatTop(t, 0, tStop, rise)
	})
	ham := qop.NewHamiltonian(drift, qop.Term{Op: sigmaX, Control: eps})

	var functional krotov.Functional
	switch cfg.Functional {
	case "", "square_modulus":
		functional = krotov.SquareModulus{}
	case "overlap":
		functional = krotov.Overlap{}
	default:
		return krotov.Problem{}, nil, fmt.Errorf("unknown functional: %s", cfg.Functional)
	}

	opts := pulse.Options{
		LambdaA: cfg.Pulse.LambdaA,
		Shape: func(t float64) float64 {
			return shapes.FlatTop(t, 0, tStop, rise)
		},
	}
	if cfg.Pulse.Bound > 0 {
		opts.Parametrization = pulse.TanhBound{Min: -cfg.Pulse.Bound, Max: cfg.Pulse.Bound}
	}

	jtStop := cfg.JTStop
	problem := krotov.Problem{
		Trajectories: []krotov.Trajectory{{
			Initial:   qop.BasisKet(2, 0),
			Generator: ham,
			Target:    qop.BasisKet(2, 1),
		}},
		Tlist:        tlist,
		Functional:   functional,
		PulseOptions: pulse.OptionsMap{eps: opts},
		IterStop:     cfg.IterStop,
		PropMethod:   cfg.PropMethod,
		UseThreads:   cfg.UseThreads,
		Verbose:      cfg.Verbose,
		CheckConvergence: func(r *krotov.Result) {
			if r.JT < jtStop {
				r.Converged = true
				r.Message = fmt.Sprintf("J_T < %g", jtStop)
			}
		},
	}
	return problem, []*pulse.Control{eps}, nil
}

func runOptimization(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	problem, controls, err := buildProblem(cfg)
	if err != nil {
		return err
	}

	var jts []float64
	check := problem.CheckConvergence
	problem.CheckConvergence = func(r *krotov.Result) {
		jts = append(jts, r.JT)
		if check != nil {
			check(r)
		}
	}

	fmt.Println(viz.HeaderStyle.Render(fmt.Sprintf("krotov run: %s (%s)", cfg.Model, cfg.Functional)))

	result, err := krotov.Optimize(context.Background(), problem)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(viz.Status(result.Converged, result.Message))
	fmt.Println(viz.Metric("iterations", fmt.Sprintf("%d", result.Iter)))
	fmt.Println(viz.Metric("final J_T", fmt.Sprintf("%.3e", result.JT)))
	if len(result.TauValues) == 1 {
		tau := result.TauValues[0]
		fid := real(tau)*real(tau) + imag(tau)*imag(tau)
		fmt.Println(viz.Metric("fidelity", fmt.Sprintf("%.6f", fid)))
	}

	if len(jts) > 1 {
		fmt.Println(viz.ConvergencePlot(jts))
	}
	fmt.Println(viz.PulsePlot(result.GuessControls[0], result.OptimizedControls[0],
		"guess (gray) and optimised (green) pulse"))

	if noSave {
		return nil
	}
	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	names := make([]string, len(controls))
	for i, c := range controls {
		names[i] = c.Name
	}
	runID, err := st.Save(cfg.Model, cfg.Functional, cfg.PropMethod, names, result)
	if err != nil {
		return err
	}
	fmt.Println(viz.Subtle.Render("saved run " + runID))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tITER\tJ_T\tCONVERGED\tTIMESTAMP")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.3e\t%v\t%s\n",
			r.ID, r.Model, r.Iter, r.JT, r.Converged, r.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func plotSpectrum(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := store.New(dataDir)

	times, columns, err := st.LoadPulses(runID)
	if err != nil {
		return err
	}
	if len(times) < 2 {
		return fmt.Errorf("no pulse data in run %s", runID)
	}

	var name string
	var data []float64
	for col, vals := range columns {
		if strings.HasPrefix(col, "opt_") {
			name = col
			data = vals
			break
		}
	}
	if data == nil {
		return fmt.Errorf("run %s has no optimised pulse column", runID)
	}

	duration := times[len(times)-1] - times[0]
	graph, freq := viz.SpectrumPlot(data, duration, "power spectrum ("+name+")")
	fmt.Println(graph)
	fmt.Printf("dominant frequency: %.3f cycles per time unit\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f\n", 1.0/freq)
	}
	return nil
}
