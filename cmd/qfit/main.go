package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/qfit/internal/config"
	"github.com/san-kum/qfit/internal/counts"
	"github.com/san-kum/qfit/internal/hamiltonian"
	"github.com/san-kum/qfit/internal/model"
	"github.com/san-kum/qfit/internal/storage"
	"github.com/san-kum/qfit/internal/synth"
	"github.com/san-kum/qfit/internal/tui"
)

var (
	dataDir    string
	configFile string
	preset     string
	save       bool

	// synth parameters
	synthOut string
	shots    int
	seed     int64
	omegaX0  float64
	omegaY0  float64
	delta0   float64
	omegaX1  float64
	omegaY1  float64
	delta1   float64
	freq0    float64
	freq1    float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "qfit",
		Short: "cross-resonance and ZZ hamiltonian characterization",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".qfit", "data directory")

	fitCRCmd := &cobra.Command{
		Use:   "fit-cr [results.json...]",
		Short: "fit the effective CR hamiltonian from tomography results",
		Args:  cobra.MinimumNArgs(1),
		RunE:  fitCR,
	}
	fitCRCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	fitCRCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	fitCRCmd.Flags().BoolVar(&save, "save", false, "save the run to the data directory")

	fitZZCmd := &cobra.Command{
		Use:   "fit-zz [results.json...]",
		Short: "fit static ZZ rates from population sweeps",
		Args:  cobra.MinimumNArgs(1),
		RunE:  fitZZ,
	}
	fitZZCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	fitZZCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	fitZZCmd.Flags().BoolVar(&save, "save", false, "save the run to the data directory")

	synthCmd := &cobra.Command{
		Use:   "synth [cr|zz]",
		Short: "generate synthetic backend results",
		Args:  cobra.ExactArgs(1),
		RunE:  synthesize,
	}
	synthCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	synthCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	synthCmd.Flags().StringVar(&synthOut, "out", "results.json", "output results file")
	synthCmd.Flags().IntVar(&shots, "shots", 0, "shots per experiment (0 = config value)")
	synthCmd.Flags().Int64Var(&seed, "seed", 0, "sampling seed (0 = noiseless)")
	synthCmd.Flags().Float64Var(&omegaX0, "omega-x0", 0.1, "true omega_x, control in |0>")
	synthCmd.Flags().Float64Var(&omegaY0, "omega-y0", 0.0, "true omega_y, control in |0>")
	synthCmd.Flags().Float64Var(&delta0, "delta0", 0.0, "true delta, control in |0>")
	synthCmd.Flags().Float64Var(&omegaX1, "omega-x1", 0.1, "true omega_x, control in |1>")
	synthCmd.Flags().Float64Var(&omegaY1, "omega-y1", 0.0, "true omega_y, control in |1>")
	synthCmd.Flags().Float64Var(&delta1, "delta1", 0.0, "true delta, control in |1>")
	synthCmd.Flags().Float64Var(&freq0, "freq0", 0.10, "true frequency, spectator in |0>")
	synthCmd.Flags().Float64Var(&freq1, "freq1", 0.12, "true frequency, spectator in |1>")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a run's observables and fit curves",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [cr|zz]",
		Short: "list available presets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for kind: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "browse saved runs interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(dataDir)
		},
	}

	rootCmd.AddCommand(fitCRCmd, fitZZCmd, synthCmd, listCmd, plotCmd, exportCmd, presetsCmd, tuiCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(kind string) (*config.Config, error) {
	cfg := config.DefaultCR()
	if kind == config.KindZZ {
		cfg = config.DefaultZZ()
	}
	if preset != "" {
		p := config.GetPreset(kind, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(kind))
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if loaded.Kind != kind {
			return nil, fmt.Errorf("config kind %q, want %q", loaded.Kind, kind)
		}
		cfg = loaded
	}
	return cfg, cfg.Validate()
}

func loadResults(paths []string) (counts.ResultList, error) {
	results := make(counts.ResultList, 0, len(paths))
	for _, path := range paths {
		r, err := counts.LoadResult(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		results = append(results, r)
	}
	return results, nil
}

func fitCR(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(config.KindCR)
	if err != nil {
		return err
	}
	results, err := loadResults(args)
	if err != nil {
		return err
	}

	fitter, err := hamiltonian.NewCR(cfg.CRConfig())
	if err != nil {
		return err
	}
	if err := fitter.Fit(context.Background(), results); err != nil {
		return err
	}

	ham, err := fitter.Hamiltonian()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "QUBIT\tSERIES\tOMEGA_X\tOMEGA_Y\tDELTA")
	for qi, q := range cfg.Qubits {
		for _, s := range hamiltonian.Series {
			p, err := fitter.Params(s, qi)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%d\t%s\t%.6f\t%.6f\t%.6f\n", q, s, p[model.BlochOmegaX], p[model.BlochOmegaY], p[model.BlochDelta])
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println("\nhamiltonian terms:")
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "QUBIT\tXI\tYI\tZI\tXZ\tYZ\tZZ")
	for _, q := range cfg.Qubits {
		h := ham[q]
		fmt.Fprintf(w, "%d\t%.6f\t%.6f\t%.6f\t%.6f\t%.6f\t%.6f\n",
			q, h["XI"], h["YI"], h["ZI"], h["XZ"], h["YZ"], h["ZZ"])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if save {
		meta, cols, err := crRun(cfg, fitter, ham)
		if err != nil {
			return err
		}
		runID, err := saveRun(meta, cols)
		if err != nil {
			return err
		}
		fmt.Printf("\nrun id: %s\n", runID)
	}
	return nil
}

func fitZZ(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(config.KindZZ)
	if err != nil {
		return err
	}
	results, err := loadResults(args)
	if err != nil {
		return err
	}

	fitter, err := hamiltonian.NewZZ(cfg.ZZConfig())
	if err != nil {
		return err
	}
	if err := fitter.Fit(context.Background(), results); err != nil {
		return err
	}

	rates, err := fitter.ZZRate(hamiltonian.AllQubits)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "QUBIT\tSPECTATOR\tFREQ_0\tFREQ_1\tZZ_RATE")
	for qi, q := range cfg.Qubits {
		p0, err := fitter.Params(hamiltonian.Series[0], qi)
		if err != nil {
			return err
		}
		p1, err := fitter.Params(hamiltonian.Series[1], qi)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d\t%d\t%.6f\t%.6f\t%.6f\n",
			q, cfg.Spectators[qi], p0[model.OscFreq], p1[model.OscFreq], rates[qi])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if save {
		meta, cols, err := zzRun(cfg, fitter, rates)
		if err != nil {
			return err
		}
		runID, err := saveRun(meta, cols)
		if err != nil {
			return err
		}
		fmt.Printf("\nrun id: %s\n", runID)
	}
	return nil
}

func crRun(cfg *config.Config, fitter *hamiltonian.CRFitter, ham map[int]hamiltonian.Hamiltonian) (storage.RunMetadata, []storage.Column, error) {
	meta := storage.RunMetadata{
		Kind:        config.KindCR,
		TimeUnit:    cfg.TimeUnit,
		Times:       cfg.Times,
		Qubits:      cfg.Qubits,
		Params:      map[string][][]float64{},
		Stderr:      map[string][][]float64{},
		Hamiltonian: ham,
	}
	var cols []storage.Column
	for _, s := range hamiltonian.Series {
		for qi, q := range cfg.Qubits {
			p, err := fitter.Params(s, qi)
			if err != nil {
				return meta, nil, err
			}
			meta.Params[s] = append(meta.Params[s], p)
			for idx := 0; idx < model.BlochNumParams; idx++ {
				e, err := fitter.ParamErr(idx, s, qi)
				if err != nil {
					return meta, nil, err
				}
				if len(meta.Stderr[s]) <= qi {
					meta.Stderr[s] = append(meta.Stderr[s], make([]float64, model.BlochNumParams))
				}
				meta.Stderr[s][qi][idx] = e[0]
			}

			flat, err := fitter.Data(s, qi)
			if err != nil {
				return meta, nil, err
			}
			x, y, z, err := model.Split(flat)
			if err != nil {
				return meta, nil, err
			}
			cols = append(cols,
				storage.Column{Name: fmt.Sprintf("x_q%d_%s", q, s), Values: x},
				storage.Column{Name: fmt.Sprintf("y_q%d_%s", q, s), Values: y},
				storage.Column{Name: fmt.Sprintf("z_q%d_%s", q, s), Values: z},
			)
		}
	}
	return meta, cols, nil
}

func zzRun(cfg *config.Config, fitter *hamiltonian.ZZFitter, rates []float64) (storage.RunMetadata, []storage.Column, error) {
	meta := storage.RunMetadata{
		Kind:       config.KindZZ,
		TimeUnit:   cfg.TimeUnit,
		Times:      cfg.Times,
		Qubits:     cfg.Qubits,
		Spectators: cfg.Spectators,
		Params:     map[string][][]float64{},
		Stderr:     map[string][][]float64{},
		Rates:      rates,
	}
	var cols []storage.Column
	for _, s := range hamiltonian.Series {
		for qi, q := range cfg.Qubits {
			p, err := fitter.Params(s, qi)
			if err != nil {
				return meta, nil, err
			}
			meta.Params[s] = append(meta.Params[s], p)
			for idx := 0; idx < model.OscNumParams; idx++ {
				e, err := fitter.ParamErr(idx, s, qi)
				if err != nil {
					return meta, nil, err
				}
				if len(meta.Stderr[s]) <= qi {
					meta.Stderr[s] = append(meta.Stderr[s], make([]float64, model.OscNumParams))
				}
				meta.Stderr[s][qi][idx] = e[0]
			}

			mean, sd, err := fitter.Data(s, qi)
			if err != nil {
				return meta, nil, err
			}
			cols = append(cols,
				storage.Column{Name: fmt.Sprintf("mean_q%d_%s", q, s), Values: mean},
				storage.Column{Name: fmt.Sprintf("std_q%d_%s", q, s), Values: sd},
			)
		}
	}
	return meta, cols, nil
}

func saveRun(meta storage.RunMetadata, cols []storage.Column) (string, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return "", err
	}
	return st.Save(meta, cols)
}

func synthesize(cmd *cobra.Command, args []string) error {
	kind := args[0]
	cfg, err := loadConfig(kind)
	if err != nil {
		return err
	}
	if shots > 0 {
		cfg.Shots = shots
	}
	opts := synth.Options{Shots: cfg.Shots, Seed: seed}

	var result counts.MemoryResult
	switch kind {
	case config.KindCR:
		nq := len(cfg.Qubits)
		p0 := make([]synth.CRParams, nq)
		p1 := make([]synth.CRParams, nq)
		for i := range p0 {
			p0[i] = synth.CRParams{OmegaX: omegaX0, OmegaY: omegaY0, Delta: delta0}
			p1[i] = synth.CRParams{OmegaX: omegaX1, OmegaY: omegaY1, Delta: delta1}
		}
		result, err = synth.CR(cfg.Times, p0, p1, opts)
	case config.KindZZ:
		nq := len(cfg.Qubits)
		f0 := make([]float64, nq)
		f1 := make([]float64, nq)
		for i := range f0 {
			f0[i] = freq0
			f1[i] = freq1
		}
		result, err = synth.ZZ(cfg.Times, f0, f1, opts)
	default:
		return fmt.Errorf("unknown kind: %s", kind)
	}
	if err != nil {
		return err
	}

	if err := counts.SaveResult(synthOut, result); err != nil {
		return err
	}
	fmt.Printf("wrote %d experiments to %s\n", len(result), synthOut)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tTIME\tPOINTS\tQUBITS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%v\n",
			run.ID,
			run.Kind,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			len(run.Times),
			run.Qubits,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	cols, err := st.LoadColumns(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("kind: %s\n", meta.Kind)
	fmt.Printf("points: %d\n\n", len(meta.Times))

	fitted := fittedCurves(meta)
	for _, col := range cols[1:] { // skip the time column
		var graph string
		if curve, ok := fitted[col.Name]; ok {
			graph = asciigraph.PlotMany([][]float64{col.Values, curve},
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption(fmt.Sprintf("%s (data, fit) vs time [%s]", col.Name, meta.TimeUnit)),
			)
		} else {
			graph = asciigraph.Plot(col.Values,
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption(fmt.Sprintf("%s vs time [%s]", col.Name, meta.TimeUnit)),
			)
		}
		fmt.Println(graph)
		fmt.Println()
	}

	if len(meta.Rates) > 0 {
		fmt.Println("zz rates:")
		for i, q := range meta.Qubits {
			fmt.Printf("  Q%d: %.6f\n", q, meta.Rates[i])
		}
	}
	if len(meta.Hamiltonian) > 0 {
		fmt.Println("hamiltonian terms:")
		for _, q := range meta.Qubits {
			h := meta.Hamiltonian[q]
			fmt.Printf("  Q%d:", q)
			for _, term := range hamiltonian.Terms {
				fmt.Printf(" %s=%.6f", term, h[term])
			}
			fmt.Println()
		}
	}
	return nil
}

// fittedCurves evaluates the run's fitted model at its time points, keyed by
// the observable column names the run was saved with. Runs missing fit
// parameters just plot their data.
func fittedCurves(meta storage.RunMetadata) map[string][]float64 {
	fitted := make(map[string][]float64)
	for _, s := range hamiltonian.Series {
		for qi, q := range meta.Qubits {
			if qi >= len(meta.Params[s]) {
				continue
			}
			p := meta.Params[s][qi]
			switch meta.Kind {
			case config.KindCR:
				if len(p) != model.BlochNumParams {
					continue
				}
				x, y, z, err := model.Split(model.BlochTrajectory(meta.Times, p))
				if err != nil {
					continue
				}
				fitted[fmt.Sprintf("x_q%d_%s", q, s)] = x
				fitted[fmt.Sprintf("y_q%d_%s", q, s)] = y
				fitted[fmt.Sprintf("z_q%d_%s", q, s)] = z
			case config.KindZZ:
				if len(p) != model.OscNumParams {
					continue
				}
				fitted[fmt.Sprintf("mean_q%d_%s", q, s)] = model.OscNoDecay(meta.Times, p)
			}
		}
	}
	return fitted
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	cols, err := st.LoadColumns(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSONStdout(meta, cols)
}
