package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/golang/geo/r2"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/armik/internal/config"
	"github.com/san-kum/armik/internal/export"
	"github.com/san-kum/armik/internal/kinematics"
	"github.com/san-kum/armik/internal/metrics"
	"github.com/san-kum/armik/internal/scenario"
	"github.com/san-kum/armik/internal/session"
	"github.com/san-kum/armik/internal/sim"
	"github.com/san-kum/armik/internal/storage"
	"github.com/san-kum/armik/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool
	// Chain and solver overrides
	lengths       []float64
	maxIterations int
	tolerance     float64
	// Run parameters
	frames     int
	fps        int
	trajectory string
	radius     float64
	speed      float64
	liveView   bool
	// Solve parameters
	baseX, baseY     float64
	targetX, targetY float64
	jsonOut          bool
	// Export parameters
	outFile string
	frameAt int
	width   int
	height  int
)

// main registers commands and flags and executes the root command.
// It exits the process with status 1 if command execution returns an error.
func main() {
	rootCmd := &cobra.Command{
		Use:          "armik",
		Short:        "planar FABRIK chain solver lab",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".armik", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")
	rootCmd.PersistentFlags().Float64SliceVar(&lengths, "lengths", nil, "segment lengths, e.g. 150,120,90")
	rootCmd.PersistentFlags().IntVar(&maxIterations, "max-iter", kinematics.DefaultMaxIterations, "solver iteration cap")
	rootCmd.PersistentFlags().Float64Var(&tolerance, "tol", kinematics.DefaultTolerance, "solver tolerance")

	solveCmd := &cobra.Command{
		Use:   "solve",
		Short: "solve one target from a straight pose",
		RunE:  solveOnce,
	}
	solveCmd.Flags().Float64Var(&baseX, "base-x", 0, "base x")
	solveCmd.Flags().Float64Var(&baseY, "base-y", 0, "base y")
	solveCmd.Flags().Float64Var(&targetX, "x", 50, "target x")
	solveCmd.Flags().Float64Var(&targetY, "y", -50, "target y")
	solveCmd.Flags().BoolVar(&jsonOut, "json", false, "print JSON")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "drive the chain along a trajectory and store the run",
		RunE:  runTrajectory,
	}
	runCmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames to solve")
	runCmd.Flags().IntVar(&fps, "fps", config.DefaultFPS, "frames per second (time stamps)")
	runCmd.Flags().StringVar(&trajectory, "trajectory", config.DefaultTrajectory, "static, circle, lissajous or line")
	runCmd.Flags().Float64Var(&radius, "radius", config.DefaultRadius, "trajectory radius")
	runCmd.Flags().Float64Var(&speed, "speed", config.DefaultSpeed, "trajectory speed (rev/s)")
	runCmd.Flags().BoolVar(&liveView, "live", false, "print frames while running")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a run (or one frame) to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default <run_id>.svg)")
	exportSVGCmd.Flags().IntVar(&frameAt, "frame", -1, "draw a single frame instead of the trail")
	exportSVGCmd.Flags().IntVar(&width, "width", 720, "image width")
	exportSVGCmd.Flags().IntVar(&height, "height", 468, "image height")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default <run_id>.json)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "replay a scripted input scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive view; drag the target with the mouse",
		RunE:  runLive,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tLENGTHS\tTRAJECTORY\tFRAMES")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%v\t%s\t%d\n", name, p.Chain.Lengths, p.Run.Trajectory, p.Run.Frames)
			}
			return w.Flush()
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "compare solver settings on the same trajectory",
		RunE:  benchSolver,
	}
	benchCmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames per case")
	benchCmd.Flags().StringVar(&trajectory, "trajectory", config.DefaultTrajectory, "trajectory")

	rootCmd.AddCommand(solveCmd, runCmd, listCmd, plotCmd, exportSVGCmd, exportJSONCmd, scenarioCmd, liveCmd, presetsCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// loadConfig layers defaults, preset, config file and explicit flags, in
// that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("lengths") {
		cfg.Chain.Lengths = lengths
	}
	if flags.Changed("max-iter") {
		cfg.Solver.MaxIterations = maxIterations
	}
	if flags.Changed("tol") {
		cfg.Solver.Tolerance = tolerance
	}
	if flags.Changed("frames") {
		cfg.Run.Frames = frames
	}
	if flags.Changed("fps") {
		cfg.Run.FPS = fps
	}
	if flags.Changed("trajectory") {
		cfg.Run.Trajectory = trajectory
	}
	if flags.Changed("radius") {
		cfg.Run.Radius = radius
	}
	if flags.Changed("speed") {
		cfg.Run.Speed = speed
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newSession(cfg *config.Config, log *zap.Logger) (*session.Session, error) {
	return session.New(cfg.Chain.Lengths, session.Config{
		Width:  cfg.Viewport.Width,
		Height: cfg.Viewport.Height,
		Solver: cfg.SolverOptions(),
		Logger: log,
	})
}

func buildTrajectory(cfg *config.Config, base r2.Point) (sim.Trajectory, error) {
	rc := cfg.Run
	if rc.Trajectory == "static" && (rc.TargetX != 0 || rc.TargetY != 0) {
		return sim.Static{Point: r2.Point{X: rc.TargetX, Y: rc.TargetY}}, nil
	}
	return sim.NewTrajectory(rc.Trajectory, base, rc.Radius, rc.Speed)
}

func solveOnce(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	base := r2.Point{X: baseX, Y: baseY}
	target := r2.Point{X: targetX, Y: targetY}
	pose := kinematics.Straight(base, cfg.Chain.Lengths)
	stats, err := kinematics.NewSolver(cfg.SolverOptions()).Solve(pose, base, target, cfg.Chain.Lengths)
	if err != nil {
		return err
	}

	if jsonOut {
		out := struct {
			Base    [2]float64   `json:"base"`
			Target  [2]float64   `json:"target"`
			Lengths []float64    `json:"lengths"`
			Joints  [][2]float64 `json:"joints"`
			Stats   struct {
				Iterations int     `json:"iterations"`
				Reachable  bool    `json:"reachable"`
				Converged  bool    `json:"converged"`
				Error      float64 `json:"error"`
			} `json:"stats"`
		}{
			Base:    [2]float64{base.X, base.Y},
			Target:  [2]float64{target.X, target.Y},
			Lengths: cfg.Chain.Lengths,
		}
		for _, p := range pose {
			out.Joints = append(out.Joints, [2]float64{p.X, p.Y})
		}
		out.Stats.Iterations = stats.Iterations
		out.Stats.Reachable = stats.Reachable
		out.Stats.Converged = stats.Converged
		out.Stats.Error = stats.Error

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("base:   (%.3f, %.3f)\n", base.X, base.Y)
	fmt.Printf("target: (%.3f, %.3f)\n\n", target.X, target.Y)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "JOINT\tX\tY")
	for i, p := range pose {
		fmt.Fprintf(w, "P%d\t%.4f\t%.4f\n", i, p.X, p.Y)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\niterations: %d\nreachable: %t\nconverged: %t\nerror: %.6f\n",
		stats.Iterations, stats.Reachable, stats.Converged, stats.Error)
	return nil
}

func runTrajectory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger()
	defer log.Sync()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	sess, err := newSession(cfg, log)
	if err != nil {
		return err
	}
	traj, err := buildTrajectory(cfg, sess.Snapshot().Base)
	if err != nil {
		return err
	}

	runner := sim.New(sess, traj)
	for _, m := range metrics.Default(cfg.Chain.Lengths) {
		runner.AddMetric(m)
	}
	if liveView {
		r := viz.NewRenderer(os.Stdout, 60, 18, cfg.Viewport.Height, 30)
		r.Start()
		defer r.Stop()
		runner.AddObserver(r)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s (%d segments, %s)...\n", cfg.Name, len(cfg.Chain.Lengths), cfg.Run.Trajectory)
	start := time.Now()
	result, err := runner.Run(ctx, sim.Config{Frames: cfg.Run.Frames, FPS: cfg.Run.FPS, Logger: log})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunMetadata{
		Name:          cfg.Name,
		Lengths:       cfg.Chain.Lengths,
		MaxIterations: cfg.Solver.MaxIterations,
		Tolerance:     cfg.Solver.Tolerance,
		Trajectory:    cfg.Run.Trajectory,
		FPS:           cfg.Run.FPS,
	}, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d\n", len(result.Frames))
	printMetrics(result.Metrics)
	return nil
}

func printMetrics(m map[string]float64) {
	fmt.Println("\nmetrics:")
	for _, name := range []string{"effector_error", "max_rigidity_error", "mean_iterations", "convergence_rate", "reachable_fraction"} {
		if v, ok := m[name]; ok {
			fmt.Printf("  %s: %.6f\n", name, v)
		}
	}
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
	fmt.Fprintln(w, "ID\tNAME\tTIME\tFRAMES\tSEGMENTS\tTRAJECTORY\tMAX_ITER\tTOL")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%d\t%.3f\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			len(run.Lengths),
			run.Trajectory,
			run.MaxIterations,
			run.Tolerance,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	frames, _, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("chain: %v\n", meta.Lengths)
	fmt.Printf("frames: %d\n\n", len(frames))

	series := []struct {
		caption string
		value   func(session.Frame) float64
	}{
		{"effector error", func(f session.Frame) float64 { return f.Stats.Error }},
		{"iterations", func(f session.Frame) float64 { return float64(f.Stats.Iterations) }},
		{"effector x", func(f session.Frame) float64 { return f.Pose.Effector().X }},
		{"effector y", func(f session.Frame) float64 { return f.Pose.Effector().Y }},
	}

	for _, s := range series {
		data := make([]float64, len(frames))
		for i, f := range frames {
			data[i] = s.value(f)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	frames, _, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("run %s has no frames", runID)
	}

	var svg string
	if frameAt >= 0 {
		if frameAt >= len(frames) {
			return fmt.Errorf("frame %d out of range (run has %d frames)", frameAt, len(frames))
		}
		f := frames[frameAt]
		svg = export.PoseToSVG(f.Pose, f.Target, width, height)
	} else {
		svg = export.RunToSVG(frames, width, height)
	}

	path := outFile
	if path == "" {
		path = runID + ".svg"
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	frames, times, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	path := outFile
	if path == "" {
		path = runID + ".json"
	}
	data := export.NewExportData(meta.Name, meta.Lengths, meta.MaxIterations, meta.Tolerance, frames, times, meta.Metrics)
	if err := export.ExportJSON(path, data); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	log := newLogger()
	defer log.Sync()

	sc, err := scenario.Load(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := scenario.Run(ctx, sc, log)
	if err != nil {
		return err
	}

	fmt.Printf("scenario: %s\n", res.Name)
	if sc.Description != "" {
		fmt.Printf("%s\n", sc.Description)
	}
	fmt.Printf("frames: %d, events: %d\n\n", len(res.Frames), len(sc.Events))

	events := make(map[int][]string)
	for _, st := range sc.Events {
		events[st.Frame] = append(events[st.Frame], st.Type)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FRAME\tEVENTS\tTARGET\tEFFECTOR\tITER\tERROR")
	for _, f := range res.Frames {
		ev, ok := events[f.Index]
		if !ok && f.Index != len(res.Frames)-1 {
			continue
		}
		eff := f.Pose.Effector()
		fmt.Fprintf(w, "%d\t%s\t(%.1f, %.1f)\t(%.1f, %.1f)\t%d\t%.3f\n",
			f.Index, strings.Join(ev, ","), f.Target.X, f.Target.Y, eff.X, eff.Y, f.Stats.Iterations, f.Stats.Error)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// The terminal belongs to the view, so logs are dropped here.
	sess, err := newSession(cfg, zap.NewNop())
	if err != nil {
		return err
	}
	return viz.Run(sess)
}

func benchSolver(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger()
	defer log.Sync()

	sessCfg := session.Config{Width: cfg.Viewport.Width, Height: cfg.Viewport.Height, Logger: log}
	base := r2.Point{X: cfg.Viewport.Width / 2, Y: cfg.Viewport.Height * 0.75}
	traj, err := buildTrajectory(cfg, base)
	if err != nil {
		return err
	}

	var cases []sim.SweepCase
	for _, iters := range []int{1, 4, 16, 64} {
		for _, tol := range []float64{0.5, 0.05} {
			cases = append(cases, sim.SweepCase{
				Name:    fmt.Sprintf("iter=%d tol=%g", iters, tol),
				Options: kinematics.Options{MaxIterations: iters, Tolerance: tol},
			})
		}
	}

	sweep := sim.NewSweep(cfg.Chain.Lengths, sessCfg, traj, metrics.Default)
	fmt.Printf("benchmarking %v on %s, %d frames per case\n\n", cfg.Chain.Lengths, cfg.Run.Trajectory, cfg.Run.Frames)

	start := time.Now()
	results, err := sweep.Run(context.Background(), cases, sim.Config{Frames: cfg.Run.Frames, FPS: cfg.Run.FPS, Logger: log})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CASE\tMEAN_ERR\tMEAN_ITER\tCONVERGED\tRIGIDITY")
	for i, res := range results {
		m := res.Metrics
		fmt.Fprintf(w, "%s\t%.4f\t%.2f\t%.1f%%\t%.2e\n",
			cases[i].Name, m["effector_error"], m["mean_iterations"], 100*m["convergence_rate"], m["max_rigidity_error"])
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d cases in %v\n", len(cases), elapsed)
	return nil
}
