package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagMesh      = flag.String("mesh", "", "OBJ mesh at the reference pose")
	flagRig       = flag.String("rig", "", "Rig file with markers and geodesic regions")
	flagMetric    = flag.String("metric", "", "Distance metric: Euclidean, Geodesics or Hybrid")
	flagFirst     = flag.Int("first", -1, "First frame")
	flagLast      = flag.Int("last", -1, "Last frame")
	flagStep      = flag.Int("step", 0, "Frame step")
	flagStiffness = flag.String("stiffness", "", "Comma-separated per-marker stiffness, e.g. 2,3,3")
	flagWorkers   = flag.Int("workers", -1, "Worker goroutines (0 or 1 is serial)")
	flagCacheDir  = flag.String("cache", "", "Distance cache folder")
	flagOnMissing = flag.String("on-missing", "", "Missing cache policy: recompute or abort")
	flagStream    = flag.String("out", "", "Displacement stream file (- for stdout)")
	flagOBJDir    = flag.String("obj-dir", "", "Folder for deformed OBJ frames")
	flagTextfile  = flag.String("metrics-textfile", "", "Write Prometheus metrics to this file")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) error {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagMesh != "" {
		cfg.Input.Mesh = *flagMesh
	}
	if *flagRig != "" {
		cfg.Input.Rig = *flagRig
	}
	if *flagMetric != "" {
		cfg.Solve.Metric = *flagMetric
	}
	if *flagFirst >= 0 {
		cfg.Solve.FirstFrame = *flagFirst
	}
	if *flagLast >= 0 {
		cfg.Solve.LastFrame = *flagLast
	}
	if *flagStep > 0 {
		cfg.Solve.Step = *flagStep
	}
	if *flagStiffness != "" {
		stiffness, err := ParseStiffness(*flagStiffness)
		if err != nil {
			return err
		}
		cfg.Solve.Stiffness = stiffness
	}
	if *flagWorkers >= 0 {
		cfg.Solve.Workers = *flagWorkers
	}
	if *flagCacheDir != "" {
		cfg.Cache.Dir = *flagCacheDir
	}
	if *flagOnMissing != "" {
		cfg.Cache.OnMissing = *flagOnMissing
	}
	if *flagStream != "" {
		cfg.Output.Stream = *flagStream
	}
	if *flagOBJDir != "" {
		cfg.Output.OBJDir = *flagOBJDir
	}
	if *flagTextfile != "" {
		cfg.Metrics.Textfile = *flagTextfile
	}
	return nil
}

// ParseArgs parses args, typically the arguments after a subcommand.
func ParseArgs(args []string) error {
	return flag.CommandLine.Parse(args)
}
