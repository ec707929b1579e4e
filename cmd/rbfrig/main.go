// rbfrig retargets marker motion onto a face mesh with RBF deformation.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/Faultbox/rbfrig/internal/animate"
	"github.com/Faultbox/rbfrig/internal/config"
	"github.com/Faultbox/rbfrig/internal/distance"
	"github.com/Faultbox/rbfrig/internal/logger"
	"github.com/Faultbox/rbfrig/internal/marker"
	"github.com/Faultbox/rbfrig/internal/mesh"
	"github.com/Faultbox/rbfrig/internal/metrics"
	"github.com/Faultbox/rbfrig/pkg/formats"
)

var flagCalibrate = flag.Int("calibrate", animate.ReferenceFrame, "Calibration frame for transfer")

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "match":
		cmdMatch(args)
	case "matrix":
		cmdMatrix(args)
	case "animate", "run":
		cmdAnimate(args)
	case "transfer":
		cmdTransfer(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`rbfrig - marker-driven RBF mesh deformation

Usage:
  rbfrig <command> [options]

Commands:
  match                              Bind markers to their nearest vertices
  matrix [output_dir]                Compute all three distance caches
  animate                            Deform the mesh over the frame range
  transfer <capture.yaml> <out.yaml> Retarget captured motion onto the rig

Options (all commands):
  -config <file>       Config file (default ./rbfrig.yaml)
  -mesh <file.obj>     Mesh at the reference pose
  -rig <file.yaml>     Rig with markers and geodesic regions
  -metric <name>       Euclidean, Geodesics or Hybrid
  -first/-last/-step   Frame range
  -stiffness <list>    Per-marker stiffness, e.g. 2,3,3
  -cache <dir>         Distance cache folder
  -on-missing <mode>   recompute or abort when a cache file is absent
  -out <file>          Displacement stream (- for stdout)
  -obj-dir <dir>       Write a deformed OBJ per frame
  -workers <n>         Worker goroutines
  -debug               Debug logging

Examples:
  rbfrig match -mesh head.obj -rig head.rig.yaml
  rbfrig matrix -mesh head.obj -rig head.rig.yaml ./matrices
  rbfrig animate -metric hybrid -cache ./matrices -first 0 -last 100 -step 5 -out disp.txt
  rbfrig transfer -rig head.rig.yaml -first 0 -last 300 capture.yaml head.anim.yaml`)
}

// session holds the loaded inputs shared by the commands.
type session struct {
	cfg   *config.Config
	rig   *formats.Rig
	mesh  *mesh.Mesh
	track *marker.Track
}

// setup parses flags, loads configuration, initializes logging and
// returns the positional arguments.
func setup(args []string) (*config.Config, []string) {
	if err := config.ParseArgs(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	logger.Sugar.Debugf("Config: %+v", cfg)

	return cfg, flag.Args()
}

// load reads the mesh and rig named by the configuration.
func load(cfg *config.Config, needMesh bool) *session {
	s := &session{cfg: cfg}
	if cfg.Input.Rig == "" {
		fatal(fmt.Errorf("no rig file (set -rig or input.rig)"))
	}

	rig, err := formats.ParseRigFile(cfg.Input.Rig)
	if err != nil {
		fatal(err)
	}
	track, err := marker.FromRig(rig)
	if err != nil {
		fatal(err)
	}
	s.rig, s.track = rig, track

	if needMesh {
		if cfg.Input.Mesh == "" {
			fatal(fmt.Errorf("no mesh file (set -mesh or input.mesh)"))
		}
		m, err := mesh.LoadOBJ(cfg.Input.Mesh)
		if err != nil {
			fatal(err)
		}
		s.mesh = m
		logger.Info("inputs loaded",
			zap.String("mesh", cfg.Input.Mesh),
			zap.Int("vertices", m.VertexCount()),
			zap.Int("edges", m.EdgeCount()),
			zap.Int("markers", track.Count()))
	}
	return s
}

func fatal(err error) {
	logger.Sync()
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// interruptible returns a context cancelled by Ctrl-C.
func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func cmdMatch(args []string) {
	cfg, _ := setup(args)
	defer logger.Sync()
	s := load(cfg, true)

	corr, err := marker.CorrespondAt(s.mesh, s.track, animate.ReferenceFrame)
	if err != nil {
		fatal(err)
	}

	fmt.Printf("%-24s %-20s %8s %10s\n", "MARKER", "GROUP", "VERTEX", "DISTANCE")
	for i, m := range s.track.Markers() {
		d := s.track.Position(i, animate.ReferenceFrame).Distance(s.mesh.VertexPosition(corr[i]))
		fmt.Printf("%-24s %-20s %8d %10.4f\n", m.Name, m.Group, corr[i], d)
	}
}

func cmdMatrix(args []string) {
	cfg, rest := setup(args)
	defer logger.Sync()
	s := load(cfg, true)

	dir := cfg.Cache.Dir
	if len(rest) > 0 {
		dir = rest[0]
	}
	if dir == "" {
		fatal(fmt.Errorf("no output folder (pass one or set -cache)"))
	}

	corr, err := marker.CorrespondAt(s.mesh, s.track, animate.ReferenceFrame)
	if err != nil {
		fatal(err)
	}
	engine, err := distance.NewEngine(s.mesh, s.rig.RegionVertices())
	if err != nil {
		fatal(err)
	}

	ctx, stop := interruptible()
	defer stop()

	tables, ok, err := distance.BuildAll(ctx, engine, corr, distance.Options{Workers: cfg.Solve.Workers})
	if err != nil {
		fatal(err)
	}
	if !ok {
		fmt.Fprintln(os.Stderr, "Cancelled, no cache files written")
		return
	}
	if err := distance.SaveFiles(dir, tables); err != nil {
		fatal(err)
	}

	for _, m := range distance.Metrics {
		fmt.Println(distance.CachePath(dir, m))
	}
}

func cmdAnimate(args []string) {
	cfg, _ := setup(args)
	defer logger.Sync()
	s := load(cfg, true)

	metric, err := cfg.Metric()
	if err != nil {
		fatal(err)
	}
	cache, err := cfg.CacheOptions()
	if err != nil {
		fatal(err)
	}
	stiffness, err := marker.Stiffness(s.track.Markers(), cfg.Solve.Stiffness, cfg.Solve.DefaultStiffness)
	if err != nil {
		fatal(err)
	}

	var collector *metrics.Collector
	if cfg.Metrics.Textfile != "" {
		collector = metrics.New()
	}

	var sinks []animate.Sink
	var stream *animate.Stream
	streamPath := cfg.Output.Stream
	if streamPath == "" && cfg.Output.OBJDir == "" {
		streamPath = "-"
	}
	if streamPath != "" {
		var w io.Writer = os.Stdout
		if streamPath != "-" {
			f, err := os.Create(streamPath)
			if err != nil {
				fatal(err)
			}
			defer f.Close()
			w = f
		}
		stream = animate.NewStream(w)
		sinks = append(sinks, stream)
	}
	if cfg.Output.OBJDir != "" {
		sinks = append(sinks, animate.NewOBJSequence(cfg.Output.OBJDir, s.rig.Name, s.mesh.Faces()))
	}

	driver := &animate.Driver{
		Geometry:  s.mesh,
		Markers:   s.track,
		Metric:    metric,
		Frames:    cfg.Frames(),
		Stiffness: stiffness,
		Regions:   s.rig.RegionVertices(),
		Cache:     cache,
		Workers:   cfg.Solve.Workers,
		Metrics:   collector,
	}

	ctx, stop := interruptible()
	defer stop()

	res, runErr := driver.Run(ctx, animate.Multi(sinks...))
	if stream != nil {
		if err := stream.Flush(); err != nil && runErr == nil {
			runErr = err
		}
	}
	if err := collector.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		logger.Warn("metrics export failed", zap.Error(err))
	}
	if runErr != nil {
		fatal(runErr)
	}

	status := "completed"
	if !res.Completed {
		status = "cancelled"
	}
	fmt.Fprintf(os.Stderr, "%s: %d frames applied, precompute %v, %v/frame\n",
		status, res.FramesApplied, res.Stats.Precompute, res.Stats.AverageFrame())
}

func cmdTransfer(args []string) {
	cfg, rest := setup(args)
	defer logger.Sync()

	if len(rest) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: rbfrig transfer [options] <capture.yaml> <out.yaml>")
		os.Exit(1)
	}
	s := load(cfg, false)

	capture, err := formats.ParseRigFile(rest[0])
	if err != nil {
		fatal(err)
	}
	captureTrack, err := marker.FromRig(capture)
	if err != nil {
		fatal(err)
	}

	retarget, err := marker.Calibrate(s.track, captureTrack, *flagCalibrate)
	if err != nil {
		fatal(err)
	}

	out := &formats.Rig{
		Name:    s.rig.Name,
		Groups:  s.rig.Groups,
		Markers: marker.Bake(retarget, s.track.Markers(), cfg.Solve.FirstFrame, cfg.Solve.LastFrame),
		Regions: s.rig.Regions,
	}
	if err := out.SaveTo(rest[1]); err != nil {
		fatal(err)
	}

	logger.Info("motion transferred",
		zap.String("capture", rest[0]),
		zap.Int("calibration_frame", *flagCalibrate),
		zap.Int("markers", retarget.Count()))
	fmt.Printf("Wrote %s (%d markers, frames %d-%d)\n", rest[1], retarget.Count(), cfg.Solve.FirstFrame, cfg.Solve.LastFrame)
}
