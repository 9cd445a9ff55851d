package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/parsaforughi/pixxel-uv-effect/internal/frame"
	"github.com/parsaforughi/pixxel-uv-effect/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var frameExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff"}

// runCmd represents the run command.
var runCmd = &cobra.Command{
	Use:   "run [frames-dir]",
	Short: "Render a frame sequence at a fixed rate",
	Long: `Process a directory of image frames through the effect pipeline at
the configured frame rate, writing rendered frames to the output
directory. Frames are consumed in lexical order, so zero-padded
sequence numbers keep playback order.

Examples:
  uvcam run ./frames --output-dir ./rendered
  uvcam run ./frames --fps 24 --detection-fps 8
  uvcam run ./frames --metrics-addr localhost:9100`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no frames directory provided")
		}
		framesDir := args[0]

		cfg := GetConfig()
		if fps, _ := cmd.Flags().GetInt("fps"); fps > 0 {
			cfg.Pipeline.TargetFPS = fps
		}
		if dfps, _ := cmd.Flags().GetInt("detection-fps"); dfps > 0 {
			cfg.Pipeline.DetectionFPS = dfps
		}
		outputDir, _ := cmd.Flags().GetString("output-dir")
		if outputDir == "" {
			outputDir = cfg.Output.Dir
		}
		if outputDir == "" {
			outputDir = framesDir + "_rendered"
		}
		if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
			cfg.Metrics.Enabled = true
			cfg.Metrics.Addr = addr
		}

		src, err := newDirSource(framesDir)
		if err != nil {
			return err
		}
		sink, err := newDirSink(outputDir, cfg.Output.Format)
		if err != nil {
			return err
		}

		builder := pipeline.NewBuilder().WithConfig(cfg.ToPipelineConfig())
		if _, err := builder.WithRegionDefinitions(cfg.Pipeline.RegionsFile); err != nil {
			return err
		}
		pl, err := builder.Build()
		if err != nil {
			return err
		}
		defer func() { _ = pl.Close() }()

		if cfg.Metrics.Enabled {
			go serveMetrics(cfg.Metrics.Addr)
		}

		start := time.Now()
		if err := pl.Run(cmd.Context(), src, sink); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "rendered %d frames in %s (final state: %s)\n",
			sink.written, time.Since(start).Round(time.Millisecond), pl.State())
		return nil
	},
}

// serveMetrics exposes the Prometheus registry. Failures are logged,
// never fatal; rendering does not depend on metrics.
func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	slog.Info("metrics listener started", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Warn("metrics listener stopped", "error", err)
	}
}

// dirSource reads image frames from a directory in lexical order.
type dirSource struct {
	paths []string
	next  int
}

func newDirSource(dir string) (*dirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read frames directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if slices.Contains(frameExtensions, strings.ToLower(filepath.Ext(e.Name()))) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no image frames found in %s", dir)
	}
	slices.Sort(paths)
	return &dirSource{paths: paths}, nil
}

func (s *dirSource) NextFrame(_ context.Context) (*frame.Buffer, error) {
	if s.next >= len(s.paths) {
		return nil, io.EOF
	}
	buf, err := frame.Load(s.paths[s.next])
	if err != nil {
		return nil, err
	}
	s.next++
	return buf, nil
}

// dirSink writes rendered frames as a numbered sequence.
type dirSink struct {
	dir     string
	format  string
	written int
}

func newDirSink(dir, format string) (*dirSink, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &dirSink{dir: dir, format: format}, nil
}

func (s *dirSink) WriteFrame(_ context.Context, buf *frame.Buffer) error {
	path := filepath.Join(s.dir, fmt.Sprintf("frame_%05d.%s", s.written, s.format))
	if err := buf.Save(path); err != nil {
		return err
	}
	s.written++
	return nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("output-dir", "", "directory for rendered frames (default: <frames-dir>_rendered)")
	runCmd.Flags().Int("fps", 0, "render rate override")
	runCmd.Flags().Int("detection-fps", 0, "detector admission rate override")
	runCmd.Flags().String("metrics-addr", "", "expose Prometheus metrics on this address")
}
