package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/parsaforughi/pixxel-uv-effect/internal/frame"
	"github.com/parsaforughi/pixxel-uv-effect/internal/landmark"
	"github.com/parsaforughi/pixxel-uv-effect/internal/pipeline"
	"github.com/parsaforughi/pixxel-uv-effect/internal/provider"
	"github.com/spf13/cobra"
)

// imageCmd represents the image command.
var imageCmd = &cobra.Command{
	Use:   "image [input]",
	Short: "Apply the UV effect to a single image",
	Long: `Process one image file through the full effect pipeline.

Landmarks come from the face mesh model by default; --landmarks reads a
JSON file of normalized (x, y, z) points instead, which needs no model.
Without landmarks from either source the whole-frame fallback effect is
applied.

Supported formats: JPEG, PNG, BMP, TIFF

Examples:
  uvcam image portrait.jpg
  uvcam image portrait.jpg --output out.png
  uvcam image portrait.jpg --landmarks pose.json`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input file provided")
		}
		input := args[0]
		if !frame.Exists(input) {
			return fmt.Errorf("input file does not exist: %s", input)
		}

		cfg := GetConfig()
		output, _ := cmd.Flags().GetString("output")
		landmarksFile, _ := cmd.Flags().GetString("landmarks")
		regionsFile, _ := cmd.Flags().GetString("regions")
		if regionsFile == "" {
			regionsFile = cfg.Pipeline.RegionsFile
		}
		if output == "" {
			ext := filepath.Ext(input)
			output = strings.TrimSuffix(input, ext) + "_uv." + cfg.Output.Format
		}

		builder := pipeline.NewBuilder().WithConfig(cfg.ToPipelineConfig())
		if _, err := builder.WithRegionDefinitions(regionsFile); err != nil {
			return err
		}
		if landmarksFile != "" {
			set, err := loadLandmarks(landmarksFile)
			if err != nil {
				return err
			}
			builder.WithProvider(provider.NewStatic(set))
		} else if cfg.Detector.ModelPath == "" {
			// no landmark source at all: render the whole-frame fallback
			builder.WithProvider(provider.NewStatic(nil))
		}

		pl, err := builder.Build()
		if err != nil {
			return err
		}
		defer func() { _ = pl.Close() }()

		buf, err := frame.Load(input)
		if err != nil {
			return err
		}
		out, err := pl.ProcessFrame(cmd.Context(), buf)
		if err != nil {
			return err
		}
		if err := out.Save(output); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (state: %s)\n", output, pl.State())
		return nil
	},
}

// loadLandmarks reads a JSON file of normalized landmark points.
func loadLandmarks(path string) (landmark.Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read landmarks: %w", err)
	}
	var points []struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
		Z float64 `json:"z"`
	}
	if err := json.Unmarshal(data, &points); err != nil {
		return nil, fmt.Errorf("parse landmarks %s: %w", path, err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("landmarks file %s holds no points", path)
	}
	set := make(landmark.Set, len(points))
	for i, p := range points {
		set[i] = landmark.Point{X: p.X, Y: p.Y, Z: p.Z}
	}
	return set, nil
}

func init() {
	rootCmd.AddCommand(imageCmd)

	imageCmd.Flags().StringP("output", "o", "", "output file path (default: <input>_uv.<format>)")
	imageCmd.Flags().String("landmarks", "", "JSON file of normalized landmark points (skips the detector)")
	imageCmd.Flags().String("regions", "", "YAML file overlaying the built-in landmark region table")
}
