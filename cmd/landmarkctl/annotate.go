package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"LandmarkGolang/pkg/landmark"
	"LandmarkGolang/pkg/log"
	"LandmarkGolang/pkg/overlay"

	cli "github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var annotateCmd = &cli.Command{
	Use:   "annotate [flags] IMAGE...",
	Short: "Draw a saved detector payload onto images",
	Long: "Normalize a raw detector payload and render it onto each image. " +
		"The payload is read once and applied to every image, so relative coordinates are the usual choice.",
	Args: cli.MinimumNArgs(1),
	RunE: Annotate,
}

func init() {
	rootCmd.AddCommand(annotateCmd)

	annotateCmd.Flags().StringP("payload", "p", "", "Path to the raw detector JSON output.")
	annotateCmd.Flags().String("schema", string(landmark.SchemaRegions), "Payload schema: regions, mesh or keypoints.")
	annotateCmd.Flags().String("coordinates", string(landmark.Relative), "Coordinate system: absolute, relative or infer.")
	annotateCmd.Flags().String("preset", string(landmark.PresetFullFace), "Preset: full_face, nose_only or nose_extended.")
	annotateCmd.Flags().Int("radius", 0, "Marker radius override in pixels.")
	annotateCmd.Flags().StringP("output", "o", "./output", "Directory for annotated images.")
	annotateCmd.Flags().IntP("jobs", "j", 4, "Images processed concurrently.")

	_ = annotateCmd.MarkFlagRequired("payload")
}

type annotateOptions struct {
	raw       landmark.RawOutput
	preset    landmark.Preset
	config    landmark.RenderConfig
	outputDir string
}

func Annotate(cmd *cli.Command, args []string) error {
	payloadPath, _ := cmd.Flags().GetString("payload")
	schema, _ := cmd.Flags().GetString("schema")
	coordinates, _ := cmd.Flags().GetString("coordinates")
	presetName, _ := cmd.Flags().GetString("preset")
	radius, _ := cmd.Flags().GetInt("radius")
	outputDir, _ := cmd.Flags().GetString("output")
	jobs, _ := cmd.Flags().GetInt("jobs")

	body, err := os.ReadFile(payloadPath)
	if err != nil {
		return fmt.Errorf("read payload: %w", err)
	}
	coords, err := landmark.ParseCoordinateSystem(coordinates)
	if err != nil {
		return err
	}
	preset, err := landmark.ParsePreset(presetName)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	opts := annotateOptions{
		raw: landmark.RawOutput{
			Schema:      landmark.Schema(schema),
			Coordinates: coords,
			Body:        body,
		},
		preset:    preset,
		config:    landmark.RenderConfig{MarkerRadius: radius},
		outputDir: outputDir,
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	g, ctx := errgroup.WithContext(parent)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for _, path := range args {
		path := path
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			out, err := annotateFile(opts, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			log.Info(log.Fields{"input": path, "output": out}, "Annotated image")
			return nil
		})
	}
	return g.Wait()
}

// annotateFile renders opts onto the image at path and returns where the
// result was written.
func annotateFile(opts annotateOptions, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	img, err := overlay.Decode(data)
	if err != nil {
		return "", err
	}

	bounds := img.Bounds()
	result, err := landmark.Normalize(opts.raw, bounds.Dx(), bounds.Dy())
	if err != nil {
		return "", err
	}
	if result.Empty() {
		return "", fmt.Errorf("payload has no faces")
	}

	selections := landmark.Select(result, opts.preset, opts.config)
	encoded, err := overlay.Encode(overlay.Render(img, selections, overlay.DefaultColorTable(), opts.config))
	if err != nil {
		return "", err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	out := filepath.Join(opts.outputDir, fmt.Sprintf("%s_%s.jpg", name, opts.preset))
	if err := os.WriteFile(out, encoded, 0644); err != nil {
		return "", err
	}
	return out, nil
}
