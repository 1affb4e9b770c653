package main

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/phanxgames/tempmap"
	"github.com/phanxgames/tempmap/internal/config"
	"github.com/phanxgames/tempmap/internal/export"
	"github.com/phanxgames/tempmap/internal/logger"
	"github.com/phanxgames/tempmap/internal/render"
)

func newRenderCmd() *cobra.Command {
	var scenePath, outPath, fieldPath string
	var labels, quiet, verbose bool

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a scene file to PNG",
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			log := logger.New(os.Stderr, level)

			scene, err := config.LoadScene(scenePath)
			if err != nil {
				return err
			}
			if outPath == "" {
				outPath = defaultOutput(scenePath, ".png")
			}
			mode, err := scene.RampMode()
			if err != nil {
				return err
			}
			ramp, err := tempmap.NewColorRampHex(scene.HexBreakpoints(), mode)
			if err != nil {
				return fmt.Errorf("ramp: %w", err)
			}

			var s *spinner.Spinner
			if !verbose && !quiet {
				s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
				s.Suffix = fmt.Sprintf(" Rendering %dx%d, %d points...", scene.Width, scene.Height, len(scene.Points))
				s.Start()
			}

			res, err := render.Scene(scene, render.Config{Ramp: ramp, Logger: log, Debug: verbose})

			if s != nil {
				s.Stop()
			}
			if err != nil {
				return err
			}

			var img image.Image = res.Image
			if labels {
				img = render.DrawLabels(img, res.Labels)
			}
			if err := writePNGFile(outPath, img); err != nil {
				return err
			}
			if fieldPath != "" {
				if err := export.SaveField(fieldPath, res.Field); err != nil {
					return fmt.Errorf("write field: %w", err)
				}
			}

			if !quiet {
				fmt.Fprintf(os.Stderr, "Wrote %s (%s)\n", outPath, res.Stats.Total().Round(time.Microsecond))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&scenePath, "config", "c", "scene.yaml", "Path to scene file")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Output PNG path (default: scene name with .png)")
	cmd.Flags().StringVar(&fieldPath, "field", "", "Also write the accumulation field (zstd)")
	cmd.Flags().BoolVar(&labels, "labels", false, "Draw point labels onto the image")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log timings at debug level")
	return cmd
}
