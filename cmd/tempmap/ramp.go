package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phanxgames/tempmap"
	"github.com/phanxgames/tempmap/internal/config"
	"github.com/phanxgames/tempmap/internal/render"
)

func newRampCmd() *cobra.Command {
	var scenePath, outPath, mode string
	var width, height int
	var labeled bool

	cmd := &cobra.Command{
		Use:   "ramp",
		Short: "Render a color ramp as a PNG strip",
		RunE: func(cmd *cobra.Command, args []string) error {
			if width <= 0 || height <= 0 {
				return fmt.Errorf("invalid strip size %dx%d", width, height)
			}
			bps := tempmap.DefaultColorMap
			if scenePath != "" {
				scene, err := config.LoadScene(scenePath)
				if err != nil {
					return err
				}
				bps = scene.HexBreakpoints()
				if !cmd.Flags().Changed("mode") {
					mode = scene.Ramp.Mode
				}
			}
			m, err := tempmap.ParseRampMode(mode)
			if err != nil {
				return err
			}
			ramp, err := tempmap.NewColorRampHex(bps, m)
			if err != nil {
				return err
			}
			if err := writePNGFile(outPath, render.RampStrip(ramp, width, height, labeled).Image()); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Wrote %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&scenePath, "config", "c", "", "Take breakpoints from a scene file")
	cmd.Flags().StringVarP(&outPath, "output", "o", "ramp.png", "Output PNG path")
	cmd.Flags().StringVar(&mode, "mode", "step", "Ramp mode: step or linear")
	cmd.Flags().IntVar(&width, "width", 256, "Strip width")
	cmd.Flags().IntVar(&height, "height", 24, "Strip height")
	cmd.Flags().BoolVar(&labeled, "labeled", false, "Print the ramp range below the strip")
	return cmd
}
