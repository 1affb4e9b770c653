// Package config loads scene files and server settings for the tempmap
// command.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/phanxgames/tempmap"
)

// Scene describes one heat map render: surface size, renderer options,
// color ramp, calibration and sample points. It is read from YAML files by
// the CLI and from JSON request bodies by the server.
type Scene struct {
	Width             int             `yaml:"width" json:"width"`
	Height            int             `yaml:"height" json:"height"`
	FramebufferFactor float64         `yaml:"framebuffer_factor" json:"framebuffer_factor"`
	FieldFormat       string          `yaml:"field_format" json:"field_format"`
	Options           OptionsConfig   `yaml:"options" json:"options"`
	Ramp              RampConfig      `yaml:"ramp" json:"ramp"`
	Calibration       CalibrationConf `yaml:"calibration" json:"calibration"`
	Points            []PointConfig   `yaml:"points" json:"points"`
}

// OptionsConfig mirrors the tunable renderer options.
type OptionsConfig struct {
	P             float64 `yaml:"p" json:"p"`
	DistFactor    float64 `yaml:"dist_factor" json:"dist_factor"`
	RangeFactor   float64 `yaml:"range_factor" json:"range_factor"`
	Gamma         float64 `yaml:"gamma" json:"gamma"`
	ShowPoints    bool    `yaml:"show_points" json:"show_points"`
	Unit          *string `yaml:"unit" json:"unit"`
	Colorization  string  `yaml:"colorization" json:"colorization"`
	Normalization string  `yaml:"normalization" json:"normalization"`
	Background    string  `yaml:"background" json:"background"`
}

// RampConfig selects the color ramp. An empty breakpoint list uses the
// default temperature map.
type RampConfig struct {
	Mode        string             `yaml:"mode" json:"mode"`
	Breakpoints []BreakpointConfig `yaml:"breakpoints" json:"breakpoints"`
}

// BreakpointConfig is one ramp entry.
type BreakpointConfig struct {
	Threshold float64 `yaml:"threshold" json:"threshold"`
	Color     string  `yaml:"color" json:"color"`
}

// CalibrationConf holds the optional low/high/normal reference values.
type CalibrationConf struct {
	Low    *float64 `yaml:"low" json:"low"`
	High   *float64 `yaml:"high" json:"high"`
	Normal *float64 `yaml:"normal" json:"normal"`
}

// PointConfig is one sample in surface pixel coordinates.
type PointConfig struct {
	X     float64 `yaml:"x" json:"x"`
	Y     float64 `yaml:"y" json:"y"`
	Value float64 `yaml:"value" json:"value"`
}

// LoadScene reads a scene from a YAML file.
func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	return ParseScene(data)
}

// ParseScene decodes a YAML scene and applies defaults.
func ParseScene(data []byte) (*Scene, error) {
	var s Scene
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	ApplyDefaults(&s)
	return &s, nil
}

// DefaultScene returns an empty 640x480 scene with default options.
func DefaultScene() *Scene {
	d := tempmap.DefaultOptions()
	unit := d.Unit
	return &Scene{
		Width:             640,
		Height:            480,
		FramebufferFactor: d.FramebufferFactor,
		FieldFormat:       tempmap.FieldFloat32.String(),
		Options: OptionsConfig{
			P:             d.P,
			DistFactor:    d.DistFactor,
			RangeFactor:   d.RangeFactor,
			Gamma:         d.Gamma,
			Unit:          &unit,
			Colorization:  d.Colorization.String(),
			Normalization: d.Normalization.String(),
			Background:    "#000000",
		},
		Ramp: RampConfig{Mode: tempmap.RampStep.String()},
	}
}

// ApplyDefaults fills every zero field from DefaultScene.
func ApplyDefaults(s *Scene) {
	defaults := DefaultScene()

	if s.Width == 0 {
		s.Width = defaults.Width
	}
	if s.Height == 0 {
		s.Height = defaults.Height
	}
	if s.FramebufferFactor == 0 {
		s.FramebufferFactor = defaults.FramebufferFactor
	}
	if s.FieldFormat == "" {
		s.FieldFormat = defaults.FieldFormat
	}
	o, do := &s.Options, defaults.Options
	if o.P == 0 {
		o.P = do.P
	}
	if o.DistFactor == 0 {
		o.DistFactor = do.DistFactor
	}
	if o.RangeFactor == 0 {
		o.RangeFactor = do.RangeFactor
	}
	if o.Gamma == 0 {
		o.Gamma = do.Gamma
	}
	if o.Unit == nil {
		o.Unit = do.Unit
	}
	if o.Colorization == "" {
		o.Colorization = do.Colorization
	}
	if o.Normalization == "" {
		o.Normalization = do.Normalization
	}
	if o.Background == "" {
		o.Background = do.Background
	}
	if s.Ramp.Mode == "" {
		s.Ramp.Mode = defaults.Ramp.Mode
	}
}

// Validate checks sizes and enumerations without building anything.
func (s *Scene) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("scene size %dx%d: %w", s.Width, s.Height, tempmap.ErrInvalidSize)
	}
	if _, err := tempmap.ParseFieldFormat(s.FieldFormat); err != nil {
		return err
	}
	if _, err := tempmap.ParseColorization(s.Options.Colorization); err != nil {
		return err
	}
	if _, err := tempmap.ParseNormalizePolicy(s.Options.Normalization); err != nil {
		return err
	}
	if _, err := tempmap.ParseRampMode(s.Ramp.Mode); err != nil {
		return err
	}
	if _, err := tempmap.ParseHex(s.Options.Background); err != nil {
		return fmt.Errorf("background: %w", err)
	}
	return nil
}

// HexBreakpoints returns the ramp breakpoints in textual form, or the
// default color map when none are configured.
func (s *Scene) HexBreakpoints() []tempmap.HexBreakpoint {
	if len(s.Ramp.Breakpoints) == 0 {
		return tempmap.DefaultColorMap
	}
	out := make([]tempmap.HexBreakpoint, len(s.Ramp.Breakpoints))
	for i, b := range s.Ramp.Breakpoints {
		out[i] = tempmap.HexBreakpoint{Threshold: b.Threshold, Hex: b.Color}
	}
	return out
}

// RampMode returns the parsed ramp mode.
func (s *Scene) RampMode() (tempmap.RampMode, error) {
	return tempmap.ParseRampMode(s.Ramp.Mode)
}

// Format returns the parsed field format.
func (s *Scene) Format() (tempmap.FieldFormat, error) {
	return tempmap.ParseFieldFormat(s.FieldFormat)
}

// RendererOptions converts the scene into renderer options using ramp as
// the color map.
func (s *Scene) RendererOptions(ramp *tempmap.ColorRamp) (tempmap.Options, error) {
	if err := s.Validate(); err != nil {
		return tempmap.Options{}, err
	}
	o := tempmap.DefaultOptions()
	o.P = s.Options.P
	o.DistFactor = s.Options.DistFactor
	o.RangeFactor = s.Options.RangeFactor
	o.Gamma = s.Options.Gamma
	o.FramebufferFactor = s.FramebufferFactor
	o.ShowPoints = s.Options.ShowPoints
	if s.Options.Unit != nil {
		o.Unit = *s.Options.Unit
	}
	o.Colorization, _ = tempmap.ParseColorization(s.Options.Colorization)
	o.Normalization, _ = tempmap.ParseNormalizePolicy(s.Options.Normalization)
	o.Background, _ = tempmap.ParseHex(s.Options.Background)
	o.ColorMap = ramp
	return o, nil
}

// TempmapPoints converts the configured points.
func (s *Scene) TempmapPoints() []tempmap.Point {
	out := make([]tempmap.Point, len(s.Points))
	for i, p := range s.Points {
		out[i] = tempmap.Point{X: p.X, Y: p.Y, Value: p.Value}
	}
	return out
}

// TempmapCalibration converts the configured calibration.
func (s *Scene) TempmapCalibration() tempmap.Calibration {
	return tempmap.Calibration{
		Low:    s.Calibration.Low,
		High:   s.Calibration.High,
		Normal: s.Calibration.Normal,
	}
}
