package main

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/edwinsyarief/cinemachine/config"
	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const defaultDuration = 5.0

// One printed frame of the brain output.
type frameRecord struct {
	Time        float64    `yaml:"time"`
	Frame       uint64     `yaml:"frame"`
	Live        string     `yaml:"live"`
	Blend       string     `yaml:"blend,omitempty"`
	Position    mgl64.Vec3 `yaml:"position"`
	Rotation    mgl64.Vec3 `yaml:"rotation"` // euler degrees
	FieldOfView float64    `yaml:"fov"`
}

func newRunCommand(settings *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scene.yaml>",
		Short: "Simulate a scene headless and print the camera output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := setup(cmd, settings)
			if err != nil {
				return err
			}
			scene, err := config.Load(args[0])
			if err != nil {
				return err
			}
			rig, err := config.Build(scene, logger)
			if err != nil {
				return err
			}

			duration := firstPositive(settings.GetFloat64("duration"), scene.Simulation.Duration, defaultDuration)
			deltaTime := firstPositive(settings.GetFloat64("delta-time"), scene.Simulation.DeltaTime, config.DefaultDeltaTime)
			emit, finish := textEmitter(cmd.OutOrStdout())
			if settings.GetString("format") == "yaml" {
				emit, finish = yamlEmitter(cmd.OutOrStdout())
			}
			logger.Info().Float64("duration", duration).Float64("delta_time", deltaTime).Msg("simulating")
			if err := simulate(rig, duration, deltaTime, settings.GetInt("every"), emit); err != nil {
				return err
			}
			return finish()
		},
	}
	cmd.Flags().Float64("duration", 0, "seconds to simulate (default from the scene, or 5)")
	cmd.Flags().Float64("delta-time", 0, "seconds per frame (default from the scene, or 1/60)")
	cmd.Flags().Int("every", 1, "print one frame out of this many")
	cmd.Flags().String("format", "text", "output format: text or yaml")
	return cmd
}

func newValidateCommand(settings *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <scene.yaml>...",
		Short: "Check scene files and report every problem found",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := setup(cmd, settings)
			if err != nil {
				return err
			}
			var failed []error
			for _, path := range args {
				scene, err := config.Load(path)
				if err == nil {
					_, err = config.Build(scene, logger)
				}
				if err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", path, err)
					failed = append(failed, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
			}
			if len(failed) > 0 {
				return fmt.Errorf("rigsim: %d of %d scenes are invalid: %w", len(failed), len(args), errors.Join(failed...))
			}
			return nil
		},
	}
}

// Steps the rig for the given duration, emitting every nth frame.
func simulate(rig *config.Rig, duration, deltaTime float64, every int, emit func(frameRecord) error) error {
	every = max(every, 1)
	frames := int(math.Round(duration / deltaTime))
	for i := range frames {
		rig.Step(deltaTime)
		if i%every != 0 && i != frames-1 {
			continue
		}
		if err := emit(record(rig)); err != nil {
			return err
		}
	}
	return nil
}

func record(rig *config.Rig) frameRecord {
	state := rig.Brain.State()
	out := frameRecord{
		Time:        rig.Elapsed(),
		Frame:       rig.Brain.Frame(),
		Position:    state.FinalPosition(),
		Rotation:    utils.EulerAngles(state.FinalOrientation()),
		FieldOfView: state.Lens.FieldOfView,
	}
	if live := rig.Brain.LiveCamera(); live != nil {
		out.Live = live.Name
	}
	if blend := rig.Brain.ActiveBlend(); blend != nil {
		out.Blend = blend.String()
	}
	return out
}

func textEmitter(w io.Writer) (emit func(frameRecord) error, finish func() error) {
	emit = func(frame frameRecord) error {
		_, err := fmt.Fprintf(w, "%7.3f %-12s pos %8.3f %8.3f %8.3f  rot %7.2f %7.2f %7.2f  fov %6.2f",
			frame.Time, frame.Live,
			frame.Position[0], frame.Position[1], frame.Position[2],
			frame.Rotation[0], frame.Rotation[1], frame.Rotation[2],
			frame.FieldOfView)
		if err == nil && frame.Blend != "" {
			_, err = fmt.Fprintf(w, "  blend %s", frame.Blend)
		}
		if err == nil {
			_, err = fmt.Fprintln(w)
		}
		return err
	}
	return emit, func() error { return nil }
}

// Collects the frames and writes them as one YAML list at the end.
func yamlEmitter(w io.Writer) (emit func(frameRecord) error, finish func() error) {
	var frames []frameRecord
	emit = func(frame frameRecord) error {
		frames = append(frames, frame)
		return nil
	}
	finish = func() error {
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(frames); err != nil {
			return err
		}
		return encoder.Close()
	}
	return emit, finish
}

func firstPositive(values ...float64) float64 {
	for _, value := range values {
		if value > 0 {
			return value
		}
	}
	return 0
}
