package main

import (
	"github.com/edwinsyarief/cinemachine/config"
	"github.com/edwinsyarief/cinemachine/ebitendriver"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newViewCommand(settings *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <scene.yaml>",
		Short: "Open a window with a debug view of the scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := setup(cmd, settings)
			if err != nil {
				return err
			}
			path := args[0]
			scene, err := config.Load(path)
			if err != nil {
				return err
			}
			rig, err := config.Build(scene, logger)
			if err != nil {
				return err
			}

			driver := ebitendriver.New(rig.Brain, rig, logger)
			driver.Targets = rig.Targets
			driver.Aspect = settings.GetFloat64("aspect")

			if settings.GetBool("watch") {
				watcher, err := config.NewWatcher(path, 0, logger)
				if err != nil {
					return err
				}
				defer watcher.Close()
				driver.OnUpdate = reloader(driver, watcher, logger)
			}
			return ebitendriver.Run(driver, "rigsim: "+path, settings.GetInt("width"), settings.GetInt("height"))
		},
	}
	cmd.Flags().Int("width", 1280, "window width")
	cmd.Flags().Int("height", 720, "window height")
	cmd.Flags().Float64("aspect", 0, "fixed view aspect, letterboxed (default: the window aspect)")
	cmd.Flags().Bool("watch", false, "reload the scene when the file changes")
	return cmd
}

// Swaps the driven rig whenever the watcher delivers a new scene. Bad
// scenes are logged and the current rig keeps running.
func reloader(driver *ebitendriver.Driver, watcher *config.Watcher, logger zerolog.Logger) func(float64) error {
	return func(float64) error {
		select {
		case scene, ok := <-watcher.Scenes:
			if !ok {
				return nil
			}
			rig, err := config.Build(scene, logger)
			if err != nil {
				logger.Error().Err(err).Msg("can't build the reloaded scene")
				return nil
			}
			driver.Brain, driver.Stepper, driver.Targets = rig.Brain, rig, rig.Targets
		case err, ok := <-watcher.Errors:
			if ok {
				logger.Error().Err(err).Msg("scene watch")
			}
		default:
		}
		return nil
	}
}
