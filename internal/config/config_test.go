package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"slam-robot-sim/internal/robot"

	. "github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFromYaml(t *testing.T) {
	Convey("When loading a config file", t, func() {
		Convey("Values in the file override defaults and the rest are kept", func() {
			path := writeConfig(t, `
robot:
  world_size: 50
  measurement_range: -1
simulation:
  steps: 8
  seed: 42
  require_all_seen: false
log_level: debug
`)
			cfg, err := FromYaml(path)
			So(err, ShouldBeNil)
			So(cfg.Robot.WorldSize, ShouldEqual, 50.0)
			So(cfg.Robot.MeasurementRange, ShouldEqual, robot.Unbounded)
			So(cfg.Robot.MotionNoise, ShouldEqual, 1.0)
			So(cfg.Simulation.Steps, ShouldEqual, 8)
			So(cfg.Simulation.Seed, ShouldEqual, uint64(42))
			So(cfg.Simulation.RequireAllSeen, ShouldBeFalse)
			So(cfg.Simulation.NumLandmarks, ShouldEqual, Default().Simulation.NumLandmarks)
			So(cfg.LogLevel, ShouldEqual, "debug")
		})

		Convey("Environment variables take precedence over the file", func() {
			t.Setenv("SLAMSIM_ROBOT_MOTION_NOISE", "2.5")
			t.Setenv("SLAMSIM_SIMULATION_NUM_LANDMARKS", "9")
			path := writeConfig(t, "robot:\n  motion_noise: 0.5\n")
			cfg, err := FromYaml(path)
			So(err, ShouldBeNil)
			So(cfg.Robot.MotionNoise, ShouldEqual, 2.5)
			So(cfg.Simulation.NumLandmarks, ShouldEqual, 9)
		})

		Convey("A missing file is an error", func() {
			_, err := FromYaml(filepath.Join(t.TempDir(), "nope.yaml"))
			So(err, ShouldNotBeNil)
		})

		Convey("Invalid values are rejected", func() {
			path := writeConfig(t, "robot:\n  world_size: -3\nsimulation:\n  steps: 0\n")
			_, err := FromYaml(path)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "robot.world_size")
			So(err.Error(), ShouldContainSubstring, "simulation.steps")
		})
	})
}

func TestFromEnv(t *testing.T) {
	Convey("When no file is given the defaults are used", t, func() {
		cfg, err := FromEnv()
		So(err, ShouldBeNil)
		So(cfg, ShouldResemble, Default())
	})
}

func TestValidate(t *testing.T) {
	Convey("When validating a config", t, func() {
		cfg := Default()

		Convey("The defaults are valid", func() {
			So(cfg.Validate(), ShouldBeNil)
		})

		Convey("The unbounded sentinel is the only non-positive range allowed", func() {
			cfg.Robot.MeasurementRange = robot.Unbounded
			So(cfg.Validate(), ShouldBeNil)
			cfg.Robot.MeasurementRange = 0
			So(cfg.Validate(), ShouldNotBeNil)
			cfg.Robot.MeasurementRange = -2
			So(cfg.Validate(), ShouldNotBeNil)
		})

		Convey("Negative noise and attempt limits are rejected", func() {
			cfg.Robot.MotionNoise = -1
			cfg.Simulation.MaxMoveAttempts = 0
			err := cfg.Validate()
			So(err, ShouldNotBeNil)
			So(errors.Unwrap(err), ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "robot.motion_noise")
			So(err.Error(), ShouldContainSubstring, "simulation.max_move_attempts")
		})
	})
}

func TestBind(t *testing.T) {
	Convey("When flags are parsed after loading", t, func() {
		cfg := Default()
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		cfg.Bind(fs)
		err := fs.Parse([]string{"-seed", "7", "-landmarks", "12", "-range", "-1"})
		So(err, ShouldBeNil)
		So(cfg.Simulation.Seed, ShouldEqual, uint64(7))
		So(cfg.Simulation.NumLandmarks, ShouldEqual, 12)
		So(cfg.Robot.MeasurementRange, ShouldEqual, robot.Unbounded)
		So(cfg.Simulation.Steps, ShouldEqual, Default().Simulation.Steps)
	})
}

func TestApplyFlags(t *testing.T) {
	Convey("When flags are applied over a loaded file", t, func() {
		path := writeConfig(t, "robot:\n  measurement_range: 0\nsimulation:\n  steps: 4\n")

		Convey("The file alone does not validate", func() {
			_, err := FromYaml(path)
			So(err, ShouldNotBeNil)
		})

		Convey("A flag can repair a value the file got wrong", func() {
			cfg, err := LoadYaml(path)
			So(err, ShouldBeNil)
			So(cfg.Robot.MeasurementRange, ShouldEqual, 0.0)

			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			fs.String("config", "", "")
			Default().Bind(fs)
			So(fs.Parse([]string{"-config", path, "-range", "-1", "-landmarks", "3"}), ShouldBeNil)

			So(cfg.ApplyFlags(fs), ShouldBeNil)
			So(cfg.Robot.MeasurementRange, ShouldEqual, robot.Unbounded)
			So(cfg.Simulation.NumLandmarks, ShouldEqual, 3)
			So(cfg.Simulation.Steps, ShouldEqual, 4)
			So(cfg.Validate(), ShouldBeNil)
		})

		Convey("Flags left unset do not reset loaded values to defaults", func() {
			cfg, err := LoadYaml(path)
			So(err, ShouldBeNil)
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			Default().Bind(fs)
			So(fs.Parse([]string{"-seed", "9"}), ShouldBeNil)

			So(cfg.ApplyFlags(fs), ShouldBeNil)
			So(cfg.Simulation.Seed, ShouldEqual, uint64(9))
			So(cfg.Simulation.Steps, ShouldEqual, 4)
		})
	})
}

func TestYAML(t *testing.T) {
	Convey("When the effective config is rendered it reads back identically", t, func() {
		cfg := Default()
		cfg.Simulation.Seed = 5
		out, err := cfg.YAML()
		So(err, ShouldBeNil)
		So(out, ShouldContainSubstring, "world_size: 100")

		back := &Config{}
		So(yaml.Unmarshal([]byte(out), back), ShouldBeNil)
		So(back, ShouldResemble, cfg)
	})
}
