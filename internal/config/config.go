package config

import (
	"errors"
	"flag"
	"fmt"
	"slam-robot-sim/internal/robot"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. SLAMSIM_ROBOT_WORLD_SIZE.
const EnvPrefix = "SLAMSIM"

// Simulation holds the parameters of the data-generation driver.
type Simulation struct {
	Steps           int     `mapstructure:"steps" yaml:"steps"`                         // Number of time steps, including the final pose
	NumLandmarks    int     `mapstructure:"num_landmarks" yaml:"num_landmarks"`         // Landmarks placed per attempt
	Distance        float64 `mapstructure:"distance" yaml:"distance"`                   // Length of each commanded move
	Seed            uint64  `mapstructure:"seed" yaml:"seed"`                           // 0 means seed from the clock
	MaxMoveAttempts int     `mapstructure:"max_move_attempts" yaml:"max_move_attempts"` // Headings tried before a step is blocked
	MaxAttempts     int     `mapstructure:"max_attempts" yaml:"max_attempts"`           // Whole-run retries when landmarks go unseen
	RequireAllSeen  bool    `mapstructure:"require_all_seen" yaml:"require_all_seen"`
}

// Config is the full application configuration.
type Config struct {
	Robot      robot.Config `mapstructure:"robot" yaml:"robot"`
	Simulation Simulation   `mapstructure:"simulation" yaml:"simulation"`
	LogLevel   string       `mapstructure:"log_level" yaml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Robot: robot.DefaultConfig(),
		Simulation: Simulation{
			Steps:           20,
			NumLandmarks:    5,
			Distance:        20.0,
			Seed:            0,
			MaxMoveAttempts: 100,
			MaxAttempts:     50,
			RequireAllSeen:  true,
		},
		LogLevel: "info",
	}
}

// FromYaml reads and validates the configuration at path. Keys missing from the
// file keep their defaults, and SLAMSIM_* environment variables override both.
func FromYaml(path string) (*Config, error) {
	cfg, err := LoadYaml(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds and validates the configuration from defaults and environment overrides only.
func FromEnv() (*Config, error) {
	cfg, err := LoadEnv()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadYaml is FromYaml without validation, for callers that apply further
// overrides before validating.
func LoadYaml(path string) (*Config, error) {
	vp := newViper()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	if err := vp.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return decode(vp)
}

// LoadEnv is FromEnv without validation.
func LoadEnv() (*Config, error) {
	return decode(newViper())
}

func newViper() *viper.Viper {
	vp := viper.New()
	vp.SetEnvPrefix(EnvPrefix)
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vp.AutomaticEnv()

	// AutomaticEnv only applies to keys viper already knows about.
	def := Default()
	vp.SetDefault("robot.world_size", def.Robot.WorldSize)
	vp.SetDefault("robot.measurement_range", def.Robot.MeasurementRange)
	vp.SetDefault("robot.motion_noise", def.Robot.MotionNoise)
	vp.SetDefault("robot.measurement_noise", def.Robot.MeasurementNoise)
	vp.SetDefault("simulation.steps", def.Simulation.Steps)
	vp.SetDefault("simulation.num_landmarks", def.Simulation.NumLandmarks)
	vp.SetDefault("simulation.distance", def.Simulation.Distance)
	vp.SetDefault("simulation.seed", def.Simulation.Seed)
	vp.SetDefault("simulation.max_move_attempts", def.Simulation.MaxMoveAttempts)
	vp.SetDefault("simulation.max_attempts", def.Simulation.MaxAttempts)
	vp.SetDefault("simulation.require_all_seen", def.Simulation.RequireAllSeen)
	vp.SetDefault("log_level", def.LogLevel)
	return vp
}

func decode(vp *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := vp.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// Bind attaches the most commonly tweaked settings to the provided FlagSet.
// Flags parsed after loading override the loaded values.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.Uint64Var(&c.Simulation.Seed, "seed", c.Simulation.Seed, "seed for the noise source (0 = clock)")
	fs.IntVar(&c.Simulation.Steps, "steps", c.Simulation.Steps, "number of time steps")
	fs.IntVar(&c.Simulation.NumLandmarks, "landmarks", c.Simulation.NumLandmarks, "number of landmarks")
	fs.Float64Var(&c.Simulation.Distance, "distance", c.Simulation.Distance, "length of each commanded move")
	fs.Float64Var(&c.Robot.MeasurementRange, "range", c.Robot.MeasurementRange, "measurement range (-1 = unbounded)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
}

// ApplyFlags copies every flag explicitly set on fs onto c, so command-line
// values win over the loaded ones. Flags that Bind does not know are ignored.
func (c *Config) ApplyFlags(fs *flag.FlagSet) error {
	overrides := flag.NewFlagSet("overrides", flag.ContinueOnError)
	c.Bind(overrides)
	var errs []error
	fs.Visit(func(f *flag.Flag) {
		if overrides.Lookup(f.Name) == nil {
			return
		}
		if err := overrides.Set(f.Name, f.Value.String()); err != nil {
			errs = append(errs, fmt.Errorf("flag -%s: %w", f.Name, err))
		}
	})
	return errors.Join(errs...)
}

// Validate reports every setting that cannot drive a simulation.
func (c *Config) Validate() error {
	var errs []error
	if c.Robot.WorldSize <= 0 {
		errs = append(errs, fmt.Errorf("robot.world_size must be positive, got %g", c.Robot.WorldSize))
	}
	if c.Robot.MeasurementRange != robot.Unbounded && c.Robot.MeasurementRange <= 0 {
		errs = append(errs, fmt.Errorf("robot.measurement_range must be positive or %g, got %g", robot.Unbounded, c.Robot.MeasurementRange))
	}
	if c.Robot.MotionNoise < 0 {
		errs = append(errs, fmt.Errorf("robot.motion_noise must not be negative, got %g", c.Robot.MotionNoise))
	}
	if c.Robot.MeasurementNoise < 0 {
		errs = append(errs, fmt.Errorf("robot.measurement_noise must not be negative, got %g", c.Robot.MeasurementNoise))
	}
	if c.Simulation.Steps < 1 {
		errs = append(errs, fmt.Errorf("simulation.steps must be at least 1, got %d", c.Simulation.Steps))
	}
	if c.Simulation.NumLandmarks < 0 {
		errs = append(errs, fmt.Errorf("simulation.num_landmarks must not be negative, got %d", c.Simulation.NumLandmarks))
	}
	if c.Simulation.Distance < 0 {
		errs = append(errs, fmt.Errorf("simulation.distance must not be negative, got %g", c.Simulation.Distance))
	}
	if c.Simulation.MaxMoveAttempts < 1 {
		errs = append(errs, fmt.Errorf("simulation.max_move_attempts must be at least 1, got %d", c.Simulation.MaxMoveAttempts))
	}
	if c.Simulation.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("simulation.max_attempts must be at least 1, got %d", c.Simulation.MaxAttempts))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// YAML renders the effective configuration.
func (c *Config) YAML() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}
	return string(out), nil
}
