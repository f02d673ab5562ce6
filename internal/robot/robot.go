package robot

import (
	"fmt"
	"math/rand/v2"
	"slam-robot-sim/internal/common"
	"slam-robot-sim/internal/noise"

	"github.com/paulmach/orb"
)

// Unbounded is the measurement range value that makes every landmark visible.
const Unbounded = -1.0

// Config holds the immutable parameters of a robot and its world.
type Config struct {
	WorldSize        float64 `mapstructure:"world_size" yaml:"world_size"`               // Side length of the square world
	MeasurementRange float64 `mapstructure:"measurement_range" yaml:"measurement_range"` // Visibility cutoff, or Unbounded
	MotionNoise      float64 `mapstructure:"motion_noise" yaml:"motion_noise"`           // Scale of the displacement noise
	MeasurementNoise float64 `mapstructure:"measurement_noise" yaml:"measurement_noise"` // Reserved, not used by Sense
}

// DefaultConfig returns the configuration of a 100x100 world with a sensing range of 30.
func DefaultConfig() Config {
	return Config{
		WorldSize:        100.0,
		MeasurementRange: 30.0,
		MotionNoise:      1.0,
		MeasurementNoise: 1.0,
	}
}

// Observation is a single noisy measurement of a landmark relative to the robot.
type Observation struct {
	Landmark int     // Index of the landmark in the robot's landmark set
	DX       float64 // Noisy x displacement from robot to landmark
	DY       float64 // Noisy y displacement from robot to landmark
}

// Robot is a point agent moving in a bounded square world and sensing fixed landmarks.
// It is not safe for concurrent use.
type Robot struct {
	cfg       Config
	world     orb.Bound
	position  orb.Point
	landmarks []orb.Point
	rng       *noise.Generator
}

// New creates a robot at the center of the world with no landmarks.
// Every noise draw is taken from src; seed it to reproduce a trajectory.
func New(cfg Config, src rand.Source) *Robot {
	world := common.World(cfg.WorldSize)
	return &Robot{
		cfg:       cfg,
		world:     world,
		position:  common.Center(world),
		landmarks: []orb.Point{},
		rng:       noise.New(src),
	}
}

// Config returns the configuration the robot was created with.
func (r *Robot) Config() Config {
	return r.cfg
}

// Position returns the current position of the robot.
func (r *Robot) Position() orb.Point {
	return r.position
}

// Landmarks returns a copy of the landmark set. The index of a landmark is its identifier.
func (r *Robot) Landmarks() []orb.Point {
	landmarks := make([]orb.Point, len(r.landmarks))
	copy(landmarks, r.landmarks)
	return landmarks
}

// NumLandmarks returns the size of the landmark set.
func (r *Robot) NumLandmarks() int {
	return len(r.landmarks)
}

// MakeLandmarks replaces the landmark set with n landmarks placed uniformly at
// random in the world, with coordinates rounded to integers.
func (r *Robot) MakeLandmarks(n int) {
	if n < 0 {
		n = 0
	}
	landmarks := make([]orb.Point, n)
	for i := range landmarks {
		x := r.rng.Uniform(0, r.cfg.WorldSize)
		y := r.rng.Uniform(0, r.cfg.WorldSize)
		landmarks[i] = common.Round(orb.Point{x, y})
	}
	r.landmarks = landmarks
}

// Move attempts to displace the robot by (dx, dy) plus motion noise on each axis.
// If the noisy position falls outside the world the move is rejected, the robot
// stays where it was and false is returned.
func (r *Robot) Move(dx, dy float64) bool {
	noisyDX := dx + r.rng.Symmetric()*r.cfg.MotionNoise
	noisyDY := dy + r.rng.Symmetric()*r.cfg.MotionNoise

	candidate := common.Offset(r.position, noisyDX, noisyDY)
	if !common.Contains(r.world, candidate) {
		return false
	}
	r.position = candidate
	return true
}

// Sense returns noisy x/y displacements to the landmarks within measurement range,
// in ascending landmark order. A single noise term, scaled by the motion noise,
// is drawn per landmark and added to both axes. There is no lower bound on the
// range check, so landmarks behind the robot on both axes are always reported.
func (r *Robot) Sense() []Observation {
	measurements := make([]Observation, 0, len(r.landmarks))
	for i, landmark := range r.landmarks {
		dx, dy := common.Displacement(r.position, landmark)

		n := r.rng.Symmetric() * r.cfg.MotionNoise
		dx, dy = dx+n, dy+n

		if r.inRange(dx, dy) {
			measurements = append(measurements, Observation{Landmark: i, DX: dx, DY: dy})
		}
	}
	return measurements
}

func (r *Robot) inRange(dx, dy float64) bool {
	if r.cfg.MeasurementRange == Unbounded {
		return true
	}
	return dx < r.cfg.MeasurementRange && dy < r.cfg.MeasurementRange
}

// String renders the robot's location.
func (r *Robot) String() string {
	return fmt.Sprintf("Robot: [x=%.5f y=%.5f]", r.position[0], r.position[1])
}
