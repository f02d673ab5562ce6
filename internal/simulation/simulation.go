package simulation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slam-robot-sim/internal/common"
	"slam-robot-sim/internal/config"
	"slam-robot-sim/internal/noise"
	"slam-robot-sim/internal/robot"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

var (
	// ErrBlocked is returned when no heading could be found that keeps the robot in the world.
	ErrBlocked = errors.New("robot is blocked")
	// ErrIncomplete is returned when some landmark was never observed within the allowed attempts.
	ErrIncomplete = errors.New("not every landmark was observed")
)

// Step is one time step of generated data: what the robot sensed, then how it moved.
type Step struct {
	Observations []robot.Observation
	Motion       orb.Point // Commanded displacement (dx, dy) that was accepted
	Position     orb.Point // True position after the move
	Rejections   int       // Moves rejected before one was accepted
}

// Data is the output of a simulation run.
type Data struct {
	ID        string
	Steps     []Step
	Landmarks []orb.Point
	Start     orb.Point // True position before the first step of the final attempt
	Final     orb.Point
	Attempts  int
}

// Simulation drives a robot around its world and records its measurements.
type Simulation struct {
	id     string
	robot  *robot.Robot
	rng    *noise.Generator
	params config.Simulation
	logger *log.Logger
}

// NewSimulation creates a driver for r. src must be the same source the robot
// was created with, so that a single seed reproduces the whole run.
func NewSimulation(r *robot.Robot, src rand.Source, params config.Simulation, logger *log.Logger) (*Simulation, error) {
	if r == nil {
		return nil, fmt.Errorf("robot must not be nil")
	}
	if params.Steps < 1 {
		return nil, fmt.Errorf("steps must be at least 1, got %d", params.Steps)
	}
	if params.NumLandmarks < 0 {
		return nil, fmt.Errorf("landmark count must not be negative, got %d", params.NumLandmarks)
	}
	if params.Distance < 0 {
		return nil, fmt.Errorf("distance must not be negative, got %g", params.Distance)
	}
	if params.MaxMoveAttempts < 1 || params.MaxAttempts < 1 {
		return nil, fmt.Errorf("attempt limits must be at least 1, got move=%d run=%d", params.MaxMoveAttempts, params.MaxAttempts)
	}
	if logger == nil {
		logger = log.Default()
	}
	id := fmt.Sprintf("run-%s", uuid.NewString()[:8])
	return &Simulation{
		id:     id,
		robot:  r,
		rng:    noise.New(src),
		params: params,
		logger: logger.With("run", id),
	}, nil
}

// ID returns the identifier of this run.
func (s *Simulation) ID() string {
	return s.id
}

// Robot returns the simulated robot.
func (s *Simulation) Robot() *robot.Robot {
	return s.robot
}

// Run generates steps-1 sense/move pairs. When RequireAllSeen is set the whole
// run, landmark placement included, is repeated until every landmark has been
// observed at least once. The robot keeps its position between attempts.
func (s *Simulation) Run(ctx context.Context) (*Data, error) {
	s.logger.Info("starting simulation",
		"steps", s.params.Steps,
		"landmarks", s.params.NumLandmarks,
		"distance", s.params.Distance,
		"robot", s.robot)

	for attempt := 1; attempt <= s.params.MaxAttempts; attempt++ {
		data, seen, err := s.attempt(ctx)
		if err != nil {
			return nil, err
		}
		data.Attempts = attempt

		if !s.params.RequireAllSeen || seen == s.params.NumLandmarks {
			s.logger.Info("simulation finished", "attempts", attempt, "seen", seen, "robot", s.robot)
			return data, nil
		}
		s.logger.Warn("landmarks left unobserved, retrying",
			"attempt", attempt,
			"seen", seen,
			"landmarks", s.params.NumLandmarks)
	}
	return nil, fmt.Errorf("%s after %d attempts: %w", s.id, s.params.MaxAttempts, ErrIncomplete)
}

func (s *Simulation) attempt(ctx context.Context) (*Data, int, error) {
	s.robot.MakeLandmarks(s.params.NumLandmarks)
	seen := make([]bool, s.params.NumLandmarks)

	data := &Data{
		ID:        s.id,
		Steps:     make([]Step, 0, s.params.Steps-1),
		Landmarks: s.robot.Landmarks(),
		Start:     s.robot.Position(),
	}

	dx, dy := s.heading()
	for k := 0; k < s.params.Steps-1; k++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, fmt.Errorf("%s interrupted at step %d: %w", s.id, k, err)
		}

		observations := s.robot.Sense()
		for _, o := range observations {
			seen[o.Landmark] = true
		}

		rejections := 0
		for !s.robot.Move(dx, dy) {
			rejections++
			if rejections >= s.params.MaxMoveAttempts {
				return nil, 0, fmt.Errorf("%s at step %d, %s, after %d headings: %w",
					s.id, k, s.robot, rejections, ErrBlocked)
			}
			dx, dy = s.heading()
		}

		step := Step{
			Observations: observations,
			Motion:       orb.Point{dx, dy},
			Position:     s.robot.Position(),
			Rejections:   rejections,
		}
		data.Steps = append(data.Steps, step)
		s.logger.Debug("step",
			"k", k,
			"observations", len(observations),
			"motion", common.Format(step.Motion),
			"position", common.Format(step.Position),
			"rejections", rejections)
	}
	data.Final = s.robot.Position()

	count := 0
	for _, ok := range seen {
		if ok {
			count++
		}
	}
	return data, count, nil
}

// heading draws a random orientation and returns the displacement of length
// Distance along it.
func (s *Simulation) heading() (dx, dy float64) {
	orientation := s.rng.Uniform(0, 2.0*math.Pi)
	return math.Cos(orientation) * s.params.Distance, math.Sin(orientation) * s.params.Distance
}
