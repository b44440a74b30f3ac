package engine

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/lixenwraith/brakezone/core"
	"github.com/lixenwraith/brakezone/pedestrian"
	"github.com/lixenwraith/brakezone/physics"
	"github.com/lixenwraith/brakezone/scoring"
	"github.com/lixenwraith/brakezone/status"
)

// Scene animation constants
const (
	brakePitch        = 3.0 // degrees of forward camera tilt on brake
	collisionLift     = 2.0 // metres
	collisionThrow    = 6.0 // metres along -Z
	sceneryYaw        = 180.0
	sceneryScaleLow   = 0.9
	sceneryScaleHigh  = 1.1
	pedestrianYawLeft = 90.0
)

// Options wires a Scenario to its collaborators; zero fields get defaults
type Options struct {
	Clock     Clock
	Rand      Rand
	Presenter Presenter
	Scene     SceneSink
	Results   ResultSink
	Logger    *slog.Logger
	Metrics   *status.Registry

	// LiteScenery places every other parked car
	LiteScenery bool
}

// Scenario owns all state of one braking run
// Every exported method takes the lock, so transitions never interleave with a tick
type Scenario struct {
	mu sync.Mutex

	clock     Clock
	rng       Rand
	presenter Presenter
	scene     SceneSink
	results   ResultSink
	logger    *slog.Logger
	metrics   *status.Registry
	queue     *EventQueue
	lite      bool

	phase           Phase
	started         bool
	braking         bool
	collision       bool
	noBrakePenalty  bool
	collisionPlayed bool
	actorReady      bool
	sceneryPlaced   bool

	runID      string
	player     Player
	spawnDelay time.Duration
	startTime  time.Time
	lastTick   time.Time

	vehicle  VehicleState
	obstacle ObstacleState
	brake    BrakeEvent
	outcome  *RunOutcome

	// Cached metric pointers
	statStarted      *atomic.Int64
	statEnded        *atomic.Int64
	statCollisions   *atomic.Int64
	statDisqualified *atomic.Int64
	statNoBrake      *atomic.Int64
	statPassed       *atomic.Int64
	statTicks        *atomic.Int64
	statReaction     *status.AtomicFloat
	statScore        *status.AtomicFloat
}

// NewScenario creates an Idle scenario
func NewScenario(opts Options) *Scenario {
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.Rand == nil {
		opts.Rand = NewRand(0)
	}
	if opts.Presenter == nil {
		opts.Presenter = NopPresenter{}
	}
	if opts.Scene == nil {
		opts.Scene = SceneFunc(func(SceneCommand) error { return nil })
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = status.NewRegistry()
	}

	reg := opts.Metrics
	s := &Scenario{
		clock:     opts.Clock,
		rng:       opts.Rand,
		presenter: opts.Presenter,
		scene:     opts.Scene,
		results:   opts.Results,
		logger:    opts.Logger,
		metrics:   reg,
		queue:     NewEventQueue(),
		lite:      opts.LiteScenery,

		statStarted:      reg.Ints.Get("runs.started"),
		statEnded:        reg.Ints.Get("runs.ended"),
		statCollisions:   reg.Ints.Get("runs.collisions"),
		statDisqualified: reg.Ints.Get("runs.disqualified"),
		statNoBrake:      reg.Ints.Get("runs.no_brake"),
		statPassed:       reg.Ints.Get("runs.passed"),
		statTicks:        reg.Ints.Get("engine.ticks"),
		statReaction:     reg.Floats.Get("run.last_reaction"),
		statScore:        reg.Floats.Get("run.last_score"),
	}
	s.resetRunState()
	return s
}

// Clock returns the scenario time source
func (s *Scenario) Clock() Clock {
	return s.clock
}

// Metrics returns the registry the scenario writes to
func (s *Scenario) Metrics() *status.Registry {
	return s.metrics
}

// SetPlayer sets the identity attached to the next outcomes
func (s *Scenario) SetPlayer(p Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player = p
}

// Push queues an input stamped with the current clock; safe from any goroutine
func (s *Scenario) Push(t EventType) {
	s.queue.Push(Event{Type: t, Timestamp: s.clock.Now()})
}

// Dispatch applies queued inputs without waiting for the next tick
func (s *Scenario) Dispatch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drain()
}

// Start begins a run; ignored while running
func (s *Scenario) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.start(s.clock.Now())
}

// Brake engages the brake; ignored unless running and not already braking
func (s *Scenario) Brake() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brakeAt(s.clock.Now())
}

// Restart tears the run down to Idle
func (s *Scenario) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restart()
}

// Advance drains queued inputs, then integrates one tick at now
// Returns true while the run is in progress
func (s *Scenario) Advance(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drain()
	s.tick(now)
	return s.phase == PhaseRunning
}

// Phase returns the current lifecycle phase
func (s *Scenario) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Outcome returns the last finished run
func (s *Scenario) Outcome() (RunOutcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcome == nil {
		return RunOutcome{}, false
	}
	return *s.outcome, true
}

// Snapshot copies the current state
func (s *Scenario) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Phase:      s.phase,
		Started:    s.started,
		Braking:    s.braking,
		SpawnDelay: s.spawnDelay,
		Vehicle:    s.vehicle,
		Obstacle:   s.obstacle,
		Brake:      s.brake,
		Collision:  s.collision,
	}
	if s.outcome != nil {
		o := *s.outcome
		snap.Outcome = &o
	}
	return snap
}

func (s *Scenario) drain() {
	for _, ev := range s.queue.Consume() {
		switch ev.Type {
		case EventStart:
			s.start(ev.Timestamp)
		case EventBrake:
			s.brakeAt(ev.Timestamp)
		case EventRestart:
			s.restart()
		}
	}
}

func (s *Scenario) resetRunState() {
	s.phase = PhaseIdle
	s.started = false
	s.braking = false
	s.collision = false
	s.noBrakePenalty = false
	s.collisionPlayed = false
	s.actorReady = false
	s.runID = ""
	s.spawnDelay = 0
	s.startTime = time.Time{}
	s.lastTick = time.Time{}
	s.vehicle = VehicleState{SpeedKmh: InitialSpeedKmh}
	s.obstacle = ObstacleState{}
	s.brake = BrakeEvent{}
	s.outcome = nil
}

func (s *Scenario) start(now time.Time) {
	switch s.phase {
	case PhaseRunning:
		return
	case PhaseEnded:
		s.teardown()
	}

	s.resetRunState()
	s.phase = PhaseRunning
	s.started = true
	s.runID = uuid.NewString()
	s.spawnDelay = MinSpawnDelay + time.Duration(s.rng.Float64()*float64(SpawnDelayWindow))
	s.startTime = now
	s.lastTick = now

	s.emit(SceneCommand{Kind: SceneResetCamera})
	for _, slot := range scenerySlots(s.lite) {
		s.emit(SceneCommand{
			Kind:  ScenePlaceScenery,
			Actor: ActorScenery,
			X:     slot.X,
			Z:     slot.Z,
			Yaw:   sceneryYaw,
			Scale: uniform(s.rng, sceneryScaleLow, sceneryScaleHigh),
		})
	}
	s.sceneryPlaced = true

	s.statStarted.Add(1)
	s.logger.Info("run started", "run_id", s.runID, "spawn_delay", s.spawnDelay, "speed_kmh", s.vehicle.SpeedKmh)
}

func (s *Scenario) brakeAt(at time.Time) {
	if s.phase != PhaseRunning || s.braking {
		return
	}
	s.braking = true
	s.brake.Triggered = true
	s.brake.At = at
	s.brake.SpeedKmh = s.vehicle.SpeedKmh

	// A queued brake may be drained after the spawn tick; its timestamp decides
	if !s.obstacle.Spawned || at.Before(s.obstacle.AppearAt) {
		s.brake.ReactionTime = ptr(scoring.DisqualifiedReaction)
		s.vehicle.SpeedKmh = 0
		s.logger.Info("brake before obstacle", "run_id", s.runID)
		s.end(TriggerDisqualified, at)
		return
	}

	reaction := at.Sub(s.obstacle.AppearAt).Seconds()
	s.brake.ReactionTime = ptr(reaction)
	s.brake.Position = ptr(s.vehicle.Position)
	s.brake.ClearanceAtBrake = ptr(physics.FrontClearance(s.vehicle.Position, s.obstacle.Z))

	s.safely("presenter", s.presenter.ShowBrakeIndicator)
	s.emit(SceneCommand{Kind: SceneCameraPitch, Pitch: brakePitch})

	s.logger.Debug("brake",
		"run_id", s.runID,
		"reaction", reaction,
		"speed_kmh", s.brake.SpeedKmh,
		"clearance", *s.brake.ClearanceAtBrake,
	)
}

func (s *Scenario) restart() {
	s.teardown()
	s.resetRunState()
}

// teardown removes scene objects of the previous run and resets presentation
func (s *Scenario) teardown() {
	if s.obstacle.Spawned {
		s.emit(SceneCommand{Kind: SceneRemoveActor, Actor: ActorPedestrian})
	}
	if s.sceneryPlaced {
		s.emit(SceneCommand{Kind: SceneClearScenery, Actor: ActorScenery})
		s.sceneryPlaced = false
	}
	if s.started {
		s.emit(SceneCommand{Kind: SceneResetCamera})
		s.safely("presenter", s.presenter.Reset)
	}
}

func (s *Scenario) tick(now time.Time) {
	if s.phase != PhaseRunning {
		return
	}

	dt := now.Sub(s.lastTick).Seconds()
	if dt < 0 {
		dt = 0
	} else {
		s.lastTick = now
	}
	s.statTicks.Add(1)

	if !s.obstacle.Spawned && now.Sub(s.startTime) > s.spawnDelay {
		s.spawn(now)
	}

	if s.obstacle.Running {
		s.advanceCrossing(now)
	}

	if s.braking {
		speedMs := physics.Decelerate(physics.KmhToMs(s.vehicle.SpeedKmh), dt)
		s.vehicle.SpeedKmh = physics.MsToKmh(speedMs)
		if s.vehicle.SpeedKmh < StoppedBelowKmh {
			s.vehicle.SpeedKmh = 0
			s.end(TriggerStopped, now)
			return
		}
	}

	move := physics.KmhToMs(s.vehicle.SpeedKmh) * dt
	s.vehicle.Position -= move
	s.vehicle.Distance += move
	s.emit(SceneCommand{Kind: SceneMoveCamera, Z: s.vehicle.Position})

	if s.obstacle.Spawned {
		clearance := physics.FrontClearance(s.vehicle.Position, s.obstacle.Z)
		s.obstacle.Clearance = ptr(clearance)
		lateral := physics.LateralDistance(0, s.obstacle.X)

		if physics.Collides(lateral, clearance) {
			s.collision = true
			s.playCollision()
			s.end(TriggerCollision, now)
			return
		}

		if physics.Passed(s.vehicle.Position, s.obstacle.Z, PassMargin) {
			if !s.braking {
				s.noBrakePenalty = true
				s.collision = true
				s.playCollision()
			}
			s.end(TriggerPassed, now)
			return
		}
	}

	hud := HUD{
		SpeedKmh:  s.vehicle.SpeedKmh,
		Distance:  s.vehicle.Distance,
		Clearance: s.obstacle.Clearance,
		Braking:   s.braking,
	}
	s.safely("presenter", func() { s.presenter.UpdateHUD(hud) })
}

func (s *Scenario) spawn(now time.Time) {
	fromLeft := s.rng.Float64() < 0.5
	startX := CurbX
	if fromLeft {
		startX = -CurbX
	}
	targetX := uniform(s.rng, -TargetSpread, TargetSpread)

	s.obstacle = ObstacleState{
		Spawned:  true,
		Running:  true,
		FromLeft: fromLeft,
		Z:        s.vehicle.Position - AppearDistance,
		X:        startX,
		Crossing: pedestrian.NewCrossing(startX, targetX),
		AppearAt: now,
	}
	s.actorReady = s.emitActor(s.spawnCommand())

	s.logger.Debug("obstacle spawned",
		"run_id", s.runID,
		"from_left", fromLeft,
		"start_x", startX,
		"target_x", targetX,
		"z", s.obstacle.Z,
		"vehicle_z", s.vehicle.Position,
	)
}

func (s *Scenario) spawnCommand() SceneCommand {
	yaw := -pedestrianYawLeft
	if s.obstacle.FromLeft {
		yaw = pedestrianYawLeft
	}
	return SceneCommand{
		Kind:  SceneSpawnActor,
		Actor: ActorPedestrian,
		X:     s.obstacle.X,
		Z:     s.obstacle.Z,
		Yaw:   yaw,
	}
}

func (s *Scenario) advanceCrossing(now time.Time) {
	st := s.obstacle.Crossing.At(now.Sub(s.obstacle.AppearAt).Seconds())
	s.obstacle.X = st.X
	if st.Done {
		s.obstacle.Running = false
	}

	// Missing handle: keep simulating, retry the spawn each tick
	if !s.actorReady {
		s.actorReady = s.emitActor(s.spawnCommand())
		if !s.actorReady {
			return
		}
	}
	if !s.emitActor(SceneCommand{Kind: SceneMoveActor, Actor: ActorPedestrian, X: st.X, Y: st.Pose.Bob, Z: s.obstacle.Z}) {
		s.actorReady = false
		return
	}
	s.emitActor(SceneCommand{Kind: ScenePoseActor, Actor: ActorPedestrian, Pose: st.Pose.Limbs()})
}

func (s *Scenario) playCollision() {
	if s.collisionPlayed {
		return
	}
	s.collisionPlayed = true
	s.emit(SceneCommand{
		Kind:  SceneCollision,
		Actor: ActorPedestrian,
		X:     s.obstacle.X,
		Y:     collisionLift,
		Z:     s.obstacle.Z - collisionThrow,
	})
}

func (s *Scenario) end(trigger Trigger, now time.Time) {
	s.phase = PhaseEnded
	outcome := s.buildOutcome(trigger, now)
	s.outcome = &outcome

	s.statEnded.Add(1)
	s.statScore.Set(float64(outcome.Result.Score))
	switch {
	case outcome.Disqualified:
		s.statDisqualified.Add(1)
	case outcome.NoBrake:
		s.statNoBrake.Add(1)
	}
	switch trigger {
	case TriggerCollision:
		s.statCollisions.Add(1)
	case TriggerPassed:
		s.statPassed.Add(1)
	}
	if outcome.ReactionTime != nil && !outcome.Disqualified {
		s.statReaction.Set(*outcome.ReactionTime)
	}

	s.logger.Info("run ended",
		"run_id", s.runID,
		"trigger", trigger,
		"score", outcome.Result.Score,
		"grade", outcome.Result.Grade,
		"collision", outcome.Collision,
		"no_brake", outcome.NoBrake,
	)

	s.safely("presenter", func() { s.presenter.ShowResult(outcome) })

	if s.results != nil {
		results, logger := s.results, s.logger
		go func() {
			defer core.Recover(logger, "results")
			results.RunEnded(outcome)
		}()
	}
}

func (s *Scenario) buildOutcome(trigger Trigger, now time.Time) RunOutcome {
	o := RunOutcome{
		RunID:            s.runID,
		Player:           s.player,
		Trigger:          trigger,
		DistanceTraveled: s.vehicle.Distance,
		Collision:        s.collision,
		NoBrakePenalty:   s.noBrakePenalty,
		EndedAt:          now,
	}

	if trigger == TriggerDisqualified {
		o.Disqualified = true
		o.SpeedKmh = s.brake.SpeedKmh
		o.ReactionTime = ptr(scoring.DisqualifiedReaction)
		o.Result = scoring.Evaluate(scoring.Input{ReactionTime: ptr(scoring.DisqualifiedReaction)})
		return o
	}

	hasBrake := s.brake.Triggered && s.brake.ReactionTime != nil && *s.brake.ReactionTime >= 0
	speed := s.vehicle.SpeedKmh
	reaction := physics.DefaultReactionTime
	if hasBrake {
		speed = s.brake.SpeedKmh
		reaction = *s.brake.ReactionTime
	}
	braking := physics.BrakingDistance(speed, reaction)
	final := physics.FrontClearance(s.vehicle.Position, s.obstacle.Z)

	in := scoring.Input{
		StoppingDistance: braking.StoppingDistance,
		FinalClearance:   final,
		Collision:        s.collision,
		NoBrake:          s.noBrakePenalty || (!s.brake.Triggered && !s.collision),
	}
	if hasBrake {
		in.ReactionTime = ptr(reaction)
		in.ClearanceAtBrake = ptr(*s.brake.ClearanceAtBrake)
		o.ReactionTime = ptr(reaction)
		o.ClearanceAtBrake = ptr(*s.brake.ClearanceAtBrake)
		o.ReactionDistance = braking.ReactionDistance
	}

	o.SpeedKmh = speed
	o.StoppingDistance = braking.StoppingDistance
	o.TotalDistance = o.ReactionDistance + braking.StoppingDistance
	o.FinalClearance = ptr(final)
	o.NoBrake = in.NoBrake
	o.Result = scoring.Evaluate(in)
	return o
}

// emit sends a command, logging sink errors
func (s *Scenario) emit(cmd SceneCommand) {
	s.emitActor(cmd)
}

// emitActor sends a command and reports whether the actor handle was available
func (s *Scenario) emitActor(cmd SceneCommand) (ready bool) {
	ready = true
	func() {
		defer core.Recover(s.logger, "scene")
		if err := s.scene.Apply(cmd); err != nil {
			if errors.Is(err, ErrActorNotReady) {
				ready = false
				return
			}
			s.logger.Debug("scene command failed", "kind", cmd.Kind, "error", err)
		}
	}()
	return ready
}

// safely calls a collaborator, isolating its panics from the simulation
func (s *Scenario) safely(who string, fn func()) {
	defer core.Recover(s.logger, who)
	fn()
}
