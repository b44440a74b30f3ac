package audio

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/brakezone/engine"
	"github.com/lixenwraith/brakezone/scoring"
)

const sampleRate = beep.SampleRate(44100)

// Cue is a named sound
type Cue uint8

const (
	CueAlert   Cue = iota + 1 // pedestrian appears
	CueBrake                  // tyre screech
	CueImpact                 // collision thud
	CueSuccess                // good stop
)

func (c Cue) String() string {
	switch c {
	case CueAlert:
		return "alert"
	case CueBrake:
		return "brake"
	case CueImpact:
		return "impact"
	case CueSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// Cues plays sounds in reaction to scenario events
// It is both an engine.Presenter and an engine.SceneSink
// Without an open speaker it stays silent and only counts requests
type Cues struct {
	mu      sync.Mutex
	mixer   *beep.Mixer
	open    bool
	volume  float64
	alerted bool

	muted  atomic.Bool
	played atomic.Int64
	logger *slog.Logger
}

// NewCues creates a silent cue player; call Open to attach the speaker
func NewCues(volume float64, logger *slog.Logger) *Cues {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cues{
		mixer:  &beep.Mixer{},
		volume: volume,
		logger: logger.With("component", "audio"),
	}
}

// Open initializes the speaker; on failure the player stays silent
func (c *Cues) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("speaker init: %w", err)
	}
	speaker.Play(c.mixer)
	c.open = true
	return nil
}

// Close stops playback and releases the speaker
func (c *Cues) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return
	}
	speaker.Lock()
	c.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	c.open = false
}

// ToggleMute flips mute and returns the new state
func (c *Cues) ToggleMute() bool {
	for {
		old := c.muted.Load()
		if c.muted.CompareAndSwap(old, !old) {
			c.logger.Debug("mute toggled", "muted", !old)
			return !old
		}
	}
}

// Muted reports the mute state
func (c *Cues) Muted() bool {
	return c.muted.Load()
}

// Played counts cues requested while unmuted
func (c *Cues) Played() int64 {
	return c.played.Load()
}

// Play queues cue on the mixer
func (c *Cues) Play(cue Cue) {
	if c.muted.Load() {
		return
	}
	c.played.Add(1)

	c.mu.Lock()
	open := c.open
	c.mu.Unlock()
	if !open {
		return
	}

	s := Build(cue, c.volume)
	if s == nil {
		return
	}
	speaker.Lock()
	c.mixer.Add(s)
	speaker.Unlock()
}

// Build synthesizes cue at volume
func Build(cue Cue, volume float64) beep.Streamer {
	switch cue {
	case CueAlert:
		return newVolume(alertSound(), volume)
	case CueBrake:
		return newVolume(brakeSound(), volume)
	case CueImpact:
		return newVolume(impactSound(), volume)
	case CueSuccess:
		return newVolume(successSound(), volume)
	default:
		return nil
	}
}

// alertSound is two short high beeps
func alertSound() beep.Streamer {
	beepLen := sampleRate.N(90 * time.Millisecond)
	tone := func() beep.Streamer {
		sine, err := generators.SineTone(sampleRate, 1320)
		if err != nil {
			return beep.Silence(beepLen)
		}
		return beep.Take(beepLen, sine)
	}
	return beep.Seq(tone(), beep.Silence(sampleRate.N(60*time.Millisecond)), tone())
}

// brakeSound is filtered noise gliding over a falling squeal
func brakeSound() beep.Streamer {
	const d = 450 * time.Millisecond
	noise := NewEnvelope(NewOscillator(0, 0, d, WaveNoise, sampleRate), d, 10*time.Millisecond, 200*time.Millisecond, sampleRate)
	squeal := NewEnvelope(NewOscillator(2200, -1600, d, WaveSaw, sampleRate), d, 20*time.Millisecond, 250*time.Millisecond, sampleRate)
	return beep.Mix(newVolume(noise, 0.35), newVolume(squeal, 0.25))
}

// impactSound is a low thud with a noise burst
func impactSound() beep.Streamer {
	const d = 300 * time.Millisecond
	thud := NewEnvelope(NewOscillator(110, -180, d, WaveSine, sampleRate), d, 2*time.Millisecond, 220*time.Millisecond, sampleRate)
	burst := NewEnvelope(NewOscillator(0, 0, 80*time.Millisecond, WaveNoise, sampleRate), 80*time.Millisecond, time.Millisecond, 60*time.Millisecond, sampleRate)
	return beep.Mix(newVolume(thud, 0.9), newVolume(burst, 0.4))
}

// successSound is a rising two-note chime
func successSound() beep.Streamer {
	n1 := NewEnvelope(NewOscillator(987.77, 0, 90*time.Millisecond, WaveSquare, sampleRate), 90*time.Millisecond, 5*time.Millisecond, 40*time.Millisecond, sampleRate)
	n2 := NewEnvelope(NewOscillator(1318.51, 0, 220*time.Millisecond, WaveSquare, sampleRate), 220*time.Millisecond, 5*time.Millisecond, 150*time.Millisecond, sampleRate)
	return newVolume(beep.Seq(n1, n2), 0.5)
}

// Apply implements engine.SceneSink
func (c *Cues) Apply(cmd engine.SceneCommand) error {
	switch cmd.Kind {
	case engine.SceneSpawnActor:
		c.mu.Lock()
		first := !c.alerted
		c.alerted = true
		c.mu.Unlock()
		if first {
			c.Play(CueAlert)
		}
	case engine.SceneCollision:
		c.Play(CueImpact)
	case engine.SceneRemoveActor, engine.SceneResetCamera:
		c.mu.Lock()
		c.alerted = false
		c.mu.Unlock()
	}
	return nil
}

// UpdateHUD implements engine.Presenter
func (c *Cues) UpdateHUD(engine.HUD) {}

// ShowBrakeIndicator implements engine.Presenter
func (c *Cues) ShowBrakeIndicator() {
	c.Play(CueBrake)
}

// ShowResult implements engine.Presenter
func (c *Cues) ShowResult(o engine.RunOutcome) {
	if !o.Collision && !o.Disqualified && (o.Result.Grade == scoring.GradeExcellent || o.Result.Grade == scoring.GradeGood) {
		c.Play(CueSuccess)
	}
}

// Reset implements engine.Presenter
func (c *Cues) Reset() {
	c.mu.Lock()
	c.alerted = false
	c.mu.Unlock()
}
