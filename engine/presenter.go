package engine

import (
	"log/slog"

	"github.com/lixenwraith/brakezone/core"
)

// HUD is the per-tick dashboard readout
type HUD struct {
	SpeedKmh  float64  `json:"speedKmh"`
	Distance  float64  `json:"distance"`
	Clearance *float64 `json:"clearance"`
	Braking   bool     `json:"braking"`
}

// Presenter shows run state to the player
// Methods are called on the simulation goroutine with the scenario locked
type Presenter interface {
	UpdateHUD(hud HUD)
	ShowBrakeIndicator()
	ShowResult(outcome RunOutcome)
	Reset()
}

// ResultSink receives finished runs; called on its own goroutine
type ResultSink interface {
	RunEnded(outcome RunOutcome)
}

// ResultFunc adapts a function to ResultSink
type ResultFunc func(outcome RunOutcome)

func (f ResultFunc) RunEnded(outcome RunOutcome) {
	f(outcome)
}

// NopPresenter discards everything
type NopPresenter struct{}

func (NopPresenter) UpdateHUD(HUD)         {}
func (NopPresenter) ShowBrakeIndicator()   {}
func (NopPresenter) ShowResult(RunOutcome) {}
func (NopPresenter) Reset()                {}

// Fanout forwards to several presenters; a panicking one is logged and skipped
type Fanout struct {
	presenters []Presenter
	logger     *slog.Logger
}

// NewFanout combines presenters, nil entries are dropped
func NewFanout(logger *slog.Logger, presenters ...Presenter) *Fanout {
	f := &Fanout{logger: logger}
	for _, p := range presenters {
		if p != nil {
			f.presenters = append(f.presenters, p)
		}
	}
	return f
}

// Add appends a presenter
func (f *Fanout) Add(p Presenter) {
	f.presenters = append(f.presenters, p)
}

func (f *Fanout) each(fn func(Presenter)) {
	for _, p := range f.presenters {
		func() {
			defer core.Recover(f.logger, "presenter")
			fn(p)
		}()
	}
}

func (f *Fanout) UpdateHUD(hud HUD) {
	f.each(func(p Presenter) { p.UpdateHUD(hud) })
}

func (f *Fanout) ShowBrakeIndicator() {
	f.each(func(p Presenter) { p.ShowBrakeIndicator() })
}

func (f *Fanout) ShowResult(outcome RunOutcome) {
	f.each(func(p Presenter) { p.ShowResult(outcome) })
}

func (f *Fanout) Reset() {
	f.each(func(p Presenter) { p.Reset() })
}
