// Package leaderboard keeps scored runs ordered best-first, remotely when configured, locally always
package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/lixenwraith/brakezone/engine"
	"github.com/lixenwraith/brakezone/scoring"
)

const (
	MaxNameLen        = 24
	MaxClassLen       = 40
	DefaultName       = "Player"
	DefaultHistoryCap = 50
	DefaultLimit      = 5
)

// ErrInvalidRecord is returned for records that cannot be ranked
var ErrInvalidRecord = errors.New("invalid leaderboard record")

// Store is a ranked record collection
type Store interface {
	// Top returns up to limit records, best first
	Top(ctx context.Context, limit int) ([]Record, error)
	Insert(ctx context.Context, r Record) error
}

// Record is one leaderboard entry
type Record struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	ClassName      string        `json:"className"`
	Score          int           `json:"score"`
	Grade          scoring.Grade `json:"grade"`
	ReactionTime   *float64      `json:"reactionTime"`
	FinalClearance *float64      `json:"finalClearance"`
	Timestamp      int64         `json:"timestamp"` // unix ms
}

// NewRecord builds a record from a finished run
// Disqualified runs are not ranked and return false
func NewRecord(o engine.RunOutcome) (Record, bool) {
	if o.Disqualified {
		return Record{}, false
	}
	r := Record{
		ID:             o.RunID,
		Name:           o.Player.Name,
		ClassName:      o.Player.ClassName,
		Score:          o.Result.Score,
		Grade:          o.Result.Grade,
		ReactionTime:   o.ReactionTime,
		FinalClearance: o.FinalClearance,
	}
	if !o.EndedAt.IsZero() {
		r.Timestamp = o.EndedAt.UnixMilli()
	}
	return r.Sanitize(), true
}

// Sanitize trims and truncates names, fills ID and timestamp when missing
func (r Record) Sanitize() Record {
	r.Name = truncate(strings.TrimSpace(r.Name), MaxNameLen)
	if r.Name == "" {
		r.Name = DefaultName
	}
	r.ClassName = truncate(strings.TrimSpace(r.ClassName), MaxClassLen)
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Timestamp == 0 {
		r.Timestamp = time.Now().UnixMilli()
	}
	if r.Grade == "" {
		r.Grade = scoring.GradeForScore(r.Score)
	}
	return r
}

// Validate rejects scores outside 0..100 and non-finite measurements
func (r Record) Validate() error {
	if r.Score < 0 || r.Score > 100 {
		return fmt.Errorf("%w: score %d out of range", ErrInvalidRecord, r.Score)
	}
	if r.ReactionTime != nil && (*r.ReactionTime < 0 || !finite(*r.ReactionTime)) {
		return fmt.Errorf("%w: reaction time %v", ErrInvalidRecord, *r.ReactionTime)
	}
	if r.FinalClearance != nil && !finite(*r.FinalClearance) {
		return fmt.Errorf("%w: final clearance %v", ErrInvalidRecord, *r.FinalClearance)
	}
	return nil
}

// Compare orders records: score desc, reaction time asc with missing last, timestamp asc
func Compare(a, b Record) int {
	if a.Score != b.Score {
		return b.Score - a.Score
	}
	ar, br := reactionKey(a), reactionKey(b)
	if ar != br {
		if ar < br {
			return -1
		}
		return 1
	}
	switch {
	case a.Timestamp < b.Timestamp:
		return -1
	case a.Timestamp > b.Timestamp:
		return 1
	}
	return 0
}

// Sort orders records best first, stable for equal keys
func Sort(records []Record) {
	slices.SortStableFunc(records, Compare)
}

func reactionKey(r Record) float64 {
	if r.ReactionTime == nil {
		return math.Inf(1)
	}
	return *r.ReactionTime
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func clampLimit(limit, max int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > max {
		return max
	}
	return limit
}
