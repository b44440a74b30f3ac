package scoring

import "math"

// DisqualifiedReaction is the reaction time sentinel for braking before the obstacle appeared
const DisqualifiedReaction = -1.0

// Margin deductions and reaction adjustments
const (
	maxScore = 100

	penaltyNegativeMargin = 60
	penaltyUnderOneMetre  = 30
	penaltyUnderTwoMetres = 15

	bonusFastReaction   = 5
	penaltyLateReaction = 20
	penaltySlowReaction = 10

	fastReaction = 0.5
	slowReaction = 1.0
	lateReaction = 1.5
)

const (
	msgDisqualified = "Disqualified: you braked before the child appeared."
	msgNoBrake      = "You never braked! When danger appears, slow down and stop at once."
	msgCollision    = "Collision! Spot the child earlier and brake sooner."
	msgTight        = "You stopped, but with almost no room to spare. React faster."
	msgClose        = "That was close! Try braking a little earlier."
	msgGood         = "Well done! Stopping with a bit more room would be safer still."
	msgPerfect      = "Perfect! You responded very safely!"

	suffixFast = " Your reaction was very fast too!"
	suffixLate = " Your reaction was very late. Watch the road more carefully."
	suffixSlow = " Your reaction was a little slow. Be ready earlier."
)

// Input is everything captured about a run that scoring needs
type Input struct {
	// ReactionTime is nil when no brake input was captured after the obstacle appeared,
	// DisqualifiedReaction when the brake came before it
	ReactionTime *float64

	// ClearanceAtBrake is the front clearance at the brake moment, nil without a brake
	ClearanceAtBrake *float64

	// StoppingDistance is the distance physically required to stop from the brake speed
	StoppingDistance float64

	FinalClearance float64
	Collision      bool
	NoBrake        bool
}

// Result is the scored outcome of a run
type Result struct {
	Score            int      `json:"score"`
	Grade            Grade    `json:"grade"`
	Message          string   `json:"message"`
	SafetyMargin     float64  `json:"safetyMargin"`
	Collision        bool     `json:"collision"`
	FinalClearance   float64  `json:"finalClearance"`
	ClearanceAtBrake *float64 `json:"clearanceAtBrake"`
	ReactionTime     *float64 `json:"reactionTime"`
	NoBrake          bool     `json:"noBrake"`
	Disqualified     bool     `json:"disqualified"`
}

// Disqualified reports the pre-spawn brake sentinel
func (in Input) Disqualified() bool {
	return in.ReactionTime != nil && *in.ReactionTime == DisqualifiedReaction
}

// SafetyMargin is the clearance available at brake time minus the required stopping distance
// Without a brake the final clearance stands in for the available distance
func (in Input) SafetyMargin() float64 {
	available := in.FinalClearance
	if in.ClearanceAtBrake != nil {
		available = *in.ClearanceAtBrake
	}
	return available - in.StoppingDistance
}

// Evaluate scores a run; disqualification, no-brake and collision short-circuit in that order
func Evaluate(in Input) Result {
	if in.Disqualified() {
		rt := DisqualifiedReaction
		return Result{
			Score:          0,
			Grade:          GradeDisqualified,
			Message:        msgDisqualified,
			FinalClearance: in.FinalClearance,
			ReactionTime:   &rt,
			Disqualified:   true,
		}
	}

	margin := in.SafetyMargin()
	collision := in.Collision || in.FinalClearance <= 0

	res := Result{
		SafetyMargin:     margin,
		Collision:        collision,
		FinalClearance:   in.FinalClearance,
		ClearanceAtBrake: in.ClearanceAtBrake,
		ReactionTime:     in.ReactionTime,
		NoBrake:          in.NoBrake,
	}

	switch {
	case in.NoBrake:
		res.Grade, res.Message = GradeDanger, msgNoBrake
		return res
	case collision:
		res.Grade, res.Message = GradeDanger, msgCollision
		return res
	}

	score, message := marginScore(margin)

	if in.ReactionTime != nil {
		rt := *in.ReactionTime
		switch {
		case rt < fastReaction:
			score = min(maxScore, score+bonusFastReaction)
			message += suffixFast
		case rt > lateReaction:
			score -= penaltyLateReaction
			message += suffixLate
		case rt > slowReaction:
			score -= penaltySlowReaction
			message += suffixSlow
		}
	}

	res.Score = clampScore(score)
	res.Grade = GradeForScore(res.Score)
	res.Message = message
	return res
}

// marginScore applies the safety margin deduction to a full score
func marginScore(margin float64) (float64, string) {
	switch {
	case margin < 0:
		return maxScore - penaltyNegativeMargin, msgTight
	case margin < 1:
		return maxScore - penaltyUnderOneMetre, msgClose
	case margin < 2:
		return maxScore - penaltyUnderTwoMetres, msgGood
	default:
		return maxScore, msgPerfect
	}
}

func clampScore(score float64) int {
	return int(math.Round(math.Max(0, math.Min(maxScore, score))))
}
