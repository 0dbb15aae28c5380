package game

// Cue names a moment a presentation layer may want to react to with a
// sound, a vibration or an animation.
type Cue string

const (
	CueBuy         Cue = "buy"
	CueSell        Cue = "sell"
	CueTravel      Cue = "travel"
	CueUnlock      Cue = "unlock"
	CueUpgrade     Cue = "upgrade"
	CueEvent       Cue = "event"
	CueLevelUp     Cue = "level_up"
	CueAchievement Cue = "achievement"
	CueError       Cue = "error"
	CueGameOver    Cue = "game_over"
)

// Feedback receives cues from a Session. Implementations must not block;
// they are called while the session lock is held.
type Feedback interface {
	Cue(c Cue)
}

// NopFeedback discards every cue.
type NopFeedback struct{}

func (NopFeedback) Cue(Cue) {}

// FeedbackFunc adapts a function to the Feedback interface.
type FeedbackFunc func(Cue)

func (f FeedbackFunc) Cue(c Cue) { f(c) }
