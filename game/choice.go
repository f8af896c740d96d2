package game

// Choice is a player's throw for one round.
type Choice string

const (
	ChoiceNone     Choice = ""
	ChoiceRock     Choice = "rock"
	ChoicePaper    Choice = "paper"
	ChoiceScissors Choice = "scissors"
)

func (c Choice) Valid() bool {
	switch c {
	case ChoiceRock, ChoicePaper, ChoiceScissors:
		return true
	}
	return false
}

// Outcome of a round, framed from one player's perspective.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomeDraw Outcome = "draw"
)

// Invert flips win/loss for the opposing perspective. Draws stay draws.
func (o Outcome) Invert() Outcome {
	switch o {
	case OutcomeWin:
		return OutcomeLoss
	case OutcomeLoss:
		return OutcomeWin
	}
	return o
}

// Resolve maps two simultaneous choices to the outcome for the first one.
// Both choices must be non-empty; the match never resolves a half-filled round.
func Resolve(a, b Choice) Outcome {
	if a == b {
		return OutcomeDraw
	}
	if (a == ChoiceRock && b == ChoiceScissors) ||
		(a == ChoiceScissors && b == ChoicePaper) ||
		(a == ChoicePaper && b == ChoiceRock) {
		return OutcomeWin
	}
	return OutcomeLoss
}
