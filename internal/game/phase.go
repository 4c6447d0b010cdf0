package game

// Phase is the state of a game
type Phase int

const (
	Begin Phase = iota // waiting for players
	Clue               // the clue-maker is choosing a clue
	Play               // cards are being collected
	Vote               // voting is in progress
	End                // terminal
)

// String returns the string representation of a phase
func (p Phase) String() string {
	switch p {
	case Begin:
		return "begin"
	case Clue:
		return "clue"
	case Play:
		return "play"
	case Vote:
		return "vote"
	case End:
		return "end"
	default:
		return "unknown"
	}
}
