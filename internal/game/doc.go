// Package game implements the rules engine for a clue-association party card
// game for three to six players.
//
// The main type is Game, a state machine that moves through the phases
//
//	Begin -> Clue -> Play -> Vote -> (Clue | End)
//
// Each player action is a single method call on Game. The call validates the
// current phase and turn, mutates the deck, the players and the current Round,
// and may advance the phase. Rejected calls return a *Error and leave the game
// exactly as it was.
//
// # Basic Usage
//
//	g := game.New(rng, host, sets, game.Settings{MaxPlayers: 6, MaxScore: 30, MaxClueLength: 100}, game.DefaultLimits())
//	_ = g.AddPlayer(host, game.Red)
//	_ = g.AddPlayer(bob, game.Blue)
//	_ = g.AddPlayer(carol, game.Green)
//	_ = g.StartGame()
//	maker, _ := g.ClueMaker()
//	_ = g.CreateClue(maker, "a long way home", card)
//
// # Concurrency
//
// A Game is not safe for concurrent use. Callers serialize every command and
// every read against one Game (the server wraps each game in a mutex-guarded
// table). Distinct games share no mutable state.
package game
