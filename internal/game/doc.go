// Package game implements the core rules engine for a grid-based tactical
// card game: the board status engine, the turn/round/match state machine,
// and the ready-check sequencer that starts a match.
//
// The main type is GameState, which owns a single match. All operations are
// synchronous and run to completion; the package performs no locking and no
// I/O. Callers (the session layer) serialize operations per match and
// recompute the board after every mutation:
//
//	st, err := game.NewGameState(7, rng)
//	st.AddPlayer(&game.Player{ID: 1, Name: "alice", Connected: true})
//	...
//	if err := st.ToggleActivePlayer(1); err != nil { ... }
//	st.Board = game.Recompute(st)
//
// # Deterministic Testing
//
// GameState takes a *rand.Rand so starting-player selection and anything
// else random is reproducible under a fixed seed:
//
//	st, err := game.NewGameState(5, randutil.New(42))
package game
