// Package types holds read shapes shared between the service layer and the
// HTTP API.
package types

// TurnOutcome is the result of recording one user turn: the assistant's
// reply, the post-turn score, and the stopping policy verdict.
type TurnOutcome struct {
	Reply          string
	Score          *float64
	ShouldContinue bool
	Reason         string
}
