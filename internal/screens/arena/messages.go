package arena

import "github.com/abhisek/quizarena/internal/session"

// stateMsg carries an engine snapshot into the program.
type stateMsg struct {
	State session.State
}

// startedMsg is sent when Engine.Start returns.
type startedMsg struct {
	Err error
}

// recordedMsg is sent once the session's result went through the
// recorders, so the wallet can be refreshed.
type recordedMsg struct {
	Result session.Result
}
