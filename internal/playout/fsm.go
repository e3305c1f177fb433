package playout

import "github.com/looplab/fsm"

// Playout states, per spec §4.9: UNSTARTED → RUNNING → (LOOP → RUNNING)* →
// TERMINATED.
const (
	StateUnstarted  = "unstarted"
	StateRunning    = "running"
	StateLoop       = "loop"
	StateTerminated = "terminated"
)

// newPlayoutFSM wraps looplab/fsm to keep scheduler state, replacing the
// source's unencapsulated globals (base_offset/is_first/loop) with an
// explicit state machine, the same way the teacher's REFER subscription
// state is modeled.
func newPlayoutFSM() *fsm.FSM {
	return fsm.NewFSM(
		StateUnstarted,
		fsm.Events{
			{Name: "start", Src: []string{StateUnstarted}, Dst: StateRunning},
			{Name: "rewind", Src: []string{StateRunning}, Dst: StateLoop},
			{Name: "restart", Src: []string{StateLoop}, Dst: StateRunning},
			{Name: "finish", Src: []string{StateRunning}, Dst: StateTerminated},
		}, nil,
	)
}
