package playout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/looplab/fsm"

	"github.com/arzzra/rtpreplay/internal/script"
)

// LineSource is the script input the scheduler drives. In loop mode Rewind
// must return the stream to its first logical line; a non-seekable source
// (e.g. stdin) returns an error from Rewind, and cmd/rtpreplay rejects loop
// mode for it at startup.
type LineSource interface {
	NextLine() (line string, lineNo int, err error)
	Rewind() error
}

// Transmitter sends one already-built datagram to the sink selected by tag.
// Send failures are logged by the scheduler and otherwise ignored, per
// spec §4.9 step 1 ("best-effort; log and continue on send error").
type Transmitter interface {
	Send(sink script.Sink, data []byte) error
}

// Telemetry receives scheduler events for metrics/logging. Defined here
// rather than imported from internal/telemetry so that package stays a
// leaf dependency; *telemetry.Telemetry satisfies this structurally.
type Telemetry interface {
	RecordSend(sink script.Sink, scheduled, actual time.Time)
	RecordSendError(sink script.Sink)
	RecordClockAnomaly()
}

// Scheduler drives the playout state machine described in spec §4.9. It
// holds no globals: every run's base_offset, loop flag, and stream handle
// live on the Scheduler value, unlike the source's process-wide statics.
type Scheduler struct {
	Timer     Timer
	Sink      Transmitter
	Lines     LineSource
	Loop      bool
	Logger    *slog.Logger
	Telemetry Telemetry

	fsm *fsm.FSM
	// baseAnchor is the instant that corresponds to script time zero:
	// deadline for a packet scheduled at offset t is baseAnchor.Add(t).
	baseAnchor time.Time
	pending    script.Packet
	cancel     func()
	now        func() time.Time
	terminated chan struct{}
}

// New builds a Scheduler ready to Run.
func New(lines LineSource, sink Transmitter, timer Timer, loop bool, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		Timer:      timer,
		Sink:       sink,
		Lines:      lines,
		Loop:       loop,
		Logger:     logger,
		fsm:        newPlayoutFSM(),
		now:        time.Now,
		terminated: make(chan struct{}),
	}
}

// Run reads and schedules lines until the script reaches TERMINATED on its
// own (a non-loop script hitting EOF) or done is closed, whichever comes
// first.
func (s *Scheduler) Run(done <-chan struct{}) error {
	if err := s.fsm.Event(context.Background(), "start"); err != nil {
		return fmt.Errorf("playout: %w", err)
	}

	line, lineNo, err := s.Lines.NextLine()
	if errors.Is(err, script.ErrEOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("playout: reading first line: %w", err)
	}
	s.Logger.Debug("script line", "lineNo", lineNo, "text", line)

	pkt, err := script.Generate(line, lineNo)
	if err != nil {
		return err
	}

	s.startIteration(pkt)

	select {
	case <-done:
	case <-s.terminated:
	}
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

// startIteration records a fresh base_offset anchored to first, sends it
// immediately, and reads ahead to arm the timer for the next line. Used
// both for the very first packet of a run and, per spec.md's chosen
// resolution of the source's ambiguous rewind behavior (Design Notes §9),
// for the first packet of every loop iteration.
func (s *Scheduler) startIteration(first script.Packet) {
	s.baseAnchor = s.now().Add(-first.Time)
	s.pending = first
	s.sendPending()
	s.advance()
}

// sendPending transmits the currently pending packet, logging but not
// failing on a send error.
func (s *Scheduler) sendPending() {
	scheduled := s.baseAnchor.Add(s.pending.Time)
	err := s.Sink.Send(s.pending.Sink, s.pending.Data)
	if err != nil {
		s.Logger.Warn("send failed", "sink", s.pending.Sink, "error", err)
		if s.Telemetry != nil {
			s.Telemetry.RecordSendError(s.pending.Sink)
		}
		return
	}
	if s.Telemetry != nil {
		s.Telemetry.RecordSend(s.pending.Sink, scheduled, s.now())
	}
}

// fire is the timer callback: the packet in s.pending is due now, so send
// it, then read ahead and arm the next one (or terminate / rewind on EOF).
func (s *Scheduler) fire() {
	s.sendPending()
	s.advance()
}

// advance reads the next logical line, builds its packet, and arms the
// timer for it — or, on EOF, terminates or rewinds per Loop.
func (s *Scheduler) advance() {
	line, lineNo, err := s.Lines.NextLine()
	if errors.Is(err, script.ErrEOF) {
		s.handleEOF()
		return
	}
	if err != nil {
		s.Logger.Error("script error", "error", err)
		return
	}
	s.Logger.Debug("script line", "lineNo", lineNo, "text", line)

	pkt, err := script.Generate(line, lineNo)
	if err != nil {
		s.Logger.Error("script error", "error", err)
		return
	}
	s.pending = pkt
	s.armNext()
}

func (s *Scheduler) handleEOF() {
	if !s.Loop {
		s.terminate()
		return
	}
	if err := s.Lines.Rewind(); err != nil {
		s.Logger.Error("rewind failed", "error", err)
		s.terminate()
		return
	}
	_ = s.fsm.Event(context.Background(), "rewind")

	line, lineNo, err := s.Lines.NextLine()
	if err != nil {
		s.Logger.Error("empty script on rewind", "error", err)
		s.terminate()
		return
	}
	s.Logger.Debug("script line", "lineNo", lineNo, "text", line)
	pkt, err := script.Generate(line, lineNo)
	if err != nil {
		s.Logger.Error("script error", "error", err)
		return
	}
	_ = s.fsm.Event(context.Background(), "restart")
	s.startIteration(pkt)
}

// terminate fires the FSM's finish event and unblocks Run. Called on every
// path that ends a non-loop run or abandons a failed loop rewind.
func (s *Scheduler) terminate() {
	_ = s.fsm.Event(context.Background(), "finish")
	close(s.terminated)
}

// armNext computes the next deadline from base_offset and the pending
// packet's scheduled time, clamping to now (with a logged warning) if the
// computed deadline has already passed.
func (s *Scheduler) armNext() {
	now := s.now()
	deadline := s.baseAnchor.Add(s.pending.Time)
	if deadline.Before(now) {
		s.Logger.Warn("non-monotonic deadline clamped to now", "deadline", deadline, "now", now)
		if s.Telemetry != nil {
			s.Telemetry.RecordClockAnomaly()
		}
		deadline = now
	}
	s.cancel = s.Timer.Schedule(deadline, s.fire)
}

// State reports the scheduler's current playout state.
func (s *Scheduler) State() string {
	return s.fsm.Current()
}
