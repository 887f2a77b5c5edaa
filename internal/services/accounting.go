package services

import (
	"hos-compliance-service/internal/domain"
	"time"
)

// piece is the elapsed part of one log interval, clipped at the as-of instant.
type piece struct {
	status domain.DutyStatus
	start  time.Time
	end    time.Time
}

func (p piece) dur() time.Duration { return p.end.Sub(p.start) }

func elapsedPieces(log domain.LogSnapshot, asOf time.Time) []piece {
	out := make([]piece, 0, len(log.Intervals))
	for _, iv := range log.Intervals {
		span, ok := iv.Span(asOf)
		if !ok {
			continue
		}
		out = append(out, piece{status: iv.Status, start: span.Start(), end: span.End()})
	}
	return out
}

// restRun is a maximal contiguous stretch of off-duty/sleeper-berth time.
type restRun struct {
	start time.Time
	end   time.Time
}

func (r restRun) dur() time.Duration { return r.end.Sub(r.start) }

func restRuns(pieces []piece) []restRun {
	var (
		runs []restRun
		cur  *restRun
	)
	for _, p := range pieces {
		if !p.status.IsRest() {
			cur = nil
			continue
		}
		if cur != nil && p.start.Equal(cur.end) {
			cur.end = p.end
			continue
		}
		runs = append(runs, restRun{start: p.start, end: p.end})
		cur = &runs[len(runs)-1]
	}
	return runs
}

type dutyPeriod struct {
	start           time.Time
	consecutiveRest time.Duration
	resetComplete   bool
}

// locateDutyPeriod finds where the current duty period starts: the end of
// the latest qualifying rest run, or the first piece.
func locateDutyPeriod(pieces []piece, rules domain.RuleSet) dutyPeriod {
	p := dutyPeriod{start: pieces[0].start}
	runs := restRuns(pieces)
	trailing := pieces[len(pieces)-1].status.IsRest()
	minRest := rules.MinOffDuty()

	for i, r := range runs {
		qualifies := r.dur() >= minRest
		if trailing && i == len(runs)-1 {
			p.consecutiveRest = r.dur()
			if qualifies {
				p.resetComplete = true
				p.start = r.end
			}
			continue
		}
		if qualifies {
			p.start = r.end
		}
	}
	return p
}

// breakClock is the 30-minute-break clock. It accrues on-duty time
// (driving included). A non-driving stretch of at least the break minimum
// resets it when it interrupts driving, whatever mix of rest and work it
// holds. Before any driving, only consecutive rest of that length resets
// it, and on-duty work after that rest still counts.
type breakClock struct {
	min   time.Duration
	clock time.Duration
	drove bool

	// current non-driving stretch
	runLen    time.Duration
	runWork   time.Duration
	restRun   time.Duration
	rested    bool
	workAfter time.Duration
}

func newBreakClock(rules domain.RuleSet) *breakClock {
	return &breakClock{min: rules.BreakMinimum()}
}

func (b *breakClock) drive(d time.Duration) {
	b.clock = b.value()
	b.runLen, b.runWork, b.restRun, b.rested, b.workAfter = 0, 0, 0, false, 0

	b.clock += d
	b.drove = true
}

func (b *breakClock) pause(status domain.DutyStatus, d time.Duration) {
	b.runLen += d
	if status.IsRest() {
		b.restRun += d
		if b.restRun >= b.min {
			b.rested = true
			b.workAfter = 0
		}
		return
	}
	b.runWork += d
	b.workAfter += d
	b.restRun = 0
}

// value is the clock as it stands, counting a stretch still in progress.
func (b *breakClock) value() time.Duration {
	switch {
	case b.runLen == 0:
		return b.clock
	case b.drove && b.runLen >= b.min:
		return 0
	case b.rested:
		return b.workAfter
	}
	return b.clock + b.runWork
}

// drivenSinceBreak reports whether driving has happened since the clock
// last reset, counting a stretch still in progress.
func (b *breakClock) drivenSinceBreak() bool {
	return b.drove && b.runLen < b.min
}

// breakScan is the break clock replayed over a log.
type breakScan struct {
	now   time.Duration
	peak  time.Duration
	drove bool
}

// scanBreakClock replays pieces through the break clock. now is the clock
// at the last piece and peak the largest value reached at the end of a
// driving piece that starts at or after since.
func scanBreakClock(pieces []piece, since time.Time, rules domain.RuleSet) breakScan {
	bc := newBreakClock(rules)
	var scan breakScan
	for _, p := range pieces {
		if p.status != domain.Driving {
			bc.pause(p.status, p.dur())
			continue
		}
		bc.drive(p.dur())
		if !p.start.Before(since) && bc.clock > scan.peak {
			scan.peak = bc.clock
		}
	}
	scan.now = bc.value()
	scan.drove = bc.drivenSinceBreak()
	return scan
}

func hoursOf(d time.Duration) float64 { return d.Hours() }
