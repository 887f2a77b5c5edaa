package domain

import (
	"errors"
	"testing"
	"time"
)

var day0 = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func at(h float64) time.Time { return day0.Add(Hours(h)) }

func closed(status DutyStatus, from, to float64) StatusInterval {
	end := at(to)
	return StatusInterval{Status: status, Start: at(from), End: &end}
}

func TestDutyStatusLogChangeStatus(t *testing.T) {
	l, err := NewDutyStatusLog("drv-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := l.ChangeStatus(StatusChange{Status: OffDuty, At: at(0)}); err != nil {
		t.Fatalf("first change: %v", err)
	}
	first, _ := l.Snapshot().Open()

	got, err := l.ChangeStatus(StatusChange{Status: Driving, At: at(10), Location: "Dallas, TX"})
	if err != nil {
		t.Fatalf("second change: %v", err)
	}
	if got.Status != Driving || !got.Start.Equal(at(10)) || !got.IsOpen() {
		t.Fatalf("new interval = %+v, want open driving from 10h", got)
	}

	snap := l.Snapshot()
	if snap.Len() != 2 {
		t.Fatalf("len = %d, want 2", snap.Len())
	}
	prev := snap.Intervals[0]
	if prev.ID != first.ID {
		t.Fatalf("first interval id changed")
	}
	if prev.End == nil || !prev.End.Equal(at(10)) {
		t.Fatalf("previous interval end = %v, want %v", prev.End, at(10))
	}
	if snap.Seq != 2 || l.Seq() != 2 {
		t.Fatalf("seq = %d, want 2", snap.Seq)
	}
}

func TestDutyStatusLogRejectsInvalidChanges(t *testing.T) {
	tests := []struct {
		name string
		ch   StatusChange
		want error
	}{
		{"same status", StatusChange{Status: OffDuty, At: at(2)}, ErrUnchangedStatus},
		{"unknown status", StatusChange{Status: "napping", At: at(2)}, ErrInvalidStatus},
		{"before open start", StatusChange{Status: Driving, At: at(0.5)}, ErrInvalidRange},
		{"at open start", StatusChange{Status: Driving, At: at(1)}, ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := NewDutyStatusLog("drv-1")
			if _, err := l.ChangeStatus(StatusChange{Status: OffDuty, At: at(1)}); err != nil {
				t.Fatalf("seed: %v", err)
			}

			_, err := l.ChangeStatus(tt.ch)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if l.Snapshot().Len() != 1 || l.Seq() != 1 {
				t.Fatalf("rejected change mutated the log")
			}
		})
	}
}

func TestDutyStatusLogAppendValidation(t *testing.T) {
	l, _ := NewDutyStatusLog("drv-1")
	if _, err := l.Append(closed(OffDuty, 0, 10)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := l.Append(closed(Driving, 11, 12)); !errors.Is(err, ErrNonContiguous) {
		t.Fatalf("gap: err = %v, want ErrNonContiguous", err)
	}
	if _, err := l.Append(closed(Driving, 9, 12)); !errors.Is(err, ErrOverlap) {
		t.Fatalf("overlap: err = %v, want ErrOverlap", err)
	}
	if _, err := l.Append(closed(Driving, 10, 10)); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("empty interval: err = %v, want ErrInvalidRange", err)
	}

	if _, err := l.Append(StatusInterval{Status: Driving, Start: at(10)}); err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := l.Append(closed(OnDuty, 12, 13)); !errors.Is(err, ErrOpenInterval) {
		t.Fatalf("after open: err = %v, want ErrOpenInterval", err)
	}

	if _, err := l.Close(at(10)); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("close at start: err = %v, want ErrInvalidRange", err)
	}
	if _, err := l.Close(at(12)); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := l.Close(at(13)); !errors.Is(err, ErrNoOpenInterval) {
		t.Fatalf("second close: err = %v, want ErrNoOpenInterval", err)
	}
}

func TestDutyStatusLogAmendKeepsAuditTrail(t *testing.T) {
	l, _ := NewDutyStatusLog("drv-1")
	first, _ := l.Append(closed(OffDuty, 0, 10))
	second, _ := l.Append(closed(OnDuty, 10, 12))

	amended, err := l.Amend(Amendment{Target: second.ID, Status: Driving, Notes: "was driving"})
	if err != nil {
		t.Fatalf("amend: %v", err)
	}
	if amended.Amends == nil || *amended.Amends != second.ID {
		t.Fatalf("amended.Amends = %v, want %v", amended.Amends, second.ID)
	}
	if !amended.Start.Equal(second.Start) || !amended.End.Equal(*second.End) {
		t.Fatalf("amendment changed time bounds")
	}

	snap := l.Snapshot()
	if snap.Len() != 2 {
		t.Fatalf("len = %d, want 2", snap.Len())
	}
	if snap.Intervals[0].ID != first.ID || snap.Intervals[1].ID != amended.ID {
		t.Fatalf("timeline does not point at the amendment")
	}
	if snap.Intervals[1].Status != Driving {
		t.Fatalf("status = %s, want driving", snap.Intervals[1].Status)
	}

	if got := len(l.Records()); got != 3 {
		t.Fatalf("records = %d, want 3", got)
	}
	orig, ok := l.Find(second.ID)
	if !ok || orig.Status != OnDuty {
		t.Fatalf("original record lost: %+v", orig)
	}

	// The superseded record is no longer part of the timeline.
	if _, err := l.Amend(Amendment{Target: second.ID, Status: OffDuty}); !errors.Is(err, ErrIntervalNotFound) {
		t.Fatalf("amend superseded: err = %v, want ErrIntervalNotFound", err)
	}
}

func TestReplayRebuildsLog(t *testing.T) {
	events := []LogEvent{
		NewAppendEvent("drv-1", closed(OffDuty, 0, 10)),
		NewStatusChangeEvent("drv-1", StatusChange{Status: Driving, At: at(10)}),
		NewStatusChangeEvent("drv-1", StatusChange{Status: OnDuty, At: at(15)}),
	}
	for i := range events {
		events[i].Seq = int64(i + 1)
	}
	events = append(events, NewAmendEvent("drv-1", Amendment{Target: events[1].IntervalID, Status: Driving, Notes: "fuel stop at 12h"}))
	events[3].Seq = 4

	l, err := Replay("drv-1", events)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	snap := l.Snapshot()
	if snap.Len() != 3 || snap.Seq != 4 {
		t.Fatalf("snapshot = %d intervals seq %d, want 3 / 4", snap.Len(), snap.Seq)
	}
	if snap.Intervals[1].Notes != "fuel stop at 12h" {
		t.Fatalf("amendment not replayed")
	}

	again, err := Replay("drv-1", events)
	if err != nil {
		t.Fatalf("second replay: %v", err)
	}
	if again.Snapshot().Intervals[2].ID != snap.Intervals[2].ID {
		t.Fatalf("replay is not deterministic")
	}
}

func TestReplayRejectsBadStream(t *testing.T) {
	ev := NewAppendEvent("drv-1", closed(OffDuty, 0, 10))
	ev.Seq = 2
	if _, err := Replay("drv-1", []LogEvent{ev}); !errors.Is(err, ErrEventOutOfOrder) {
		t.Fatalf("err = %v, want ErrEventOutOfOrder", err)
	}

	other := NewAppendEvent("drv-2", closed(OffDuty, 0, 10))
	if _, err := Replay("drv-1", []LogEvent{other}); !errors.Is(err, ErrDriverMismatch) {
		t.Fatalf("err = %v, want ErrDriverMismatch", err)
	}

	if _, err := NewDutyStatusLog("  "); !errors.Is(err, ErrEmptyDriver) {
		t.Fatalf("err = %v, want ErrEmptyDriver", err)
	}
}

func TestSnapshotBetweenClipsToWindow(t *testing.T) {
	snap, err := SnapshotOf("drv-1", []StatusInterval{
		closed(OffDuty, 0, 10),
		closed(Driving, 10, 20),
		{Status: OffDuty, Start: at(20)},
	})
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	got := snap.Between(at(5), at(24), at(22))
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if !got[0].Start.Equal(at(5)) {
		t.Fatalf("first start = %v, want %v", got[0].Start, at(5))
	}
	if !got[2].IsOpen() {
		t.Fatalf("interval running at as-of should stay open")
	}

	past := snap.Between(at(0), at(12), at(22))
	if len(past) != 2 || past[1].End == nil || !past[1].End.Equal(at(12)) {
		t.Fatalf("window end not clipped: %+v", past)
	}

	if err := snap.CheckAsOf(at(19)); !errors.Is(err, ErrAsOfOutOfRange) {
		t.Fatalf("as-of before open start: err = %v", err)
	}
	if err := snap.CheckAsOf(at(-1)); !errors.Is(err, ErrAsOfOutOfRange) {
		t.Fatalf("as-of before log: err = %v", err)
	}
	if err := snap.CheckAsOf(at(21)); err != nil {
		t.Fatalf("as-of inside open: %v", err)
	}
}

func TestRuleSetLookup(t *testing.T) {
	rs, err := LookupRuleSet("")
	if err != nil || rs.Version != DefaultRuleSet.Version {
		t.Fatalf("default lookup = %v, %v", rs.Version, err)
	}
	if _, err := LookupRuleSet("eu-561"); !errors.Is(err, ErrUnknownRuleSet) {
		t.Fatalf("err = %v, want ErrUnknownRuleSet", err)
	}
	for _, rs := range RuleSets() {
		if err := rs.Validate(); err != nil {
			t.Fatalf("published rule set invalid: %v", err)
		}
	}

	bad := USProperty70Hour8Day
	bad.MaxDrivingHours = 15
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for driving limit above duty window")
	}
}
