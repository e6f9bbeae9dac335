package main

import "testing"

func TestEventLogOverwritesOldestOnFull(t *testing.T) {
	l := NewEventLog(3)
	for i := 0; i < 5; i++ {
		l.Push(LogEvent{Kind: EvTaskKilled, Task: TaskId(i)})
	}
	if l.Dropped() != 2 {
		t.Fatalf("Dropped = %d, want 2", l.Dropped())
	}
	events := l.Events()
	if len(events) != 3 {
		t.Fatalf("len(Events()) = %d, want 3", len(events))
	}
	if events[0].Task != TaskId(2) || events[2].Task != TaskId(4) {
		t.Fatalf("unexpected event order: %+v", events)
	}
}

func TestEventLogRetainsAllUnderCapacity(t *testing.T) {
	l := NewEventLog(10)
	for i := 0; i < 4; i++ {
		l.Push(LogEvent{Kind: EvScheduled, Next: TaskId(i), HasNext: true})
	}
	if l.Dropped() != 0 {
		t.Fatalf("Dropped = %d, want 0", l.Dropped())
	}
	if len(l.Events()) != 4 {
		t.Fatalf("len(Events()) = %d, want 4", len(l.Events()))
	}
}

func TestEventLogDumpOrder(t *testing.T) {
	l := NewEventLog(2)
	l.Push(LogEvent{Kind: EvTaskKilled, Task: TaskId(1)})
	l.Push(LogEvent{Kind: EvTaskKilled, Task: TaskId(2)})

	var lines []string
	l.Dump(func(s string) { lines = append(lines, s) })
	if len(lines) != 2 {
		t.Fatalf("Dump wrote %d lines, want 2", len(lines))
	}
}
