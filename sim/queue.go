package sim

import (
	"container/heap"
	"slices"
)

// EntryKind distinguishes the two kinds of queue entries.
type EntryKind uint8

const (
	// EntryUpdate is a model's pending self-activation. At most one exists per model.
	EntryUpdate EntryKind = iota
	// EntryInput is a value injected from outside the graph, awaiting delivery
	// to one of the model's input ports.
	EntryInput
)

func (k EntryKind) String() string {
	if k == EntryInput {
		return "input"
	}
	return "update"
}

// ScheduledEvent is an entry of the EventQueue: Model must run at Time.
type ScheduledEvent struct {
	Time  Time
	Seq   uint64 // insertion order, assigned by the queue
	Model ModelID
	Kind  EntryKind
	Port  string // EntryInput only
	Value any    // EntryInput only

	index int
}

// eventHeap implements heap.Interface.
// Ordering: timestamp → sequence number
type eventHeap []*ScheduledEvent

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if c := h[i].Time.Compare(h[j].Time); c != 0 {
		return c < 0
	}
	return h[i].Seq < h[j].Seq
}

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *eventHeap) Push(x any) {
	ev := x.(*ScheduledEvent)
	ev.index = len(*h)
	*h = append(*h, ev)
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	ev := old[n-1]
	old[n-1] = nil
	ev.index = -1
	*h = old[:n-1]
	return ev
}

// EventQueue is a min-priority queue of ScheduledEvents keyed by (Time, Seq).
// Sequence numbers come from a counter owned by the queue, so equal-time
// entries always pop in insertion order.
//
// Thread-safety: NOT thread-safe. Owned by a single Simulation.
type EventQueue struct {
	events  eventHeap
	updates map[ModelID]*ScheduledEvent // pending EntryUpdate per model
	nextSeq uint64
}

// NewEventQueue creates an empty queue.
func NewEventQueue() *EventQueue {
	q := &EventQueue{
		events:  make(eventHeap, 0),
		updates: make(map[ModelID]*ScheduledEvent),
	}
	heap.Init(&q.events)
	return q
}

// Len returns the number of queued entries.
func (q *EventQueue) Len() int { return q.events.Len() }

// LastSeq returns the sequence number most recently assigned, or 0.
func (q *EventQueue) LastSeq() uint64 { return q.nextSeq }

// Push inserts ev, assigning its sequence number. Pushing an EntryUpdate
// replaces the model's previous pending update, if any.
func (q *EventQueue) Push(ev ScheduledEvent) ScheduledEvent {
	if ev.Kind == EntryUpdate {
		q.Remove(ev.Model)
	}
	q.nextSeq++
	ev.Seq = q.nextSeq
	entry := &ev
	heap.Push(&q.events, entry)
	if ev.Kind == EntryUpdate {
		q.updates[ev.Model] = entry
	}
	return ev
}

// PopMin removes and returns the earliest entry.
func (q *EventQueue) PopMin() (ScheduledEvent, bool) {
	if q.events.Len() == 0 {
		return ScheduledEvent{}, false
	}
	ev := heap.Pop(&q.events).(*ScheduledEvent)
	if ev.Kind == EntryUpdate {
		delete(q.updates, ev.Model)
	}
	return *ev, true
}

// PeekMinTime returns the time of the earliest entry.
func (q *EventQueue) PeekMinTime() (Time, bool) {
	if q.events.Len() == 0 {
		return MaxTime, false
	}
	return q.events[0].Time, true
}

// Remove drops the pending self-activation of the model. It reports whether
// one existed. Injected inputs are not affected.
func (q *EventQueue) Remove(id ModelID) bool {
	ev, ok := q.updates[id]
	if !ok {
		return false
	}
	heap.Remove(&q.events, ev.index)
	delete(q.updates, id)
	return true
}

// PendingUpdate returns the time of the model's pending self-activation.
func (q *EventQueue) PendingUpdate(id ModelID) (Time, bool) {
	ev, ok := q.updates[id]
	if !ok {
		return MaxTime, false
	}
	return ev.Time, true
}

// Snapshot returns a copy of all entries in pop order.
func (q *EventQueue) Snapshot() []ScheduledEvent {
	out := make([]ScheduledEvent, 0, q.events.Len())
	for _, ev := range q.events {
		out = append(out, *ev)
	}
	slices.SortFunc(out, func(a, b ScheduledEvent) int {
		if c := a.Time.Compare(b.Time); c != 0 {
			return c
		}
		if a.Seq < b.Seq {
			return -1
		}
		return 1
	})
	return out
}
