package baucua

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Record is one settled round in a table's history.
type Record struct {
	ID     uuid.UUID
	Time   time.Time
	Dice   Dice
	Staked int64 // total stake on the board when the dice were thrown
	Win    int64 // amount credited at settlement
}

// Net returns the round's result relative to the stake.
func (r Record) Net() int64 {
	return r.Win - r.Staked
}

// String renders the record as "15:04:05: 🦌 🎃 🐓 +4000".
// The amount is only shown for a winning round.
func (r Record) String() string {
	s := fmt.Sprintf("%s: %s", r.Time.Format(time.TimeOnly), r.Dice)
	if r.Win > 0 {
		s += fmt.Sprintf(" +%d", r.Win)
	}
	return s
}

// history keeps the newest records first and drops the oldest past capacity.
type history struct {
	records  []Record
	capacity int
}

func newHistory(capacity int) *history {
	if capacity <= 0 {
		capacity = HistorySize
	}
	return &history{
		records:  make([]Record, 0, capacity),
		capacity: capacity,
	}
}

func (h *history) push(r Record) {
	if len(h.records) < h.capacity {
		h.records = append(h.records, Record{})
	}
	copy(h.records[1:], h.records[:len(h.records)-1])
	h.records[0] = r
}

func (h *history) list() []Record {
	out := make([]Record, len(h.records))
	copy(out, h.records)
	return out
}

func (h *history) len() int {
	return len(h.records)
}
