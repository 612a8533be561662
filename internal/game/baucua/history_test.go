package baucua

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordString(t *testing.T) {
	at := time.Date(2024, 2, 10, 20, 15, 4, 0, time.UTC)

	win := Record{Time: at, Dice: Dice{Gourd, Gourd, Crab}, Staked: 3500, Win: 4000}
	assert.Equal(t, "20:15:04: 🎃 🎃 🦀 +4000", win.String())
	assert.Equal(t, int64(500), win.Net())

	loss := Record{Time: at, Dice: Dice{Deer, Fish, Shrimp}, Staked: 1000}
	assert.Equal(t, "20:15:04: 🦌 🐟 🦐", loss.String())
	assert.Equal(t, int64(-1000), loss.Net())
}

func TestHistoryKeepsNewestFirst(t *testing.T) {
	h := newHistory(3)
	for i := 1; i <= 5; i++ {
		h.push(Record{Win: int64(i)})
	}

	got := h.list()
	assert.Len(t, got, 3)
	assert.Equal(t, []int64{5, 4, 3}, []int64{got[0].Win, got[1].Win, got[2].Win})
}

func TestHistoryListIsACopy(t *testing.T) {
	h := newHistory(HistorySize)
	h.push(Record{Win: 1})

	got := h.list()
	got[0].Win = 99

	assert.Equal(t, int64(1), h.list()[0].Win)
}
