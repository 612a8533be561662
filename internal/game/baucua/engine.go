package baucua

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultRollDuration is how long the dice animate before the final throw.
	DefaultRollDuration = 2 * time.Second

	// DefaultTickInterval is the delay between provisional throws.
	DefaultTickInterval = 100 * time.Millisecond

	// DefaultSettleDelay is how long the settled board is shown before the
	// bets are cleared.
	DefaultSettleDelay = 500 * time.Millisecond
)

// Phase is the engine's position in the round state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRolling
	PhaseSettling
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRolling:
		return "rolling"
	case PhaseSettling:
		return "settling"
	default:
		return "unknown"
	}
}

// Snapshot is a consistent copy of a table's observable state.
type Snapshot struct {
	Version      uint64 // increases with every state change
	Balance      int64
	Bets         Bets
	SelectedChip Chip
	Phase        Phase
	Dice         Dice
	History      []Record // newest first
}

// LastRound returns the most recent settled round.
func (s Snapshot) LastRound() (Record, bool) {
	if len(s.History) == 0 {
		return Record{}, false
	}
	return s.History[0], true
}

// Config holds the engine's collaborators and animation timing.
// Zero values fall back to the defaults.
type Config struct {
	RollDuration time.Duration
	TickInterval time.Duration
	SettleDelay  time.Duration

	// Source draws the dice. Defaults to NewSource().
	Source Source

	// Now stamps history records. Defaults to time.Now.
	Now func() time.Time

	Logger *zerolog.Logger
}

// Engine owns one table's state and is the only thing that mutates it.
// Betting operations are no-ops unless the table is idle; a roll runs to
// completion on its own goroutine and notifies subscribers after every step.
type Engine struct {
	mu sync.Mutex

	balance int64
	bets    Bets
	chip    Chip
	phase   Phase
	dice    Dice
	history *history
	version uint64

	lastActive time.Time
	rolled     chan struct{} // closed when the current roll returns to idle
	closed     bool

	ticks        int
	tickInterval time.Duration
	settleDelay  time.Duration
	src          Source
	now          func() time.Time
	log          zerolog.Logger

	subMu  sync.Mutex
	subs   map[int]func(Snapshot)
	nextID int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a table with the starting balance and default chip.
func New(cfg *Config) *Engine {
	rollDuration := DefaultRollDuration
	tickInterval := DefaultTickInterval
	settleDelay := DefaultSettleDelay
	var src Source
	now := time.Now
	logger := zerolog.Nop()

	if cfg != nil {
		if cfg.RollDuration > 0 {
			rollDuration = cfg.RollDuration
		}
		if cfg.TickInterval > 0 {
			tickInterval = cfg.TickInterval
		}
		if cfg.SettleDelay > 0 {
			settleDelay = cfg.SettleDelay
		}
		src = cfg.Source
		if cfg.Now != nil {
			now = cfg.Now
		}
		if cfg.Logger != nil {
			logger = *cfg.Logger
		}
	}
	if src == nil {
		src = NewSource()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		balance:      InitialBalance,
		chip:         DefaultChip,
		phase:        PhaseIdle,
		dice:         InitialDice,
		history:      newHistory(HistorySize),
		lastActive:   now(),
		ticks:        int(rollDuration / tickInterval),
		tickInterval: tickInterval,
		settleDelay:  settleDelay,
		src:          src,
		now:          now,
		log:          logger,
		subs:         make(map[int]func(Snapshot)),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		Version:      e.version,
		Balance:      e.balance,
		Bets:         e.bets,
		SelectedChip: e.chip,
		Phase:        e.phase,
		Dice:         e.dice,
		History:      e.history.list(),
	}
}

// LastActivity returns when the table last accepted an operation.
func (e *Engine) LastActivity() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastActive
}

// Busy reports whether a roll is in progress.
func (e *Engine) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase != PhaseIdle
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs on the goroutine that made the change and must not block for long.
// The returned function removes the subscription.
func (e *Engine) Subscribe(fn func(Snapshot)) func() {
	e.subMu.Lock()
	id := e.nextID
	e.nextID++
	e.subs[id] = fn
	e.subMu.Unlock()

	return func() {
		e.subMu.Lock()
		delete(e.subs, id)
		e.subMu.Unlock()
	}
}

func (e *Engine) notify(s Snapshot) {
	e.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(e.subs))
	for _, fn := range e.subs {
		fns = append(fns, fn)
	}
	e.subMu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

// changedLocked bumps the version and returns the snapshot to publish.
func (e *Engine) changedLocked() Snapshot {
	e.version++
	e.lastActive = e.now()
	return e.snapshotLocked()
}

// PlaceBet stakes the selected chip on id.
// It reports false and changes nothing if the table is not idle, id is not a
// symbol, or the balance cannot cover the chip.
func (e *Engine) PlaceBet(id SymbolID) bool {
	e.mu.Lock()
	chip := e.chip
	e.mu.Unlock()
	return e.PlaceBetWith(id, chip)
}

// PlaceBetWith stakes chip on id instead of the selected chip.
// chip must be one of the fixed denominations.
func (e *Engine) PlaceBetWith(id SymbolID, chip Chip) bool {
	if !id.Valid() || !chip.Valid() {
		return false
	}

	e.mu.Lock()
	if e.phase != PhaseIdle || e.closed || e.balance < int64(chip) {
		e.mu.Unlock()
		return false
	}
	e.bets[id-1] += int64(chip)
	e.balance -= int64(chip)
	s := e.changedLocked()
	e.mu.Unlock()

	e.notify(s)
	return true
}

// ResetBets refunds every stake and clears the board.
// It is a no-op unless the table is idle.
func (e *Engine) ResetBets() bool {
	e.mu.Lock()
	if e.phase != PhaseIdle || e.closed {
		e.mu.Unlock()
		return false
	}
	e.balance += e.bets.Total()
	e.bets = Bets{}
	s := e.changedLocked()
	e.mu.Unlock()

	e.notify(s)
	return true
}

// SelectChip makes amount the chip used by PlaceBet.
// It works in any phase; amounts outside the fixed set are rejected.
func (e *Engine) SelectChip(amount Chip) bool {
	if !amount.Valid() {
		return false
	}

	e.mu.Lock()
	if e.chip == amount {
		e.mu.Unlock()
		return true
	}
	e.chip = amount
	s := e.changedLocked()
	e.mu.Unlock()

	e.notify(s)
	return true
}

// Roll locks the bets and starts a throw. It returns as soon as the table
// enters the rolling phase; Wait or a subscription observes completion.
// It is a no-op, with no dice drawn, unless the table is idle and at least
// one symbol carries a stake.
func (e *Engine) Roll() bool {
	e.mu.Lock()
	if e.phase != PhaseIdle || e.closed || e.bets.Empty() {
		e.mu.Unlock()
		return false
	}
	e.phase = PhaseRolling
	e.rolled = make(chan struct{})
	staked := e.bets.Total()
	s := e.changedLocked()
	e.wg.Add(1)
	e.mu.Unlock()

	e.log.Debug().
		Int64("staked", staked).
		Int("ticks", e.ticks).
		Msg("Roll started")

	e.notify(s)
	go e.run(e.ctx)
	return true
}

// Wait blocks until the table is idle or ctx is done.
func (e *Engine) Wait(ctx context.Context) error {
	e.mu.Lock()
	if e.phase == PhaseIdle {
		e.mu.Unlock()
		return nil
	}
	done := e.rolled
	e.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close rejects further operations and waits for a running roll to finish.
// The remaining animation ticks are skipped; settlement still happens.
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	e.cancel()
	e.wg.Wait()
}

// run drives one roll: provisional ticks, one settlement, then back to idle.
func (e *Engine) run(ctx context.Context) {
	defer e.wg.Done()

	for i := 0; i < e.ticks; i++ {
		e.tick()
		if !sleep(ctx, e.tickInterval) {
			break
		}
	}

	e.settle()
	sleep(ctx, e.settleDelay)
	e.finish()
}

// tick shows a provisional throw. It never touches balance or bets.
func (e *Engine) tick() {
	e.mu.Lock()
	e.dice = RollDice(e.src)
	s := e.changedLocked()
	e.mu.Unlock()

	e.notify(s)
}

func (e *Engine) settle() {
	e.mu.Lock()
	final := RollDice(e.src)
	win := CalculateWinnings(e.bets, final)
	rec := Record{
		ID:     uuid.New(),
		Time:   e.now(),
		Dice:   final,
		Staked: e.bets.Total(),
		Win:    win,
	}
	e.balance += win
	e.history.push(rec)
	e.dice = final
	e.phase = PhaseSettling
	s := e.changedLocked()
	e.mu.Unlock()

	e.log.Debug().
		Str("round_id", rec.ID.String()).
		Ints("dice", ints(final)).
		Int64("staked", rec.Staked).
		Int64("win", win).
		Int64("balance", s.Balance).
		Msg("Round settled")

	e.notify(s)
}

func (e *Engine) finish() {
	e.mu.Lock()
	e.bets = Bets{}
	e.phase = PhaseIdle
	done := e.rolled
	s := e.changedLocked()
	e.mu.Unlock()

	e.notify(s)
	close(done)
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func ints(d Dice) []int {
	v := d.Ints()
	return v[:]
}
