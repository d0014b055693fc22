package controller

import (
	"context"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/five82/lumen/internal/debounce"
	"github.com/five82/lumen/internal/lights"
	"github.com/five82/lumen/internal/state"
)

// DefaultDimmerDebounce is the quiet window applied to slider movement.
const DefaultDimmerDebounce = 100 * time.Millisecond

// Phase is the sync state of one setting key.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReady
	PhaseWriteInFlight
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseWriteInFlight:
		return "writing"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// KeyStatus reports the sync state of one setting key.
type KeyStatus struct {
	Phase Phase
	Seq   uint64 // newest write issued for the key
	Err   error
}

// Operation names a round trip in notices.
type Operation string

const (
	OpFetch Operation = "fetch"
	OpWrite Operation = "write"
)

// FetchResultMsg carries a completed GET back into the update loop.
type FetchResultMsg struct {
	Seq uint64
	// WriteBase is the newest write sequence when the fetch was issued. Keys
	// written after that keep their value.
	WriteBase uint64
	Settings  lights.Settings
	Err       error
}

// WriteResultMsg carries a completed POST back into the update loop.
type WriteResultMsg struct {
	Seq    uint64
	Update lights.Update
	Err    error
}

// DimmerSettledMsg is delivered once slider movement has been quiet for the
// debounce window.
type DimmerSettledMsg struct {
	Level float64
}

// NoticeMsg asks the UI to surface a failure. Once the controller sees it
// come back through Update, the affected keys return to PhaseReady.
type NoticeMsg struct {
	Op   Operation
	Keys []lights.Key
	Seq  uint64
	Err  error
}

// Options configure a Controller.
type Options struct {
	// Context bounds every round trip. Defaults to context.Background.
	Context context.Context
	// DimmerDebounce is the slider quiet window. Zero uses the default.
	DimmerDebounce time.Duration
	// DimmerLeadingEdge sends the first value of a drag instead of the last.
	DimmerLeadingEdge bool
	// Clock drives the debouncer; nil uses runtime timers.
	Clock debounce.Clock
	// Now stamps snapshot updates; nil uses time.Now.
	Now func() time.Time
	// Notify delivers messages produced outside the update loop, such as
	// settled dimmer values. It must not block the caller.
	Notify func(tea.Msg)
}

// Controller keeps the displayed settings in sync with the device. All
// methods must be called from the Bubble Tea update loop.
type Controller struct {
	ctx    context.Context
	client lights.SettingsService
	store  *state.Store

	display lights.Settings
	status  map[lights.Key]*KeyStatus

	writeSeq uint64
	fetchSeq uint64

	dimmer        *debounce.Debouncer[float64]
	dimmerPending bool
	notify        func(tea.Msg)
}

// New builds a Controller around client.
func New(client lights.SettingsService, opts Options) *Controller {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	wait := opts.DimmerDebounce
	if wait <= 0 {
		wait = DefaultDimmerDebounce
	}

	c := &Controller{
		ctx:    ctx,
		client: client,
		store:  state.NewStore(opts.Now),
		status: make(map[lights.Key]*KeyStatus, len(lights.Keys)),
		notify: opts.Notify,
	}
	for _, k := range lights.Keys {
		c.status[k] = &KeyStatus{Phase: PhaseLoading}
	}

	debounceOpts := []debounce.Option{debounce.WithClock(opts.Clock)}
	if opts.DimmerLeadingEdge {
		debounceOpts = append(debounceOpts, debounce.WithLeadingEdge())
	}
	c.dimmer = debounce.New(wait, c.dimmerSettled, debounceOpts...)
	return c
}

// SetNotify installs the delivery function for asynchronous messages. The
// program calling Update usually does not exist yet when New runs.
func (c *Controller) SetNotify(fn func(tea.Msg)) {
	c.notify = fn
}

// Init starts the initial fetch.
func (c *Controller) Init() tea.Cmd {
	return c.Refresh()
}

// Refresh issues a fresh GET. Results of older fetches are dropped.
func (c *Controller) Refresh() tea.Cmd {
	c.fetchSeq++
	seq := c.fetchSeq
	base := c.writeSeq
	client := c.client
	ctx := c.ctx
	log.Debug().Uint64("seq", seq).Msg("fetching settings")
	return func() tea.Msg {
		settings, err := client.FetchSettings(ctx)
		return FetchResultMsg{Seq: seq, WriteBase: base, Settings: settings, Err: err}
	}
}

// Submit writes update immediately and shows it optimistically.
func (c *Controller) Submit(update lights.Update) tea.Cmd {
	if err := update.Validate(); err != nil {
		log.Warn().Err(err).Str("update", update.String()).Msg("rejected invalid update")
		return noticeCmd(NoticeMsg{Op: OpWrite, Keys: update.Keys(), Err: err})
	}

	c.writeSeq++
	seq := c.writeSeq
	for _, k := range update.Keys() {
		st := c.status[k]
		st.Phase = PhaseWriteInFlight
		st.Seq = seq
		st.Err = nil
	}
	c.display = c.display.Apply(update)

	client := c.client
	ctx := c.ctx
	log.Debug().Uint64("seq", seq).Str("update", update.String()).Msg("writing settings")
	return func() tea.Msg {
		err := client.WriteSettings(ctx, update)
		return WriteResultMsg{Seq: seq, Update: update, Err: err}
	}
}

// SlideDimmer shows level at once and schedules the debounced write. A level
// the debouncer will never send (later moves of a leading-edge burst, or any
// move after Close) leaves the display alone.
func (c *Controller) SlideDimmer(level float64) {
	level = clampLevel(level)
	if !c.dimmer.Call(level) {
		return
	}
	c.display.Dimmer = &level
	c.dimmerPending = true
}

// Update consumes controller messages. Other messages are ignored.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case FetchResultMsg:
		return c.handleFetch(msg)
	case WriteResultMsg:
		return c.handleWrite(msg)
	case DimmerSettledMsg:
		c.dimmerPending = c.dimmer.Pending()
		return c.Submit(lights.SetDimmer(msg.Level))
	case NoticeMsg:
		c.handleNotice(msg)
	}
	return nil
}

// Display returns what the widgets should show: confirmed settings plus
// optimistic values for writes that have not resolved yet.
func (c *Controller) Display() lights.Settings {
	return c.display.Clone()
}

// Confirmed returns the device-confirmed snapshot.
func (c *Controller) Confirmed() state.Snapshot {
	return c.store.Snapshot()
}

// Status reports the sync state of k.
func (c *Controller) Status(k lights.Key) KeyStatus {
	if st, ok := c.status[k]; ok {
		return *st
	}
	return KeyStatus{}
}

// DimmerPending reports whether slider movement is waiting out the quiet
// window.
func (c *Controller) DimmerPending() bool {
	return c.dimmerPending
}

// Close cancels the pending dimmer write. Later slider movement is ignored.
func (c *Controller) Close() {
	c.dimmer.Stop()
	c.dimmerPending = false
}

func (c *Controller) handleFetch(msg FetchResultMsg) tea.Cmd {
	if msg.Seq != c.fetchSeq {
		log.Debug().Uint64("seq", msg.Seq).Uint64("latest", c.fetchSeq).Msg("dropping superseded fetch")
		return nil
	}
	if msg.Err != nil {
		log.Warn().Err(msg.Err).Msg("settings fetch failed")
		c.store.Fail(msg.Err)
		var keys []lights.Key
		for _, k := range lights.Keys {
			st := c.status[k]
			if st.Phase == PhaseWriteInFlight {
				continue
			}
			st.Phase = PhaseError
			st.Err = msg.Err
			keys = append(keys, k)
		}
		return noticeCmd(NoticeMsg{Op: OpFetch, Keys: keys, Seq: msg.Seq, Err: msg.Err})
	}

	skip := c.busyKeys()
	for _, k := range lights.Keys {
		if c.status[k].Seq > msg.WriteBase && !slices.Contains(skip, k) {
			skip = append(skip, k)
		}
	}
	c.store.Replace(msg.Settings, skip...)
	display := c.store.Snapshot().Settings
	for _, k := range skip {
		display = display.Apply(c.display.Value(k))
	}
	c.display = display

	for _, k := range lights.Keys {
		st := c.status[k]
		if st.Phase == PhaseLoading || st.Phase == PhaseError {
			st.Phase = PhaseReady
			st.Err = nil
		}
	}
	log.Debug().Int("skipped", len(skip)).Msg("settings fetched")
	return nil
}

func (c *Controller) handleWrite(msg WriteResultMsg) tea.Cmd {
	var current []lights.Key
	for _, k := range msg.Update.Keys() {
		if c.status[k].Seq != msg.Seq {
			log.Debug().Str("key", string(k)).Uint64("seq", msg.Seq).Msg("dropping stale write response")
			continue
		}
		current = append(current, k)
	}
	if len(current) == 0 {
		return nil
	}

	if msg.Err != nil {
		log.Warn().Err(msg.Err).Str("update", msg.Update.String()).Msg("settings write failed")
		c.store.Fail(msg.Err)
		confirmed := c.store.Snapshot().Settings
		for _, k := range current {
			st := c.status[k]
			st.Phase = PhaseError
			st.Err = msg.Err
			if k == lights.KeyDimmer && c.dimmerPending {
				continue
			}
			c.display = revertKey(c.display, confirmed, k)
		}
		return noticeCmd(NoticeMsg{Op: OpWrite, Keys: current, Seq: msg.Seq, Err: msg.Err})
	}

	for _, k := range current {
		c.store.Patch(msg.Update.Only(k))
		c.status[k].Phase = PhaseReady
		c.status[k].Err = nil
	}
	return nil
}

func (c *Controller) handleNotice(msg NoticeMsg) {
	for _, k := range msg.Keys {
		st, ok := c.status[k]
		if !ok || st.Phase != PhaseError {
			continue
		}
		if msg.Op == OpWrite && st.Seq != msg.Seq {
			continue
		}
		st.Phase = PhaseReady
	}
}

// busyKeys lists keys whose displayed value is newer than anything a fetch
// could report.
func (c *Controller) busyKeys() []lights.Key {
	var keys []lights.Key
	for _, k := range lights.Keys {
		if c.status[k].Phase == PhaseWriteInFlight || (k == lights.KeyDimmer && c.dimmerPending) {
			keys = append(keys, k)
		}
	}
	return keys
}

func (c *Controller) dimmerSettled(level float64) {
	if c.notify == nil {
		log.Warn().Float64("level", level).Msg("dimmer settled with no notifier installed")
		return
	}
	c.notify(DimmerSettledMsg{Level: level})
}

// revertKey restores k in display to the confirmed value, or clears it when
// the device never reported one.
func revertKey(display, confirmed lights.Settings, k lights.Key) lights.Settings {
	out := display.Clone()
	confirmed = confirmed.Clone()
	switch k {
	case lights.KeyIntensityMode:
		out.IntensityMode = confirmed.IntensityMode
	case lights.KeyCurrentPreset:
		out.CurrentPreset = confirmed.CurrentPreset
	case lights.KeyDimmer:
		out.Dimmer = confirmed.Dimmer
	}
	return out
}

func noticeCmd(msg NoticeMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func clampLevel(level float64) float64 {
	if level < 0 {
		return 0
	}
	if level > 1 {
		return 1
	}
	return level
}
