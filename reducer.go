// Copyright 2025 The kanata-go Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package kanata implements a cross-platform layered keyboard
// remapping engine: a single-threaded reducer consumes physical key
// events and a millisecond tick clock over one serialized channel and
// emits logical output key events to a Sink.
package kanata

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Engine is the reducer: all mutable remapping state lives here,
// guarded by mu so the public API (Post, PostEvent, PendingOutput,
// Close) may be called from arbitrary goroutines while exactly one
// goroutine ever advances state, following the embedded-mutex +
// single-owner-goroutine shape of the teacher's screen implementation.
type Engine struct {
	mu sync.Mutex

	cfg    *Config
	layout *Layout

	held         *heldStack
	defaultLayer LayerIdx

	states   *stateTable
	waiting  *waitingQueue
	chord    chordWindow
	composer *composer

	oneShots       oneShotSet
	activeOverride *OverrideRule
	seq            sequenceRun
	macro          macroScheduler
	capsWord       *capsWordState
	repeats        map[Coord]*repeatingEffect

	pendingTapHoldInterval map[Coord]*State

	tick  *tickCounter
	ticks uint64

	sink       Sink
	pendingOut []OutputEvent

	in   chan ReducerInput
	quit chan struct{}

	log *logrus.Logger

	lastHeldKeys []KeyCode // physically-held KeyCode set, press order, for override matching
}

// NewEngine constructs a reducer ready to run against cfg, emitting to
// sink (nil is valid: output accumulates in PendingOutput for tests).
func NewEngine(cfg *Config, sink Sink, log *logrus.Logger) *Engine {
	if log == nil {
		log = logrus.New()
	}
	eng := &Engine{
		cfg:                    cfg,
		layout:                 cfg.Layout,
		held:                   &heldStack{},
		defaultLayer:           cfg.Layout.DefaultLayer,
		states:                 newStateTable(),
		waiting:                newWaitingQueue(),
		composer:               newComposer(),
		repeats:                make(map[Coord]*repeatingEffect),
		pendingTapHoldInterval: make(map[Coord]*State),
		tick:                   newTickCounter(time.Now()),
		sink:                   sink,
		in:                     make(chan ReducerInput, 256),
		quit:                   make(chan struct{}),
		log:                    log,
		capsWord:               newCapsWordState(5*time.Second, false),
	}
	eng.composer.reverseReleaseOrder = cfg.Options.ReverseReleaseOrder
	return eng
}

// PendingOutput drains and returns every OutputEvent accumulated
// while no Sink was attached; used by tests driving the engine
// without a real device.
func (eng *Engine) PendingOutput() []OutputEvent {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	out := eng.pendingOut
	eng.pendingOut = nil
	return out
}

// Post enqueues a ReducerInput for processing, returning ErrQueueFull
// if the channel is saturated (spec.md §5).
func (eng *Engine) Post(in ReducerInput) error {
	select {
	case eng.in <- in:
		return nil
	default:
		return ErrQueueFull
	}
}

// PostEvent is a convenience wrapper for the common physical-key-event
// case.
func (eng *Engine) PostEvent(ev InputEvent) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	return eng.Post(ReducerInput{Kind: InputEventKind, Event: ev})
}

// Run drives the reducer's main loop until Close is called or the
// input channel yields an InputExitKind message, mirroring the
// teacher's goroutine/select input loop shape.
func (eng *Engine) Run() {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-eng.quit:
			return
		case in := <-eng.in:
			eng.step(in)
			if in.Kind == InputExitKind {
				return
			}
		case now := <-ticker.C:
			eng.step(ReducerInput{Kind: InputTickKind, Ticks: eng.tick.advance(now)})
		}
	}
}

// Close stops Run and releases every currently-held output key.
func (eng *Engine) Close() {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	select {
	case <-eng.quit:
	default:
		close(eng.quit)
	}
	eng.releaseEverything()
}

// step processes exactly one ReducerInput with panic-unwind safety:
// a panic anywhere in action resolution releases every held output
// key before propagating, so a bug in one layout cell cannot leave
// physical modifiers stuck down (spec.md §8 crash-safety note).
func (eng *Engine) step(in ReducerInput) {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			eng.log.WithField("panic", r).Error("reducer panic, releasing all held keys")
			eng.releaseEverything()
			panic(r)
		}
	}()

	switch in.Kind {
	case InputEventKind:
		eng.handleKeyEvent(in.Event)
	case InputTickKind:
		eng.handleTick(in.Ticks)
	case InputChangeLayerKind:
		eng.handleChangeLayer(in.LayerName, in.Resp)
	case InputRequestLayerNamesKind:
		eng.handleRequestLayerNames(in.Resp)
	case InputRequestCurrentLayerInfoKind:
		eng.handleRequestCurrentLayerInfo(in.Resp)
	case InputActOnFakeKeyKind:
		eng.handleFakeKey(in.FakeKeyName, in.FakeKeyAction)
	case InputReloadKind:
		eng.handleReload(in.ReloadPath, in.Resp)
	case InputExitKind:
		eng.releaseEverything()
	}
	eng.composer.flush(eng)
}

func (eng *Engine) handleTick(ms uint32) {
	for i := uint32(0); i < ms; i++ {
		eng.ticks++
		eng.waiting.fireExpired(eng, eng.ticks)
		eng.tickCapsWord()
	}
}

// coordFor resolves a physical KeyCode back to its defsrc (row 0)
// Coord, or the zero Coord if it is not mapped.
func (eng *Engine) coordFor(k KeyCode) Coord {
	code, ok := k.OsCode()
	if !ok {
		return Coord{}
	}
	c, ok := eng.cfg.DefsrcCoord[code]
	if !ok {
		return Coord{}
	}
	return c
}

func (eng *Engine) isMapped(code OsCode) bool {
	if eng.cfg.MappedKeys == nil {
		return true
	}
	return eng.cfg.MappedKeys[code]
}

// handleKeyEvent is the entry point for every physical key event
// (spec.md §4.1): unmapped-key policy, then sequence/chord/override
// interception, then ordinary layout resolution.
func (eng *Engine) handleKeyEvent(ev InputEvent) {
	if isReservedMacroCode(ev.Code) {
		return
	}
	k := ev.Code.KeyCode()
	if k == KeyReserved {
		return
	}

	if !eng.isMapped(ev.Code) {
		switch eng.cfg.Options.ProcessUnmappedKeys {
		case ProcessUnmappedAllExcept:
			if eng.cfg.Options.ProcessUnmappedExcept[ev.Code] {
				eng.passThrough(ev)
				return
			}
		case ProcessUnmappedNone:
			eng.passThrough(ev)
			return
		}
		if eng.cfg.Options.BlockUnmappedKeys {
			return
		}
	}

	switch ev.Value {
	case Press:
		eng.handlePress(k)
	case Release:
		eng.handleRelease(k)
	case Repeat:
		eng.handleRepeat(ev.Code)
	}
}

func (eng *Engine) passThrough(ev InputEvent) {
	eng.writeOut(OutputEvent{Kind: OutKey, Code: ev.Code, Value: ev.Value})
}

func (eng *Engine) handlePress(k KeyCode) {
	eng.recordHeldPress(k)
	eng.handleMacroOtherPress()

	if eng.seq.active {
		if eng.feedSequence(k) {
			return
		}
	}

	if eng.cancelOneShotOnRepress(eng.coordFor(k)) {
		return
	}

	layer := eng.currentLayer()
	if eng.chordParticipant(k, layer) != nil || eng.chord.active {
		if eng.handleChordPress(k, layer) {
			return
		}
	}

	overridden := false
	if rule := eng.findOverride(eng.lastHeldKeys); rule != nil && rule != eng.activeOverride {
		eng.applyOverride(rule)
		overridden = true
	}

	coord := eng.coordFor(k)
	for _, pend := range eng.states.all() {
		if pend.Kind == StateHoldTapPending && pend.Coord != coord {
			eng.handleHoldTapOtherPress(pend.Coord)
		}
	}

	if overridden {
		// The override's To keys replace the trigger key's own action.
		return
	}
	eng.resolveKeyPress(k, coord)
}

func (eng *Engine) handleRelease(k KeyCode) {
	eng.recordHeldRelease(k)
	eng.handleMacroRelease(eng.coordFor(k))
	eng.releaseRepeat(eng.coordFor(k))

	if eng.handleChordRelease(k) {
		return
	}

	coord := eng.coordFor(k)
	for _, pend := range eng.states.all() {
		if pend.Kind == StateHoldTapPending && pend.Coord != coord {
			eng.handleHoldTapOtherRelease(pend.Coord, k)
		}
	}

	eng.resolveKeyRelease(k, coord)
	eng.consumeOneShots(coord)

	if eng.activeOverride != nil && !eng.overrideStillHeld() {
		eng.releaseOverride()
	}
}

func (eng *Engine) currentLayer() LayerIdx {
	if len(eng.held.layers) > 0 {
		return eng.held.layers[len(eng.held.layers)-1]
	}
	return eng.defaultLayer
}

func (eng *Engine) recordHeldPress(k KeyCode) {
	eng.lastHeldKeys = append(eng.lastHeldKeys, k)
}

func (eng *Engine) recordHeldRelease(k KeyCode) {
	for i, h := range eng.lastHeldKeys {
		if h == k {
			eng.lastHeldKeys = append(eng.lastHeldKeys[:i], eng.lastHeldKeys[i+1:]...)
			return
		}
	}
}

func (eng *Engine) overrideStillHeld() bool {
	if eng.activeOverride == nil {
		return false
	}
	return matchOverride(*eng.activeOverride, eng.lastHeldKeys)
}

// resolveKeyPress looks up coord in the current layer stack and
// applies whatever action it resolves to (spec.md §4.2).
func (eng *Engine) resolveKeyPress(k KeyCode, coord Coord) {
	if st, ok := eng.states.get(coord); ok && st.Kind == StateTapDance {
		eng.beginTapDance(st.Action.TapDance, coord)
		return
	}
	a := eng.layout.resolve(eng.held, eng.defaultLayer, coord)
	if a.Kind == ActTapDance {
		eng.beginTapDance(a.TapDance, coord)
		return
	}
	eng.applyResolvedAction(a, coord)
}

// resolveKeyRelease releases whatever this coordinate's recorded
// State says is active, falling back to the raw key if no State was
// recorded (the common case: an ordinary KeyCode cell).
func (eng *Engine) resolveKeyRelease(k KeyCode, coord Coord) {
	st, ok := eng.states.get(coord)
	if !ok {
		eng.composer.release(k)
		return
	}
	switch st.Kind {
	case StateHoldTapPending:
		eng.waiting.remove(coord)
		eng.resolvePendingOwnRelease(st)
		eng.states.remove(coord)
	case StateHoldTapHold, StateHoldTapTap:
		eng.releaseHoldTapLeaf(st)
		eng.states.remove(coord)
	case StateLayerModifier:
		// ActDefaultLayer cells swap the default layer permanently and
		// are never pushed onto held, so releasing them is a no-op;
		// ActLayer/ActLayerWhileHeld cells pop their pushed layer.
		if st.Action.Kind != ActDefaultLayer {
			eng.held.pop(st.LayerIdx)
		}
		eng.states.remove(coord)
	case StateOneShot:
		// Held until consumed or timed out; a bare physical release of
		// the activating key does not cancel it unless EndConfig says so.
		eng.releaseOneShotOwnKey(st)
	case StateTapDance:
		// Still counting taps: nothing has been emitted yet, so a bare
		// physical release between taps does nothing.
	case StateNormalKey:
		if len(st.Keys) > 0 {
			for _, mk := range st.Keys {
				eng.composer.release(mk)
			}
		} else {
			eng.composer.release(st.Key)
		}
		eng.states.remove(coord)
	case StateChord, StateCustom, StateFakeKey:
		eng.composer.release(k)
		eng.states.remove(coord)
	default:
		eng.composer.release(k)
	}
}

// applyResolvedAction is the generic dispatcher over every
// ActionKind, invoked both for ordinary layout resolution and for the
// inner actions of hold-tap/chord/fork/switch/one-shot/tap-dance
// (spec.md §3/§4).
func (eng *Engine) applyResolvedAction(a *Action, coord Coord) {
	if a == nil {
		return
	}
	switch a.Kind {
	case ActNoOp, ActTrans:
		// nothing to do

	case ActKeyCode:
		st := &State{Kind: StateNormalKey, Coord: coord, Key: a.Key, PressTick: eng.ticks, Action: a}
		eng.states.put(st)
		eng.composer.press(a.Key)

	case ActMultipleKeyCodes:
		st := &State{Kind: StateNormalKey, Coord: coord, Keys: a.Keys, PressTick: eng.ticks, Action: a}
		eng.states.put(st)
		for _, k := range a.Keys {
			eng.composer.press(k)
		}

	case ActLayer, ActLayerWhileHeld:
		li := LayerIdx(a.LayerIdx)
		eng.held.push(li)
		eng.states.put(&State{Kind: StateLayerModifier, Coord: coord, LayerIdx: li, Action: a})

	case ActDefaultLayer:
		prev := eng.defaultLayer
		eng.defaultLayer = LayerIdx(a.LayerIdx)
		eng.states.put(&State{Kind: StateLayerModifier, Coord: coord, LayerIdx: LayerIdx(a.LayerIdx), WasDefault: prev, Action: a})

	case ActHoldTap:
		eng.beginHoldTap(a.HoldTap, coord)

	case ActOneShot:
		eng.beginOneShot(a.OneShot, coord)

	case ActTapDance:
		eng.beginTapDance(a.TapDance, coord)

	case ActChord:
		// Chord participation is handled earlier in handlePress via the
		// global subset map; a direct ActChord cell (legacy
		// chord-group style addressing) is treated as a no-op marker.

	case ActFork:
		inner := a.Fork.Left
		for trig := range a.Fork.Trigger {
			if eng.composer.isActive(trig) {
				inner = a.Fork.Right
				break
			}
		}
		eng.applyResolvedAction(inner, coord)

	case ActSwitch:
		for _, c := range a.Switch.Cases {
			if switchCaseMatches(eng, c) {
				eng.applyResolvedAction(c.Action, coord)
				return
			}
		}

	case ActMacro:
		eng.beginMacro(a.Macro, coord)

	case ActSequence, ActRepeatableSequence:
		eng.beginSequence(a.Sequence)

	case ActCancelSequences:
		eng.cancelSequence()

	case ActReleaseState:
		eng.releaseByKind(a.ReleaseKind)

	case ActRepeat:
		// Handled by the dedicated Repeat physical event, not as a
		// resolvable action payload; nothing to activate here.

	case ActCustom:
		eng.runCustomEffects(a.Custom)

	case ActScroll:
		eng.beginScroll(a.Scroll, coord)

	case ActMouseMove:
		eng.beginMouseMove(a.MouseMove, coord)

	case ActUnicode:
		eng.emitSideChannel(OutputEvent{Kind: OutUnicode, Char: a.Unicode, CharBytes: transcodeUnicode(a.Unicode)})
	}
}

// releaseResolvedAction is the generic inverse dispatcher, used by
// chord/one-shot/tap-dance/sequence commit paths that apply and
// release an inner action without a physical key ever sitting at its
// coordinate.
func (eng *Engine) releaseResolvedAction(a *Action, coord Coord) {
	if a == nil {
		return
	}
	switch a.Kind {
	case ActKeyCode:
		eng.composer.release(a.Key)
	case ActMultipleKeyCodes:
		for _, k := range a.Keys {
			eng.composer.release(k)
		}
	case ActLayer, ActLayerWhileHeld:
		eng.held.pop(LayerIdx(a.LayerIdx))
	case ActFork:
		eng.releaseResolvedAction(a.Fork.Left, coord)
	case ActHoldTap:
		if st, ok := eng.states.get(coord); ok {
			eng.releaseHoldTapLeaf(st)
		}
	}
	eng.states.remove(coord)
}

func switchCaseMatches(eng *Engine, c SwitchCase) bool {
	if len(c.Keys) == 0 {
		return true
	}
	for _, k := range c.Keys {
		if eng.composer.isActive(k) != c.Held {
			return false
		}
	}
	return true
}

func (eng *Engine) releaseByKind(kind ReleaseKind) {
	for k := range eng.composer.active {
		if kind == ReleaseNonModifiers && k.IsModifier() {
			continue
		}
		eng.composer.release(k)
	}
	for _, st := range eng.states.all() {
		if kind == ReleaseNonModifiers && st.Key.IsModifier() {
			continue
		}
		eng.states.remove(st.Coord)
	}
}

// runCustomEffects fires each gated side effect; CustomCmd is a
// no-op unless Options.EnableCmd is set, and is always logged at
// warn level since it shells out on the user's behalf (spec.md §6).
func (eng *Engine) runCustomEffects(effects []CustomEffect) {
	for _, e := range effects {
		switch e.Kind {
		case CustomCmd:
			if !eng.cfg.Options.EnableCmd {
				eng.log.Warn("cmd action present but options.EnableCmd is false, skipping")
				continue
			}
			eng.log.WithField("cmd", e.Cmd).Warn("running custom cmd action")
			eng.runCmd(e.Cmd)
		case CustomCapsWordToggle:
			eng.ToggleCapsWord()
		}
	}
}

// releaseEverything drops every active composer key, held layer, and
// pending state; used on shutdown and after a recovered panic.
func (eng *Engine) releaseEverything() {
	for k := range eng.composer.active {
		eng.composer.release(k)
	}
	eng.held.layers = nil
	eng.states = newStateTable()
	eng.waiting.empty()
	eng.chord = chordWindow{}
	eng.seq = sequenceRun{}
	eng.macro.run = nil
	eng.oneShots = oneShotSet{}
	eng.activeOverride = nil
	eng.composer.flush(eng)
}

func (eng *Engine) handleChangeLayer(name string, resp chan ControlResponse) {
	for i, n := range eng.layout.LayerNames {
		if n == name {
			eng.defaultLayer = LayerIdx(i)
			if resp != nil {
				resp <- ControlResponse{Kind: RespLayerChange, NewLayer: name, LayerIndex: i}
			}
			return
		}
	}
	if resp != nil {
		resp <- ControlResponse{Kind: RespError, Err: ErrBadConfig}
	}
}

func (eng *Engine) handleRequestLayerNames(resp chan ControlResponse) {
	if resp != nil {
		resp <- ControlResponse{Kind: RespLayerNames, Names: append([]string(nil), eng.layout.LayerNames...)}
	}
}

func (eng *Engine) handleRequestCurrentLayerInfo(resp chan ControlResponse) {
	if resp == nil {
		return
	}
	idx := int(eng.currentLayer())
	name := ""
	if idx >= 0 && idx < len(eng.layout.LayerNames) {
		name = eng.layout.LayerNames[idx]
	}
	resp <- ControlResponse{Kind: RespCurrentLayerInfo, NewLayer: name, LayerIndex: idx}
}

func (eng *Engine) handleFakeKey(name string, act FakeKeyAction) {
	coord, ok := eng.cfg.fakeKeyCoord(name)
	if !ok {
		eng.log.WithField("fake_key", name).Warn("unknown fake key")
		return
	}
	switch act {
	case FakeKeyPress:
		eng.resolveKeyPress(KeyReserved, coord)
	case FakeKeyRelease:
		eng.resolveKeyRelease(KeyReserved, coord)
	case FakeKeyTap:
		eng.resolveKeyPress(KeyReserved, coord)
		eng.resolveKeyRelease(KeyReserved, coord)
	case FakeKeyToggle:
		if _, active := eng.states.get(coord); active {
			eng.resolveKeyRelease(KeyReserved, coord)
		} else {
			eng.resolveKeyPress(KeyReserved, coord)
		}
	}
}

func (eng *Engine) handleReload(path string, resp chan ControlResponse) {
	// Live reload: release every physically-synthesized key before
	// swapping configuration, so a changed layout never inherits
	// another layout's dangling held state (spec.md §6 safety note).
	// The actual (out-of-scope) parse-and-build step is left to the
	// caller; this hook only guarantees the safe release boundary.
	eng.releaseEverything()
	if resp != nil {
		resp <- ControlResponse{Kind: RespError, Err: nil}
	}
}
