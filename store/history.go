package store

import "github.com/gogpu/card/state"

// HistoryLimit bounds the undo stack. Recording past the limit evicts the
// oldest snapshot.
const HistoryLimit = 50

// history keeps full snapshots taken before each committed step.
type history struct {
	undo  []state.AppState
	redo  []state.AppState
	limit int
}

func newHistory(limit int) *history {
	return &history{
		undo:  make([]state.AppState, 0, limit),
		limit: limit,
	}
}

// record pushes the pre-mutation snapshot and invalidates redo.
func (h *history) record(before state.AppState) {
	if len(h.undo) >= h.limit {
		n := copy(h.undo, h.undo[1:])
		clear(h.undo[n:])
		h.undo = h.undo[:n]
	}
	h.undo = append(h.undo, before.Clone())
	clear(h.redo)
	h.redo = h.redo[:0]
}

// stepBack pops the newest undo snapshot, parking current on the redo stack.
func (h *history) stepBack(current state.AppState) (state.AppState, bool) {
	prev, ok := pop(&h.undo)
	if !ok {
		return state.AppState{}, false
	}
	h.redo = append(h.redo, current.Clone())
	return prev, true
}

// stepForward pops the newest redo snapshot, parking current on the undo
// stack.
func (h *history) stepForward(current state.AppState) (state.AppState, bool) {
	next, ok := pop(&h.redo)
	if !ok {
		return state.AppState{}, false
	}
	h.undo = append(h.undo, current.Clone())
	return next, true
}

func (h *history) snapshot() HistoryState {
	return HistoryState{
		CanUndo: len(h.undo) > 0,
		CanRedo: len(h.redo) > 0,
		Undo:    len(h.undo),
		Redo:    len(h.redo),
	}
}

func pop(stack *[]state.AppState) (state.AppState, bool) {
	s := *stack
	if len(s) == 0 {
		return state.AppState{}, false
	}
	top := s[len(s)-1]
	s[len(s)-1] = state.AppState{}
	*stack = s[:len(s)-1]
	return top, true
}

// HistoryState describes the undo/redo stacks for user interface controls.
type HistoryState struct {
	CanUndo bool
	CanRedo bool
	Undo    int
	Redo    int
}
