package listview

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrUnknownAction is returned when a row action has no registered handler.
	ErrUnknownAction = errors.New("unknown row action")
	// ErrUnknownRecord is returned when a row action names a record that is not
	// part of the last rendered plan.
	ErrUnknownRecord = errors.New("record is not on the current page")
	// ErrNoSource is returned by Reload when no data source was attached.
	ErrNoSource = errors.New("no data source configured")
)

// Source fetches the full record set of a collection.
type Source[T any] func(ctx context.Context) ([]T, error)

// Renderer turns a record into whatever the page draws for a row.
type Renderer[T any, R any] func(record T) R

// Action names a row level operation such as "approve" or "delete".
type Action string

// ActionHandler performs an action against the record with the given ID.
type ActionHandler func(ctx context.Context, recordID string) error

// Plan is everything a page needs to draw one list: rendered rows in page
// order, the ID of the record behind each row, and pagination metadata.
type Plan[R any] struct {
	Rows       []R
	IDs        []string
	Showing    string
	PageText   string
	Page       int
	TotalPages int
	Total      int
	HasPrev    bool
	HasNext    bool
}

// Binding connects a Controller to a page: it renders the current view and
// then binds row actions to the records that were rendered. Actions are
// dispatched through OnRowAction instead of per-row callbacks.
type Binding[T any, R any] struct {
	ctrl     *Controller[T]
	render   Renderer[T, R]
	identify func(T) string
	source   Source[T]
	handlers map[Action]ActionHandler
	bound    map[string]struct{}
}

// NewBinding wires a controller to a renderer. identify extracts the record
// ID used for action dispatch.
func NewBinding[T any, R any](ctrl *Controller[T], render Renderer[T, R], identify func(T) string) *Binding[T, R] {
	return &Binding[T, R]{
		ctrl:     ctrl,
		render:   render,
		identify: identify,
		handlers: map[Action]ActionHandler{},
		bound:    map[string]struct{}{},
	}
}

// Controller exposes the underlying controller for navigation and search.
func (b *Binding[T, R]) Controller() *Controller[T] {
	return b.ctrl
}

// SetSource attaches the data source used by Reload.
func (b *Binding[T, R]) SetSource(src Source[T]) {
	b.source = src
}

// Handle registers the handler for an action, replacing any previous one.
func (b *Binding[T, R]) Handle(action Action, handler ActionHandler) {
	b.handlers[action] = handler
}

// Actions returns the registered actions in name order.
func (b *Binding[T, R]) Actions() []Action {
	rv := make([]Action, 0, len(b.handlers))
	for a := range b.handlers {
		rv = append(rv, a)
	}
	sort.Slice(rv, func(i, j int) bool { return rv[i] < rv[j] })
	return rv
}

// Fetch calls the source without touching the controller, so callers that
// load in the background can hand the result to Receive later.
func (b *Binding[T, R]) Fetch(ctx context.Context) ([]T, error) {
	if b.source == nil {
		return nil, ErrNoSource
	}
	return b.source(ctx)
}

// Reload fetches from the source and applies the result with Receive.
func (b *Binding[T, R]) Reload(ctx context.Context) error {
	if b.source == nil {
		return ErrNoSource
	}
	return b.Receive(b.source(ctx))
}

// Receive applies a fetch result. A failed fetch leaves the list empty and
// the error is returned for the page to report. Results are applied in the
// order they arrive.
func (b *Binding[T, R]) Receive(records []T, err error) error {
	if err != nil {
		b.ctrl.SetRecords(nil)
		return err
	}
	b.ctrl.SetRecords(records)
	return nil
}

// Plan renders the current page and rebinds row actions to its records.
func (b *Binding[T, R]) Plan() Plan[R] {
	view := b.ctrl.View()

	plan := Plan[R]{
		Rows:       make([]R, 0, len(view.Items)),
		IDs:        make([]string, 0, len(view.Items)),
		Showing:    view.ShowingText(),
		PageText:   view.PageText(),
		Page:       view.Page,
		TotalPages: view.TotalPages,
		Total:      view.Total,
		HasPrev:    view.HasPrev,
		HasNext:    view.HasNext,
	}

	bound := make(map[string]struct{}, len(view.Items))
	for _, item := range view.Items {
		id := b.identify(item)
		plan.Rows = append(plan.Rows, b.render(item))
		plan.IDs = append(plan.IDs, id)
		bound[id] = struct{}{}
	}
	b.bound = bound

	return plan
}

// Resolve looks up the handler for action and checks that recordID was
// rendered by the most recent Plan call. The returned function only runs the
// handler, so it can be called from another goroutine while the binding keeps
// being planned.
func (b *Binding[T, R]) Resolve(action Action, recordID string) (func(ctx context.Context) error, error) {
	handler, ok := b.handlers[action]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}
	if _, ok := b.bound[recordID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRecord, recordID)
	}
	return func(ctx context.Context) error {
		return handler(ctx, recordID)
	}, nil
}

// OnRowAction dispatches action for the record with recordID. The record must
// have been rendered by the most recent Plan call.
func (b *Binding[T, R]) OnRowAction(ctx context.Context, action Action, recordID string) error {
	run, err := b.Resolve(action, recordID)
	if err != nil {
		return err
	}
	return run(ctx)
}
