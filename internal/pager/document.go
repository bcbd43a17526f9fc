package pager

import (
	"errors"
	"html/template"
	"sort"
	"sync"
)

// ErrTargetNotFound is returned when a table's container is no longer mounted.
var ErrTargetNotFound = errors.New("target container not found")

// Container is the display surface a controller patches. Each table owns
// two slots: its fragment and its navigation controls.
type Container interface {
	ReplaceFragment(tableID string, html template.HTML) error
	ReplaceControls(tableID string, html template.HTML) error
}

// Slot is the rendered content of one mounted table.
type Slot struct {
	Fragment template.HTML
	Controls template.HTML
}

// Document is an in-memory Container keyed by table id.
type Document struct {
	mu    sync.RWMutex
	slots map[string]*Slot
	order []string
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{slots: make(map[string]*Slot)}
}

// Mount creates (or resets) the slots of a table.
func (d *Document) Mount(tableID string, fragment template.HTML) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.slots[tableID]; !ok {
		d.order = append(d.order, tableID)
	}
	d.slots[tableID] = &Slot{Fragment: fragment}
}

// Unmount removes a table's slots. Later patches for it fail with ErrTargetNotFound.
func (d *Document) Unmount(tableID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.slots[tableID]; !ok {
		return
	}
	delete(d.slots, tableID)
	for i, id := range d.order {
		if id == tableID {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// ReplaceFragment swaps the table body of a mounted table.
func (d *Document) ReplaceFragment(tableID string, html template.HTML) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.slots[tableID]
	if !ok {
		return ErrTargetNotFound
	}
	s.Fragment = html
	return nil
}

// ReplaceControls swaps the navigation bar of a mounted table.
func (d *Document) ReplaceControls(tableID string, html template.HTML) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.slots[tableID]
	if !ok {
		return ErrTargetNotFound
	}
	s.Controls = html
	return nil
}

// Slot returns a copy of a table's content.
func (d *Document) Slot(tableID string) (Slot, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.slots[tableID]
	if !ok {
		return Slot{}, false
	}
	return *s, true
}

// Tables lists mounted table ids in mount order.
func (d *Document) Tables() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// SortedTables lists mounted table ids alphabetically.
func (d *Document) SortedTables() []string {
	out := d.Tables()
	sort.Strings(out)
	return out
}
