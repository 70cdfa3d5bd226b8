// Package watch turns one-shot gorm queries into live queries.
//
// A Tracker is registered on a *gorm.DB and learns about every committed
// create, update and delete through gorm callbacks. Live queries started with
// Query re-run whenever one of the tables they read from changes.
//
// # Usage
//
//	tracker := watch.NewTracker()
//	if err := tracker.Register(db); err != nil { ... }
//
//	rows := watch.Query(ctx, tracker, []string{"lullabies"}, func(ctx context.Context) ([]entities.Lullaby, error) {
//		var out []entities.Lullaby
//		return out, db.WithContext(ctx).Find(&out).Error
//	})
//	for snapshot := range rows { ... }
package watch

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"
)

type pendingKey struct{}

// pending collects table names written inside a transaction so they can be
// announced after commit.
type pending struct {
	mu     sync.Mutex
	tables map[string]struct{}
}

func (p *pending) add(table string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tables[table] = struct{}{}
}

func (p *pending) list() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.tables))
	for t := range p.tables {
		out = append(out, t)
	}
	return out
}

type observer struct {
	tables  map[string]struct{}
	changed chan struct{}
}

// Tracker dispatches table invalidations to live queries.
type Tracker struct {
	mu        sync.Mutex
	observers map[uint64]*observer
	nextID    uint64
}

// NewTracker creates a tracker with no observers.
func NewTracker() *Tracker {
	return &Tracker{observers: make(map[uint64]*observer)}
}

// Register installs the after-write callbacks on db.
func (t *Tracker) Register(db *gorm.DB) error {
	cb := db.Callback()
	if err := cb.Create().After("gorm:create").Register("watch:after_create", t.afterWrite); err != nil {
		return fmt.Errorf("register create callback: %w", err)
	}
	if err := cb.Update().After("gorm:update").Register("watch:after_update", t.afterWrite); err != nil {
		return fmt.Errorf("register update callback: %w", err)
	}
	if err := cb.Delete().After("gorm:delete").Register("watch:after_delete", t.afterWrite); err != nil {
		return fmt.Errorf("register delete callback: %w", err)
	}
	return nil
}

func (t *Tracker) afterWrite(tx *gorm.DB) {
	if tx.Error != nil || tx.Statement == nil {
		return
	}
	table := tx.Statement.Table
	if table == "" && tx.Statement.Schema != nil {
		table = tx.Statement.Schema.Table
	}
	if table == "" {
		return
	}
	if ctx := tx.Statement.Context; ctx != nil {
		if p, ok := ctx.Value(pendingKey{}).(*pending); ok {
			p.add(table)
			return
		}
	}
	t.Notify(table)
}

// Transaction runs fn in a database transaction. Writes made through tx are
// announced to observers only once the transaction has committed.
func (t *Tracker) Transaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	p := &pending{tables: make(map[string]struct{})}
	txCtx := context.WithValue(ctx, pendingKey{}, p)

	if err := db.WithContext(txCtx).Transaction(fn); err != nil {
		return err
	}
	t.Notify(p.list()...)
	return nil
}

// Notify marks tables as changed. Observers reading any of them are woken;
// repeated notifications before an observer re-runs are coalesced.
func (t *Tracker) Notify(tables ...string) {
	if len(tables) == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, o := range t.observers {
		for _, table := range tables {
			if _, ok := o.tables[table]; !ok {
				continue
			}
			select {
			case o.changed <- struct{}{}:
			default:
			}
			break
		}
	}
}

// subscribe returns a channel that receives a token after any of tables
// changes, and a function that removes the subscription.
func (t *Tracker) subscribe(tables []string) (<-chan struct{}, func()) {
	o := &observer{
		tables:  make(map[string]struct{}, len(tables)),
		changed: make(chan struct{}, 1),
	}
	for _, table := range tables {
		o.tables[table] = struct{}{}
	}

	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.observers[id] = o
	t.mu.Unlock()

	return o.changed, func() {
		t.mu.Lock()
		delete(t.observers, id)
		t.mu.Unlock()
	}
}

// ObserverCount returns the number of live subscriptions.
func (t *Tracker) ObserverCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.observers)
}
