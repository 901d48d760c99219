package dechib

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// tableMetadataKey is the reserved key inside every table's namespace that
// holds the serialized schema.
const tableMetadataKey = "__metadata__"

// DefaultPath is where an engine stores its data when the caller does not
// pick a location.
const DefaultPath = "_dechib_db"

// Engine owns the store handle and the auto-increment counters, and exposes
// table creation, metadata read-back and row insertion. One engine instance
// is safe for concurrent use from multiple goroutines.
type Engine struct {
	store    storage
	autoIncs *counterSet
	logf     func(format string, args ...any)
	verbose  bool
}

type Options struct {
	Logf       func(format string, args ...any)
	Verbose    bool
	IsTesting  bool
	MemoryOnly bool
}

// Open opens or creates a store at path and attaches to the tables already
// in it. Auto-increment counters are NOT rebuilt for pre-existing tables:
// they are seeded only by CreateTable, so inserting into a reopened table's
// auto-increment column fails with ErrNoCounter.
func Open(path string, opt Options) (*Engine, error) {
	var store storage
	if opt.MemoryOnly {
		store = newMemStorage()
	} else {
		var err error
		store, err = openBoltStorage(path, opt)
		if err != nil {
			return nil, fmt.Errorf("dechib: %w", err)
		}
	}

	eng := &Engine{
		store:    store,
		autoIncs: newCounterSet(),
		logf:     opt.Logf,
		verbose:  opt.Verbose,
	}

	names, err := store.Namespaces()
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("dechib: listing tables: %w", err)
	}
	eng.debugf("dechib: opened %s, attached to %d tables", path, len(names))
	return eng, nil
}

func (e *Engine) Close() {
	if err := e.store.Close(); err != nil {
		panic(fmt.Errorf("dechib: closing: %w", err))
	}
}

func (e *Engine) debugf(format string, args ...any) {
	if e.verbose && e.logf != nil {
		e.logf(format, args...)
	}
}

// Tables lists the existing table names in sorted order.
func (e *Engine) Tables() ([]string, error) {
	return e.store.Namespaces()
}

// CreateTable validates the schema, creates the table's namespace, persists
// the schema under the reserved metadata key and seeds an in-memory counter
// for every auto-increment column. The steps are not atomic with respect to
// a crash: a namespace can outlive a failed metadata write.
func (e *Engine) CreateTable(opt *CreateTableOptions) error {
	if err := e.validateTableOptions(opt); err != nil {
		return err
	}

	if err := e.store.CreateNamespace(opt.Name); err != nil {
		if errors.Is(err, errNamespaceExists) {
			return tableErrf(opt.Name, "", ErrTableExists, "")
		}
		return fmt.Errorf("dechib: creating table %q: %w", opt.Name, err)
	}

	if err := e.store.Put(opt.Name, []byte(tableMetadataKey), encodeMsgpack(opt.Columns)); err != nil {
		return fmt.Errorf("dechib: writing metadata for %q: %w", opt.Name, err)
	}

	for _, column := range opt.Columns.Names() {
		if opt.Columns[column].AutoIncrement {
			e.autoIncs.seed(Entry{Table: opt.Name, Column: column})
		}
	}

	e.debugf("dechib: created table %q with %d columns", opt.Name, len(opt.Columns))
	return nil
}

// validateTableOptions resolves every foreign key against its target table's
// persisted schema: the target table and column must exist and the column
// must be a primary key.
func (e *Engine) validateTableOptions(opt *CreateTableOptions) error {
	for _, column := range opt.Columns.Names() {
		fk := opt.Columns[column].ForeignKey
		if fk == nil {
			continue
		}
		target, err := e.TableMetadata(fk.Table)
		if err != nil {
			if errors.Is(err, ErrTableNotFound) {
				return tableErrf(opt.Name, column, ErrForeignKey,
					"target table %q does not exist", fk.Table)
			}
			return err
		}
		desc := target[fk.Column]
		if desc == nil {
			return tableErrf(opt.Name, column, ErrForeignKey,
				"column %q does not exist in %q", fk.Column, fk.Table)
		}
		if !desc.PrimaryKey {
			return tableErrf(opt.Name, column, ErrForeignKey,
				"%s.%s is not a primary key", fk.Table, fk.Column)
		}
	}
	return nil
}

// TableMetadata decodes and returns the persisted schema of a table. The
// persisted schema is the sole source of truth for insert validation.
func (e *Engine) TableMetadata(name string) (ColumnDescriptors, error) {
	raw, err := e.store.Get(name, []byte(tableMetadataKey))
	if err != nil {
		if errors.Is(err, errNamespaceNotFound) {
			return nil, tableErrf(name, "", ErrTableNotFound, "")
		}
		return nil, fmt.Errorf("dechib: reading metadata for %q: %w", name, err)
	}
	if raw == nil {
		return nil, tableErrf(name, "", ErrTableNotFound, "no metadata record")
	}
	var cds ColumnDescriptors
	if err := decodeMsgpack(raw, &cds); err != nil {
		return nil, fmt.Errorf("dechib: metadata for %q: %w", name, err)
	}
	return cds, nil
}

// genAction is the per-column strategy for synthesizing a value absent from
// an insert request: fill in a shared constant, or assign the next counter
// value. Exactly one field is set.
type genAction struct {
	constant *Value
	counter  *atomic.Uint64
}

// InsertRows validates and writes all the rows of one request as a single
// atomic batch: on any failure nothing is persisted. Counter values already
// consumed for earlier rows of a failed call are not returned, so a retried
// request observes a gap in the generated sequence.
func (e *Engine) InsertRows(op *InsertOptions) error {
	metadata, err := e.TableMetadata(op.Table)
	if err != nil {
		return err
	}

	for _, column := range op.Columns {
		if _, ok := metadata[column]; !ok {
			return tableErrf(op.Table, column, ErrUnknownColumn, "")
		}
	}

	supplied := make(map[string]bool, len(op.Columns))
	for _, column := range op.Columns {
		supplied[column] = true
	}

	actionCols, actions, err := e.planActions(op.Table, metadata, supplied)
	if err != nil {
		return err
	}

	batch := newWriteBatch(len(op.Values))
	for i := range op.Values {
		rec, err := op.record(i)
		if err != nil {
			return err
		}

		for _, name := range rec.names() {
			if !metadata[name].ValueMatchesType(*rec[name]) {
				return tableErrf(op.Table, name, ErrTypeMismatch,
					"got a %s value for a %s column", rec[name].Kind(), metadata[name].Datatype)
			}
		}

		for _, column := range actionCols {
			action := actions[column]
			if action.counter != nil {
				id := action.counter.Add(1) - 1
				v := Uint64Value(id)
				rec[column] = &v
			} else {
				rec[column] = action.constant
			}
		}

		key, err := metadata.rowKey()
		if err != nil {
			return tableErrf(op.Table, "", err, "")
		}
		batch.Put([]byte(key), encodeMsgpack(rec))
	}

	if err := e.store.WriteBatch(op.Table, batch); err != nil {
		return fmt.Errorf("dechib: inserting into %q: %w", op.Table, err)
	}
	e.debugf("dechib: inserted %d rows into %q", batch.Len(), op.Table)
	return nil
}

// planActions walks the schema once and decides, for every column the
// request does not supply, how a value will be produced. A mandatory column
// with no generation mechanism fails the whole request up front.
func (e *Engine) planActions(table string, metadata ColumnDescriptors, supplied map[string]bool) ([]string, map[string]genAction, error) {
	var actionCols []string
	actions := make(map[string]genAction)

	for _, column := range metadata.Names() {
		desc := metadata[column]
		if supplied[column] {
			continue
		}
		if desc.NeedsValue() {
			return nil, nil, tableErrf(table, column, ErrMissingColumn, "")
		}
		if !desc.ShouldGenerate() {
			continue
		}
		switch {
		case desc.Default != nil && desc.Default.Literal != nil:
			// Computed once, shared unmutated across every row of the call.
			actions[column] = genAction{constant: desc.Default.Literal}
		case desc.Default != nil:
			return nil, nil, tableErrf(table, column, ErrUnsupportedDefault, "%s", desc.Default.Raw)
		case desc.AutoIncrement:
			counter, ok := e.autoIncs.get(Entry{Table: table, Column: column})
			if !ok {
				return nil, nil, tableErrf(table, column, ErrNoCounter, "")
			}
			actions[column] = genAction{counter: counter}
		default:
			return nil, nil, tableErrf(table, column, ErrUngeneratableColumn, "")
		}
		actionCols = append(actionCols, column)
	}
	return actionCols, actions, nil
}
