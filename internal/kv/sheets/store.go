// Package sheets implements kv.Store on a Google spreadsheet.
//
// Each leaf collection is one tab whose first row is the header. Nested
// collections share the tab of their leaf name and are told apart by the
// hidden _parent column, so "attendance" and "sessions/s1/attendance" never
// see each other's rows. Every cell is a string: booleans are written as
// TRUE/FALSE and times as RFC3339, and readers decode with kv.Decode.
// Removal renames the id to "<id>_deleted"; tombstoned rows are skipped on
// read.
package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"swimfit/backend/internal/kv"
)

const (
	ParentColumn    = "_parent"
	TombstoneSuffix = "_deleted"
	trueCell        = "TRUE"
	falseCell       = "FALSE"
)

type Store struct {
	api API

	// mu serializes writers; header growth and row lookup are
	// read-modify-write against the sheet.
	mu   sync.Mutex
	tabs map[string]bool
}

func New(api API) *Store {
	return &Store{api: api}
}

var _ kv.Store = (*Store)(nil)

type location struct {
	tab    string
	parent string
}

func locate(path string) (location, error) {
	segs, err := kv.SplitPath(path)
	if err != nil {
		return location{}, err
	}
	return location{
		tab:    segs[len(segs)-1],
		parent: kv.Join(segs[:len(segs)-1]...),
	}, nil
}

type table struct {
	header []string
	rows   [][]string
	// dirty is set when header differs from what the sheet holds.
	dirty bool
}

func (t *table) column(name string) int {
	return slices.Index(t.header, name)
}

func (t *table) cell(row []string, name string) string {
	i := t.column(name)
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// find returns the 1-based sheet row of a live document.
func (t *table) find(loc location, id string) (int, []string) {
	for i, row := range t.rows {
		if t.cell(row, kv.IDField) == id && t.cell(row, ParentColumn) == loc.parent {
			return i + 2, row
		}
	}
	return 0, nil
}

func (t *table) document(row []string) kv.Document {
	doc := kv.Document{}
	for i, name := range t.header {
		if name == ParentColumn || name == "" || i >= len(row) || row[i] == "" {
			continue
		}
		doc[name] = row[i]
	}
	return doc
}

func (t *table) encode(doc kv.Document) []string {
	row := make([]string, len(t.header))
	for i, name := range t.header {
		if v, ok := doc[name]; ok {
			row[i] = Cell(v)
		}
	}
	return row
}

// grow appends any keys of doc missing from the header.
func (t *table) grow(doc kv.Document) {
	var added []string
	for k := range doc {
		if t.column(k) < 0 {
			added = append(added, k)
		}
	}
	if len(added) == 0 {
		return
	}
	slices.Sort(added)
	t.header = append(t.header, added...)
	t.dirty = true
}

func (s *Store) hasTab(ctx context.Context, tab string) (bool, error) {
	if s.tabs == nil {
		names, err := s.api.Tabs(ctx)
		if err != nil {
			return false, kv.WrapStore(fmt.Errorf("list tabs: %w", err))
		}
		s.tabs = map[string]bool{}
		for _, n := range names {
			s.tabs[n] = true
		}
	}
	return s.tabs[tab], nil
}

func (s *Store) ensureTab(ctx context.Context, tab string) error {
	ok, err := s.hasTab(ctx, tab)
	if err != nil || ok {
		return err
	}
	if err := s.api.AddTab(ctx, tab); err != nil {
		return kv.WrapStore(fmt.Errorf("add tab %s: %w", tab, err))
	}
	if err := s.api.WriteRow(ctx, tab, 1, []string{kv.IDField, ParentColumn}); err != nil {
		return kv.WrapStore(fmt.Errorf("write header %s: %w", tab, err))
	}
	s.tabs[tab] = true
	return nil
}

// load reads a tab. A missing tab reads as an empty table.
func (s *Store) load(ctx context.Context, tab string) (*table, error) {
	ok, err := s.hasTab(ctx, tab)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &table{header: []string{kv.IDField, ParentColumn}}, nil
	}
	raw, err := s.api.Read(ctx, tab)
	if err != nil {
		return nil, kv.WrapStore(fmt.Errorf("read %s: %w", tab, err))
	}
	t := &table{}
	if len(raw) > 0 {
		t.header = raw[0]
		t.rows = raw[1:]
	}
	for _, required := range []string{kv.IDField, ParentColumn} {
		if t.column(required) < 0 {
			t.header = append(t.header, required)
			t.dirty = true
		}
	}
	return t, nil
}

func (s *Store) flushHeader(ctx context.Context, tab string, t *table) error {
	if !t.dirty {
		return nil
	}
	if err := s.api.WriteRow(ctx, tab, 1, t.header); err != nil {
		return kv.WrapStore(fmt.Errorf("write header %s: %w", tab, err))
	}
	t.dirty = false
	return nil
}

func (s *Store) GetAll(ctx context.Context, path string) ([]kv.Document, error) {
	loc, err := locate(path)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.load(ctx, loc.tab)
	if err != nil {
		return nil, err
	}
	out := []kv.Document{}
	for _, row := range t.rows {
		id := t.cell(row, kv.IDField)
		if id == "" || strings.HasSuffix(id, TombstoneSuffix) || t.cell(row, ParentColumn) != loc.parent {
			continue
		}
		out = append(out, t.document(row))
	}
	return out, nil
}

func (s *Store) GetByID(ctx context.Context, path, id string) (kv.Document, error) {
	loc, err := locate(path)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.load(ctx, loc.tab)
	if err != nil {
		return nil, err
	}
	_, row := t.find(loc, id)
	if row == nil {
		return nil, fmt.Errorf("%w: %s/%s", kv.ErrNotFound, path, id)
	}
	return t.document(row), nil
}

func (s *Store) Add(ctx context.Context, path string, doc kv.Document) (kv.Document, error) {
	loc, err := locate(path)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureTab(ctx, loc.tab); err != nil {
		return nil, err
	}
	t, err := s.load(ctx, loc.tab)
	if err != nil {
		return nil, err
	}

	stored := kv.Compact(doc)
	if stored.ID() == "" {
		stored[kv.IDField] = uuid.NewString()
	}
	t.grow(stored)
	if err := s.flushHeader(ctx, loc.tab, t); err != nil {
		return nil, err
	}

	withParent := stored.Clone()
	withParent[ParentColumn] = loc.parent
	values := t.encode(withParent)

	if rowNum, _ := t.find(loc, stored.ID()); rowNum > 0 {
		err = s.api.WriteRow(ctx, loc.tab, rowNum, values)
	} else {
		err = s.api.AppendRow(ctx, loc.tab, values)
	}
	if err != nil {
		return nil, kv.WrapStore(fmt.Errorf("add %s: %w", path, err))
	}
	return t.document(values), nil
}

func (s *Store) Update(ctx context.Context, path, id string, fields kv.Document) (kv.Document, error) {
	loc, err := locate(path)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.load(ctx, loc.tab)
	if err != nil {
		return nil, err
	}
	rowNum, row := t.find(loc, id)
	if row == nil {
		return nil, fmt.Errorf("%w: %s/%s", kv.ErrNotFound, path, id)
	}

	updates := kv.Compact(fields)
	delete(updates, kv.IDField)
	t.grow(updates)
	if err := s.flushHeader(ctx, loc.tab, t); err != nil {
		return nil, err
	}

	merged := kv.Document{}
	for k, v := range t.document(row) {
		merged[k] = v
	}
	for k, v := range updates {
		merged[k] = v
	}
	merged[ParentColumn] = loc.parent

	values := t.encode(merged)
	if err := s.api.WriteRow(ctx, loc.tab, rowNum, values); err != nil {
		return nil, kv.WrapStore(fmt.Errorf("update %s/%s: %w", path, id, err))
	}
	return t.document(values), nil
}

func (s *Store) Remove(ctx context.Context, path, id string) (bool, error) {
	loc, err := locate(path)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.load(ctx, loc.tab)
	if err != nil {
		return false, err
	}
	rowNum, row := t.find(loc, id)
	if row == nil {
		return false, nil
	}

	values := make([]string, len(t.header))
	copy(values, row)
	values[t.column(kv.IDField)] = id + TombstoneSuffix
	if err := s.api.WriteRow(ctx, loc.tab, rowNum, values); err != nil {
		return false, kv.WrapStore(fmt.Errorf("remove %s/%s: %w", path, id, err))
	}
	return true, nil
}

// InitCollection creates the tab if needed and makes sure every named header
// is present. Existing columns keep their positions.
func (s *Store) InitCollection(ctx context.Context, path string, headers []string) error {
	loc, err := locate(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureTab(ctx, loc.tab); err != nil {
		return err
	}
	t, err := s.load(ctx, loc.tab)
	if err != nil {
		return err
	}

	for _, h := range headers {
		if h != "" && t.column(h) < 0 {
			t.header = append(t.header, h)
			t.dirty = true
		}
	}
	return s.flushHeader(ctx, loc.tab, t)
}

// Cell renders a value the way the sheet stores it.
func Cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return trueCell
		}
		return falseCell
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if x == nil {
			return ""
		}
		return x.UTC().Format(time.RFC3339Nano)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}
