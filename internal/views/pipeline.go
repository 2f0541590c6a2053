// Package views assembles denormalized, response-shaped aggregates from
// normalized entity collections. A view is a declarative list of pipeline
// stages executed against a Source, so every view is independently testable
// against an in-memory collection set.
package views

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"time"
)

// Document is one record of a source collection, keyed by field name.
type Document map[string]any

// Source provides the collections a pipeline reads from. Scan returns every
// document of a collection; Find returns the documents whose field equals any
// of the given values. Implementations may push Find down to the store.
type Source interface {
	Scan(ctx context.Context, collection string) ([]Document, error)
	Find(ctx context.Context, collection, field string, values []any) ([]Document, error)
}

// Stage is one transformation step in a pipeline.
type Stage interface {
	run(ctx context.Context, src Source, docs []Document) ([]Document, error)
}

// JoinMode declares the cardinality of a join up front: a to-one join attaches
// the first related document or nil, a to-many join attaches an ordered slice.
type JoinMode int

const (
	// JoinMany attaches all related documents, ordered by the local
	// reference sequence where the local field holds one.
	JoinMany JoinMode = iota
	// JoinOne attaches the first related document, or nil when none match.
	JoinOne
)

// AggOp selects the aggregate computed by a Group stage.
type AggOp int

const (
	// Count counts the documents in each bucket.
	Count AggOp = iota
	// Sum adds the numeric values of the Of field in each bucket.
	Sum
)

// Match filters documents. The field-equality form (Field set, Pred nil) is
// eligible for store pushdown when it is the first stage of a pipeline; the
// predicate form runs in memory.
type Match struct {
	Field string
	Value any
	Pred  func(Document) bool
}

func (m Match) run(_ context.Context, _ Source, docs []Document) ([]Document, error) {
	out := docs[:0:0]
	for _, doc := range docs {
		if m.matches(doc) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (m Match) matches(doc Document) bool {
	if m.Pred != nil {
		return m.Pred(doc)
	}
	return equalValues(doc[m.Field], m.Value)
}

// Join fetches related documents from another collection and attaches them
// under As. The local field may hold a single reference or an ordered
// reference sequence; sequence order is preserved in the joined result.
// An optional nested pipeline post-processes the related documents before
// attachment, and Project reduces them to the named fields.
type Join struct {
	From         string
	LocalField   string
	ForeignField string
	As           string
	Mode         JoinMode
	Pipeline     []Stage
	Project      []string
}

func (j Join) run(ctx context.Context, src Source, docs []Document) ([]Document, error) {
	keys := make([]any, 0, len(docs))
	seen := make(map[any]struct{})
	for _, doc := range docs {
		for _, key := range referenceKeys(doc[j.LocalField]) {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}

	var related []Document
	if len(keys) > 0 {
		found, err := src.Find(ctx, j.From, j.ForeignField, keys)
		if err != nil {
			return nil, fmt.Errorf("join %s on %s: %w", j.From, j.ForeignField, err)
		}
		related = found
	}

	for _, stage := range j.Pipeline {
		var err error
		related, err = stage.run(ctx, src, related)
		if err != nil {
			return nil, fmt.Errorf("join %s pipeline: %w", j.From, err)
		}
	}

	// The foreign field need not be unique: every related document is kept
	// per key, in store order, so a to-many join attaches all matches.
	index := make(map[any][]Document, len(related))
	for _, rel := range related {
		key := rel[j.ForeignField]
		index[key] = append(index[key], rel)
	}

	for _, doc := range docs {
		matched := make([]Document, 0, 4)
		for _, key := range referenceKeys(doc[j.LocalField]) {
			for _, rel := range index[key] {
				if len(j.Project) > 0 {
					rel = projectFields(rel, j.Project)
				}
				matched = append(matched, rel)
			}
		}

		if j.Mode == JoinOne {
			if len(matched) > 0 {
				doc[j.As] = matched[0]
			} else {
				doc[j.As] = nil
			}
			continue
		}
		doc[j.As] = matched
	}

	return docs, nil
}

// First unwraps an array field to its first element, or nil when empty. It is
// the projection counterpart of a to-many join that is semantically to-one.
type First struct {
	Field string
}

func (f First) run(_ context.Context, _ Source, docs []Document) ([]Document, error) {
	for _, doc := range docs {
		switch val := doc[f.Field].(type) {
		case []Document:
			if len(val) > 0 {
				doc[f.Field] = val[0]
			} else {
				doc[f.Field] = nil
			}
		case []any:
			if len(val) > 0 {
				doc[f.Field] = val[0]
			} else {
				doc[f.Field] = nil
			}
		}
	}
	return docs, nil
}

// Project keeps only the named fields (or drops the named fields when Drop is
// set instead). Each output document is a fresh map.
type Project struct {
	Keep []string
	Drop []string
}

func (p Project) run(_ context.Context, _ Source, docs []Document) ([]Document, error) {
	out := make([]Document, 0, len(docs))
	for _, doc := range docs {
		if len(p.Keep) > 0 {
			out = append(out, projectFields(doc, p.Keep))
			continue
		}
		next := make(Document, len(doc))
		for k, v := range doc {
			next[k] = v
		}
		for _, field := range p.Drop {
			delete(next, field)
		}
		out = append(out, next)
	}
	return out, nil
}

// Unwind replaces each document holding an array field with one document per
// element. Documents whose field is empty or absent are dropped.
type Unwind struct {
	Field string
}

func (u Unwind) run(_ context.Context, _ Source, docs []Document) ([]Document, error) {
	var out []Document
	for _, doc := range docs {
		for _, elem := range arrayElements(doc[u.Field]) {
			next := make(Document, len(doc))
			for k, v := range doc {
				next[k] = v
			}
			next[u.Field] = elem
			out = append(out, next)
		}
	}
	return out, nil
}

// Group aggregates documents. With By unset the whole input forms a single
// bucket and exactly one row is emitted even for empty input, so counts and
// sums surface as numeric zero rather than an absent aggregate. With By set
// one row is emitted per distinct key.
type Group struct {
	By string
	As string
	Op AggOp
	Of string
}

func (g Group) run(_ context.Context, _ Source, docs []Document) ([]Document, error) {
	if g.By == "" {
		return []Document{{g.As: g.aggregate(docs)}}, nil
	}

	order := make([]any, 0)
	buckets := make(map[any][]Document)
	for _, doc := range docs {
		key := doc[g.By]
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], doc)
	}

	out := make([]Document, 0, len(order))
	for _, key := range order {
		out = append(out, Document{g.By: key, g.As: g.aggregate(buckets[key])})
	}
	return out, nil
}

func (g Group) aggregate(docs []Document) int64 {
	if g.Op == Count {
		return int64(len(docs))
	}
	var total int64
	for _, doc := range docs {
		if n, ok := numericValue(doc[g.Of]); ok {
			total += int64(n)
		}
	}
	return total
}

// Sort orders documents by a field. The sort is stable so equal keys keep
// their incoming order.
type Sort struct {
	Field      string
	Descending bool
}

func (s Sort) run(_ context.Context, _ Source, docs []Document) ([]Document, error) {
	sort.SliceStable(docs, func(i, j int) bool {
		less := lessValues(docs[i][s.Field], docs[j][s.Field])
		if s.Descending {
			return lessValues(docs[j][s.Field], docs[i][s.Field])
		}
		return less
	})
	return docs, nil
}

// Page applies a skip/limit window. A negative skip is treated as zero and a
// non-positive limit leaves the tail unbounded.
type Page struct {
	Skip  int
	Limit int
}

func (p Page) run(_ context.Context, _ Source, docs []Document) ([]Document, error) {
	skip := p.Skip
	if skip < 0 {
		skip = 0
	}
	if skip >= len(docs) {
		return nil, nil
	}
	docs = docs[skip:]
	if p.Limit > 0 && len(docs) > p.Limit {
		docs = docs[:p.Limit]
	}
	return docs, nil
}

// Run executes the stages in order against the named collection. A leading
// field-equality Match is pushed down to Source.Find so the whole collection
// is not scanned just to select one key.
func Run(ctx context.Context, src Source, from string, stages []Stage) ([]Document, error) {
	var docs []Document
	var err error

	rest := stages
	if len(stages) > 0 {
		if m, ok := stages[0].(Match); ok && m.Pred == nil && m.Field != "" {
			docs, err = src.Find(ctx, from, m.Field, []any{m.Value})
			rest = stages[1:]
		} else {
			docs, err = src.Scan(ctx, from)
		}
	} else {
		docs, err = src.Scan(ctx, from)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", from, err)
	}

	for _, stage := range rest {
		docs, err = stage.run(ctx, src, docs)
		if err != nil {
			return nil, err
		}
	}
	return docs, nil
}

func projectFields(doc Document, fields []string) Document {
	out := make(Document, len(fields))
	for _, field := range fields {
		if val, ok := doc[field]; ok {
			out[field] = val
		}
	}
	return out
}

// referenceKeys normalizes a local join field into its reference keys: a
// scalar yields one key, a sequence yields its elements in stored order, and
// nil or empty references yield none.
func referenceKeys(val any) []any {
	switch v := val.(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		return []any{v}
	case []string:
		keys := make([]any, 0, len(v))
		for _, s := range v {
			if s != "" {
				keys = append(keys, s)
			}
		}
		return keys
	case []any:
		keys := make([]any, 0, len(v))
		for _, e := range v {
			if e != nil {
				keys = append(keys, e)
			}
		}
		return keys
	default:
		return []any{v}
	}
}

func arrayElements(val any) []any {
	switch v := val.(type) {
	case []Document:
		out := make([]any, len(v))
		for i, d := range v {
			out[i] = d
		}
		return out
	case []any:
		return v
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	default:
		return nil
	}
}

func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if an, ok := numericValue(a); ok {
		if bn, ok := numericValue(b); ok {
			return an == bn
		}
	}
	return reflect.DeepEqual(a, b)
}

func lessValues(a, b any) bool {
	if an, ok := numericValue(a); ok {
		if bn, ok := numericValue(b); ok {
			return an < bn
		}
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Before(bt)
		}
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return as < bs
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func numericValue(val any) (float64, bool) {
	switch v := val.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
