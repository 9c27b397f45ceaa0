// Package search evaluates queries against the token index.
//
// Seven operators are supported: substring, prefix, suffix, fuzzy, exact,
// not-equals, and regex. Query tokens are normalized before dispatch, except
// regex patterns which are matched against raw stored text. Every operator
// ANDs its tokens: a document matches only if every token matches.
//
// The evaluator is read-only. Deleted and protected documents are excluded
// from results by default; protected documents are only returned when the
// caller opts in and a decrypting session is active. The evaluator never
// decrypts anything itself, it asks the session oracle.
package search

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jpl-au/notesearch/internal/index"
	"github.com/jpl-au/notesearch/internal/log"
	"github.com/jpl-au/notesearch/internal/normalize"
	"github.com/jpl-au/notesearch/internal/notes"
)

// ErrNotReady indicates the index store has not been initialised. Callers
// should fall back to a linear scan or prompt for a rebuild.
var ErrNotReady = errors.New("search index not ready")

// Operator selects the matching strategy for a query.
type Operator string

const (
	OpSubstring Operator = "substring"
	OpPrefix    Operator = "prefix"
	OpSuffix    Operator = "suffix"
	OpFuzzy     Operator = "fuzzy"
	OpExact     Operator = "exact"
	OpNotEquals Operator = "not-equals"
	OpRegex     Operator = "regex"
)

// Combine selects how SearchMultiple merges sub-query results.
type Combine int

const (
	CombineAND Combine = iota
	CombineOR
)

// Query is one {tokens, operator} sub-query for SearchMultiple.
type Query struct {
	Tokens   []string
	Operator Operator
}

// Options control result filtering. The zero value excludes deleted and
// protected documents and returns all matches.
type Options struct {
	IncludeDeleted   bool
	IncludeProtected bool

	// DocIDFilter restricts results to the given candidate set when non-nil.
	// Used to scope a search to a subtree.
	DocIDFilter map[string]bool

	// Limit caps the result set size, applied during collection. Zero means
	// unlimited.
	Limit int
}

// FlagProvider reports deleted/protected status for documents.
// *notes.SQLiteSource satisfies this.
type FlagProvider interface {
	Flags(ctx context.Context, ids []string) (map[string]notes.Flags, error)
}

// Config bounds the fuzzy operator.
type Config struct {
	// MaxDistance is the maximum edit distance for a fuzzy token match.
	MaxDistance int
	// MinTokenLength is the shortest query token eligible for edit-distance
	// matching. Shorter tokens only match literally.
	MinTokenLength int
}

// DefaultConfig matches the reference tuning: distance 2, length 3.
func DefaultConfig() Config {
	return Config{MaxDistance: 2, MinTokenLength: 3}
}

// Evaluator runs queries against an index store.
type Evaluator struct {
	idx           *index.Store
	flags         FlagProvider
	sessionActive func() bool
	cfg           Config
}

// New constructs an evaluator. sessionActive reports whether a protected
// session is currently available; nil means never.
func New(idx *index.Store, flags FlagProvider, sessionActive func() bool, cfg Config) *Evaluator {
	if sessionActive == nil {
		sessionActive = func() bool { return false }
	}
	if cfg.MaxDistance <= 0 {
		cfg.MaxDistance = DefaultConfig().MaxDistance
	}
	if cfg.MinTokenLength <= 0 {
		cfg.MinTokenLength = DefaultConfig().MinTokenLength
	}
	return &Evaluator{idx: idx, flags: flags, sessionActive: sessionActive, cfg: cfg}
}

// Search returns the sorted doc IDs matching every token under the given
// operator, filtered per opts. Returns ErrNotReady if the index store has
// not been initialised.
func (e *Evaluator) Search(ctx context.Context, tokens []string, op Operator, opts Options) ([]string, error) {
	if !e.idx.Ready(ctx) {
		return nil, ErrNotReady
	}

	// Regex matches raw stored text; everything else matches normalized.
	terms := tokens
	if op != OpRegex {
		terms = normalizeTokens(tokens)
	}
	if len(terms) == 0 {
		return []string{}, nil
	}

	var (
		ids []string
		err error
	)
	switch op {
	case OpSubstring:
		ids, err = e.idx.ScanPredicate(ctx, index.Contains, terms, 0)
	case OpPrefix:
		ids, err = e.idx.ScanPredicate(ctx, index.HasPrefix, terms, 0)
	case OpSuffix:
		ids, err = e.idx.ScanPredicate(ctx, index.HasSuffix, terms, 0)
	case OpFuzzy:
		ids, err = e.fuzzy(ctx, terms)
	case OpExact:
		ids, err = e.exact(ctx, terms)
	case OpNotEquals:
		ids, err = e.notEquals(ctx, terms)
	case OpRegex:
		ids, err = e.regex(ctx, terms)
	default:
		return nil, errors.New("unknown operator: " + string(op))
	}
	if err != nil {
		return nil, err
	}

	return e.collect(ctx, ids, opts)
}

// SearchMultiple evaluates sub-queries and combines their results by
// intersection (AND) or union (OR). AND short-circuits on the first empty
// intermediate set. Filtering and the limit apply to the combined set.
func (e *Evaluator) SearchMultiple(ctx context.Context, queries []Query, mode Combine, opts Options) ([]string, error) {
	if !e.idx.Ready(ctx) {
		return nil, ErrNotReady
	}
	if len(queries) == 0 {
		return []string{}, nil
	}

	// Sub-queries run unfiltered; filters and limit apply once at the end
	// so intersection is not distorted by a per-query cap.
	var combined map[string]bool
	for _, q := range queries {
		ids, err := e.searchUnfiltered(ctx, q.Tokens, q.Operator)
		if err != nil {
			return nil, err
		}
		set := toSet(ids)
		if combined == nil {
			combined = set
		} else {
			switch mode {
			case CombineAND:
				for id := range combined {
					if !set[id] {
						delete(combined, id)
					}
				}
			case CombineOR:
				for id := range set {
					combined[id] = true
				}
			}
		}
		// Short-circuits on the first empty intermediate set, including
		// an empty first sub-query.
		if mode == CombineAND && len(combined) == 0 {
			return []string{}, nil
		}
	}

	ids := make([]string, 0, len(combined))
	for id := range combined {
		ids = append(ids, id)
	}
	return e.collect(ctx, ids, opts)
}

// searchUnfiltered computes raw matches for one sub-query.
func (e *Evaluator) searchUnfiltered(ctx context.Context, tokens []string, op Operator) ([]string, error) {
	terms := tokens
	if op != OpRegex {
		terms = normalizeTokens(tokens)
	}
	if len(terms) == 0 {
		return nil, nil
	}
	switch op {
	case OpSubstring:
		return e.idx.ScanPredicate(ctx, index.Contains, terms, 0)
	case OpPrefix:
		return e.idx.ScanPredicate(ctx, index.HasPrefix, terms, 0)
	case OpSuffix:
		return e.idx.ScanPredicate(ctx, index.HasSuffix, terms, 0)
	case OpFuzzy:
		return e.fuzzy(ctx, terms)
	case OpExact:
		return e.exact(ctx, terms)
	case OpNotEquals:
		return e.notEquals(ctx, terms)
	case OpRegex:
		return e.regex(ctx, terms)
	}
	return nil, errors.New("unknown operator: " + string(op))
}

// fuzzy matches each token either literally as a substring of the document's
// normalized full text, or within MaxDistance edits of some document token.
// The literal check runs first; tokens shorter than MinTokenLength never
// fall back to edit distance.
func (e *Evaluator) fuzzy(ctx context.Context, terms []string) ([]string, error) {
	texts, err := e.idx.FullTexts(ctx)
	if err != nil {
		return nil, err
	}

	var out []string
	tokenCache := make(map[string]map[string]bool)
	for docID, text := range texts {
		ok := true
		for _, term := range terms {
			if strings.Contains(text, term) {
				continue
			}
			if utf8.RuneCountInString(term) < e.cfg.MinTokenLength {
				ok = false
				break
			}
			docTokens, cached := tokenCache[docID]
			if !cached {
				docTokens, err = e.idx.TokensOf(ctx, docID)
				if err != nil {
					// Skip this document, not the whole query.
					ok = false
					break
				}
				tokenCache[docID] = docTokens
			}
			if !fuzzyTokenMatch(term, docTokens, e.cfg.MaxDistance) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, docID)
		}
	}
	return out, nil
}

// fuzzyTokenMatch reports whether term is within max edits of any token.
// A length-difference prefilter skips tokens that cannot be close enough.
// Lengths are rune counts; edit distance operates on runes, so a byte
// count would wrongly skip multi-byte tokens.
func fuzzyTokenMatch(term string, docTokens map[string]bool, max int) bool {
	termLen := utf8.RuneCountInString(term)
	for tok := range docTokens {
		if abs(utf8.RuneCountInString(tok)-termLen) > max {
			continue
		}
		if distance(term, tok, max) <= max {
			return true
		}
	}
	return false
}

// exact matches documents whose token set contains every term verbatim.
func (e *Evaluator) exact(ctx context.Context, terms []string) ([]string, error) {
	all, err := e.idx.AllTokens(ctx, nil)
	if err != nil {
		return nil, err
	}
	var out []string
	for docID, docTokens := range all {
		ok := true
		for _, term := range terms {
			if !docTokens[term] {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, docID)
		}
	}
	return out, nil
}

// notEquals returns the complement of exact within the indexed universe.
func (e *Evaluator) notEquals(ctx context.Context, terms []string) ([]string, error) {
	universe, err := e.idx.DocIDs(ctx)
	if err != nil {
		return nil, err
	}
	matched, err := e.exact(ctx, terms)
	if err != nil {
		return nil, err
	}
	exclude := toSet(matched)
	var out []string
	for _, id := range universe {
		if !exclude[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

// regex matches every pattern case-insensitively and multiline against the
// raw title + " " + content. A malformed pattern yields an empty set for
// the whole query (AND semantics), logged, never an error.
func (e *Evaluator) regex(ctx context.Context, patterns []string) ([]string, error) {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?ims)" + p)
		if err != nil {
			log.Event("search:regex", "search").
				Operator(string(OpRegex)).
				Detail("pattern", p).
				Write(err)
			return nil, nil
		}
		res = append(res, re)
	}

	var out []string
	err := e.idx.ForEachRaw(ctx, func(docID, title, content string) error {
		text := title + " " + content
		for _, re := range res {
			if !re.MatchString(text) {
				return nil
			}
		}
		out = append(out, docID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// collect applies the doc-ID filter, deleted/protected exclusion, and limit,
// returning sorted IDs. Protected documents require both the option and an
// active session.
func (e *Evaluator) collect(ctx context.Context, ids []string, opts Options) ([]string, error) {
	sort.Strings(ids)

	if opts.DocIDFilter != nil {
		kept := ids[:0]
		for _, id := range ids {
			if opts.DocIDFilter[id] {
				kept = append(kept, id)
			}
		}
		ids = kept
	}

	var flagSet map[string]notes.Flags
	if e.flags != nil && len(ids) > 0 {
		var err error
		flagSet, err = e.flags.Flags(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	allowProtected := opts.IncludeProtected && e.sessionActive()
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		f, known := flagSet[id]
		if known {
			if f.Deleted && !opts.IncludeDeleted {
				continue
			}
			if f.Protected && !allowProtected {
				continue
			}
		}
		out = append(out, id)
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out, nil
}

func normalizeTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		n := normalize.Text(t)
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
