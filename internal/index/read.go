// read.go implements the query surface of the index: point lookups,
// LIKE-based predicate scans over the normalized full text, token set
// retrieval, and raw-text iteration for the regex operator.
//
// The store applies no deleted/protected policy here. Entries for such notes
// are never created in the first place; any further visibility filtering is
// the evaluator's job, against the live note flags.

package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Predicate selects how scan terms are matched against the normalized
// full text.
type Predicate int

const (
	Contains Predicate = iota
	HasPrefix
	HasSuffix
)

// Entry returns the index entry for docID, or ErrNotFound.
func (s *Store) Entry(ctx context.Context, docID string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT doc_id, title, content, title_normalized, content_normalized, full_text_normalized
		FROM search_content WHERE doc_id = ?`, docID)

	var e Entry
	err := row.Scan(&e.DocID, &e.Title, &e.Content, &e.TitleNorm, &e.ContentNorm, &e.FullTextNorm)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read index entry %s: %w", docID, err)
	}
	return &e, nil
}

// ScanPredicate returns the IDs of documents whose normalized full text
// matches every term under the given predicate. Matching is case-insensitive
// by construction: the stored text is already normalized and callers pass
// normalized terms. limit <= 0 means unlimited.
func (s *Store) ScanPredicate(ctx context.Context, pred Predicate, terms []string, limit int) ([]string, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	var conditions []string
	var args []any
	for _, term := range terms {
		switch pred {
		case Contains:
			conditions = append(conditions, `full_text_normalized LIKE ? ESCAPE '\'`)
			args = append(args, "%"+escapeLike(term)+"%")
		case HasPrefix:
			conditions = append(conditions, `full_text_normalized LIKE ? ESCAPE '\'`)
			args = append(args, escapeLike(term)+"%")
		case HasSuffix:
			conditions = append(conditions, `full_text_normalized LIKE ? ESCAPE '\'`)
			args = append(args, "%"+escapeLike(term))
		default:
			return nil, fmt.Errorf("unknown scan predicate %d", pred)
		}
	}

	var b strings.Builder
	b.WriteString(`SELECT doc_id FROM search_content WHERE `)
	b.WriteString(strings.Join(conditions, " AND "))
	if limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("predicate scan: %w", err)
	}
	defer rows.Close()

	return scanIDs(rows)
}

// TokensOf returns the normalized token set for one document.
func (s *Store) TokensOf(ctx context.Context, docID string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT token_normalized FROM search_tokens WHERE doc_id = ?`, docID)
	if err != nil {
		return nil, fmt.Errorf("read tokens of %s: %w", docID, err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var tok string
		if err := rows.Scan(&tok); err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		out[tok] = true
	}
	return out, rows.Err()
}

// AllTokens returns the normalized token sets for the given documents, or
// for every indexed document when docIDs is nil.
func (s *Store) AllTokens(ctx context.Context, docIDs []string) (map[string]map[string]bool, error) {
	query := `SELECT DISTINCT doc_id, token_normalized FROM search_tokens`
	var args []any
	if docIDs != nil {
		if len(docIDs) == 0 {
			return map[string]map[string]bool{}, nil
		}
		query += ` WHERE doc_id IN (?` + strings.Repeat(",?", len(docIDs)-1) + `)`
		for _, id := range docIDs {
			args = append(args, id)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("read token sets: %w", err)
	}
	defer rows.Close()

	out := make(map[string]map[string]bool)
	for rows.Next() {
		var id, tok string
		if err := rows.Scan(&id, &tok); err != nil {
			return nil, fmt.Errorf("scan token set: %w", err)
		}
		if out[id] == nil {
			out[id] = make(map[string]bool)
		}
		out[id][tok] = true
	}
	return out, rows.Err()
}

// FullTexts returns docID -> normalized full text for every indexed
// document. The fuzzy operator uses this for its literal-substring
// short-circuit before falling back to token edit distance.
func (s *Store) FullTexts(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT doc_id, full_text_normalized FROM search_content`)
	if err != nil {
		return nil, fmt.Errorf("read full texts: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var id, text string
		if err := rows.Scan(&id, &text); err != nil {
			return nil, fmt.Errorf("scan full text: %w", err)
		}
		out[id] = text
	}
	return out, rows.Err()
}

// ForEachRaw streams the raw (non-normalized) title and content of every
// indexed document. The regex operator matches against raw text so patterns
// keep literal control over casing and structure.
func (s *Store) ForEachRaw(ctx context.Context, fn func(docID, title, content string) error) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT doc_id, title, content FROM search_content`)
	if err != nil {
		return fmt.Errorf("scan raw text: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, title, content string
		if err := rows.Scan(&id, &title, &content); err != nil {
			return fmt.Errorf("scan raw row: %w", err)
		}
		if err := fn(id, title, content); err != nil {
			return err
		}
	}
	return rows.Err()
}

// DocIDs returns every indexed document ID. Used as the universe for
// complement (not-equals) evaluation.
func (s *Store) DocIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc_id FROM search_content`)
	if err != nil {
		return nil, fmt.Errorf("list doc ids: %w", err)
	}
	defer rows.Close()

	return scanIDs(rows)
}

// Counts returns the number of index entries and token rows, for status
// reporting.
func (s *Store) Counts(ctx context.Context) (entries, tokens int64, err error) {
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM search_content`).Scan(&entries); err != nil {
		return 0, 0, fmt.Errorf("count entries: %w", err)
	}
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM search_tokens`).Scan(&tokens); err != nil {
		return 0, 0, fmt.Errorf("count tokens: %w", err)
	}
	return entries, tokens, nil
}

func scanIDs(rows *sql.Rows) ([]string, error) {
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan doc id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// escapeLike escapes LIKE metacharacters so query terms match literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
