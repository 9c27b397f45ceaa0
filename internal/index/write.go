// write.go implements index mutations. Each note's entry and tokens are
// replaced wholesale inside one transaction; there is no incremental token
// diffing. Regenerating everything from the current text is cheap at note
// granularity and keeps the entry and token tables trivially consistent.

package index

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jpl-au/notesearch/internal/normalize"
	"github.com/jpl-au/notesearch/internal/token"
)

// UpsertEntry replaces the index entry and all token occurrences for docID.
// Title and content are the raw (post-sanitization) strings; normalized
// forms and tokens are computed here so callers cannot store inconsistent
// derivations. Atomic: readers see the old state or the new state, never a
// mix.
func (s *Store) UpsertEntry(ctx context.Context, docID, title, content string) error {
	titleNorm := normalize.Text(title)
	contentNorm := normalize.Text(content)
	fullTextNorm := titleNorm + " " + contentNorm

	titleTokens := token.Split(title)
	contentTokens := token.Split(content)

	err := s.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM search_content WHERE doc_id = ?`, docID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM search_tokens WHERE doc_id = ?`, docID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO search_content
			(doc_id, title, content, title_normalized, content_normalized, full_text_normalized)
			VALUES (?, ?, ?, ?, ?, ?)`,
			docID, title, content, titleNorm, contentNorm, fullTextNorm); err != nil {
			return err
		}

		if err := insertTokens(ctx, tx, docID, "title", titleTokens); err != nil {
			return err
		}
		return insertTokens(ctx, tx, docID, "content", contentTokens)
	})
	if err != nil {
		return fmt.Errorf("upsert index entry %s: %w", docID, err)
	}
	return nil
}

// insertTokens writes one source's token stream with its own 0-based
// position counter. The tokenizer already deduplicates, so OR IGNORE is
// only schema-level insurance against position collisions.
func insertTokens(ctx context.Context, tx *sql.Tx, docID, source string, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO search_tokens
		(doc_id, token, token_normalized, position, source)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for pos, tok := range tokens {
		if _, err := stmt.ExecContext(ctx, docID, tok, normalize.Text(tok), pos, source); err != nil {
			return err
		}
	}
	return nil
}

// DeleteEntry removes the entry and all tokens for docID. Deleting a note
// that was never indexed is a no-op, not an error.
func (s *Store) DeleteEntry(ctx context.Context, docID string) error {
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM search_content WHERE doc_id = ?`, docID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM search_tokens WHERE doc_id = ?`, docID)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete index entry %s: %w", docID, err)
	}
	return nil
}

// Clear empties the whole index. Used by forced rebuilds.
func (s *Store) Clear(ctx context.Context) error {
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM search_content`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM search_tokens`)
		return err
	})
	if err != nil {
		return fmt.Errorf("clear index: %w", err)
	}
	return nil
}
