/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// note.go implements the "notesearch note" command group for managing notes
// in the reference SQLite store.
//
// These commands exist so the module works end to end without a host
// application: add and mutate notes here, search them with "notesearch
// search". Because the syncer is subscribed to the store, every mutation
// updates the index in the same process - no rebuild needed.

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jpl-au/notesearch/internal/log"
	"github.com/jpl-au/notesearch/internal/notes"
	"github.com/spf13/cobra"
)

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Manage notes in the store",
	Long: `Manage notes in the built-in SQLite note store.

  notesearch note add "Weekly Report" --content "status update"
  notesearch note add "Snippet" --type code - < main.go
  notesearch note show <id>
  notesearch note rm <id>
  notesearch note protect <id>`,
}

var noteAddCmd = &cobra.Command{
	Use:   "add <title> [-]",
	Short: "Add a note",
	Long: `Add a note with the given title.

Content comes from --content, or from stdin when the last argument is "-".`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runNoteAdd,
}

func runNoteAdd(c *cobra.Command, args []string) error {
	title := args[0]
	content, _ := c.Flags().GetString("content")
	typ, _ := c.Flags().GetString("type")
	mime, _ := c.Flags().GetString("mime")

	if len(args) == 2 && args[1] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return PrintJSONError(fmt.Errorf("read stdin: %w", err))
		}
		content = string(data)
	}

	id, err := src.Create(c.Context(), title, notes.Type(typ), mime, content)

	log.Event("cli:note", "add").
		Doc(id).
		Detail("type", typ).
		Write(err)

	if err != nil {
		return PrintJSONError(fmt.Errorf("note add: %w", err))
	}

	if JSON() {
		return PrintJSON(map[string]string{"note_id": id})
	}
	fmt.Fprintln(Out(), id)
	return nil
}

var noteShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		n, err := src.Get(c.Context(), args[0])
		log.Event("cli:note", "show").Doc(args[0]).Write(err)
		if err != nil {
			return PrintJSONError(fmt.Errorf("note show: %w", err))
		}

		if JSON() {
			return PrintJSON(map[string]any{
				"note_id":   n.ID,
				"title":     n.Title,
				"type":      string(n.Type),
				"mime":      n.MIME,
				"content":   n.Content,
				"deleted":   n.Deleted,
				"protected": n.Protected,
			})
		}
		fmt.Fprintf(Out(), "%s  [%s]  %s\n", n.ID, n.Type, n.Title)
		if n.Content != "" {
			fmt.Fprintln(Out(), n.Content)
		}
		return nil
	},
}

var noteUpdateCmd = &cobra.Command{
	Use:   "update <id> <title>",
	Short: "Update a note's title and content",
	Args:  cobra.ExactArgs(2),
	RunE: func(c *cobra.Command, args []string) error {
		content, _ := c.Flags().GetString("content")
		err := src.Update(c.Context(), args[0], args[1], content)
		log.Event("cli:note", "update").Doc(args[0]).Write(err)
		if err != nil {
			return PrintJSONError(fmt.Errorf("note update: %w", err))
		}
		return okJSON("updated", args[0])
	},
}

var noteRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a note (soft delete)",
	Long: `Soft-deletes a note. The row stays in the store but the note leaves
the search index. Use --undo to restore it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		undo, _ := c.Flags().GetBool("undo")
		err := src.SetDeleted(c.Context(), args[0], !undo)
		action := "rm"
		if undo {
			action = "restore"
		}
		log.Event("cli:note", action).Doc(args[0]).Write(err)
		if err != nil {
			return PrintJSONError(fmt.Errorf("note %s: %w", action, err))
		}
		return okJSON(action, args[0])
	},
}

var noteProtectCmd = &cobra.Command{
	Use:   "protect <id>",
	Short: "Protect a note (removes it from the index)",
	Long: `Marks a note protected. Protected note text never enters the search
index; protecting an indexed note purges its entry. Use --off to unprotect.`,
	Args: cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		off, _ := c.Flags().GetBool("off")
		err := src.SetProtected(c.Context(), args[0], !off)
		action := "protect"
		if off {
			action = "unprotect"
		}
		log.Event("cli:note", action).Doc(args[0]).Write(err)
		if err != nil {
			return PrintJSONError(fmt.Errorf("note %s: %w", action, err))
		}
		return okJSON(action, args[0])
	},
}

var noteTypeCmd = &cobra.Command{
	Use:   "type <id> <type>",
	Short: "Change a note's type",
	Long: `Changes a note's type. Valid types: text, code, mermaid, canvas,
mindMap, image, file. Changing to a non-indexable type (image, file)
removes the note from the search index.`,
	Args: cobra.ExactArgs(2),
	RunE: func(c *cobra.Command, args []string) error {
		mime, _ := c.Flags().GetString("mime")
		typ := notes.Type(args[1])
		err := src.SetType(c.Context(), args[0], typ, mime)
		log.Event("cli:note", "type").Doc(args[0]).Detail("type", args[1]).Write(err)
		if err != nil {
			return PrintJSONError(fmt.Errorf("note type: %w", err))
		}
		return okJSON("type:"+args[1], args[0])
	},
}

// okJSON emits the standard mutation acknowledgement.
func okJSON(action, id string) error {
	if JSON() {
		return PrintJSON(map[string]string{"action": action, "note_id": id})
	}
	fmt.Fprintf(Out(), "%s %s\n", strings.Split(action, ":")[0], id)
	return nil
}

func init() {
	noteAddCmd.Flags().String("content", "", "Note content")
	noteAddCmd.Flags().String("type", "text", "Note type (text, code, mermaid, canvas, mindMap, image, file)")
	noteAddCmd.Flags().String("mime", "", "MIME type (e.g., text/html)")
	noteUpdateCmd.Flags().String("content", "", "New note content")
	noteRmCmd.Flags().Bool("undo", false, "Restore a deleted note")
	noteProtectCmd.Flags().Bool("off", false, "Remove protection")
	noteTypeCmd.Flags().String("mime", "", "MIME type for the new type")

	noteCmd.AddCommand(noteAddCmd, noteShowCmd, noteUpdateCmd, noteRmCmd, noteProtectCmd, noteTypeCmd)
	rootCmd.AddCommand(noteCmd)
}
