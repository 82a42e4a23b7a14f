package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"notesapi/models"

	"github.com/spf13/cobra"
)

var (
	noteListLimit  int
	noteListOffset int
)

var noteCmd = &cobra.Command{
	Use:         "note",
	Short:       "Manage notes",
	Annotations: map[string]string{storeAnnotation: storeMigrated},
}

var noteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes with their tags",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := noteService().List(cmd.Context(), noteListLimit, noteListOffset)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(page.Items) == 0 {
			fmt.Fprintf(out, "No notes found (total %d).\n", page.Total)
			return nil
		}
		printNotes(out, page.Items)
		fmt.Fprintf(out, "\nShowing %d of %d notes (offset %d).\n", len(page.Items), page.Total, page.Offset)
		return nil
	},
}

var noteAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a note",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		note, err := noteService().Create(cmd.Context(), models.NoteCreate{Title: strings.Join(args, " ")})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created note %s\n", note.ID)
		return nil
	},
}

var noteShowCmd = &cobra.Command{
	Use:   "show <note-id>",
	Short: "Show one note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := models.ParseID(args[0])
		if err != nil {
			return err
		}
		note, err := noteService().Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		printNotes(cmd.OutOrStdout(), []models.Note{note})
		return nil
	},
}

var noteRemoveCmd = &cobra.Command{
	Use:     "rm <note-id>",
	Aliases: []string{"delete"},
	Short:   "Delete a note",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := models.ParseID(args[0])
		if err != nil {
			return err
		}
		if err := noteService().Delete(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted note %s\n", id)
		return nil
	},
}

var noteTagCmd = &cobra.Command{
	Use:   "tag <note-id> <tag-id>",
	Short: "Attach a tag to a note",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		noteID, err := models.ParseID(args[0])
		if err != nil {
			return err
		}
		tagID, err := models.ParseID(args[1])
		if err != nil {
			return err
		}
		note, err := noteService().AttachTag(cmd.Context(), noteID, tagID)
		if err != nil {
			return err
		}
		printNotes(cmd.OutOrStdout(), []models.Note{note})
		return nil
	},
}

var noteUntagCmd = &cobra.Command{
	Use:   "untag <note-id> <tag-id>",
	Short: "Detach a tag from a note",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		noteID, err := models.ParseID(args[0])
		if err != nil {
			return err
		}
		tagID, err := models.ParseID(args[1])
		if err != nil {
			return err
		}
		if err := noteService().DetachTag(cmd.Context(), noteID, tagID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed tag %s from note %s\n", tagID, noteID)
		return nil
	},
}

func printNotes(out io.Writer, notes []models.Note) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tTAGS")
	fmt.Fprintln(w, "--\t-----\t----")
	for _, n := range notes {
		titles := make([]string, 0, len(n.Tags))
		for _, t := range n.Tags {
			titles = append(titles, t.Title)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", n.ID, n.Title, strings.Join(titles, ", "))
	}
	w.Flush()
}

func init() {
	noteListCmd.Flags().IntVar(&noteListLimit, "limit", 20, "maximum number of notes to show")
	noteListCmd.Flags().IntVar(&noteListOffset, "offset", 0, "number of notes to skip")

	noteCmd.AddCommand(noteListCmd, noteAddCmd, noteShowCmd, noteRemoveCmd, noteTagCmd, noteUntagCmd)
	rootCmd.AddCommand(noteCmd)
}
