package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"notesapi/models"

	"github.com/spf13/cobra"
)

var (
	tagListLimit  int
	tagListOffset int
)

var tagCmd = &cobra.Command{
	Use:         "tag",
	Short:       "Manage tags",
	Annotations: map[string]string{storeAnnotation: storeMigrated},
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tags",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := tagService().List(cmd.Context(), tagListLimit, tagListOffset)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(page.Items) == 0 {
			fmt.Fprintf(out, "No tags found (total %d).\n", page.Total)
			return nil
		}
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE")
		fmt.Fprintln(w, "--\t-----")
		for _, t := range page.Items {
			fmt.Fprintf(w, "%s\t%s\n", t.ID, t.Title)
		}
		w.Flush()
		return nil
	},
}

var tagAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a tag",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tag, err := tagService().Create(cmd.Context(), models.TagCreate{Title: strings.Join(args, " ")})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created tag %s\n", tag.ID)
		return nil
	},
}

var tagRemoveCmd = &cobra.Command{
	Use:     "rm <tag-id>",
	Aliases: []string{"delete"},
	Short:   "Delete a tag; notes carrying it are kept",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := models.ParseID(args[0])
		if err != nil {
			return err
		}
		if err := tagService().Delete(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted tag %s\n", id)
		return nil
	},
}

var tagNotesCmd = &cobra.Command{
	Use:   "notes <tag-id>",
	Short: "List the notes carrying a tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := models.ParseID(args[0])
		if err != nil {
			return err
		}
		notes, err := tagService().Notes(cmd.Context(), id)
		if err != nil {
			return err
		}
		if len(notes) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No notes carry this tag.")
			return nil
		}
		printNotes(cmd.OutOrStdout(), notes)
		return nil
	},
}

func init() {
	tagListCmd.Flags().IntVar(&tagListLimit, "limit", 20, "maximum number of tags to show")
	tagListCmd.Flags().IntVar(&tagListOffset, "offset", 0, "number of tags to skip")

	tagCmd.AddCommand(tagListCmd, tagAddCmd, tagRemoveCmd, tagNotesCmd)
	rootCmd.AddCommand(tagCmd)
}
