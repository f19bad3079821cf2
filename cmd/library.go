package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/benewagner/musicmapping/internal/content"
	"github.com/benewagner/musicmapping/internal/exchange"
	"github.com/benewagner/musicmapping/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Validate an exercise file (.json or .xlsx) and add it to the library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		c, err := exchange.ReadFile(args[0])
		if err != nil {
			return err
		}
		printWarnings(cmd, c)

		title, _ := cmd.Flags().GetString("title")
		if title == "" {
			title = titleFromPath(args[0])
		}
		slug, _ := cmd.Flags().GetString("slug")
		if slug == "" {
			slug = store.Slugify(title)
		}

		st, err := env.openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		ex := &store.Exercise{Slug: slug, Title: title, Content: c}
		if err := st.ExerciseRepo().Save(cmd.Context(), ex); err != nil {
			return fmt.Errorf("save exercise: %w", err)
		}
		env.log.Info("exercise imported", zap.String("slug", slug), zap.String("file", args[0]))
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %q as %s (%d cards)\n", title, slug, len(c.Elements))
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <slug> <file>",
	Short: "Write a library exercise to a .json or .xlsx file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		st, err := env.openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		ex, err := st.ExerciseRepo().Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("exercise %q: %w", args[0], err)
		}

		c := ex.Content
		if room, _ := cmd.Flags().GetString("room"); room != "" {
			c = content.Redact(c, room)
		}
		if err := exchange.WriteFile(args[1], c); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", ex.Slug, args[1])
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the exercises in the library",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		st, err := env.openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		list, err := st.ExerciseRepo().List(cmd.Context())
		if err != nil {
			return fmt.Errorf("list exercises: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(list) == 0 {
			fmt.Fprintln(out, "The library is empty.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SLUG\tTITLE\tCARDS\tUPDATED")
		for _, ex := range list {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", ex.Slug, ex.Title, len(ex.Content.Elements), ex.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <slug>",
	Short: "Remove an exercise from the library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		st, err := env.openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.ExerciseRepo().Delete(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("delete %q: %w", args[0], err)
		}
		env.log.Info("exercise deleted", zap.String("slug", args[0]))
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check an exercise file without importing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		c, err := exchange.ReadFile(args[0])
		if err != nil {
			return err
		}
		printWarnings(cmd, c)

		out := cmd.OutOrStdout()
		var questions, answers int
		for _, e := range c.Elements {
			if e.IsQuestion() {
				questions++
			} else {
				answers++
			}
		}
		fmt.Fprintf(out, "%s is valid: %d questions, %d answers\n", filepath.Base(args[0]), questions, answers)

		if res := content.CDNResources(c); len(res) > 0 {
			fmt.Fprintln(out, "Media:")
			for _, url := range res {
				fmt.Fprintf(out, "  %s\n", content.AccessibleURL(url, env.cfg.CDNRoot))
			}
		}
		return nil
	},
}

// printWarnings reports content problems that do not block playing.
func printWarnings(cmd *cobra.Command, c content.Content) {
	warnings := content.Warnings(c)
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", strings.Join(warnings, "\nwarning: "))
}

func init() {
	importCmd.Flags().String("slug", "", "Library slug (default: derived from the title)")
	importCmd.Flags().String("title", "", "Exercise title (default: derived from the file name)")
	exportCmd.Flags().String("room", "", "Blank media that is private to other rooms")
}
