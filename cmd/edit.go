package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/benewagner/musicmapping/internal/content"
)

var editCmd = &cobra.Command{
	Use:   "edit <slug>",
	Short: "Change one card of a library exercise",
	Long: `Edit applies card edits to a stored exercise and saves it.

Cards are numbered from 1 in document order. Pass --card to pick a card
or --add to append a new one; the other flags are applied to that card in
the order they are listed below.`,
	Example: `  musicmapping edit cadences --card 2 --label "IV-I" --answers Plagal
  musicmapping edit cadences --add --type answer --label Half --text "Ends on V"
  musicmapping edit cadences --card 3 --up`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer resetFlags(cmd.Flags())

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

		repo := st.ExerciseRepo()
		ex, err := repo.Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("exercise %q: %w", args[0], err)
		}

		c, summary, err := applyEdits(cmd.Flags(), ex.Content)
		if err != nil {
			return err
		}
		if err := content.Validate(c); err != nil {
			return fmt.Errorf("edited exercise is invalid: %w", err)
		}
		printWarnings(cmd, c)

		ex.Content = c
		if err := repo.Save(cmd.Context(), ex); err != nil {
			return fmt.Errorf("save exercise: %w", err)
		}
		env.log.Info("exercise edited", zap.String("slug", ex.Slug), zap.String("edit", summary))
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %s\n", ex.Slug, summary)
		return nil
	},
}

// applyEdits runs the edits named by the flags against c and describes
// what was done.
func applyEdits(flags *pflag.FlagSet, c content.Content) (content.Content, string, error) {
	card, _ := flags.GetInt("card")
	add, _ := flags.GetBool("add")

	var index int
	switch {
	case add && flags.Changed("card"):
		return c, "", fmt.Errorf("--add and --card cannot be combined")
	case add:
		c, _ = content.AddElement(c)
		index = len(c.Elements) - 1
	case flags.Changed("card"):
		index = card - 1
	default:
		return c, "", fmt.Errorf("pick a card with --card or append one with --add")
	}
	if index < 0 || index >= len(c.Elements) {
		return c, "", fmt.Errorf("card %d: %w", card, content.ErrIndexOutOfRange)
	}

	if del, _ := flags.GetBool("delete"); del {
		label := c.Elements[index].Label
		out, err := content.DeleteElement(c, index)
		if err != nil {
			return c, "", fmt.Errorf("delete card %d: %w", index+1, err)
		}
		return out, fmt.Sprintf("deleted card %d (%s)", index+1, label), nil
	}

	var err error
	step := func(name string, edit func() (content.Content, error)) {
		if err != nil || !flags.Changed(name) {
			return
		}
		var out content.Content
		if out, err = edit(); err != nil {
			err = fmt.Errorf("--%s: %w", name, err)
			return
		}
		c = out
	}

	step("type", func() (content.Content, error) {
		v, _ := flags.GetString("type")
		return content.SetType(c, index, content.ElementType(v))
	})
	step("card-type", func() (content.Content, error) {
		v, _ := flags.GetString("card-type")
		ct := content.CardType(v)
		if !slices.Contains(content.CardTypes, ct) {
			return c, fmt.Errorf("unknown card type %q", v)
		}
		return content.SetCardType(c, index, ct)
	})
	step("label", func() (content.Content, error) {
		v, _ := flags.GetString("label")
		return content.SetLabel(c, index, v)
	})
	step("text", func() (content.Content, error) {
		v, _ := flags.GetString("text")
		return content.SetText(c, index, v)
	})
	step("abc", func() (content.Content, error) {
		v, _ := flags.GetString("abc")
		midi, _ := flags.GetBool("midi")
		return content.SetNotation(c, index, v, midi)
	})
	step("source", func() (content.Content, error) {
		v, _ := flags.GetString("source")
		return content.SetSourceURL(c, index, v, content.SourceMetadata{
			SourceType:    content.ClassifySource(v),
			CopyrightLink: v,
		})
	})
	step("copyright", func() (content.Content, error) {
		v, _ := flags.GetString("copyright")
		return content.SetCopyrightNotice(c, index, v)
	})
	step("answers", func() (content.Content, error) {
		v, _ := flags.GetString("answers")
		keys, err := answerKeysByLabel(c, v)
		if err != nil {
			return c, err
		}
		return content.SetAnswers(c, index, keys)
	})

	moved := index
	step("move-to", func() (content.Content, error) {
		to, _ := flags.GetInt("move-to")
		moved = to - 1
		return content.MoveElement(c, index, to-1)
	})
	step("up", func() (content.Content, error) {
		moved = index - 1
		return content.MoveUp(c, index)
	})
	step("down", func() (content.Content, error) {
		moved = index + 1
		return content.MoveDown(c, index)
	})
	if err != nil {
		return c, "", err
	}

	e := c.Elements[moved]
	verb := "edited"
	if add {
		verb = "added"
	}
	return c, fmt.Sprintf("%s card %d (%s %q)", verb, moved+1, e.Type, e.Label), nil
}

// answerKeysByLabel resolves a comma separated list of answer labels.
func answerKeysByLabel(c content.Content, list string) ([]string, error) {
	var keys []string
	for _, label := range strings.Split(list, ",") {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		i := slices.IndexFunc(c.Elements, func(e content.Element) bool {
			return e.IsAnswer() && strings.EqualFold(e.Label, label)
		})
		if i < 0 {
			return nil, fmt.Errorf("no answer card labelled %q", label)
		}
		keys = append(keys, c.Elements[i].Key)
	}
	return keys, nil
}

// resetFlags restores the defaults so the command can run again in the
// same process.
func resetFlags(flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})
}

func init() {
	f := editCmd.Flags()
	f.Int("card", 0, "Card to edit, counted from 1")
	f.Bool("add", false, "Append a new question card and edit it")
	f.Bool("delete", false, "Delete the card and every reference to it")
	f.String("type", "", "Move the card to the question or answer column")
	f.String("card-type", "", "Render the card as text, image, audio, video or abc")
	f.String("label", "", "Card label")
	f.String("text", "", "Card text")
	f.String("abc", "", "ABC notation")
	f.Bool("midi", false, "Offer MIDI playback of the notation (with --abc)")
	f.String("source", "", "Media source URL")
	f.String("copyright", "", "Markdown copyright notice")
	f.String("answers", "", "Comma separated labels of the correct answers (questions only)")
	f.Int("move-to", 0, "Move the card to this position")
	f.Bool("up", false, "Swap the card with the one before it")
	f.Bool("down", false, "Swap the card with the one after it")
	editCmd.MarkFlagsMutuallyExclusive("move-to", "up", "down")
}
