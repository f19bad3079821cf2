package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/benewagner/musicmapping/internal/exchange"
	"github.com/benewagner/musicmapping/internal/exercisegen"
	"github.com/benewagner/musicmapping/internal/llm"
	"github.com/benewagner/musicmapping/internal/store"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Draft a new exercise with an LLM and add it to the library",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		input := exercisegen.GenerateInput{}
		input.Topic, _ = flags.GetString("topic")
		input.Pairs, _ = flags.GetInt("pairs")
		input.Distractors, _ = flags.GetInt("distractors")
		input.Notation, _ = flags.GetBool("notation")
		if err := exercisegen.CheckInput(input); err != nil {
			return err
		}

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

		ctx := cmd.Context()
		provider, err := llm.NewProvider(ctx, env.cfg.LLM, st.EventRepo(), env.log)
		if err != nil {
			return fmt.Errorf("LLM provider not configured: %w", err)
		}

		existing, err := st.ExerciseRepo().List(ctx)
		if err != nil {
			return fmt.Errorf("list exercises: %w", err)
		}
		for _, ex := range existing {
			input.ExistingTitles = append(input.ExistingTitles, ex.Title)
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Generating %d pairs on %q with %s...\n", input.Pairs, input.Topic, env.cfg.LLM.Provider)
		gen := exercisegen.New(provider, exercisegen.DefaultConfig(), env.log)
		ex, err := gen.Generate(ctx, input)
		if err != nil {
			var verr *exercisegen.ValidationError
			if errors.As(err, &verr) {
				env.log.Warn("generated exercise rejected", zap.String("validator", verr.Validator), zap.String("reason", verr.Message))
			}
			return err
		}

		slug, _ := flags.GetString("slug")
		if slug == "" {
			slug = store.Slugify(ex.Title)
		}
		if out, _ := flags.GetString("out"); out != "" {
			if err := exchange.WriteFile(out, ex.Content); err != nil {
				return err
			}
		}

		saved := &store.Exercise{Slug: slug, Title: ex.Title, Content: ex.Content}
		if err := st.ExerciseRepo().Save(ctx, saved); err != nil {
			return fmt.Errorf("save exercise: %w", err)
		}
		env.log.Info("exercise generated",
			zap.String("slug", slug),
			zap.String("topic", input.Topic),
			zap.Int("attempts", ex.Attempts),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "Added %q as %s after %d attempt(s)\n", ex.Title, slug, ex.Attempts)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringP("topic", "t", "", "Music theory topic, e.g. \"major key signatures\"")
	generateCmd.Flags().IntP("pairs", "n", 4, fmt.Sprintf("Number of question cards (%d-%d)", exercisegen.MinPairs, exercisegen.MaxPairs))
	generateCmd.Flags().Int("distractors", 1, fmt.Sprintf("Extra answer cards that match nothing (0-%d)", exercisegen.MaxDistractors))
	generateCmd.Flags().Bool("notation", false, "Allow question cards in ABC notation")
	generateCmd.Flags().String("slug", "", "Library slug (default: derived from the generated title)")
	generateCmd.Flags().StringP("out", "o", "", "Also write the exercise to this .json or .xlsx file")
	_ = generateCmd.MarkFlagRequired("topic")
}
