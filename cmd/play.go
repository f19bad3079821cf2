package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benewagner/musicmapping/internal/app"
	"github.com/benewagner/musicmapping/internal/content"
	"github.com/benewagner/musicmapping/internal/exchange"
	"github.com/benewagner/musicmapping/internal/matching"
	"github.com/benewagner/musicmapping/internal/screens/exercise"
)

var playCmd = &cobra.Command{
	Use:   "play <file|slug>",
	Short: "Play one exercise from a file or from the library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		title, c, err := loadExercise(cmd.Context(), env, args[0])
		if err != nil {
			return err
		}

		opts := env.exerciseOptions()
		if cmd.Flags().Changed("seed") {
			seed, _ := cmd.Flags().GetUint64("seed")
			opts.Session = append(opts.Session, matching.WithSeed(seed))
		}
		return app.Run(exercise.New(title, c, opts), env.log)
	},
}

// loadExercise reads ref as a file when one exists at that path, and as a
// library slug otherwise.
func loadExercise(ctx context.Context, env *environment, ref string) (string, content.Content, error) {
	if _, err := os.Stat(ref); err == nil {
		c, err := exchange.ReadFile(ref)
		if err != nil {
			return "", content.Content{}, err
		}
		return titleFromPath(ref), c, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", content.Content{}, fmt.Errorf("stat %s: %w", ref, err)
	}

	st, err := env.openStore()
	if err != nil {
		return "", content.Content{}, err
	}
	defer st.Close()

	ex, err := st.ExerciseRepo().Get(ctx, ref)
	if err != nil {
		return "", content.Content{}, fmt.Errorf("exercise %q: %w", ref, err)
	}
	return ex.Title, ex.Content, nil
}

// titleFromPath turns "major-scales.json" into "major scales".
func titleFromPath(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.Join(strings.FieldsFunc(base, func(r rune) bool { return r == '-' || r == '_' }), " ")
}

func init() {
	playCmd.Flags().Uint64("seed", 0, "Fix the card order with this seed")
}
