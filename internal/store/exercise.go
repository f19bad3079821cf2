package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/benewagner/musicmapping/internal/content"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func exerciseValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// Slugify derives a slug from a title: lower case ASCII letters and digits
// separated by single dashes. Titles without any such character get a
// random "exercise-xxxxxxxx" slug.
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		default:
			dash = true
		}
	}
	s := b.String()
	if len(s) > 64 {
		s = strings.TrimRight(s[:64], "-")
	}
	if s == "" {
		s = "exercise-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}
	return s
}

// exerciseRepo implements ExerciseRepo with ent's SQL builders.
type exerciseRepo struct {
	db *sql.DB
}

var exerciseFields = []string{"id", "slug", "title", "content", "created_at", "updated_at"}

func (r *exerciseRepo) Save(ctx context.Context, ex *Exercise) error {
	if err := exerciseValidator().Struct(ex); err != nil {
		return fmt.Errorf("invalid exercise: %w", err)
	}
	if err := content.Validate(ex.Content); err != nil {
		return err
	}
	doc, err := json.Marshal(ex.Content)
	if err != nil {
		return fmt.Errorf("encode content: %w", err)
	}

	now := time.Now().UTC()
	query, args := builder().Insert(exercisesTable).
		Columns("slug", "title", "content", "created_at", "updated_at").
		Values(ex.Slug, ex.Title, string(doc), now, now).
		OnConflict(
			entsql.ConflictColumns("slug"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("title")
				u.SetExcluded("content")
				u.SetExcluded("updated_at")
			}),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save exercise %q: %w", ex.Slug, err)
	}

	saved, err := r.Get(ctx, ex.Slug)
	if err != nil {
		return err
	}
	ex.ID, ex.CreatedAt, ex.UpdatedAt = saved.ID, saved.CreatedAt, saved.UpdatedAt
	return nil
}

func (r *exerciseRepo) Get(ctx context.Context, slug string) (*Exercise, error) {
	query, args := builder().Select(exerciseFields...).
		From(entsql.Table(exercisesTable)).
		Where(entsql.EQ("slug", slug)).
		Query()

	ex, err := scanExercise(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("exercise %q: %w", slug, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get exercise %q: %w", slug, err)
	}
	return ex, nil
}

func (r *exerciseRepo) List(ctx context.Context) ([]Exercise, error) {
	query, args := builder().Select(exerciseFields...).
		From(entsql.Table(exercisesTable)).
		OrderBy(entsql.Desc("updated_at"), entsql.Asc("slug")).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	defer rows.Close()

	var out []Exercise
	for rows.Next() {
		ex, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("list exercises: %w", err)
		}
		out = append(out, *ex)
	}
	return out, rows.Err()
}

func (r *exerciseRepo) Delete(ctx context.Context, slug string) error {
	query, args := builder().Delete(exercisesTable).
		Where(entsql.EQ("slug", slug)).
		Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete exercise %q: %w", slug, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete exercise %q: %w", slug, err)
	}
	if n == 0 {
		return fmt.Errorf("exercise %q: %w", slug, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExercise(row scanner) (*Exercise, error) {
	var (
		ex  Exercise
		doc string
	)
	if err := row.Scan(&ex.ID, &ex.Slug, &ex.Title, &doc, &ex.CreatedAt, &ex.UpdatedAt); err != nil {
		return nil, err
	}
	c, err := content.Decode([]byte(doc))
	if err != nil {
		return nil, err
	}
	ex.Content = c
	return &ex, nil
}
