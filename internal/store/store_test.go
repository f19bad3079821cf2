package store

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/benewagner/musicmapping/internal/content"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testContent() content.Content {
	elems := []content.Element{
		{Key: "q1", Label: "Bach", Type: content.TypeQuestion, CardType: content.CardText, Answers: []string{"a1"}},
		{Key: "a1", Label: "Baroque", Type: content.TypeAnswer, CardType: content.CardText},
	}
	return content.Content{Elements: elems, Answers: content.ProjectAnswerKey(elems)}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so journal_mode is checked in TestFileDatabase.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	var mode string
	if err := s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	for _, table := range []string{exercisesTable, llmRequestsTable, "global_sequence"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestExerciseSaveGet(t *testing.T) {
	s := openTestStore(t)
	repo := s.ExerciseRepo()
	ctx := context.Background()

	ex := &Exercise{Slug: "epochs", Title: "Epochs", Content: testContent()}
	if err := repo.Save(ctx, ex); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ex.ID == 0 || ex.CreatedAt.IsZero() {
		t.Errorf("save did not fill ID and timestamps: %+v", ex)
	}

	got, err := repo.Get(ctx, "epochs")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Epochs" || content.Fingerprint(got.Content) != content.Fingerprint(testContent()) {
		t.Errorf("got %+v", got)
	}
}

func TestExerciseSaveReplacesBySlug(t *testing.T) {
	s := openTestStore(t)
	repo := s.ExerciseRepo()
	ctx := context.Background()

	first := &Exercise{Slug: "epochs", Title: "Epochs", Content: testContent()}
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	updated := testContent()
	updated.Elements[0].Text = "Toccata"
	second := &Exercise{Slug: "epochs", Title: "Epochs 2", Content: updated}
	if err := repo.Save(ctx, second); err != nil {
		t.Fatalf("save again: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("ID changed from %d to %d", first.ID, second.ID)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("created_at changed: %v -> %v", first.CreatedAt, second.CreatedAt)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Errorf("updated_at did not advance: %v -> %v", first.UpdatedAt, second.UpdatedAt)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 || all[0].Title != "Epochs 2" || all[0].Content.Elements[0].Text != "Toccata" {
		t.Errorf("list = %+v", all)
	}
}

func TestExerciseSaveValidates(t *testing.T) {
	s := openTestStore(t)
	repo := s.ExerciseRepo()
	ctx := context.Background()

	tests := []struct {
		name string
		ex   Exercise
	}{
		{"empty slug", Exercise{Title: "x", Content: testContent()}},
		{"bad slug", Exercise{Slug: "Not A Slug", Title: "x", Content: testContent()}},
		{"empty title", Exercise{Slug: "x", Content: testContent()}},
		{"malformed content", Exercise{Slug: "x", Title: "x", Content: content.Content{}}},
	}
	for _, tt := range tests {
		ex := tt.ex
		if err := repo.Save(ctx, &ex); err == nil {
			t.Errorf("%s: save succeeded", tt.name)
		}
	}
}

func TestExerciseListOrder(t *testing.T) {
	s := openTestStore(t)
	repo := s.ExerciseRepo()
	ctx := context.Background()

	for _, slug := range []string{"first", "second", "third"} {
		if err := repo.Save(ctx, &Exercise{Slug: slug, Title: slug, Content: testContent()}); err != nil {
			t.Fatalf("save %s: %v", slug, err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var slugs []string
	for _, ex := range all {
		slugs = append(slugs, ex.Slug)
	}
	if strings.Join(slugs, ",") != "third,second,first" {
		t.Errorf("order = %v", slugs)
	}
}

func TestExerciseNotFound(t *testing.T) {
	s := openTestStore(t)
	repo := s.ExerciseRepo()
	ctx := context.Background()

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get: err = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete: err = %v, want ErrNotFound", err)
	}

	if err := repo.Save(ctx, &Exercise{Slug: "x", Title: "x", Content: testContent()}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Delete(ctx, "x"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after delete: err = %v", err)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Epochs of Music", "epochs-of-music"},
		{"  Bach & Händel!  ", "bach-h-ndel"},
		{"BWV 565", "bwv-565"},
		{strings.Repeat("a", 70), strings.Repeat("a", 64)},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugifyWithoutASCIIFallsBack(t *testing.T) {
	ctx := context.Background()
	repo := openTestStore(t).ExerciseRepo()

	for _, title := range []string{"---", "Ноктюрн", "音階"} {
		slug := Slugify(title)
		if !slugPattern.MatchString(slug) || !strings.HasPrefix(slug, "exercise-") {
			t.Errorf("Slugify(%q) = %q, want a generated exercise- slug", title, slug)
			continue
		}
		if err := repo.Save(ctx, &Exercise{Slug: slug, Title: title, Content: testContent()}); err != nil {
			t.Errorf("save %q as %q: %v", title, slug, err)
		}
	}
}

func TestLLMRequestEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for i, purpose := range []string{"exercise-gen", "exercise-gen", "other"} {
		err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
			Provider:     "mock",
			Model:        "mock-model",
			Purpose:      purpose,
			InputTokens:  10 * (i + 1),
			OutputTokens: 5,
			LatencyMs:    42,
			Success:      i != 2,
			ErrorMessage: map[bool]string{true: "", false: "boom"}[i != 2],
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	all, err := repo.QueryLLMRequests(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d events, want 3", len(all))
	}
	if all[0].Sequence != 3 || all[0].Success || all[0].ErrorMessage != "boom" {
		t.Errorf("newest event = %+v", all[0])
	}
	if all[2].InputTokens != 10 || !all[2].Success {
		t.Errorf("oldest event = %+v", all[2])
	}

	limited, err := repo.QueryLLMRequests(ctx, QueryOpts{Limit: 1, Before: 3})
	if err != nil {
		t.Fatalf("query limited: %v", err)
	}
	if len(limited) != 1 || limited[0].Sequence != 2 {
		t.Errorf("limited = %+v", limited)
	}

	after, err := repo.QueryLLMRequests(ctx, QueryOpts{After: 1, From: time.Now().Add(-time.Hour)})
	if err != nil {
		t.Fatalf("query after: %v", err)
	}
	if len(after) != 2 {
		t.Errorf("after = %d events, want 2", len(after))
	}

	one, err := repo.GetLLMRequest(ctx, 2)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if one.Sequence != 2 || one.InputTokens != 20 || one.Purpose != "exercise-gen" {
		t.Errorf("get = %+v", one)
	}
	if _, err := repo.GetLLMRequest(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("get missing: err = %v, want ErrNotFound", err)
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()
	ctx := context.Background()

	sc, err := newSequenceCounter(db)
	if err != nil {
		t.Fatalf("new sequence counter: %v", err)
	}

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := sc.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Should be monotonically increasing starting from 1.
	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MUSICMAPPING_DB", filepath.Join(dir, "nested", "x.db"))
	p, err := DefaultDBPath()
	if err != nil || p != filepath.Join(dir, "nested", "x.db") {
		t.Errorf("DefaultDBPath() = %q, %v", p, err)
	}

	t.Setenv("MUSICMAPPING_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = DefaultDBPath()
	if err != nil || p != filepath.Join(dir, "musicmapping", "library.db") {
		t.Errorf("DefaultDBPath() = %q, %v", p, err)
	}
}

func TestMigrationCreatesLLMRequestIndexes(t *testing.T) {
	s := openTestStore(t)

	for _, name := range []string{"llmrequest_timestamp", "llmrequest_purpose", "llmrequest_success", "exercise_updated_at"} {
		var got string
		err := s.DB().QueryRow("SELECT name FROM sqlite_master WHERE type = 'index' AND name = ?", name).Scan(&got)
		if err != nil {
			t.Errorf("index %s: %v", name, err)
		}
	}
}

func TestLLMRequestFieldsMatchTable(t *testing.T) {
	columns := make(map[string]bool, len(llmRequestColumns))
	for _, c := range llmRequestColumns {
		columns[c.Name] = true
	}
	for _, f := range llmRequestFields {
		if !columns[f] {
			t.Errorf("selected field %q is not a column of %s", f, llmRequestsTable)
		}
	}
}
