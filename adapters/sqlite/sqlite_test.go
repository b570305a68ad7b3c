package sqlite_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/formworks/formworks/adapters/sqlite"
	"github.com/formworks/formworks/domain/field"
	"github.com/formworks/formworks/domain/form"
	"github.com/formworks/formworks/domain/submission"
	"github.com/formworks/formworks/ports"
)

func setupTestDB(t *testing.T) (*sqlite.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp("", "formworks-test-*.db")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	path := f.Name()
	f.Close()

	db, err := sqlite.Open(path)
	if err != nil {
		os.Remove(path)
		t.Fatalf("open database: %v", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		os.Remove(path)
		t.Fatalf("migrate: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.Remove(path)
	}

	return db, cleanup
}

func TestMigrate_Idempotent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	if err := db.Migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func testForm(id string, version int, active bool) form.Form {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return form.Form{
		ID:          id,
		Title:       "Contact Form",
		Description: "Get in touch",
		Version:     version,
		IsActive:    active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestFormStore_CreateAndGet(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewFormStore(db)
	ctx := context.Background()

	f := testForm("form-1", 1, true)
	if err := store.Create(ctx, f); err != nil {
		t.Fatalf("create form: %v", err)
	}

	got, err := store.Get(ctx, "form-1")
	if err != nil {
		t.Fatalf("get form: %v", err)
	}
	if got.Title != f.Title || got.Version != 1 || !got.IsActive {
		t.Errorf("got %+v, want %+v", got, f)
	}
	if got.PreviousVersion != "" {
		t.Errorf("lineage root should have no previous version, got %q", got.PreviousVersion)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFormStore_Update(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewFormStore(db)
	ctx := context.Background()

	f := testForm("form-1", 1, true)
	if err := store.Create(ctx, f); err != nil {
		t.Fatalf("create form: %v", err)
	}

	f.Title = "Renamed"
	f.Description = ""
	f.UpdatedAt = f.UpdatedAt.Add(time.Hour)
	if err := store.Update(ctx, f); err != nil {
		t.Fatalf("update form: %v", err)
	}

	got, err := store.Get(ctx, "form-1")
	if err != nil {
		t.Fatalf("get form: %v", err)
	}
	if got.Title != "Renamed" || got.Description != "" {
		t.Errorf("update not applied: %+v", got)
	}

	missing := testForm("missing", 1, true)
	if err := store.Update(ctx, missing); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func testField(id, formID, name string, order int) field.Field {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return field.Field{
		ID:        id,
		FormID:    formID,
		Label:     "Field " + name,
		Type:      field.TypeText,
		Name:      name,
		Order:     order,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestFieldStore_DuplicateName(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	forms := sqlite.NewFormStore(db)
	fields := sqlite.NewFieldStore(db)
	ctx := context.Background()

	if err := forms.Create(ctx, testForm("form-1", 1, true)); err != nil {
		t.Fatalf("create form: %v", err)
	}
	if err := fields.Create(ctx, testField("fld-1", "form-1", "email", 0)); err != nil {
		t.Fatalf("create field: %v", err)
	}

	err := fields.Create(ctx, testField("fld-2", "form-1", "email", 1))
	if !errors.Is(err, ports.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	// Same name on a different form is fine.
	if err := forms.Create(ctx, testForm("form-2", 1, true)); err != nil {
		t.Fatalf("create form: %v", err)
	}
	if err := fields.Create(ctx, testField("fld-3", "form-2", "email", 0)); err != nil {
		t.Errorf("same name on another form should not collide: %v", err)
	}
}

func TestFieldStore_RulesRoundTrip(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	forms := sqlite.NewFormStore(db)
	fields := sqlite.NewFieldStore(db)
	ctx := context.Background()

	if err := forms.Create(ctx, testForm("form-1", 1, true)); err != nil {
		t.Fatalf("create form: %v", err)
	}

	minVal := 18.0
	maxLen := 80
	f := testField("fld-1", "form-1", "age", 0)
	f.Type = field.TypeNumber
	f.Required = true
	f.Rules = &field.Rules{Min: &minVal, MaxLength: &maxLen, Pattern: `^\d+$`}
	if err := fields.Create(ctx, f); err != nil {
		t.Fatalf("create field: %v", err)
	}

	choice := testField("fld-2", "form-1", "color", 1)
	choice.Type = field.TypeSelect
	choice.Options = []string{"red", "green", "blue"}
	if err := fields.Create(ctx, choice); err != nil {
		t.Fatalf("create select field: %v", err)
	}

	got, err := fields.Get(ctx, "form-1", "fld-1")
	if err != nil {
		t.Fatalf("get field: %v", err)
	}
	if got.Rules == nil || got.Rules.Min == nil || *got.Rules.Min != 18 {
		t.Errorf("rules min lost in round trip: %+v", got.Rules)
	}
	if got.Rules.MaxLength == nil || *got.Rules.MaxLength != 80 || got.Rules.Pattern != `^\d+$` {
		t.Errorf("rules lost in round trip: %+v", got.Rules)
	}
	if got.Rules.Max != nil || got.Rules.MinLength != nil {
		t.Errorf("unset bounds should stay nil: %+v", got.Rules)
	}

	gotChoice, err := fields.Get(ctx, "form-1", "fld-2")
	if err != nil {
		t.Fatalf("get select field: %v", err)
	}
	if len(gotChoice.Options) != 3 || gotChoice.Options[0] != "red" {
		t.Errorf("options lost in round trip: %v", gotChoice.Options)
	}
	if gotChoice.Rules != nil {
		t.Errorf("absent rules should stay nil, got %+v", gotChoice.Rules)
	}
}

func TestFieldStore_ListByForm_Order(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	forms := sqlite.NewFormStore(db)
	fields := sqlite.NewFieldStore(db)
	ctx := context.Background()

	if err := forms.Create(ctx, testForm("form-1", 1, true)); err != nil {
		t.Fatalf("create form: %v", err)
	}
	for i, name := range []string{"third", "first", "second"} {
		order := []int{2, 0, 1}[i]
		if err := fields.Create(ctx, testField("fld-"+name, "form-1", name, order)); err != nil {
			t.Fatalf("create field %s: %v", name, err)
		}
	}

	got, err := fields.ListByForm(ctx, "form-1")
	if err != nil {
		t.Fatalf("list fields: %v", err)
	}
	want := []string{"first", "second", "third"}
	if len(got) != len(want) {
		t.Fatalf("got %d fields, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("position %d: got %q, want %q", i, got[i].Name, name)
		}
	}
}

func TestFieldStore_UpdateOrderAndDelete(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	forms := sqlite.NewFormStore(db)
	fields := sqlite.NewFieldStore(db)
	ctx := context.Background()

	if err := forms.Create(ctx, testForm("form-1", 1, true)); err != nil {
		t.Fatalf("create form: %v", err)
	}
	if err := fields.Create(ctx, testField("fld-1", "form-1", "email", 0)); err != nil {
		t.Fatalf("create field: %v", err)
	}

	if err := fields.UpdateOrder(ctx, "form-1", "fld-1", 5); err != nil {
		t.Fatalf("update order: %v", err)
	}
	got, err := fields.Get(ctx, "form-1", "fld-1")
	if err != nil {
		t.Fatalf("get field: %v", err)
	}
	if got.Order != 5 {
		t.Errorf("order not updated: got %d", got.Order)
	}

	if err := fields.UpdateOrder(ctx, "other-form", "fld-1", 1); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("wrong form scope should be ErrNotFound, got %v", err)
	}

	if err := fields.Delete(ctx, "form-1", "fld-1"); err != nil {
		t.Fatalf("delete field: %v", err)
	}
	if err := fields.Delete(ctx, "form-1", "fld-1"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("double delete should be ErrNotFound, got %v", err)
	}
}

func TestFormStore_CreateVersion_SwapsActive(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	forms := sqlite.NewFormStore(db)
	fields := sqlite.NewFieldStore(db)
	ctx := context.Background()

	if err := forms.Create(ctx, testForm("form-1", 1, true)); err != nil {
		t.Fatalf("create form: %v", err)
	}
	if err := fields.Create(ctx, testField("fld-1", "form-1", "email", 0)); err != nil {
		t.Fatalf("create field: %v", err)
	}

	next := testForm("form-2", 2, true)
	next.PreviousVersion = "form-1"
	next.CreatedAt = next.CreatedAt.Add(time.Hour)
	next.UpdatedAt = next.CreatedAt
	copied := testField("fld-2", "form-2", "email", 0)

	if err := forms.CreateVersion(ctx, next, []field.Field{copied}, "form-1"); err != nil {
		t.Fatalf("create version: %v", err)
	}

	src, err := forms.Get(ctx, "form-1")
	if err != nil {
		t.Fatalf("get source: %v", err)
	}
	if src.IsActive {
		t.Error("source should be deactivated")
	}

	got, err := forms.GetWithFields(ctx, "form-2")
	if err != nil {
		t.Fatalf("get successor: %v", err)
	}
	if !got.IsActive || got.Version != 2 || got.PreviousVersion != "form-1" {
		t.Errorf("successor wrong: %+v", got)
	}
	if len(got.Fields) != 1 || got.Fields[0].Name != "email" {
		t.Errorf("fields not copied: %+v", got.Fields)
	}

	// Only the successor is visible through the active lookups.
	if _, err := forms.GetActiveWithFields(ctx, "form-1"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("inactive form should be ErrNotFound, got %v", err)
	}
	active, err := forms.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].ID != "form-2" {
		t.Errorf("exactly the successor should be active, got %+v", active)
	}
}

func TestFormStore_CreateVersion_MissingSource(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	forms := sqlite.NewFormStore(db)
	ctx := context.Background()

	next := testForm("form-2", 2, true)
	err := forms.CreateVersion(ctx, next, nil, "missing")
	if !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	// The failed transaction must not leave the successor behind.
	if _, err := forms.Get(ctx, "form-2"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("successor should not exist after rollback, got %v", err)
	}
}

func TestFormStore_Delete_RemovesFields(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	forms := sqlite.NewFormStore(db)
	fields := sqlite.NewFieldStore(db)
	ctx := context.Background()

	if err := forms.Create(ctx, testForm("form-1", 1, true)); err != nil {
		t.Fatalf("create form: %v", err)
	}
	if err := fields.Create(ctx, testField("fld-1", "form-1", "email", 0)); err != nil {
		t.Fatalf("create field: %v", err)
	}

	if err := forms.Delete(ctx, "form-1"); err != nil {
		t.Fatalf("delete form: %v", err)
	}
	if _, err := forms.Get(ctx, "form-1"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("form should be gone, got %v", err)
	}
	if _, err := fields.Get(ctx, "form-1", "fld-1"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("fields should be gone, got %v", err)
	}

	if err := forms.Delete(ctx, "form-1"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("double delete should be ErrNotFound, got %v", err)
	}
}

func TestSubmissionStore_PaginationAndOrder(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewSubmissionStore(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		sub := submission.Submission{
			ID:          "sub-" + string(rune('a'+i)),
			FormID:      "form-1",
			FormVersion: 1,
			Answers:     []submission.Answer{{FieldName: "name", Value: "Visitor"}},
			SubmittedAt: base.Add(time.Duration(i) * time.Minute),
			IP:          "203.0.113.7",
			UserAgent:   "test-agent",
		}
		if err := store.Create(ctx, sub); err != nil {
			t.Fatalf("create submission %d: %v", i, err)
		}
	}

	count, err := store.CountByForm(ctx, "form-1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 5 {
		t.Errorf("count = %d, want 5", count)
	}

	page, err := store.ListByForm(ctx, "form-1", 2, 0)
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("page size = %d, want 2", len(page))
	}
	if page[0].ID != "sub-e" || page[1].ID != "sub-d" {
		t.Errorf("newest first expected, got %s, %s", page[0].ID, page[1].ID)
	}

	last, err := store.ListByForm(ctx, "form-1", 2, 4)
	if err != nil {
		t.Fatalf("list last page: %v", err)
	}
	if len(last) != 1 || last[0].ID != "sub-a" {
		t.Errorf("last page wrong: %+v", last)
	}

	all, err := store.ListAllByForm(ctx, "form-1")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("all = %d, want 5", len(all))
	}
	if all[0].Answers[0].FieldName != "name" || all[0].Answers[0].Value != "Visitor" {
		t.Errorf("answers lost in round trip: %+v", all[0].Answers)
	}

	if err := store.DeleteByForm(ctx, "form-1"); err != nil {
		t.Fatalf("delete by form: %v", err)
	}
	count, err = store.CountByForm(ctx, "form-1")
	if err != nil {
		t.Fatalf("count after delete: %v", err)
	}
	if count != 0 {
		t.Errorf("count after delete = %d, want 0", count)
	}
}

func TestSubmissionStore_AnswerOrderPreserved(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewSubmissionStore(db)
	ctx := context.Background()

	sub := submission.Submission{
		ID:          "sub-1",
		FormID:      "form-1",
		FormVersion: 3,
		Answers: []submission.Answer{
			{FieldName: "zeta", Value: "last in alphabet, first submitted"},
			{FieldName: "alpha", Value: float64(2)},
			{FieldName: "colors", Value: []any{"red", "blue"}},
		},
		SubmittedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := store.Create(ctx, sub); err != nil {
		t.Fatalf("create submission: %v", err)
	}

	all, err := store.ListAllByForm(ctx, "form-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("got %d submissions, want 1", len(all))
	}
	got := all[0]
	if got.FormVersion != 3 {
		t.Errorf("form version = %d, want 3", got.FormVersion)
	}
	names := []string{"zeta", "alpha", "colors"}
	for i, want := range names {
		if got.Answers[i].FieldName != want {
			t.Errorf("answer %d: got %q, want %q", i, got.Answers[i].FieldName, want)
		}
	}
}

func TestAdminStore_CreateAndGet(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewAdminStore(db)
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	a := ports.Admin{
		ID:           "admin-1",
		Username:     "admin",
		PasswordHash: []byte("$2a$10$fakehash"),
		Email:        "admin@example.com",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := store.Create(ctx, a); err != nil {
		t.Fatalf("create admin: %v", err)
	}

	if err := store.Create(ctx, ports.Admin{ID: "admin-2", Username: "admin", PasswordHash: []byte("x"), CreatedAt: now, UpdatedAt: now}); !errors.Is(err, ports.ErrDuplicate) {
		t.Errorf("duplicate username should be ErrDuplicate, got %v", err)
	}

	got, err := store.GetByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("get admin: %v", err)
	}
	if got.ID != "admin-1" || string(got.PasswordHash) != "$2a$10$fakehash" || got.Email != "admin@example.com" {
		t.Errorf("got %+v", got)
	}

	if _, err := store.GetByUsername(ctx, "nobody"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Username != "admin" {
		t.Errorf("list = %+v", list)
	}
}
