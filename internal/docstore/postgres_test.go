package docstore

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPostgresStoreLoadMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT body FROM documents WHERE name = $1`)).
		WithArgs("media").
		WillReturnError(sql.ErrNoRows)

	s := NewPostgresStore(db)
	doc := testDoc{Items: []string{}}
	if err := s.Load(context.Background(), "media", &doc); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Items == nil || len(doc.Items) != 0 {
		t.Fatalf("expected default document to be kept, got %+v", doc)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresStoreLoadDecodes(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT body FROM documents WHERE name = $1`)).
		WithArgs("notes").
		WillReturnRows(sqlmock.NewRows([]string{"body"}).AddRow([]byte(`{"items":["x","y"]}`)))

	s := NewPostgresStore(db)
	var doc testDoc
	if err := s.Load(context.Background(), "notes", &doc); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.Items) != 2 || doc.Items[0] != "x" || doc.Items[1] != "y" {
		t.Fatalf("unexpected document %+v", doc)
	}
}

func TestPostgresStoreLoadQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	boom := errors.New("connection reset")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT body FROM documents WHERE name = $1`)).
		WithArgs("users").
		WillReturnError(boom)

	s := NewPostgresStore(db)
	var doc testDoc
	if err := s.Load(context.Background(), "users", &doc); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped query error, got %v", err)
	}
}

func TestPostgresStoreSaveUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO documents (name, body, updated_at)`)).
		WithArgs("moods", `{"items":["happy"]}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s := NewPostgresStore(db)
	if err := s.Save(context.Background(), "moods", testDoc{Items: []string{"happy"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresStoreRejectsBadName(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := NewPostgresStore(db)
	if err := s.Save(context.Background(), "users;drop", testDoc{}); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}
