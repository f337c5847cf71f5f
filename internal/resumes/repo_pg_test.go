package resumes

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newPGRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreateAllocatesCounterInTransaction(t *testing.T) {
	repo, mock := newPGRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO resume_counters").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"last_resume_id"}).AddRow(4))
	mock.ExpectExec("INSERT INTO resumes").
		WithArgs(sqlmock.AnyArg(), "user-1", 4, "Backend engineer", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	res, err := repo.Create(context.Background(), "user-1", "Backend engineer")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.ID != 4 {
		t.Fatalf("expected counter-assigned id 4, got %d", res.ID)
	}
	if res.PK == "" {
		t.Fatalf("expected a generated pk")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateRollsBackOnInsertFailure(t *testing.T) {
	repo, mock := newPGRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO resume_counters").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"last_resume_id"}).AddRow(1))
	mock.ExpectExec("INSERT INTO resumes").
		WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	if _, err := repo.Create(context.Background(), "user-1", "t"); err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoReplaceSubcollectionReturnsNewRevision(t *testing.T) {
	repo, mock := newPGRepo(t)

	items := []Item{{"id": 1, "uid": "uid-a", "title": "Engineer"}}
	payload, _ := json.Marshal(items)

	mock.ExpectQuery("UPDATE resumes").
		WithArgs(payload, sqlmock.AnyArg(), "user-1", 2).
		WillReturnRows(sqlmock.NewRows([]string{"revision"}).AddRow(int64(3)))

	revision, err := repo.ReplaceSubcollection(context.Background(), "user-1", 2, KindExperience, items, UnconditionalWrite)
	if err != nil {
		t.Fatalf("ReplaceSubcollection: %v", err)
	}
	if revision != 3 {
		t.Fatalf("expected revision 3, got %d", revision)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoReplaceSubcollectionConditionalConflict(t *testing.T) {
	repo, mock := newPGRepo(t)

	items := []Item{{"id": 1, "name": "Go"}}
	payload, _ := json.Marshal(items)

	// The conditional update matches no rows, then the existence probe
	// confirms the aggregate is present, so the miss is a conflict.
	mock.ExpectQuery("UPDATE resumes").
		WithArgs(payload, sqlmock.AnyArg(), "user-1", 2, int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"revision"}))
	mock.ExpectQuery("SELECT 1 FROM resumes").
		WithArgs("user-1", 2).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	_, err := repo.ReplaceSubcollection(context.Background(), "user-1", 2, KindSkills, items, 1)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoReplaceSubcollectionMissingResume(t *testing.T) {
	repo, mock := newPGRepo(t)

	items := []Item{{"id": 1, "name": "Go"}}
	payload, _ := json.Marshal(items)

	mock.ExpectQuery("UPDATE resumes").
		WithArgs(payload, sqlmock.AnyArg(), "user-1", 9, int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"revision"}))
	mock.ExpectQuery("SELECT 1 FROM resumes").
		WithArgs("user-1", 9).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	_, err := repo.ReplaceSubcollection(context.Background(), "user-1", 9, KindSkills, items, 1)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDDecodesAggregate(t *testing.T) {
	repo, mock := newPGRepo(t)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"pk", "title",
		"personal_details", "summary", "experience", "education", "skills", "projects", "certifications",
		"revisions", "ats_analysis", "created_at", "updated_at",
	}).AddRow(
		"pk-1", "Backend engineer",
		[]byte(`[{"id":1,"uid":"uid-a","fullName":"Ada Lovelace"}]`),
		[]byte(`[]`), []byte(`[{"id":1,"title":"Engineer"}]`), []byte(`[]`), []byte(`[]`), []byte(`[]`), []byte(`[]`),
		[]byte(`{"experience":2,"personalDetails":1}`),
		nil,
		now, now,
	)

	mock.ExpectQuery("SELECT pk, title").
		WithArgs("user-1", 3).
		WillReturnRows(rows)

	res, err := repo.GetByID(context.Background(), "user-1", 3)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if res.ID != 3 || res.UserID != "user-1" {
		t.Fatalf("unexpected identity: %+v", res)
	}
	if len(res.Sections[KindExperience]) != 1 || len(res.Sections[KindSummary]) != 0 {
		t.Fatalf("sections decoded incorrectly: %v", res.Sections)
	}
	if res.Revisions[KindExperience] != 2 {
		t.Fatalf("revisions decoded incorrectly: %v", res.Revisions)
	}
	if res.ATSAnalysis != nil {
		t.Fatalf("expected no ats snapshot")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newPGRepo(t)

	mock.ExpectQuery("SELECT pk, title").
		WithArgs("user-1", 99).
		WillReturnRows(sqlmock.NewRows([]string{"pk"}))

	_, err := repo.GetByID(context.Background(), "user-1", 99)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoSetATSAnalysisMissingResume(t *testing.T) {
	repo, mock := newPGRepo(t)

	mock.ExpectExec("UPDATE resumes").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "user-1", 7).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetATSAnalysis(context.Background(), "user-1", 7, ATSSnapshot{Score: 80})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
