package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PGRepo implements Repo using Postgres. Each sub-collection lives in its own
// JSONB column so a write to one never reads or rewrites a sibling.
type PGRepo struct {
	DB *sql.DB
}

// kindColumns whitelists the sub-collection column per kind; it is the only
// source of column names interpolated into queries.
var kindColumns = map[Kind]string{
	KindPersonalDetails: "personal_details",
	KindSummary:         "summary",
	KindExperience:      "experience",
	KindEducation:       "education",
	KindSkills:          "skills",
	KindProjects:        "projects",
	KindCertifications:  "certifications",
}

// Create allocates the next sequential resume id for the owner inside one
// transaction with the aggregate insert, so ids stay monotonic and are never
// reused after deletions.
func (r *PGRepo) Create(ctx context.Context, userID, title string) (Resume, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return Resume{}, err
	}
	defer tx.Rollback()

	const counterQuery = `
INSERT INTO resume_counters (user_id, last_resume_id)
VALUES ($1, 1)
ON CONFLICT (user_id) DO UPDATE SET last_resume_id = resume_counters.last_resume_id + 1
RETURNING last_resume_id`

	var resumeID int
	if err := tx.QueryRowContext(ctx, counterQuery, userID).Scan(&resumeID); err != nil {
		return Resume{}, fmt.Errorf("allocate resume id: %w", err)
	}

	const insertQuery = `
INSERT INTO resumes (pk, user_id, resume_id, title, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)`

	now := time.Now().UTC()
	pk := uuid.NewString()
	if _, err := tx.ExecContext(ctx, insertQuery, pk, userID, resumeID, title, now); err != nil {
		return Resume{}, fmt.Errorf("insert resume: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Resume{}, err
	}

	return Resume{
		PK:        pk,
		UserID:    userID,
		ID:        resumeID,
		Title:     title,
		Sections:  emptySections(),
		Revisions: make(map[Kind]int64),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// GetByID returns one aggregate for a user.
func (r *PGRepo) GetByID(ctx context.Context, userID string, resumeID int) (Resume, error) {
	const query = `
SELECT pk, title, personal_details, summary, experience, education, skills, projects, certifications, revisions, ats_analysis, created_at, updated_at
FROM resumes
WHERE user_id = $1 AND resume_id = $2`

	row := r.DB.QueryRowContext(ctx, query, userID, resumeID)
	res, err := scanResume(row, userID, resumeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	return res, nil
}

// ListByUser returns all aggregates for a user ordered by resume id.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Resume, error) {
	const query = `
SELECT pk, resume_id, title, personal_details, summary, experience, education, skills, projects, certifications, revisions, ats_analysis, created_at, updated_at
FROM resumes
WHERE user_id = $1
ORDER BY resume_id`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Resume
	for rows.Next() {
		var (
			res      Resume
			sections [7][]byte
			revRaw   []byte
			atsRaw   []byte
		)
		res.UserID = userID
		if err := rows.Scan(
			&res.PK,
			&res.ID,
			&res.Title,
			&sections[0], &sections[1], &sections[2], &sections[3], &sections[4], &sections[5], &sections[6],
			&revRaw,
			&atsRaw,
			&res.CreatedAt,
			&res.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if err := decodeAggregate(&res, sections, revRaw, atsRaw); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// ReplaceSubcollection swaps one sub-collection wholesale and bumps its
// revision atomically. A conditional write whose expected revision no longer
// matches storage fails with ErrConflict.
func (r *PGRepo) ReplaceSubcollection(ctx context.Context, userID string, resumeID int, kind Kind, items []Item, expectedRevision int64) (int64, error) {
	col, ok := kindColumns[kind]
	if !ok {
		return 0, ErrInvalidInput
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return 0, fmt.Errorf("encode %s items: %w", kind, err)
	}

	query := fmt.Sprintf(`
UPDATE resumes
SET %[1]s = $1::jsonb,
    revisions = jsonb_set(revisions, '{%[2]s}', to_jsonb(COALESCE((revisions->>'%[2]s')::bigint, 0) + 1)),
    updated_at = $2
WHERE user_id = $3 AND resume_id = $4`, col, kind)
	args := []any{payload, time.Now().UTC(), userID, resumeID}

	if expectedRevision != UnconditionalWrite {
		query += fmt.Sprintf(" AND COALESCE((revisions->>'%s')::bigint, 0) = $5", kind)
		args = append(args, expectedRevision)
	}
	query += fmt.Sprintf("\nRETURNING (revisions->>'%s')::bigint", kind)

	var newRevision int64
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&newRevision); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, r.classifyMiss(ctx, userID, resumeID, expectedRevision)
		}
		return 0, err
	}
	return newRevision, nil
}

// classifyMiss distinguishes a missing aggregate from a revision mismatch
// after a conditional update touched no rows.
func (r *PGRepo) classifyMiss(ctx context.Context, userID string, resumeID int, expectedRevision int64) error {
	if expectedRevision == UnconditionalWrite {
		return ErrNotFound
	}
	const query = `SELECT 1 FROM resumes WHERE user_id = $1 AND resume_id = $2`
	var one int
	err := r.DB.QueryRowContext(ctx, query, userID, resumeID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrConflict
}

// SetATSAnalysis records the latest analysis snapshot on the aggregate.
func (r *PGRepo) SetATSAnalysis(ctx context.Context, userID string, resumeID int, snap ATSSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode ats snapshot: %w", err)
	}

	const query = `
UPDATE resumes
SET ats_analysis = $1::jsonb, updated_at = $2
WHERE user_id = $3 AND resume_id = $4`

	res, err := r.DB.ExecContext(ctx, query, payload, time.Now().UTC(), userID, resumeID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the aggregate. Deleting an absent resume is not an error.
func (r *PGRepo) Delete(ctx context.Context, userID string, resumeID int) error {
	const query = `DELETE FROM resumes WHERE user_id = $1 AND resume_id = $2`
	_, err := r.DB.ExecContext(ctx, query, userID, resumeID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner, userID string, resumeID int) (Resume, error) {
	var (
		res      Resume
		sections [7][]byte
		revRaw   []byte
		atsRaw   []byte
	)
	res.UserID = userID
	res.ID = resumeID
	if err := row.Scan(
		&res.PK,
		&res.Title,
		&sections[0], &sections[1], &sections[2], &sections[3], &sections[4], &sections[5], &sections[6],
		&revRaw,
		&atsRaw,
		&res.CreatedAt,
		&res.UpdatedAt,
	); err != nil {
		return Resume{}, err
	}
	if err := decodeAggregate(&res, sections, revRaw, atsRaw); err != nil {
		return Resume{}, err
	}
	return res, nil
}

func decodeAggregate(res *Resume, sections [7][]byte, revRaw, atsRaw []byte) error {
	res.Sections = make(map[Kind][]Item, len(Kinds))
	for i, kind := range Kinds {
		items := []Item{}
		if len(sections[i]) > 0 {
			if err := json.Unmarshal(sections[i], &items); err != nil {
				return fmt.Errorf("decode %s: %w", kind, err)
			}
		}
		res.Sections[kind] = items
	}

	res.Revisions = make(map[Kind]int64)
	if len(revRaw) > 0 {
		if err := json.Unmarshal(revRaw, &res.Revisions); err != nil {
			return fmt.Errorf("decode revisions: %w", err)
		}
	}

	if len(atsRaw) > 0 {
		var snap ATSSnapshot
		if err := json.Unmarshal(atsRaw, &snap); err != nil {
			return fmt.Errorf("decode ats snapshot: %w", err)
		}
		res.ATSAnalysis = &snap
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
