package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/DanWarner00/ai-job-search-platform/internal/model"
)

// ErrDuplicate is returned by InsertPosting when a posting with the same
// (source, external_id) already exists. The existing row is never touched.
var ErrDuplicate = errors.New("posting already exists")

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

// SQLiteStore persists postings, applications, and interviews.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS postings (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	source            TEXT NOT NULL,
	external_id       TEXT NOT NULL,
	url               TEXT NOT NULL,
	title             TEXT NOT NULL,
	company           TEXT,
	location          TEXT,
	salary_min        INTEGER,
	salary_max        INTEGER,
	description       TEXT,
	requirements      TEXT,
	posted_date       DATETIME,
	scraped_date      DATETIME NOT NULL,
	match_score       INTEGER,
	match_explanation TEXT,
	UNIQUE(source, external_id)
);

CREATE TABLE IF NOT EXISTS applications (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	posting_id       INTEGER NOT NULL UNIQUE REFERENCES postings(id) ON DELETE CASCADE,
	status           TEXT NOT NULL DEFAULT 'not_applied',
	applied_date     DATETIME,
	rejection_reason TEXT,
	notes            TEXT,
	cover_letter     TEXT,
	created_at       DATETIME NOT NULL,
	updated_at       DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS interviews (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	application_id   INTEGER NOT NULL REFERENCES applications(id) ON DELETE CASCADE,
	scheduled_date   DATETIME NOT NULL,
	interview_type   TEXT,
	interviewer_name TEXT,
	notes            TEXT,
	outcome          TEXT,
	created_at       DATETIME NOT NULL
)`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the schema exists. The UNIQUE(source, external_id) index is the dedup
// guarantee; it is enforced here, not just in application logic.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// InsertPosting stores a new posting and fills in its row ID. Each call is
// its own commit, so a run killed mid-way keeps everything inserted so far.
// Returns ErrDuplicate when the (source, external_id) key already exists;
// first write wins and the stored row is left untouched.
func (s *SQLiteStore) InsertPosting(p *model.Posting) error {
	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO postings
		(source, external_id, url, title, company, location, salary_min, salary_max,
		 description, requirements, posted_date, scraped_date, match_score, match_explanation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Source, p.ExternalID, p.URL, p.Title, p.Company, p.Location,
		nullInt(p.SalaryMin), nullInt(p.SalaryMax),
		p.Description, p.Requirements, nullTime(p.PostedDate), p.ScrapedDate,
		nullInt(p.MatchScore), nullString(p.MatchExplanation),
	)
	if err != nil {
		return fmt.Errorf("inserting posting %s/%s: %w", p.Source, p.ExternalID, err)
	}

	// INSERT OR IGNORE reports zero affected rows when the unique index
	// rejected the row, which is the only way this insert can be a no-op.
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("inserting posting %s/%s: %w", p.Source, p.ExternalID, err)
	}
	if n == 0 {
		return ErrDuplicate
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("inserting posting %s/%s: %w", p.Source, p.ExternalID, err)
	}
	p.ID = id
	return nil
}

// HasPosting reports whether a posting with the given dedup key exists.
func (s *SQLiteStore) HasPosting(source, externalID string) (bool, error) {
	var exists int
	err := s.db.QueryRow(
		"SELECT 1 FROM postings WHERE source = ? AND external_id = ?",
		source, externalID,
	).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking posting %s/%s: %w", source, externalID, err)
	}
	return true, nil
}

// GetPosting returns the posting with the given row ID.
func (s *SQLiteStore) GetPosting(id int64) (model.Posting, error) {
	row := s.db.QueryRow(postingSelect+" WHERE id = ?", id)
	p, err := scanPosting(row)
	if err == sql.ErrNoRows {
		return model.Posting{}, ErrNotFound
	}
	if err != nil {
		return model.Posting{}, fmt.Errorf("getting posting %d: %w", id, err)
	}
	return p, nil
}

// SetMatchScore records a score (and optional explanation) on one posting.
// Committed immediately so an interrupted scoring sweep keeps its progress.
func (s *SQLiteStore) SetMatchScore(id int64, score int, explanation *string) error {
	_, err := s.db.Exec(
		"UPDATE postings SET match_score = ?, match_explanation = ? WHERE id = ?",
		score, nullString(explanation), id,
	)
	if err != nil {
		return fmt.Errorf("setting match score for posting %d: %w", id, err)
	}
	return nil
}

// UnscoredPostings returns every posting whose score is absent or equal to
// the placeholder with no explanation. A genuine score that happens to
// equal the placeholder keeps its explanation and is not picked up.
func (s *SQLiteStore) UnscoredPostings(placeholder int) ([]model.Posting, error) {
	rows, err := s.db.Query(
		postingSelect+` WHERE match_score IS NULL
			OR (match_score = ? AND match_explanation IS NULL)
			ORDER BY id`,
		placeholder,
	)
	if err != nil {
		return nil, fmt.Errorf("listing unscored postings: %w", err)
	}
	defer rows.Close()
	return collectPostings(rows)
}

// PostingsWithoutApplication returns the highest-scoring postings that have
// no application yet, for the notification digest.
func (s *SQLiteStore) PostingsWithoutApplication(limit int) ([]model.Posting, error) {
	rows, err := s.db.Query(
		postingSelect+` WHERE id NOT IN (SELECT posting_id FROM applications)
			ORDER BY match_score DESC, posted_date DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing postings without application: %w", err)
	}
	defer rows.Close()
	return collectPostings(rows)
}

// DeletePosting removes a posting. The application and its interviews
// cascade via foreign keys.
func (s *SQLiteStore) DeletePosting(id int64) error {
	_, err := s.db.Exec("DELETE FROM postings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting posting %d: %w", id, err)
	}
	return nil
}

// GetApplicationByPosting returns the application for a posting, or
// ErrNotFound when none has been created yet.
func (s *SQLiteStore) GetApplicationByPosting(postingID int64) (model.Application, error) {
	row := s.db.QueryRow(
		`SELECT id, posting_id, status, applied_date, rejection_reason, notes, cover_letter, created_at, updated_at
		 FROM applications WHERE posting_id = ?`,
		postingID,
	)

	var (
		app     model.Application
		status  string
		applied sql.NullTime
		reason  sql.NullString
		notes   sql.NullString
		letter  sql.NullString
	)
	err := row.Scan(&app.ID, &app.PostingID, &status, &applied, &reason, &notes, &letter, &app.CreatedAt, &app.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Application{}, ErrNotFound
	}
	if err != nil {
		return model.Application{}, fmt.Errorf("getting application for posting %d: %w", postingID, err)
	}

	app.Status = model.Status(status)
	if applied.Valid {
		t := applied.Time
		app.AppliedDate = &t
	}
	app.RejectionReason = reason.String
	app.Notes = notes.String
	app.CoverLetter = letter.String
	return app, nil
}

// CreateApplication stores a new application and fills in its row ID.
func (s *SQLiteStore) CreateApplication(app *model.Application) error {
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now

	res, err := s.db.Exec(
		`INSERT INTO applications (posting_id, status, applied_date, rejection_reason, notes, cover_letter, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		app.PostingID, string(app.Status), nullTime(app.AppliedDate),
		app.RejectionReason, app.Notes, app.CoverLetter, app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating application for posting %d: %w", app.PostingID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("creating application for posting %d: %w", app.PostingID, err)
	}
	app.ID = id
	return nil
}

// UpdateApplication persists the mutable fields of an existing application.
func (s *SQLiteStore) UpdateApplication(app model.Application) error {
	_, err := s.db.Exec(
		`UPDATE applications SET status = ?, applied_date = ?, rejection_reason = ?, notes = ?, cover_letter = ?, updated_at = ?
		 WHERE id = ?`,
		string(app.Status), nullTime(app.AppliedDate), app.RejectionReason,
		app.Notes, app.CoverLetter, time.Now().UTC(), app.ID,
	)
	if err != nil {
		return fmt.Errorf("updating application %d: %w", app.ID, err)
	}
	return nil
}

// InsertInterview stores a new interview and fills in its row ID.
func (s *SQLiteStore) InsertInterview(iv *model.Interview) error {
	iv.CreatedAt = time.Now().UTC()

	res, err := s.db.Exec(
		`INSERT INTO interviews (application_id, scheduled_date, interview_type, interviewer_name, notes, outcome, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		iv.ApplicationID, iv.ScheduledDate, iv.Type, iv.Interviewer, iv.Notes, iv.Outcome, iv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting interview for application %d: %w", iv.ApplicationID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("inserting interview for application %d: %w", iv.ApplicationID, err)
	}
	iv.ID = id
	return nil
}

// ListInterviews returns the interviews for one application, oldest first.
func (s *SQLiteStore) ListInterviews(applicationID int64) ([]model.Interview, error) {
	rows, err := s.db.Query(
		`SELECT id, application_id, scheduled_date, interview_type, interviewer_name, notes, outcome, created_at
		 FROM interviews WHERE application_id = ? ORDER BY scheduled_date`,
		applicationID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing interviews for application %d: %w", applicationID, err)
	}
	defer rows.Close()

	var interviews []model.Interview
	for rows.Next() {
		var (
			iv          model.Interview
			itype       sql.NullString
			interviewer sql.NullString
			notes       sql.NullString
			outcome     sql.NullString
		)
		if err := rows.Scan(&iv.ID, &iv.ApplicationID, &iv.ScheduledDate, &itype, &interviewer, &notes, &outcome, &iv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning interview: %w", err)
		}
		iv.Type = itype.String
		iv.Interviewer = interviewer.String
		iv.Notes = notes.String
		iv.Outcome = outcome.String
		interviews = append(interviews, iv)
	}
	return interviews, rows.Err()
}

// CountPostings returns the total number of persisted postings.
func (s *SQLiteStore) CountPostings() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM postings").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting postings: %w", err)
	}
	return count, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const postingSelect = `SELECT id, source, external_id, url, title, company, location,
	salary_min, salary_max, description, requirements, posted_date, scraped_date,
	match_score, match_explanation FROM postings`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPosting(row rowScanner) (model.Posting, error) {
	var (
		p           model.Posting
		company     sql.NullString
		location    sql.NullString
		salaryMin   sql.NullInt64
		salaryMax   sql.NullInt64
		description sql.NullString
		reqs        sql.NullString
		posted      sql.NullTime
		score       sql.NullInt64
		explanation sql.NullString
	)

	err := row.Scan(&p.ID, &p.Source, &p.ExternalID, &p.URL, &p.Title, &company, &location,
		&salaryMin, &salaryMax, &description, &reqs, &posted, &p.ScrapedDate, &score, &explanation)
	if err != nil {
		return model.Posting{}, err
	}

	p.Company = company.String
	p.Location = location.String
	p.Description = description.String
	p.Requirements = reqs.String
	if salaryMin.Valid {
		v := int(salaryMin.Int64)
		p.SalaryMin = &v
	}
	if salaryMax.Valid {
		v := int(salaryMax.Int64)
		p.SalaryMax = &v
	}
	if posted.Valid {
		t := posted.Time
		p.PostedDate = &t
	}
	if score.Valid {
		v := int(score.Int64)
		p.MatchScore = &v
	}
	if explanation.Valid {
		v := explanation.String
		p.MatchExplanation = &v
	}
	return p, nil
}

func collectPostings(rows *sql.Rows) ([]model.Posting, error) {
	var postings []model.Posting
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning posting: %w", err)
		}
		postings = append(postings, p)
	}
	return postings, rows.Err()
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return *v
}
