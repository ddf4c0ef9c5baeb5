package helpers

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/stacklok/roster-sync/database"
)

const (
	dbName     = "sis"
	dbUser     = "rostersync"
	dbPassword = "rostersync"
)

// Database is a migrated PostgreSQL container seeded with SIS rows by the tests
type Database struct {
	Pool     *pgxpool.Pool
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	container *postgres.PostgresContainer
}

// StartDatabase starts a PostgreSQL container and applies all migrations
func StartDatabase(ctx context.Context) (*Database, error) {
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	db := &Database{User: dbUser, Password: dbPassword, Name: dbName, container: container}
	if err := db.connect(ctx); err != nil {
		_ = tc.TerminateContainer(container)
		return nil, err
	}
	return db, nil
}

func (d *Database) connect(ctx context.Context) error {
	connStr, err := d.container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return fmt.Errorf("failed to get connection string: %w", err)
	}
	if err := database.MigrateUp(connStr, 0); err != nil {
		return err
	}

	d.Host, err = d.container.Host(ctx)
	if err != nil {
		return fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := d.container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return fmt.Errorf("failed to get mapped port: %w", err)
	}
	d.Port = port.Int()

	d.Pool, err = pgxpool.New(ctx, connStr)
	if err != nil {
		return fmt.Errorf("failed to create pool: %w", err)
	}
	return nil
}

// Terminate closes the pool and removes the container
func (d *Database) Terminate() error {
	if d.Pool != nil {
		d.Pool.Close()
	}
	return tc.TerminateContainer(d.container)
}

// Reset empties every table between specs
func (d *Database) Reset(ctx context.Context) error {
	_, err := d.Pool.Exec(ctx, `TRUNCATE sis_event, sis_registration, sis_section, sis_person, sis_term,
		lms_tracked_enrollment, lms_tracked_section RESTART IDENTITY CASCADE`)
	return err
}

// AddCurrentTerm inserts a term that started a month ago
func (d *Database) AddCurrentTerm(ctx context.Context, term, institution string) error {
	now := time.Now()
	_, err := d.Pool.Exec(ctx,
		`INSERT INTO sis_term (term, institution, description, start_date, end_date) VALUES ($1, $2, $3, $4, $5)`,
		term, institution, "Term "+term, now.AddDate(0, -1, 0), now.AddDate(0, 2, 0))
	return err
}

// AddPerson inserts a SIS person
func (d *Database) AddPerson(ctx context.Context, pidm int64, campusID, first, last, email string) error {
	_, err := d.Pool.Exec(ctx,
		`INSERT INTO sis_person (pidm, campus_id, first_name, last_name, email) VALUES ($1, $2, $3, $4, $5)`,
		pidm, campusID, first, last, email)
	return err
}

// AddSection inserts a SIS section
func (d *Database) AddSection(ctx context.Context, term, crn, subject, course, section string) error {
	_, err := d.Pool.Exec(ctx,
		`INSERT INTO sis_section (term, crn, subject_code, course_number, section_number, title) VALUES ($1, $2, $3, $4, $5, $6)`,
		term, crn, subject, course, section, subject+" "+course)
	return err
}

// Register inserts or updates a registration row
func (d *Database) Register(ctx context.Context, term, crn string, pidm int64, status string) error {
	_, err := d.Pool.Exec(ctx, `
		INSERT INTO sis_registration (term, crn, pidm, registration_status) VALUES ($1, $2, $3, $4)
		ON CONFLICT (term, crn, pidm) DO UPDATE SET registration_status = EXCLUDED.registration_status, status_date = now()`,
		term, crn, pidm, status)
	return err
}

// AddEvent queues a SIS change event
func (d *Database) AddEvent(ctx context.Context, eventType int, term, crn string, pidm int64) error {
	_, err := d.Pool.Exec(ctx,
		`INSERT INTO sis_event (event_type, term, crn, pidm) VALUES ($1, $2, $3, $4)`,
		eventType, term, crn, pidm)
	return err
}

// PendingEvents counts the queued events
func (d *Database) PendingEvents(ctx context.Context) (int, error) {
	var n int
	err := d.Pool.QueryRow(ctx, `SELECT count(*) FROM sis_event`).Scan(&n)
	return n, err
}

// TrackedSectionIDs returns the LMS section ids tracked for term/crn
func (d *Database) TrackedSectionIDs(ctx context.Context, term, crn string) ([]int64, error) {
	rows, err := d.Pool.Query(ctx,
		`SELECT section_id FROM lms_tracked_section WHERE term = $1 AND crn = $2 ORDER BY id`, term, crn)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// TrackedEnrollments counts the tracked enrollments of term/crn
func (d *Database) TrackedEnrollments(ctx context.Context, term, crn string) (int, error) {
	var n int
	err := d.Pool.QueryRow(ctx,
		`SELECT count(*) FROM lms_tracked_enrollment WHERE term = $1 AND crn = $2`, term, crn).Scan(&n)
	return n, err
}
