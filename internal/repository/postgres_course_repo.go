package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/edupress/edupress/internal/domain"
)

// PostgresCourseRepo implements domain.CourseRepository. The nested
// sections/reviews/benefits sub-documents live in JSONB columns, so Save is
// a whole-document write and two concurrent nested mutations race with
// last-write-wins.
type PostgresCourseRepo struct {
	db *sql.DB
}

// NewPostgresCourseRepo creates a new repository instance.
func NewPostgresCourseRepo(db *sql.DB) *PostgresCourseRepo {
	return &PostgresCourseRepo{db: db}
}

const courseColumns = `id, name, description, price, estimated_price, thumbnail, tags, level, demo_url, benefits, prerequisites, reviews, sections, rating, purchased, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourse(row rowScanner) (*domain.Course, error) {
	course := &domain.Course{}
	var thumbnail, benefits, prerequisites, reviews, sections []byte

	err := row.Scan(
		&course.ID,
		&course.Name,
		&course.Description,
		&course.Price,
		&course.EstimatedPrice,
		&thumbnail,
		&course.Tags,
		&course.Level,
		&course.DemoURL,
		&benefits,
		&prerequisites,
		&reviews,
		&sections,
		&course.Rating,
		&course.Purchased,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	for _, col := range []struct {
		raw []byte
		out any
	}{
		{thumbnail, &course.Thumbnail},
		{benefits, &course.Benefits},
		{prerequisites, &course.Prerequisites},
		{reviews, &course.Reviews},
		{sections, &course.Sections},
	} {
		if len(col.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(col.raw, col.out); err != nil {
			return nil, fmt.Errorf("decode course document: %w", err)
		}
	}

	return course, nil
}

func marshalCourseDocs(course *domain.Course) (thumbnail, benefits, prerequisites, reviews, sections []byte, err error) {
	if thumbnail, err = json.Marshal(course.Thumbnail); err != nil {
		return
	}
	if benefits, err = json.Marshal(course.Benefits); err != nil {
		return
	}
	if prerequisites, err = json.Marshal(course.Prerequisites); err != nil {
		return
	}
	if reviews, err = json.Marshal(course.Reviews); err != nil {
		return
	}
	sections, err = json.Marshal(course.Sections)
	return
}

// GetByID retrieves the full course document.
func (r *PostgresCourseRepo) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	return scanCourse(r.db.QueryRowContext(ctx, query, id))
}

// List retrieves all course documents ordered by creation time.
func (r *PostgresCourseRepo) List(ctx context.Context) ([]domain.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	var courses []domain.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *course)
	}

	return courses, rows.Err()
}

// Create inserts a new course document.
func (r *PostgresCourseRepo) Create(ctx context.Context, course *domain.Course) error {
	query := `
		INSERT INTO courses (id, name, description, price, estimated_price, thumbnail, tags, level, demo_url, benefits, prerequisites, reviews, sections, rating, purchased, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	now := time.Now()
	course.CreatedAt = now
	course.UpdatedAt = now

	thumbnail, benefits, prerequisites, reviews, sections, err := marshalCourseDocs(course)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		course.ID, course.Name, course.Description, course.Price, course.EstimatedPrice,
		thumbnail, course.Tags, course.Level, course.DemoURL,
		benefits, prerequisites, reviews, sections,
		course.Rating, course.Purchased, course.CreatedAt, course.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}

	return nil
}

// Save overwrites the whole course document.
func (r *PostgresCourseRepo) Save(ctx context.Context, course *domain.Course) error {
	query := `
		UPDATE courses
		SET name = $1, description = $2, price = $3, estimated_price = $4, thumbnail = $5,
		    tags = $6, level = $7, demo_url = $8, benefits = $9, prerequisites = $10,
		    reviews = $11, sections = $12, rating = $13, purchased = $14, updated_at = $15
		WHERE id = $16
	`

	course.UpdatedAt = time.Now()

	thumbnail, benefits, prerequisites, reviews, sections, err := marshalCourseDocs(course)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query,
		course.Name, course.Description, course.Price, course.EstimatedPrice, thumbnail,
		course.Tags, course.Level, course.DemoURL, benefits, prerequisites,
		reviews, sections, course.Rating, course.Purchased, course.UpdatedAt,
		course.ID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	return nil
}
