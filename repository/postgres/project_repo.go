package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/droptracker/domain"
	"github.com/fastygo/droptracker/repository"
)

type projectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository creates a Postgres-backed Explorer listing repository.
func NewProjectRepository(pool *pgxpool.Pool) repository.ProjectRepository {
	return &projectRepository{pool: pool}
}

const projectColumns = `id, name, description, url, category, status, featured, created_by, created_at, updated_at`

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	return scanProject(row)
}

func (r *projectRepository) List(ctx context.Context, filter repository.ProjectFilter) ([]domain.Project, error) {
	query := `
	SELECT ` + projectColumns + `
	FROM projects
	WHERE ($1 = '' OR category = $1)
	  AND ($2 = '' OR status = $2)
	  AND (NOT $3 OR featured)
	ORDER BY featured DESC, created_at DESC
	LIMIT $4 OFFSET $5
	`
	rows, err := r.pool.Query(ctx, query, filter.Category, filter.Status, filter.Featured, repository.PageLimit(filter.Limit), repository.PageOffset(filter.Offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *project)
	}
	return projects, rows.Err()
}

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) (*domain.Project, error) {
	if project == nil {
		return nil, domain.ErrInvalidPayload
	}
	if project.ID == "" {
		project.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO projects (id, name, description, url, category, status, featured, created_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		project.ID,
		project.Name,
		project.Description,
		project.URL,
		project.Category,
		string(project.Status),
		project.Featured,
		project.CreatedBy,
	).Scan(&project.CreatedAt, &project.UpdatedAt); err != nil {
		return nil, classify(err, nil, domain.ErrProjectExists)
	}
	return project, nil
}

func (r *projectRepository) Update(ctx context.Context, project *domain.Project) error {
	if project == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE projects
	SET name = $2,
		description = $3,
		url = $4,
		category = $5,
		status = $6,
		featured = $7,
		updated_at = NOW()
	WHERE id = $1
	RETURNING created_by, created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		project.ID,
		project.Name,
		project.Description,
		project.URL,
		project.Category,
		string(project.Status),
		project.Featured,
	).Scan(&project.CreatedBy, &project.CreatedAt, &project.UpdatedAt); err != nil {
		return classify(err, domain.ErrProjectNotFound, domain.ErrProjectExists)
	}
	return nil
}

func (r *projectRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func scanProject(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Project, error) {
	var project domain.Project
	var status string
	if err := row.Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.URL,
		&project.Category,
		&status,
		&project.Featured,
		&project.CreatedBy,
		&project.CreatedAt,
		&project.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	project.Status = domain.ProjectStatus(status)
	return &project, nil
}
