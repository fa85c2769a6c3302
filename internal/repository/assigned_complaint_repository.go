package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicbridge/complaint-service/internal/domain"
)

const assignmentColumns = `id, complaint_id, agent_id, agent_name, status, completion_time, created_at, updated_at`

type assignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository builds repository.
func NewAssignmentRepository(pool *pgxpool.Pool) AssignmentRepository {
	return &assignmentRepository{pool: pool}
}

func (r *assignmentRepository) Create(ctx context.Context, a *domain.AssignedComplaint) error {
	const query = `
        INSERT INTO assigned_complaints (complaint_id, agent_id, agent_name, status, completion_time)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return translate(r.pool.QueryRow(ctx, query,
		a.ComplaintID,
		a.AgentID,
		a.AgentName,
		a.Status,
		a.CompletionTime,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt))
}

func (r *assignmentRepository) List(ctx context.Context) ([]domain.AssignedComplaint, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assigned_complaints ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssignments(rows)
}

func (r *assignmentRepository) ListByAgent(ctx context.Context, agentID string) ([]domain.AssignedComplaint, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assigned_complaints WHERE agent_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, agentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssignments(rows)
}

func (r *assignmentRepository) UpdateStatusByComplaint(ctx context.Context, complaintID string, status domain.ComplaintStatus, completionTime *time.Time) (int64, error) {
	const query = `
        UPDATE assigned_complaints SET status=$1, completion_time=COALESCE($2, completion_time), updated_at=NOW()
        WHERE complaint_id=$3`
	cmd, err := r.pool.Exec(ctx, query, status, completionTime, complaintID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *assignmentRepository) DeleteByAgent(ctx context.Context, agentID string) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM assigned_complaints WHERE agent_id=$1`, agentID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanAssignments(rows pgx.Rows) ([]domain.AssignedComplaint, error) {
	result := []domain.AssignedComplaint{}
	for rows.Next() {
		var a domain.AssignedComplaint
		if err := rows.Scan(
			&a.ID,
			&a.ComplaintID,
			&a.AgentID,
			&a.AgentName,
			&a.Status,
			&a.CompletionTime,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}
