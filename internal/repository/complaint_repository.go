package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicbridge/complaint-service/internal/domain"
)

const complaintColumns = `id, user_id, name, address, pincode, taluk, ward_no, department, district, comment,
        images, status, assigned, agent_name, can_escalate, escalated, escalation_reason, escalation_date,
        completion_time, created_at, updated_at`

type complaintRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintRepository instantiates repository.
func NewComplaintRepository(pool *pgxpool.Pool) ComplaintRepository {
	return &complaintRepository{pool: pool}
}

func (r *complaintRepository) Create(ctx context.Context, c *domain.Complaint) error {
	const query = `
        INSERT INTO complaints (user_id, name, address, pincode, taluk, ward_no, department, district, comment,
            images, status, assigned, agent_name, can_escalate, escalated, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
        RETURNING id, updated_at`
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	images := c.Images
	if images == nil {
		images = []string{}
	}
	return translate(r.pool.QueryRow(ctx, query,
		c.UserID,
		c.Name,
		c.Address,
		c.Pincode,
		c.Taluk,
		c.WardNo,
		c.Department,
		c.District,
		c.Comment,
		images,
		c.Status,
		c.Assigned,
		c.AgentName,
		c.CanEscalate,
		c.Escalated,
		c.CreatedAt,
	).Scan(&c.ID, &c.UpdatedAt))
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id=$1`
	return scanComplaint(r.pool.QueryRow(ctx, query, id))
}

func (r *complaintRepository) ListByIDs(ctx context.Context, ids []string) ([]domain.Complaint, error) {
	if len(ids) == 0 {
		return []domain.Complaint{}, nil
	}
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id = ANY($1) ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComplaints(rows)
}

func (r *complaintRepository) List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints`
	args := []any{}
	clauses := []string{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.Escalated != nil {
		args = append(args, *filter.Escalated)
		clauses = append(clauses, fmt.Sprintf("escalated=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComplaints(rows)
}

func (r *complaintRepository) UpdateStatus(ctx context.Context, id string, status domain.ComplaintStatus, completionTime *time.Time) (*domain.Complaint, error) {
	query := `
        UPDATE complaints SET status=$1, completion_time=COALESCE($2, completion_time), updated_at=NOW()
        WHERE id=$3
        RETURNING ` + complaintColumns
	return scanComplaint(r.pool.QueryRow(ctx, query, status, completionTime, id))
}

func (r *complaintRepository) MarkAssigned(ctx context.Context, id, agentName string) error {
	const query = `UPDATE complaints SET assigned=TRUE, agent_name=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, agentName, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *complaintRepository) SetCanEscalate(ctx context.Context, id string, canEscalate bool) (*domain.Complaint, error) {
	query := `
        UPDATE complaints SET can_escalate=$1, updated_at=NOW()
        WHERE id=$2
        RETURNING ` + complaintColumns
	return scanComplaint(r.pool.QueryRow(ctx, query, canEscalate, id))
}

func (r *complaintRepository) MarkEscalated(ctx context.Context, id, reason string, at time.Time) (*domain.Complaint, error) {
	query := `
        UPDATE complaints SET escalated=TRUE, escalation_reason=$1, escalation_date=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING ` + complaintColumns
	return scanComplaint(r.pool.QueryRow(ctx, query, reason, at, id))
}

func (r *complaintRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM complaints WHERE user_id=$1`, userID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanComplaint(row scanner) (*domain.Complaint, error) {
	var c domain.Complaint
	if err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Name,
		&c.Address,
		&c.Pincode,
		&c.Taluk,
		&c.WardNo,
		&c.Department,
		&c.District,
		&c.Comment,
		&c.Images,
		&c.Status,
		&c.Assigned,
		&c.AgentName,
		&c.CanEscalate,
		&c.Escalated,
		&c.EscalationReason,
		&c.EscalationDate,
		&c.CompletionTime,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func scanComplaints(rows pgx.Rows) ([]domain.Complaint, error) {
	result := []domain.Complaint{}
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}
