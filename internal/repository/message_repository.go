package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicbridge/complaint-service/internal/domain"
)

type messageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository builds repository.
func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepository{pool: pool}
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	const query = `
        INSERT INTO messages (complaint_id, name, message, created_at)
        VALUES ($1,$2,$3,$4)
        RETURNING id`
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	return translate(r.pool.QueryRow(ctx, query,
		msg.ComplaintID,
		msg.Name,
		msg.Body,
		msg.CreatedAt,
	).Scan(&msg.ID))
}

func (r *messageRepository) ListByComplaint(ctx context.Context, complaintID string) ([]domain.Message, error) {
	const query = `
        SELECT id, complaint_id, name, message, created_at
        FROM messages WHERE complaint_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Message{}
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.ComplaintID,
			&msg.Name,
			&msg.Body,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}
