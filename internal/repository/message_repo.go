package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"companion-llm/internal/domain"
)

// MessageRepository define el contrato de persistencia para mensajes.
// El listado siempre devuelve orden ascendente por created_at: el contexto
// enviado al LLM depende de ese orden.
type MessageRepository interface {
	Create(ctx context.Context, message domain.Message) error
	ListBySessionID(ctx context.Context, sessionID string) ([]domain.Message, error)
}

type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

func (r *PgMessageRepository) Create(ctx context.Context, message domain.Message) error {
	const query = `
		INSERT INTO messages (id, session_id, role, content, audio_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var audioRef interface{}
	if message.AudioRef != "" {
		audioRef = message.AudioRef
	}

	_, err := r.pool.Exec(ctx, query,
		message.ID,
		message.SessionID,
		message.Role,
		message.Content,
		audioRef,
		message.CreatedAt,
	)
	return err
}

func (r *PgMessageRepository) ListBySessionID(ctx context.Context, sessionID string) ([]domain.Message, error) {
	const query = `
		SELECT id, session_id, role, content, audio_ref, created_at
		FROM messages
		WHERE session_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		var audioRef *string

		err = rows.Scan(
			&msg.ID,
			&msg.SessionID,
			&msg.Role,
			&msg.Content,
			&audioRef,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if audioRef != nil {
			msg.AudioRef = *audioRef
		}
		messages = append(messages, msg)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}
