package postgres

import (
	"context"

	"github.com/geocoder89/medihub/internal/domain/message"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessagesRepo struct {
	pool *pgxpool.Pool
}

func NewMessagesRepo(pool *pgxpool.Pool) *MessagesRepo {
	return &MessagesRepo{pool: pool}
}

func (r *MessagesRepo) Send(ctx context.Context, req message.SendRequest) (message.Message, error) {
	var receiverExists bool

	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`,
		req.ReceiverID,
	).Scan(&receiverExists)

	if err != nil {
		return message.Message{}, err
	}

	if !receiverExists {
		return message.Message{}, message.ErrReceiverUnknown
	}

	m := message.NewFromSendRequest(req)

	_, err = r.pool.Exec(ctx, `
		INSERT INTO messages (id, sender_id, receiver_id, content, sent_at, is_read)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, m.ID, m.SenderID, m.ReceiverID, m.Content, m.SentAt, m.IsRead)

	if err != nil {
		return message.Message{}, err
	}

	return m, nil
}

// Conversation lists both directions between two users, oldest first.
func (r *MessagesRepo) Conversation(ctx context.Context, userA, userB string) ([]message.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, sender_id, receiver_id, content, sent_at, is_read, read_at
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY sent_at ASC, id ASC
	`, userA, userB)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]message.Message, 0)

	for rows.Next() {
		var m message.Message

		err = rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.SentAt, &m.IsRead, &m.ReadAt)

		if err != nil {
			return nil, err
		}

		out = append(out, m)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

// MarkRead is receiver-only and idempotent: re-reading an already-read
// message keeps the original read_at.
func (r *MessagesRepo) MarkRead(ctx context.Context, id, receiverID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE messages
		SET is_read = TRUE,
		    read_at = COALESCE(read_at, NOW())
		WHERE id = $1 AND receiver_id = $2
	`, id, receiverID)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return message.ErrNotFound
	}

	return nil
}
