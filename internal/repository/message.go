package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/meethere/meethere-api/internal/domain"
)

const messageSelect = `SELECT m.id, m.sender_id, m.receiver_id, m.content, m.created_at,
		s.id, s.name, s.avatar_url, r.id, r.name, r.avatar_url
	FROM messages m
	JOIN users s ON s.id = m.sender_id
	JOIN users r ON r.id = m.receiver_id`

type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO messages (sender_id, receiver_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		msg.SenderID, msg.ReceiverID, msg.Content,
	).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *MessageRepository) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	row := r.db.QueryRowContext(ctx, messageSelect+` WHERE m.id = $1`, id)
	msg, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return msg, nil
}

// ListBetween returns the full transcript between two users, oldest first.
func (r *MessageRepository) ListBetween(ctx context.Context, userA, userB int64) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		messageSelect+`
		WHERE (m.sender_id = $1 AND m.receiver_id = $2)
		   OR (m.sender_id = $2 AND m.receiver_id = $1)
		ORDER BY m.created_at, m.id`,
		userA, userB,
	)
	if err != nil {
		return nil, fmt.Errorf("ListBetween: %w", err)
	}
	defer rows.Close()

	msgs := []domain.Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("ListBetween: scan: %w", err)
		}
		msgs = append(msgs, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListBetween: rows: %w", err)
	}
	return msgs, nil
}

// ListConversations returns one row per distinct partner of userID with the
// latest message exchanged, most recent conversation first.
func (r *MessageRepository) ListConversations(ctx context.Context, userID int64) ([]domain.Conversation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.name, p.avatar_url,
			last.id, last.sender_id, last.receiver_id, last.content, last.created_at
		FROM (
			SELECT DISTINCT ON (partner_id) partner_id, id, sender_id, receiver_id, content, created_at
			FROM (
				SELECT CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END AS partner_id,
					id, sender_id, receiver_id, content, created_at
				FROM messages
				WHERE sender_id = $1 OR receiver_id = $1
			) exchanged
			ORDER BY partner_id, created_at DESC, id DESC
		) last
		JOIN users p ON p.id = last.partner_id
		ORDER BY last.created_at DESC, last.id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListConversations: %w", err)
	}
	defer rows.Close()

	convs := []domain.Conversation{}
	for rows.Next() {
		var (
			c   domain.Conversation
			msg domain.Message
		)
		if err := rows.Scan(
			&c.Partner.ID, &c.Partner.Name, &c.Partner.AvatarURL,
			&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ListConversations: scan: %w", err)
		}
		c.LastMessage = &msg
		convs = append(convs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListConversations: rows: %w", err)
	}
	return convs, nil
}

func scanMessage(s scanner) (*domain.Message, error) {
	var msg domain.Message
	err := s.Scan(
		&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.CreatedAt,
		&msg.Sender.ID, &msg.Sender.Name, &msg.Sender.AvatarURL,
		&msg.Receiver.ID, &msg.Receiver.Name, &msg.Receiver.AvatarURL,
	)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}
