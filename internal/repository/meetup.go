package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/meethere/meethere-api/internal/domain"
)

const meetupSelect = `SELECT mt.id, mt.initiator_id, mt.receiver_id, mt.date, mt.location, mt.status,
		mt.created_at, mt.updated_at,
		i.id, i.name, i.avatar_url, r.id, r.name, r.avatar_url
	FROM meetups mt
	JOIN users i ON i.id = mt.initiator_id
	JOIN users r ON r.id = mt.receiver_id`

type MeetupRepository struct {
	db *sql.DB
}

func NewMeetupRepository(db *sql.DB) *MeetupRepository {
	return &MeetupRepository{db: db}
}

func (r *MeetupRepository) Create(ctx context.Context, m *domain.Meetup) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO meetups (initiator_id, receiver_id, date, location, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		m.InitiatorID, m.ReceiverID, m.Date, m.Location, m.Status,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *MeetupRepository) GetByID(ctx context.Context, id int64) (*domain.Meetup, error) {
	row := r.db.QueryRowContext(ctx, meetupSelect+` WHERE mt.id = $1`, id)
	m, err := scanMeetup(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return m, nil
}

// ListByParticipant returns every meetup userID initiated or received,
// ordered by date.
func (r *MeetupRepository) ListByParticipant(ctx context.Context, userID int64) ([]domain.Meetup, error) {
	rows, err := r.db.QueryContext(ctx,
		meetupSelect+`
		WHERE mt.initiator_id = $1 OR mt.receiver_id = $1
		ORDER BY mt.date, mt.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByParticipant: %w", err)
	}
	defer rows.Close()

	meetups := []domain.Meetup{}
	for rows.Next() {
		m, err := scanMeetup(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByParticipant: scan: %w", err)
		}
		meetups = append(meetups, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByParticipant: rows: %w", err)
	}
	return meetups, nil
}

// UpdateStatus moves a meetup from one status to another. It matches no row,
// and returns ErrMeetupResolved, when the stored status is no longer from.
func (r *MeetupRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.MeetupStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE meetups SET status = $1, updated_at = now() WHERE id = $2 AND status = $3`,
		to, id, from,
	)
	if err != nil {
		return fmt.Errorf("UpdateStatus: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateStatus: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("UpdateStatus: %w", domain.ErrMeetupResolved)
	}
	return nil
}

func scanMeetup(s scanner) (*domain.Meetup, error) {
	var m domain.Meetup
	err := s.Scan(
		&m.ID, &m.InitiatorID, &m.ReceiverID, &m.Date, &m.Location, &m.Status,
		&m.CreatedAt, &m.UpdatedAt,
		&m.Initiator.ID, &m.Initiator.Name, &m.Initiator.AvatarURL,
		&m.Receiver.ID, &m.Receiver.Name, &m.Receiver.AvatarURL,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
