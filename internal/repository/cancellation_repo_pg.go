package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/travelbook/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CancellationRepository stores one row per refund request submitted
// through the wizard.
type CancellationRepository interface {
	Record(ctx context.Context, record *domain.CancellationRecord) error
	ListByBooking(ctx context.Context, bookingID int64) ([]domain.CancellationRecord, error)
	DeleteBefore(ctx context.Context, deadline time.Time) (int64, error)
}

type PGCancellationRepository struct {
	db *pgxpool.Pool
}

func NewCancellationRepository(db *pgxpool.Pool) CancellationRepository {
	return &PGCancellationRepository{db: db}
}

func (r *PGCancellationRepository) Record(ctx context.Context, record *domain.CancellationRecord) error {
	// A replayed event for the same dialog and refund keeps the first row.
	err := r.db.QueryRow(ctx, `INSERT INTO cancellation_audit
		(dialog_id, booking_id, booking_reference, user_id, refund_id, refund_amount, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (dialog_id, refund_id) DO UPDATE SET dialog_id = EXCLUDED.dialog_id
		RETURNING id, created_at`,
		record.DialogID, record.BookingID, record.BookingReference, record.UserID,
		record.RefundID, record.RefundAmount, record.Reason,
	).Scan(&record.ID, &record.CreatedAt)
	return err
}

func (r *PGCancellationRepository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.CancellationRecord, error) {
	rows, err := r.db.Query(ctx, `SELECT id, dialog_id, booking_id, booking_reference, user_id, refund_id, refund_amount::float8, reason, created_at
		FROM cancellation_audit WHERE booking_id=$1 ORDER BY created_at DESC, id DESC`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []domain.CancellationRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteBefore removes audit rows older than deadline and reports how many
// were removed.
func (r *PGCancellationRepository) DeleteBefore(ctx context.Context, deadline time.Time) (int64, error) {
	cmd, err := r.db.Exec(ctx, `DELETE FROM cancellation_audit WHERE created_at < $1`, deadline)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanRecord(row pgx.Row) (domain.CancellationRecord, error) {
	var rec domain.CancellationRecord
	err := row.Scan(&rec.ID, &rec.DialogID, &rec.BookingID, &rec.BookingReference, &rec.UserID,
		&rec.RefundID, &rec.RefundAmount, &rec.Reason, &rec.CreatedAt)
	return rec, err
}

var _ CancellationRepository = (*PGCancellationRepository)(nil)
