package repository

import (
	"context"
	"errors"
	"fmt"

	"course-platform/internal/data/entity"
	"course-platform/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// ErrDuplicatePending is returned by Create when another pending payment
// already holds the (user, target) slot. The schema enforces at most one
// pending payment per purchasable per user.
var ErrDuplicatePending = errors.New("pending payment already exists for target")

// PaymentRepository is the durable ledger of payment rows. It is the only
// component that writes the payments table; all writes are single atomic
// statements.
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*entity.Payment, error)
	FindPendingByTarget(ctx context.Context, userID uuid.UUID, courseID, eventID *uuid.UUID) (*entity.Payment, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Payment, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)

	// TransitionStatus applies a compare-and-swap on the status column. It
	// returns true only if the stored status still equalled `from` when the
	// update ran; a false return means another caller won the transition.
	// The single conditional UPDATE is what serializes concurrent verifiers
	// per row, so it must never be split into a read followed by a write.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to entity.PaymentStatus, gatewayPaymentID, digest *string) (bool, error)
}

type paymentRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPaymentRepository(db database.PgxIface, log *zap.Logger) PaymentRepository {
	return &paymentRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment")),
	}
}

const paymentColumns = `id, user_id, course_id, event_id, amount, currency, transaction_id,
	       gateway_order_id, gateway_payment_id, status, gateway_digest, created_at, updated_at`

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (id, user_id, course_id, event_id, amount, currency, transaction_id,
		                      gateway_order_id, gateway_payment_id, status, gateway_digest,
		                      created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Exec(ctx, query,
		payment.ID,
		payment.UserID,
		payment.CourseID,
		payment.EventID,
		payment.Amount,
		payment.Currency,
		payment.TransactionID,
		payment.GatewayOrderID,
		payment.GatewayPaymentID,
		payment.Status,
		payment.GatewayDigest,
		payment.CreatedAt,
		payment.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicatePending
		}
		r.log.Error("Failed to create payment",
			zap.Error(err),
			zap.String("transaction_id", payment.TransactionID),
			zap.String("user_id", payment.UserID.String()),
		)
		return fmt.Errorf("create payment %s: %w", payment.TransactionID, err)
	}

	return nil
}

func (r *paymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	payment, err := r.scanOne(r.db.QueryRow(ctx, query, id))
	if err != nil {
		r.log.Error("Failed to find payment by ID",
			zap.Error(err),
			zap.String("payment_id", id.String()),
		)
		return nil, fmt.Errorf("find payment by ID %s: %w", id.String(), err)
	}

	return payment, nil
}

func (r *paymentRepository) FindByTransactionID(ctx context.Context, transactionID string) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE transaction_id = $1`

	payment, err := r.scanOne(r.db.QueryRow(ctx, query, transactionID))
	if err != nil {
		r.log.Error("Failed to find payment by transaction ID",
			zap.Error(err),
			zap.String("transaction_id", transactionID),
		)
		return nil, fmt.Errorf("find payment by transaction ID %s: %w", transactionID, err)
	}

	return payment, nil
}

func (r *paymentRepository) FindPendingByTarget(ctx context.Context, userID uuid.UUID, courseID, eventID *uuid.UUID) (*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE user_id = $1
		  AND status = 'pending'
		  AND (course_id = $2 OR event_id = $3)
		ORDER BY created_at DESC
		LIMIT 1
	`

	payment, err := r.scanOne(r.db.QueryRow(ctx, query, userID, courseID, eventID))
	if err != nil {
		r.log.Error("Failed to find pending payment by target",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find pending payment for user %s: %w", userID.String(), err)
	}

	return payment, nil
}

func (r *paymentRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to list payments by user",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("list payments for user %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var payments []*entity.Payment
	for rows.Next() {
		var payment entity.Payment
		if err := rows.Scan(
			&payment.ID,
			&payment.UserID,
			&payment.CourseID,
			&payment.EventID,
			&payment.Amount,
			&payment.Currency,
			&payment.TransactionID,
			&payment.GatewayOrderID,
			&payment.GatewayPaymentID,
			&payment.Status,
			&payment.GatewayDigest,
			&payment.CreatedAt,
			&payment.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan payment row: %w", err)
		}
		payments = append(payments, &payment)
	}

	return payments, rows.Err()
}

func (r *paymentRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payments WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count payments for user %s: %w", userID.String(), err)
	}
	return total, nil
}

func (r *paymentRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to entity.PaymentStatus, gatewayPaymentID, digest *string) (bool, error) {
	query := `
		UPDATE payments
		SET status = $3,
		    gateway_payment_id = COALESCE($4, gateway_payment_id),
		    gateway_digest = COALESCE($5, gateway_digest),
		    updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	result, err := r.db.Exec(ctx, query, id, from, to, gatewayPaymentID, digest)
	if err != nil {
		r.log.Error("Failed to transition payment status",
			zap.Error(err),
			zap.String("payment_id", id.String()),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
		return false, fmt.Errorf("transition payment %s from %s to %s: %w", id.String(), from, to, err)
	}

	won := result.RowsAffected() == 1
	if won {
		r.log.Info("Payment status transitioned",
			zap.String("payment_id", id.String()),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
	}

	return won, nil
}

func (r *paymentRepository) scanOne(row pgx.Row) (*entity.Payment, error) {
	var payment entity.Payment
	err := row.Scan(
		&payment.ID,
		&payment.UserID,
		&payment.CourseID,
		&payment.EventID,
		&payment.Amount,
		&payment.Currency,
		&payment.TransactionID,
		&payment.GatewayOrderID,
		&payment.GatewayPaymentID,
		&payment.Status,
		&payment.GatewayDigest,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &payment, nil
}
