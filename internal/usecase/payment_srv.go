package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"course-platform/internal/data/entity"
	"course-platform/internal/data/repository"
	"course-platform/internal/dto/request"
	"course-platform/internal/dto/response"
	"course-platform/pkg/gateway"
	"course-platform/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultCurrency = "INR"

// verifyAttempts bounds the re-read loop after a lost CAS race. One re-read
// resolves any lost race; the extra attempt covers a refund landing between
// the read and the swap.
const verifyAttempts = 3

// PaymentService orchestrates the two-leg payment protocol against the
// gateway and the ledger. State machine:
//
//	pending → completed   (VerifyPayment, signature match)
//	pending → failed      (VerifyPayment, signature mismatch)
//	completed → refunded  (RefundPayment)
//
// Each transition is a single compare-and-swap in the ledger; a caller that
// loses the race re-reads and follows the idempotent path for the stored
// outcome.
type PaymentService interface {
	InitiatePayment(ctx context.Context, userID string, req *request.InitiatePaymentRequest) (*response.InitiatePaymentResponse, error)
	VerifyPayment(ctx context.Context, req *request.VerifyPaymentRequest) (*response.VerifyPaymentResponse, error)
	RefundPayment(ctx context.Context, paymentID string) (*response.RefundResponse, error)
	GetUserTransactions(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TransactionResponse], error)
}

type paymentService struct {
	repo         *repository.Repository
	gateway      gateway.Client
	materializer Materializer
	log          *zap.Logger
}

func NewPaymentService(repo *repository.Repository, gatewayClient gateway.Client, materializer Materializer, log *zap.Logger) PaymentService {
	return &paymentService{
		repo:         repo,
		gateway:      gatewayClient,
		materializer: materializer,
		log:          log.With(zap.String("service", "payment")),
	}
}

func (s *paymentService) InitiatePayment(ctx context.Context, userID string, req *request.InitiatePaymentRequest) (*response.InitiatePaymentResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Initiate payment validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	if (req.CourseID == nil) == (req.EventID == nil) {
		return nil, fmt.Errorf("validation failed: exactly one of course_id or event_id is required")
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	courseID, eventID, amountDue, err := s.resolveTarget(ctx, req)
	if err != nil {
		return nil, err
	}

	// Price comes from the catalog, never from the caller.
	if req.Amount != amountDue {
		s.log.Warn("Initiate payment amount mismatch",
			zap.String("user_id", userID),
			zap.Int64("supplied", req.Amount),
			zap.Int64("expected", amountDue),
		)
		return nil, fmt.Errorf("%w: supplied %d, expected %d", ErrAmountMismatch, req.Amount, amountDue)
	}

	// A user retrying a slow request must get the order already created for
	// them, not a second charge.
	existing, err := s.repo.Payment.FindPendingByTarget(ctx, userUUID, courseID, eventID)
	if err != nil {
		return nil, fmt.Errorf("check pending payment: %w", err)
	}
	if existing != nil {
		s.log.Info("Reusing pending payment for target",
			zap.String("transaction_id", existing.TransactionID),
			zap.String("user_id", userID),
		)
		return s.buildInitiateResponse(ctx, existing), nil
	}

	transactionID := utils.GenerateTransactionID()

	order, err := s.gateway.CreateOrder(ctx, amountDue, defaultCurrency, utils.GenerateReceiptID(), map[string]string{
		"transaction_id": transactionID,
		"user_id":        userID,
	})
	if err != nil {
		s.log.Error("Gateway order creation failed",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.Int64("amount", amountDue),
		)
		return nil, fmt.Errorf("create gateway order: %w", err)
	}

	now := time.Now()
	payment := &entity.Payment{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:         userUUID,
		CourseID:       courseID,
		EventID:        eventID,
		Amount:         amountDue,
		Currency:       defaultCurrency,
		TransactionID:  transactionID,
		GatewayOrderID: order.ID,
		Status:         entity.PaymentStatusPending,
	}

	if err := s.repo.Payment.Create(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrDuplicatePending) {
			// A concurrent initiation won the slot; hand back its order.
			existing, findErr := s.repo.Payment.FindPendingByTarget(ctx, userUUID, courseID, eventID)
			if findErr == nil && existing != nil {
				return s.buildInitiateResponse(ctx, existing), nil
			}
		}
		return nil, fmt.Errorf("persist payment: %w", err)
	}

	s.log.Info("Payment initiated",
		zap.String("payment_id", payment.ID.String()),
		zap.String("transaction_id", transactionID),
		zap.String("gateway_order_id", order.ID),
		zap.String("user_id", userID),
		zap.Int64("amount", amountDue),
	)

	return s.buildInitiateResponse(ctx, payment), nil
}

func (s *paymentService) VerifyPayment(ctx context.Context, req *request.VerifyPaymentRequest) (*response.VerifyPaymentResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Verify payment validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	for attempt := 0; attempt < verifyAttempts; attempt++ {
		payment, err := s.repo.Payment.FindByTransactionID(ctx, req.TransactionID)
		if err != nil {
			return nil, fmt.Errorf("load payment: %w", err)
		}
		if payment == nil {
			return nil, fmt.Errorf("%w: transaction %s", ErrPaymentNotFound, req.TransactionID)
		}

		switch payment.Status {
		case entity.PaymentStatusCompleted:
			// Gateways deliver the same confirmation by webhook and by
			// client redirect; the retry is success, not re-materialization.
			s.log.Info("Verify retry on completed payment",
				zap.String("transaction_id", req.TransactionID),
			)
			return response.PaymentToVerifyResponse(payment), nil

		case entity.PaymentStatusFailed, entity.PaymentStatusRefunded:
			return nil, fmt.Errorf("%w: transaction %s is %s", ErrPaymentAlreadyFinalized, req.TransactionID, payment.Status)
		}

		if !s.gateway.VerifySignature(payment.GatewayOrderID, req.GatewayPaymentID, req.Signature) {
			digest := "signature mismatch"
			won, err := s.repo.Payment.TransitionStatus(ctx, payment.ID,
				entity.PaymentStatusPending, entity.PaymentStatusFailed,
				&req.GatewayPaymentID, &digest)
			if err != nil {
				return nil, err
			}
			if !won {
				continue // lost the race; re-read the stored outcome
			}

			s.log.Warn("Payment signature invalid",
				zap.String("transaction_id", req.TransactionID),
				zap.String("gateway_order_id", payment.GatewayOrderID),
			)
			return nil, fmt.Errorf("%w: transaction %s", ErrSignatureInvalid, req.TransactionID)
		}

		won, err := s.repo.Payment.TransitionStatus(ctx, payment.ID,
			entity.PaymentStatusPending, entity.PaymentStatusCompleted,
			&req.GatewayPaymentID, nil)
		if err != nil {
			return nil, err
		}
		if !won {
			continue
		}

		payment.Status = entity.PaymentStatusCompleted
		payment.GatewayPaymentID = &req.GatewayPaymentID

		s.log.Info("Payment completed",
			zap.String("payment_id", payment.ID.String()),
			zap.String("transaction_id", req.TransactionID),
			zap.String("gateway_payment_id", req.GatewayPaymentID),
		)

		// Materialization runs only on the CAS winner, so it executes once
		// per payment. A failure here never rolls the payment back: the
		// completed payment is authoritative.
		if err := s.materializer.Materialize(ctx, payment); err != nil {
			s.log.Error("Materialization failed for completed payment",
				zap.Error(err),
				zap.String("payment_id", payment.ID.String()),
			)
		}

		return response.PaymentToVerifyResponse(payment), nil
	}

	return nil, fmt.Errorf("%w: transaction %s", errTransitionUnresolved, req.TransactionID)
}

func (s *paymentService) RefundPayment(ctx context.Context, paymentID string) (*response.RefundResponse, error) {
	id, err := uuid.Parse(paymentID)
	if err != nil {
		return nil, fmt.Errorf("invalid payment ID format %s: %w", paymentID, err)
	}

	payment, err := s.repo.Payment.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load payment: %w", err)
	}
	if payment == nil {
		return nil, fmt.Errorf("%w: payment %s", ErrPaymentNotFound, paymentID)
	}

	if payment.Status == entity.PaymentStatusRefunded {
		// Retried refund; nothing more to do.
		return &response.RefundResponse{
			PaymentID:     payment.ID.String(),
			TransactionID: payment.TransactionID,
			Status:        payment.Status,
		}, nil
	}

	if payment.Status != entity.PaymentStatusCompleted || payment.GatewayPaymentID == nil {
		return nil, fmt.Errorf("%w: payment %s is %s", ErrNotRefundable, paymentID, payment.Status)
	}

	refundID, err := s.gateway.CreateRefund(ctx, *payment.GatewayPaymentID, payment.Amount)
	if err != nil {
		return nil, fmt.Errorf("create gateway refund: %w", err)
	}

	digest := "refund " + refundID
	won, err := s.repo.Payment.TransitionStatus(ctx, payment.ID,
		entity.PaymentStatusCompleted, entity.PaymentStatusRefunded, nil, &digest)
	if err != nil {
		return nil, err
	}
	if !won {
		// Concurrent refund won; report the stored state.
		current, err := s.repo.Payment.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load payment after lost refund race: %w", err)
		}
		if current != nil && current.Status == entity.PaymentStatusRefunded {
			return &response.RefundResponse{
				PaymentID:     current.ID.String(),
				TransactionID: current.TransactionID,
				Status:        current.Status,
			}, nil
		}
		return nil, fmt.Errorf("%w: payment %s", ErrNotRefundable, paymentID)
	}

	s.log.Info("Payment refunded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("transaction_id", payment.TransactionID),
		zap.String("gateway_refund_id", refundID),
	)

	return &response.RefundResponse{
		PaymentID:       payment.ID.String(),
		TransactionID:   payment.TransactionID,
		Status:          entity.PaymentStatusRefunded,
		GatewayRefundID: refundID,
	}, nil
}

func (s *paymentService) GetUserTransactions(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TransactionResponse], error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	payments, err := s.repo.Payment.FindByUserID(ctx, userUUID, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	total, err := s.repo.Payment.CountByUserID(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("count transactions: %w", err)
	}

	transactions := make([]response.TransactionResponse, len(payments))
	for i, payment := range payments {
		transactions[i] = response.PaymentToTransactionResponse(payment)
	}

	return response.NewPaginatedResponse(transactions, req.Page, req.PerPage, total), nil
}

// resolveTarget loads the purchasable and returns its id and current price.
func (s *paymentService) resolveTarget(ctx context.Context, req *request.InitiatePaymentRequest) (courseID, eventID *uuid.UUID, amountDue int64, err error) {
	if req.CourseID != nil {
		id, parseErr := uuid.Parse(*req.CourseID)
		if parseErr != nil {
			return nil, nil, 0, fmt.Errorf("invalid course ID format %s: %w", *req.CourseID, parseErr)
		}

		course, findErr := s.repo.Course.FindByID(ctx, id)
		if findErr != nil {
			return nil, nil, 0, fmt.Errorf("load course: %w", findErr)
		}
		if course == nil {
			return nil, nil, 0, fmt.Errorf("%w: course %s", ErrTargetNotFound, *req.CourseID)
		}

		return &id, nil, course.Price, nil
	}

	id, parseErr := uuid.Parse(*req.EventID)
	if parseErr != nil {
		return nil, nil, 0, fmt.Errorf("invalid event ID format %s: %w", *req.EventID, parseErr)
	}

	event, findErr := s.repo.Event.FindByID(ctx, id)
	if findErr != nil {
		return nil, nil, 0, fmt.Errorf("load event: %w", findErr)
	}
	if event == nil {
		return nil, nil, 0, fmt.Errorf("%w: event %s", ErrTargetNotFound, *req.EventID)
	}
	if event.IsFull() {
		return nil, nil, 0, fmt.Errorf("%w: event %s", ErrEventFull, *req.EventID)
	}

	return nil, &id, event.Price, nil
}

// buildInitiateResponse assembles the checkout payload. User contact fields
// are best-effort; the widget works without them.
func (s *paymentService) buildInitiateResponse(ctx context.Context, payment *entity.Payment) *response.InitiatePaymentResponse {
	resp := &response.InitiatePaymentResponse{
		TransactionID:  payment.TransactionID,
		GatewayOrderID: payment.GatewayOrderID,
		Amount:         payment.Amount,
		Currency:       payment.Currency,
		GatewayKeyID:   s.gateway.KeyID(),
	}

	if user, err := s.repo.User.FindByID(ctx, payment.UserID); err == nil && user != nil {
		resp.UserName = user.Name
		resp.UserEmail = user.Email
		if user.Phone != nil {
			resp.UserPhone = *user.Phone
		}
	}

	return resp
}
