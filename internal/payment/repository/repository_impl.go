package repository

import (
	"context"

	"github.com/launchforge/launchforge/internal/payment/domain"
	"github.com/launchforge/launchforge/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Exists(ctx context.Context, conn *gorm.DB, transactionID string) (bool, error) {
	var paymentID string
	err := conn.WithContext(ctx).Raw(
		`SELECT payment_id
		 FROM payments
		 WHERE transaction_id = ?
		 LIMIT 1`,
		transactionID,
	).Scan(&paymentID).Error
	if err != nil {
		return false, err
	}
	return paymentID != "", nil
}

// Insert writes the record behind the transaction_id unique constraint.
// Returns false when the row already existed; the conflict is the duplicate
// signal, there is no separate check-then-act window.
func (r *repo) Insert(ctx context.Context, conn *gorm.DB, record *domain.PaymentRecord) (bool, error) {
	res := conn.WithContext(ctx).Exec(
		`INSERT INTO payments (
			payment_id, user_id, payment_amount, payment_provider, payment_status,
			transaction_id, credits, remarks, customer_id, invoice_id,
			receipt_url, payment_intent_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (transaction_id) DO NOTHING`,
		record.PaymentID,
		record.UserID,
		record.PaymentAmount,
		record.PaymentProvider,
		record.PaymentStatus,
		record.TransactionID,
		record.Credits,
		record.Remarks,
		record.CustomerID,
		record.InvoiceID,
		record.ReceiptURL,
		record.PaymentIntentID,
		record.CreatedAt,
	)
	if res.Error != nil {
		if db.IsDuplicateKeyErr(res.Error) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
