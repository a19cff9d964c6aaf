package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	PaymentMethodCash      = "cash"
	PaymentMethodWechat    = "wechat"
	PaymentMethodAlipay    = "alipay"
	PaymentMethodCard      = "card"
	PaymentMethodInsurance = "insurance"
)

const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// Payment is the money record of an appointment. Normal flows keep at
// most one row per appointment.
type Payment struct {
	Base
	AppointmentID uuid.UUID  `json:"appointment_id" db:"appointment_id"`
	PatientID     uuid.UUID  `json:"patient_id" db:"patient_id"`
	Amount        float64    `json:"amount" db:"amount"`
	PaymentMethod string     `json:"payment_method" db:"payment_method"`
	PaymentStatus string     `json:"payment_status" db:"payment_status"`
	TransactionID *string    `json:"transaction_id" db:"transaction_id"`
	PaymentDate   *time.Time `json:"payment_date" db:"payment_date"`
	RefundAmount  float64    `json:"refund_amount" db:"refund_amount"`
	RefundDate    *time.Time `json:"refund_date" db:"refund_date"`
	RefundReason  *string    `json:"refund_reason" db:"refund_reason"`
	Notes         *string    `json:"notes" db:"notes"`
}

// PaymentInput is a payment patch; nil fields keep their stored value.
type PaymentInput struct {
	Amount        *float64   `json:"amount" binding:"omitempty,gte=0"`
	PaymentMethod *string    `json:"payment_method" binding:"omitempty,oneof=cash wechat alipay card insurance"`
	PaymentStatus *string    `json:"payment_status" binding:"omitempty,oneof=pending paid failed refunded"`
	TransactionID *string    `json:"transaction_id"`
	PaymentDate   *time.Time `json:"payment_date"`
	RefundAmount  *float64   `json:"refund_amount" binding:"omitempty,gte=0"`
	RefundDate    *time.Time `json:"refund_date"`
	RefundReason  *string    `json:"refund_reason"`
	Notes         *string    `json:"notes"`
}

// ApplyTo patches p with every non-nil field.
func (in *PaymentInput) ApplyTo(p *Payment) {
	if in.Amount != nil {
		p.Amount = *in.Amount
	}
	if in.PaymentMethod != nil {
		p.PaymentMethod = *in.PaymentMethod
	}
	if in.PaymentStatus != nil {
		p.PaymentStatus = *in.PaymentStatus
	}
	if in.TransactionID != nil {
		p.TransactionID = in.TransactionID
	}
	if in.PaymentDate != nil {
		p.PaymentDate = in.PaymentDate
	}
	if in.RefundAmount != nil {
		p.RefundAmount = *in.RefundAmount
	}
	if in.RefundDate != nil {
		p.RefundDate = in.RefundDate
	}
	if in.RefundReason != nil {
		p.RefundReason = in.RefundReason
	}
	if in.Notes != nil {
		p.Notes = in.Notes
	}
}

// NewPayment builds a payment row for an appointment, defaulting the
// method to cash and the status to pending.
func (in *PaymentInput) NewPayment(appointmentID, patientID uuid.UUID) *Payment {
	p := &Payment{
		AppointmentID: appointmentID,
		PatientID:     patientID,
		PaymentMethod: PaymentMethodCash,
		PaymentStatus: PaymentStatusPending,
	}
	in.ApplyTo(p)
	return p
}
