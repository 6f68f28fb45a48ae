package types

type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "ACTIVE"
	SubscriptionStatusExpired   SubscriptionStatus = "EXPIRED"
	SubscriptionStatusCancelled SubscriptionStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentStatusCreated  PaymentStatus = "CREATED"
	PaymentStatusCaptured PaymentStatus = "CAPTURED"
	PaymentStatusFailed   PaymentStatus = "FAILED"
)

// ApprovalStatus tracks trader onboarding review. A trader gains no
// capability until an admin moves them to APPROVED.
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "PENDING"
	ApprovalStatusApproved ApprovalStatus = "APPROVED"
	ApprovalStatusRejected ApprovalStatus = "REJECTED"
)

// AlertAction is the trade direction attached to an alert.
type AlertAction string

const (
	AlertActionBuy  AlertAction = "BUY"
	AlertActionSell AlertAction = "SELL"
	AlertActionHold AlertAction = "HOLD"
)
