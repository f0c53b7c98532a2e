package profile

import "time"

// SubscriptionStatus enumerates plan states written by the billing flow.
type SubscriptionStatus string

const (
	SubscriptionActive         SubscriptionStatus = "active"
	SubscriptionPendingPayment SubscriptionStatus = "pending_payment"
	SubscriptionExpired        SubscriptionStatus = "expired"
)

// Profile holds the per-account business settings. One per account,
// created at registration.
type Profile struct {
	BusinessName       string             `json:"businessName"`
	Email              string             `json:"email"`
	ExchangeRate       float64            `json:"exchangeRate"`
	SubscriptionStatus SubscriptionStatus `json:"subscriptionStatus"`
	PaidThrough        time.Time          `json:"paidThrough,omitempty"`
	CreatedAt          time.Time          `json:"createdAt"`
}

// Defaults returns the profile shape used before the stored document
// arrives, or merged under a partially-filled document.
func Defaults(rate float64) Profile {
	if rate <= 0 {
		rate = 1000
	}
	return Profile{
		ExchangeRate:       rate,
		SubscriptionStatus: SubscriptionPendingPayment,
	}
}
