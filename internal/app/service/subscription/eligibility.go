package subscription

import (
	"time"

	"github.com/trademint/backend/internal/models"
)

// Conflict describes the subscription blocking a new purchase.
type Conflict struct {
	SubscriptionID string    `json:"subscription_id"`
	ServiceID      string    `json:"service_id"`
	EndDate        time.Time `json:"end_date"`
}

// FormattedEndDate renders the end date the way the notice displays it
// (dd/mm/yyyy).
func (c *Conflict) FormattedEndDate() string {
	return c.EndDate.Format("02/01/2006")
}

// CheckEligibility decides whether a purchase of serviceID may proceed given
// the caller's subscriptions in server order. The first entry matching the
// service with an effectively ACTIVE status blocks; otherwise the purchase
// proceeds, including on an empty list. Pure read: repeated calls on the same
// input yield the same decision. This is an advisory short-circuit only; the
// server re-validates inside order creation.
func CheckEligibility(subs []*models.Subscription, serviceID string, now time.Time) *Conflict {
	for _, sub := range subs {
		if sub.ServiceID == serviceID && sub.ActiveAt(now) {
			return &Conflict{
				SubscriptionID: sub.ID,
				ServiceID:      sub.ServiceID,
				EndDate:        sub.EndDate,
			}
		}
	}
	return nil
}
