package session

import "github.com/chrisdamba/pupulse/internal/models"

// Progress is the customer-facing tracker over the ordered status sequence.
// Current is the index of the order's status in Steps, or -1 when the order
// was cancelled.
type Progress struct {
	OrderID   string
	Steps     []models.OrderStatus
	Current   int
	Cancelled bool
}

func ProgressOf(o models.Order) Progress {
	steps := make([]models.OrderStatus, len(models.OrderProgress))
	copy(steps, models.OrderProgress)
	return Progress{
		OrderID:   o.ID,
		Steps:     steps,
		Current:   o.Status.Step(),
		Cancelled: o.Status == models.OrderStatusCancelled,
	}
}

// Reached reports whether step i has been reached.
func (p Progress) Reached(i int) bool {
	return !p.Cancelled && i >= 0 && i <= p.Current
}

func (p Progress) Complete() bool {
	return !p.Cancelled && p.Current == len(p.Steps)-1
}
