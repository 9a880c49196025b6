package domain

type OrderStatusType string

const (
	OrderStatusPending    OrderStatusType = "pending"
	OrderStatusProcessing OrderStatusType = "processing"
	OrderStatusCompleted  OrderStatusType = "completed"
	OrderStatusPartial    OrderStatusType = "partial"
	OrderStatusCancelled  OrderStatusType = "cancelled"
)

// IsKnown проверяет что статус входит в список поддерживаемых.
func (s OrderStatusType) IsKnown() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusPartial, OrderStatusCancelled:
		return true
	default:
		return false
	}
}
