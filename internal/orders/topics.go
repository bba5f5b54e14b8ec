package orders

const (
	TopicOrderCreated   = "order.created"
	TopicOrderCancelled = "order.cancelled"
)

// Partition key = order number, so all events for one order stay ordered.
func PartitionKey(orderNumber string) []byte { return []byte(orderNumber) }
