package usecase

import "time"

// Published on RabbitMQ after a checkout is confirmed.
type OrderConfirmedMsg struct {
	SessionID     string    `json:"sessionId"`
	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail,omitempty"`
	Total         int64     `json:"total"`
	Items         []string  `json:"items"`
	Method        string    `json:"method"`
	Summary       string    `json:"summary"`
	ConfirmedAt   time.Time `json:"confirmedAt"`
}

// Published on Kafka after every cart mutation, keyed by session id.
type CartActivityMsg struct {
	SessionID string    `json:"sessionId"`
	Op        string    `json:"op"`
	ItemName  string    `json:"itemName,omitempty"`
	Quantity  int       `json:"quantity,omitempty"`
	CartTotal int64     `json:"cartTotal"`
	ItemCount int       `json:"itemCount"`
	At        time.Time `json:"at"`
}
