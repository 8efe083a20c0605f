package domain

// Customer is the read-only view of a customer owned by the customer domain.
type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
