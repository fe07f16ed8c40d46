package domain

// Agency is a pre-verified identity. Registration matches emails against this
// allow-list to assign privileged roles and fixed ids; the chat screen uses it
// as the contact list.
type Agency struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
	Phone string `json:"phone,omitempty"`
}
