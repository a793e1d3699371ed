package model

// User is the backend-recognized profile for an identity-provider session.
type User struct {
	ID                   int      `json:"id"`
	Email                string   `json:"email"`
	FirstName            string   `json:"nombre"`
	LastName             string   `json:"apellido"`
	ProviderID           string   `json:"auth0Id,omitempty"`
	Roles                []string `json:"roles"`
	RegistrationComplete bool     `json:"registroCompleto"`
}

// Registration carries the profile fields a first-time user must complete.
type Registration struct {
	Phone      string `json:"telefono" validate:"required"`
	Street     string `json:"calle" validate:"required"`
	Number     string `json:"numero" validate:"required"`
	PostalCode string `json:"codigoPostal" validate:"required"`
	City       string `json:"ciudad" validate:"required"`
	Province   string `json:"provincia" validate:"required"`
}
