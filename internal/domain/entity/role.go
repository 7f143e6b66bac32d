package entity

// Roles carried in the access token issued by the identity service.
const (
	RoleAdmin      = "admin"
	RoleContractor = "contractor"
	RoleClient     = "client"
)
