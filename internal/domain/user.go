package domain

// User is the identity yielded by the identity resolver. ID is the opaque
// external user id that lists are owned by.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
