// Package api holds the JSON shapes exchanged over HTTP that are not content
// types themselves.
package api

// Subscriber is the body of a mailing list subscription.
type Subscriber struct {
	Name  string `json:"name"`
	Email string `json:"email" binding:"required,email"`
}

type NetworkInformation struct {
	IsConnected bool `json:"is_connected"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type Health struct {
	Status string `json:"status"`
}
