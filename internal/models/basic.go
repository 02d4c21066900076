package models

// BasicResponse is a simple status response for health and home endpoints.
type BasicResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}
