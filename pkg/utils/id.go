package utils

import "github.com/google/uuid"

// GenerateID returns a random UUIDv4 string used for store-assigned record ids.
func GenerateID() string {
	return uuid.NewString()
}

// GenerateRequestID returns an id for correlating the log lines of one request.
func GenerateRequestID() string {
	return "req_" + uuid.NewString()
}
