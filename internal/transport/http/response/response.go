package response

import "github.com/gin-gonic/gin"

// The portal's clients expect plain JSON bodies: lists and records verbatim,
// failures as {"error": ...} with an optional "details" diagnostic.

type APIError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func Err(c *gin.Context, status int, msg string) {
	c.JSON(status, APIError{Error: msg})
}

func ErrDetails(c *gin.Context, status int, msg, details string) {
	c.JSON(status, APIError{Error: msg, Details: details})
}

func Message(c *gin.Context, msg string) {
	c.JSON(200, gin.H{"message": msg})
}
