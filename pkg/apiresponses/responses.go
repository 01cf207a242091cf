/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package apiresponses

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error codes carried in APIError.Code.
const (
	CodeBadRequest      = "BAD_REQUEST"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeNotFound        = "NOT_FOUND"
	CodeRateLimited     = "RATE_LIMITED"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeMisconfigured   = "SERVER_MISCONFIGURED"
	CodeInvalidPassword = "INVALID_CREDENTIALS"
	CodeTooLarge        = "PAYLOAD_TOO_LARGE"
	CodeUnavailable     = "SERVICE_UNAVAILABLE"
)

// APIError represents a standardized error response.
type APIError struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// Success is the body returned by login and logout.
type Success struct {
	Success bool `json:"success"`
}

// RespondNotFound sends a 404 Not Found response with a standardized message.
func RespondNotFound(c *gin.Context, resourceType, resourceID string) {
	c.JSON(http.StatusNotFound, APIError{
		Error: fmt.Sprintf("%s not found: %s", resourceType, resourceID),
		Code:  CodeNotFound,
	})
}

// RespondNotFoundSimple sends a 404 Not Found response with a simple message.
func RespondNotFoundSimple(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, APIError{
		Error: message,
		Code:  CodeNotFound,
	})
}

// RespondAuthenticationRequired sends the 401 produced by the session gate.
func RespondAuthenticationRequired(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, APIError{
		Error: "Authentication required",
		Code:  CodeUnauthorized,
	})
}

// RespondInvalidCredentials sends the 401 for a rejected login.
func RespondInvalidCredentials(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, APIError{
		Error: "Invalid credentials",
		Code:  CodeInvalidPassword,
	})
}

// RespondBadRequest sends a 400 Bad Request response.
// Use this for client errors like malformed JSON or invalid parameters.
func RespondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, APIError{
		Error: message,
		Code:  CodeBadRequest,
	})
}

// RespondBadRequestWithDetails sends a 400 Bad Request with additional details.
func RespondBadRequestWithDetails(c *gin.Context, message, details string) {
	c.JSON(http.StatusBadRequest, APIError{
		Error:   message,
		Code:    CodeBadRequest,
		Details: details,
	})
}

// RespondTooManyRequests sends a 429 response for a rate-limited client.
func RespondTooManyRequests(c *gin.Context) {
	c.JSON(http.StatusTooManyRequests, APIError{
		Error: "Too many requests, please try again later",
		Code:  CodeRateLimited,
	})
}

// RespondServiceUnavailable sends a 503 when a dependency the request
// cannot proceed without is down.
func RespondServiceUnavailable(c *gin.Context, message string) {
	c.JSON(http.StatusServiceUnavailable, APIError{
		Error: message,
		Code:  CodeUnavailable,
	})
}

// RespondPayloadTooLarge sends a 413 for a request body over the size limit.
func RespondPayloadTooLarge(c *gin.Context, limit int64) {
	c.JSON(http.StatusRequestEntityTooLarge, APIError{
		Error:   "Request body too large",
		Code:    CodeTooLarge,
		Details: fmt.Sprintf("limit is %d bytes", limit),
	})
}

// RespondBindError answers a failed request body decode: 413 when the body
// hit the size limit, 400 otherwise.
func RespondBindError(c *gin.Context, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		RespondPayloadTooLarge(c, maxErr.Limit)
		return
	}
	RespondBadRequest(c, "invalid request body")
}

// RespondMisconfigured sends a 500 when the server lacks required configuration.
func RespondMisconfigured(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, APIError{
		Error: message,
		Code:  CodeMisconfigured,
	})
}

// RespondInternalError sends a 500 Internal Server Error response.
// It logs the error with full details but returns a sanitized message to the client.
func RespondInternalError(c *gin.Context, operation string, err error, log *zap.SugaredLogger) {
	if log != nil {
		log.Errorw(fmt.Sprintf("Failed to %s", operation), "error", err)
	}
	c.JSON(http.StatusInternalServerError, APIError{
		Error: fmt.Sprintf("failed to %s", operation),
		Code:  CodeInternalError,
	})
}

// RespondOK sends a 200 OK response with the given data.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// RespondCreated sends a 201 Created response with the given data.
func RespondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// RespondSuccess sends {"success": true}.
func RespondSuccess(c *gin.Context) {
	c.JSON(http.StatusOK, Success{Success: true})
}
