package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ersonp/kinship/internal/domain/entities"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Error codes.
const (
	CodeNotFound            = "NOT_FOUND"
	CodeValidation          = "VALIDATION_ERROR"
	CodeInvalidKind         = "INVALID_KIND"
	CodeSelfRelationship    = "SELF_RELATIONSHIP"
	CodePersonsNotFound     = "PERSONS_NOT_FOUND"
	CodeRelationshipExists  = "RELATIONSHIP_EXISTS"
	CodePartialRelationship = "PARTIAL_RELATIONSHIP"
	CodeInvalidPerson       = "INVALID_PERSON"
	CodeInvalidQuery        = "INVALID_QUERY"
	CodeInternal            = "INTERNAL_ERROR"
)

type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{entities.ErrInvalidKind, http.StatusBadRequest, CodeInvalidKind},
	{entities.ErrSelfRelationship, http.StatusBadRequest, CodeSelfRelationship},
	{entities.ErrInvalidPerson, http.StatusBadRequest, CodeInvalidPerson},
	{entities.ErrInvalidQuery, http.StatusBadRequest, CodeInvalidQuery},
	{entities.ErrPersonsNotFound, http.StatusUnprocessableEntity, CodePersonsNotFound},
	{entities.ErrPersonNotFound, http.StatusNotFound, CodeNotFound},
	{entities.ErrRelationshipExists, http.StatusConflict, CodeRelationshipExists},
	{entities.ErrPartialRelationship, http.StatusInternalServerError, CodePartialRelationship},
}

// statusFor maps a domain error to an HTTP status and code. Unknown errors
// are internal.
func statusFor(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, CodeInternal
}

func (a *api) respondError(c *gin.Context, err error) {
	status, code := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		a.logger.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
		if code == CodeInternal {
			message = "internal server error"
		}
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message, Code: code})
}

func notFound(c *gin.Context, what string) {
	c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Error: what + " not found", Code: CodeNotFound})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeValidation})
}
