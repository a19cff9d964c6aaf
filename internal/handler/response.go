package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apperrors "github.com/homecare/visit-api/pkg/errors"
	appvalidator "github.com/homecare/visit-api/pkg/validator"
)

// Response is the envelope of every JSON reply. Code mirrors the HTTP
// status.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(code int, message string, data interface{}) *Response {
	return &Response{Code: code, Message: message, Data: data}
}

func NewErrorResponse(code int, message string) *Response {
	return &Response{Code: code, Message: message}
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, NewSuccessResponse(http.StatusOK, "success", data))
}

func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, NewSuccessResponse(http.StatusCreated, message, data))
}

// Message replies 200 with a message and no data.
func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, NewSuccessResponse(http.StatusOK, message, nil))
}

// Abort writes an error envelope and stops the handler chain.
func Abort(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, NewErrorResponse(code, message))
}

// Error maps err onto the envelope. Unclassified errors are logged and
// reported as a generic 500.
func Error(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.NewInternal(err)
	}

	status := appErr.StatusCode()
	message := appErr.Message
	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", c.GetString(RequestIDKey)).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		message = "internal server error"
	}
	Abort(c, status, message)
}

// BindError reports a failed ShouldBind. Field rule violations are 422
// with per-field details; malformed bodies are 400.
func BindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, &Response{
			Code:    http.StatusUnprocessableEntity,
			Message: appvalidator.Summary(err),
			Data:    gin.H{"errors": appvalidator.Describe(err)},
		})
		return
	}
	Abort(c, http.StatusBadRequest, "invalid request body: "+err.Error())
}

// ParamID parses a uuid path parameter, replying 400 when malformed.
func ParamID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		Abort(c, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
