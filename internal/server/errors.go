package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/atriumhq/atrium/internal/auth/domain"
	"github.com/atriumhq/atrium/internal/authorization"
	bankdomain "github.com/atriumhq/atrium/internal/bank/domain"
	invoicedomain "github.com/atriumhq/atrium/internal/invoice/domain"
	maintenancedomain "github.com/atriumhq/atrium/internal/maintenance/domain"
	notifdomain "github.com/atriumhq/atrium/internal/notification/domain"
	paymentdomain "github.com/atriumhq/atrium/internal/payment/domain"
	rentaldomain "github.com/atriumhq/atrium/internal/rental/domain"
	roomdomain "github.com/atriumhq/atrium/internal/room/domain"
	tenantdomain "github.com/atriumhq/atrium/internal/tenant/domain"
	utilitydomain "github.com/atriumhq/atrium/internal/utility/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrTooManyRequests    = errors.New("too_many_requests")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidSession),
		errors.Is(err, authdomain.ErrSessionNotFound),
		errors.Is(err, authdomain.ErrSessionExpired),
		errors.Is(err, authdomain.ErrSessionRevoked):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_requests",
			Message: "too many requests",
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, authdomain.ErrInvalidRole),
		errors.Is(err, tenantdomain.ErrInvalidName),
		errors.Is(err, tenantdomain.ErrInvalidEmail),
		errors.Is(err, tenantdomain.ErrInvalidStatus),
		errors.Is(err, tenantdomain.ErrInvalidID),
		errors.Is(err, roomdomain.ErrInvalidNumber),
		errors.Is(err, roomdomain.ErrInvalidRate),
		errors.Is(err, roomdomain.ErrInvalidStatus),
		errors.Is(err, roomdomain.ErrInvalidID),
		errors.Is(err, rentaldomain.ErrInvalidTenant),
		errors.Is(err, rentaldomain.ErrInvalidRoom),
		errors.Is(err, rentaldomain.ErrInvalidAmount),
		errors.Is(err, rentaldomain.ErrInvalidInterval),
		errors.Is(err, rentaldomain.ErrInvalidPeriod),
		errors.Is(err, rentaldomain.ErrInvalidID),
		errors.Is(err, rentaldomain.ErrElectricityOptIn),
		errors.Is(err, invoicedomain.ErrInvalidRental),
		errors.Is(err, invoicedomain.ErrInvalidID),
		errors.Is(err, invoicedomain.ErrInvalidPeriod),
		errors.Is(err, invoicedomain.ErrInvalidPageToken),
		errors.Is(err, paymentdomain.ErrInvalidTarget),
		errors.Is(err, paymentdomain.ErrInvalidAmount),
		errors.Is(err, paymentdomain.ErrInvalidMethod),
		errors.Is(err, paymentdomain.ErrInvalidTenant),
		errors.Is(err, paymentdomain.ErrInvalidID),
		errors.Is(err, utilitydomain.ErrInvalidType),
		errors.Is(err, utilitydomain.ErrInvalidAmount),
		errors.Is(err, utilitydomain.ErrInvalidMonth),
		errors.Is(err, utilitydomain.ErrInvalidID),
		errors.Is(err, utilitydomain.ErrDuplicateCharge),
		errors.Is(err, bankdomain.ErrInvalidName),
		errors.Is(err, bankdomain.ErrInvalidAccount),
		errors.Is(err, bankdomain.ErrInvalidAmount),
		errors.Is(err, bankdomain.ErrInvalidDirection),
		errors.Is(err, bankdomain.ErrInvalidStatus),
		errors.Is(err, bankdomain.ErrInvalidID),
		errors.Is(err, maintenancedomain.ErrInvalidRoom),
		errors.Is(err, maintenancedomain.ErrInvalidCategory),
		errors.Is(err, maintenancedomain.ErrInvalidPriority),
		errors.Is(err, maintenancedomain.ErrInvalidStatus),
		errors.Is(err, maintenancedomain.ErrInvalidID),
		errors.Is(err, notifdomain.ErrInvalidTitle),
		errors.Is(err, notifdomain.ErrInvalidID),
		errors.Is(err, notifdomain.ErrInvalidTarget):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, tenantdomain.ErrNotFound),
		errors.Is(err, roomdomain.ErrNotFound),
		errors.Is(err, rentaldomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, paymentdomain.ErrNotFound),
		errors.Is(err, paymentdomain.ErrInvoiceUnknown),
		errors.Is(err, utilitydomain.ErrNotFound),
		errors.Is(err, bankdomain.ErrNotFound),
		errors.Is(err, bankdomain.ErrExpenseUnknown),
		errors.Is(err, maintenancedomain.ErrNotFound),
		errors.Is(err, notifdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, authdomain.ErrUserExists),
		errors.Is(err, tenantdomain.ErrTenantHasActiveRent),
		errors.Is(err, roomdomain.ErrDuplicateRoom),
		errors.Is(err, roomdomain.ErrRoomOccupied),
		errors.Is(err, roomdomain.ErrRoomNotVacant),
		errors.Is(err, roomdomain.ErrRoomHasRentals),
		errors.Is(err, rentaldomain.ErrNotActive),
		errors.Is(err, rentaldomain.ErrRoomNotAvailable),
		errors.Is(err, invoicedomain.ErrDuplicatePeriod),
		errors.Is(err, invoicedomain.ErrRentalNotActive),
		errors.Is(err, paymentdomain.ErrNotPending),
		errors.Is(err, utilitydomain.ErrExpenseLocked),
		errors.Is(err, bankdomain.ErrDuplicateAccount),
		errors.Is(err, bankdomain.ErrAccountInactive),
		errors.Is(err, bankdomain.ErrInsufficientFunds),
		errors.Is(err, bankdomain.ErrNonzeroBalance),
		errors.Is(err, maintenancedomain.ErrInvalidTransition):
		return true
	default:
		return false
	}
}

func conflictMessage(err error) string {
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return "conflict"
	}
	return msg
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

// classifyErrorForLog buckets errors for request logging.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= 500:
		return "server_error", payload.Type
	case status >= 400:
		return "client_error", payload.Type
	default:
		return "", payload.Type
	}
}
