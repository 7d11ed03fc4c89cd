package service

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"

	"github.com/mmynk/lifeareas/internal/ordering"
	"github.com/mmynk/lifeareas/internal/storage"
)

// ValidationFieldHeader names the offending field on InvalidArgument errors.
const ValidationFieldHeader = "Validation-Field"

var (
	errUnauthenticated = errors.New("authentication required")
	errUserMismatch    = errors.New("user_id does not match the authenticated user")
	errInternal        = errors.New("internal error")
)

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequest checks msg against its validate tags. The first failing
// field is reported in the message and in the Validation-Field header.
func validateRequest(v *validator.Validate, msg any) error {
	err := v.Struct(msg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return connect.NewError(connect.CodeInvalidArgument, err)
	}

	fe := fieldErrs[0]
	connectErr := connect.NewError(connect.CodeInvalidArgument, errors.New(validationMessage(fe)))
	connectErr.Meta().Set(ValidationFieldHeader, fe.Field())
	return connectErr
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	case "gte":
		return fe.Field() + " must be greater than or equal to " + fe.Param()
	case "gt":
		return fe.Field() + " must be greater than " + fe.Param()
	case "email":
		return fe.Field() + " must be a valid email address"
	default:
		return fe.Field() + " is invalid"
	}
}

// toConnectError maps domain errors onto Connect codes. Unexpected errors are
// logged in full; clients only see their message when exposeDetail is set.
func toConnectError(err error, exposeDetail bool, procedure string) error {
	var connectErr *connect.Error
	switch {
	case errors.As(err, &connectErr):
		return connectErr
	case errors.Is(err, ordering.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, ordering.ErrNotFound)
	case errors.Is(err, ordering.ErrForbidden):
		return connect.NewError(connect.CodePermissionDenied, ordering.ErrForbidden)
	case errors.Is(err, ordering.ErrInvalidIndex):
		e := connect.NewError(connect.CodeInvalidArgument, ordering.ErrInvalidIndex)
		e.Meta().Set(ValidationFieldHeader, "to_index")
		return e
	}

	slog.Error("Internal failure", "procedure", procedure, "error", err)
	if exposeDetail {
		return connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewError(connect.CodeInternal, errInternal)
}
