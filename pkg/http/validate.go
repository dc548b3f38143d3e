package http

import (
	"errors"
	"fmt"

	"TrueSignal/pkg/validation"

	"github.com/creasty/defaults"
	"github.com/labstack/echo/v4"
)

var validate = validation.New()

// ReadAndValidateRequest binds the request (path, query and body), applies
// `default` tags and validates the result.
func ReadAndValidateRequest(c echo.Context, req interface{}) interface{} {
	// Bind request
	if err := c.Bind(req); err != nil {
		return validatorDefaultRules(err)
	}

	// Set default values
	if err := defaults.Set(req); err != nil {
		return validatorDefaultRules(err)
	}

	// Validate struct
	issues, err := validate.Struct(c.Request().Context(), req)
	if err != nil {
		return validatorDefaultRules(err)
	}
	if len(issues) > 0 {
		errs := make([]ValidationError, 0, len(issues))
		for _, i := range issues {
			errs = append(errs, ValidationError{
				Code:    i.Code,
				Field:   i.Path,
				Message: i.Message,
				Params:  i.Params,
			})
		}
		return errs
	}

	return nil
}

func validatorDefaultRules(err error) interface{} {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return []ValidationError{{
			Code:    "ERR_UNKNOWN",
			Message: fmt.Sprintf("%v", he.Message),
		}}
	}

	return []ValidationError{{
		Code:    "ERR_UNKNOWN",
		Message: err.Error(),
	}}
}
