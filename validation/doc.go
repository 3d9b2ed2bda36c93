// Package validation provides input validation for participant settings.
//
// It supports struct tag validation (using the validator library) and
// programmatic validation with error collection. Both report failures as
// errors.AppError values with per-field details.
//
// # Struct Tag Validation
//
//	type Settings struct {
//	    Host string `validate:"required"`
//	    Port int    `validate:"min=1,max=65535"`
//	}
//	err := validation.Validate(settings)
//
// # Collected Checks
//
//	var errs validation.Errors
//	errs.Check(len(steps) > 0, "process.steps", "must not be empty")
//	err := errs.Err()
package validation
