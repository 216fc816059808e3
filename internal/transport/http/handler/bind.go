package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// missingRequired reports whether binding failed because a required field
// was absent or empty.
func missingRequired(err error) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return true
		}
	}
	return false
}
