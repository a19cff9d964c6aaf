package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	appvalidator "github.com/homecare/visit-api/pkg/validator"
)

// RegisterValidation installs the custom binding tags (date, clock,
// gender) on gin's validator. Call once before serving.
func RegisterValidation() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding engine %T", binding.Validator.Engine())
	}
	return appvalidator.Register(v)
}
