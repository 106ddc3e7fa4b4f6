package utils

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Vietnamese mobile numbers, local or +84 form.
var vnPhone = regexp.MustCompile(`^(0|\+84)(3|5|7|8|9)[0-9]{8}$`)

// RegisterValidators adds the custom binding rules to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("vnphone", func(fl validator.FieldLevel) bool {
		return IsVNPhone(fl.Field().String())
	})
}

func IsVNPhone(s string) bool {
	return vnPhone.MatchString(s)
}
