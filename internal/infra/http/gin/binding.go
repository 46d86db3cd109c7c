package ginserver

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"stayfinder/internal/domain/listings"
)

// registerValidators installs the domain value rules into gin's validator so
// request structs can declare them in binding tags.
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterValidation("propertytype", validPropertyType)
	v.RegisterValidation("listingstatus", validListingStatus)
	v.RegisterValidation("futuredate", validFutureDate)
}

func validPropertyType(fl validator.FieldLevel) bool {
	switch listings.PropertyType(fl.Field().String()) {
	case listings.PropertyApartment, listings.PropertyHouse, listings.PropertyVilla,
		listings.PropertyCabin, listings.PropertyCondo, listings.PropertyHotel,
		listings.PropertyOther:
		return true
	}
	return false
}

func validListingStatus(fl validator.FieldLevel) bool {
	switch listings.Status(fl.Field().String()) {
	case listings.StatusActive, listings.StatusInactive, listings.StatusSuspended:
		return true
	}
	return false
}

func validFutureDate(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return t.After(time.Now())
}
