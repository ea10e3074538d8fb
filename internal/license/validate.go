package license

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// LicenseInput holds the user-entered fields of a new license.
type LicenseInput struct {
	SoftwareName   string `json:"softwareName" validate:"required,max=200"`
	LicenseKey     string `json:"licenseKey" validate:"max=200"`
	TotalSeats     int    `json:"totalSeats" validate:"gt=0"`
	ExpirationDate string `json:"expirationDate" validate:"required"`
}

// UserInput holds the user-entered fields of a new user.
type UserInput struct {
	Name       string `json:"name" validate:"required,max=200"`
	Email      string `json:"email" validate:"required,email"`
	Department string `json:"department" validate:"max=200"`
}

// AssignInput is the request to bind a user to a license.
type AssignInput struct {
	UserID     string `json:"userId" validate:"required"`
	LicenseID  string `json:"licenseId" validate:"required"`
	AccessDate string `json:"accessDate"`
}

// Normalize trims the input and checks it. The parsed expiration date is returned.
func (in *LicenseInput) Normalize() (Date, error) {
	in.SoftwareName = strings.TrimSpace(in.SoftwareName)
	in.LicenseKey = strings.TrimSpace(in.LicenseKey)
	in.ExpirationDate = strings.TrimSpace(in.ExpirationDate)
	if err := check(in); err != nil {
		return Date{}, err
	}
	exp, err := ParseDate(in.ExpirationDate)
	if err != nil {
		return Date{}, &ValidationError{Field: "expirationDate", Reason: "must be a date in YYYY-MM-DD form"}
	}
	return exp, nil
}

func (in *UserInput) Normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Department = strings.TrimSpace(in.Department)
	return check(in)
}

// Normalize checks the ids and resolves the access date, defaulting to the day of now.
func (in *AssignInput) Normalize(now time.Time) (Date, error) {
	in.UserID = strings.TrimSpace(in.UserID)
	in.LicenseID = strings.TrimSpace(in.LicenseID)
	in.AccessDate = strings.TrimSpace(in.AccessDate)
	if err := check(in); err != nil {
		return Date{}, err
	}
	if in.AccessDate == "" {
		return DateOf(now), nil
	}
	d, err := ParseDate(in.AccessDate)
	if err != nil {
		return Date{}, &ValidationError{Field: "accessDate", Reason: "must be a date in YYYY-MM-DD form"}
	}
	return d, nil
}

func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return &ValidationError{Field: fe.Field(), Reason: reason(fe)}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "gt":
		return "must be greater than " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "failed " + fe.Tag() + " check"
	}
}
