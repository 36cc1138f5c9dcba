package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// nonFieldErrors collects errors that belong to the whole form
const nonFieldErrors = "__all__"

// usernamePattern matches letters, digits and @/./+/-/_
var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

var (
	validatorsOnce sync.Once
	validatorsErr  error
)

// registerValidators teaches gin's validator the site's custom rules and
// makes it report fields by their form names
func registerValidators() error {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			validatorsErr = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		})
		if err != nil {
			validatorsErr = fmt.Errorf("failed to register username validator: %w", err)
		}
	})
	return validatorsErr
}

// FormErrors maps form fields to their error messages
type FormErrors map[string][]string

// Add records an error on field
func (e FormErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Any reports whether the form has errors
func (e FormErrors) Any() bool {
	return len(e) > 0
}

// NonField returns the errors not tied to a single field
func (e FormErrors) NonField() []string {
	return e[nonFieldErrors]
}

// bindForm binds the request form into form and returns the validation errors
func bindForm(c *gin.Context, form any) FormErrors {
	errs := FormErrors{}
	// Picks urlencoded or multipart binding from the Content-Type
	err := c.ShouldBind(form)
	if err == nil {
		return errs
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errs.Add(nonFieldErrors, "The submitted form could not be read.")
		return errs
	}

	for _, fe := range validationErrors {
		errs.Add(fe.Field(), validationMessage(fe))
	}
	return errs
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "eqfield":
		return "The two password fields didn't match."
	default:
		return "Enter a valid value."
	}
}

// requireText trims *value and records a required error when nothing is left
func requireText(errs FormErrors, field string, value *string) {
	*value = strings.TrimSpace(*value)
	if *value == "" && len(errs[field]) == 0 {
		errs.Add(field, "This field is required.")
	}
}

// PostForm is the create/edit post form
type PostForm struct {
	Title       string `form:"title" binding:"required,max=256"`
	Text        string `form:"text" binding:"required"`
	PubDate     string `form:"pub_date" binding:"required"`
	Location    string `form:"location"`
	Category    string `form:"category"`
	IsPublished bool   `form:"is_published"`
	ClearImage  bool   `form:"image_clear"`
}

// CommentForm is the add/edit comment form
type CommentForm struct {
	Text string `form:"text" binding:"required"`
}

// ProfileForm edits the current user's profile
type ProfileForm struct {
	Username  string `form:"username" binding:"required,max=150,username"`
	FirstName string `form:"first_name" binding:"max=150"`
	LastName  string `form:"last_name" binding:"max=150"`
	Email     string `form:"email" binding:"omitempty,max=254,email"`
}

// RegistrationForm creates an account
type RegistrationForm struct {
	Username  string `form:"username" binding:"required,max=150,username"`
	FirstName string `form:"first_name" binding:"max=30"`
	LastName  string `form:"last_name" binding:"max=30"`
	Email     string `form:"email" binding:"required,max=254,email"`
	Password1 string `form:"password1" binding:"required"`
	Password2 string `form:"password2" binding:"required,eqfield=Password1"`
}

// LoginForm authenticates a user
type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}

// PasswordChangeForm changes the current user's password
type PasswordChangeForm struct {
	OldPassword  string `form:"old_password" binding:"required"`
	NewPassword1 string `form:"new_password1" binding:"required"`
	NewPassword2 string `form:"new_password2" binding:"required,eqfield=NewPassword1"`
}

// PasswordResetForm requests a reset link
type PasswordResetForm struct {
	Email string `form:"email" binding:"required,max=254,email"`
}

// SetPasswordForm chooses a new password from a reset link
type SetPasswordForm struct {
	NewPassword1 string `form:"new_password1" binding:"required"`
	NewPassword2 string `form:"new_password2" binding:"required,eqfield=NewPassword1"`
}
