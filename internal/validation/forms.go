package validation

import (
	"regexp"

	domainauth "github.com/target/catalog-admin/internal/domain/auth"
	"github.com/target/catalog-admin/internal/domain/model"
)

// Form rules shared by the CLI and the services.
const (
	UsernameMinLength = 3
	PasswordMinLength = 6
	NameMinLength     = 2
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Login validates login credentials.
func Login(creds domainauth.Credentials) map[string]string {
	return New().
		Validate("username", creds.Username,
			Required("Username"),
			MinLength("Username", UsernameMinLength)).
		Validate("password", creds.Password,
			Required("Password")).
		Errors()
}

// Register validates an account registration.
func Register(reg domainauth.Registration) map[string]string {
	fv := New().
		Validate("username", reg.Username,
			Required("Username"),
			MinLength("Username", UsernameMinLength)).
		Validate("email", reg.Email,
			Required("Email"),
			Pattern(emailPattern, "Please enter a valid email")).
		Validate("password", reg.Password,
			Required("Password"),
			MinLength("Password", PasswordMinLength)).
		Validate("firstName", reg.FirstName,
			MinLength("First name", NameMinLength)).
		Validate("lastName", reg.LastName,
			MinLength("Last name", NameMinLength))

	if reg.ConfirmPassword == "" {
		fv.errors["confirmPassword"] = "Please confirm your password"
	} else {
		fv.Validate("confirmPassword", reg.ConfirmPassword,
			Equals(reg.Password, "Passwords do not match"))
	}
	return fv.Errors()
}

// Profile validates a profile update.
func Profile(u model.UserUpdate) map[string]string {
	return New().
		Validate("username", u.Username,
			Required("Username"),
			MinLength("Username", UsernameMinLength)).
		Validate("email", u.Email,
			Required("Email"),
			Pattern(emailPattern, "Please enter a valid email")).
		Validate("firstName", u.FirstName,
			MinLength("First name", NameMinLength)).
		Validate("lastName", u.LastName,
			MinLength("Last name", NameMinLength)).
		Errors()
}

// Product validates a product form. An empty stock quantity is allowed.
func Product(f model.ProductForm) map[string]string {
	return New().
		Validate("name", f.Name,
			Required("Product name"),
			MaxLength("Product name", 255)).
		Validate("price", f.Price,
			Required("Price"),
			NumberAtLeast(0, "Price must be a valid number greater than or equal to 0")).
		Validate("category", f.Category,
			Required("Category")).
		Validate("stockQuantity", f.StockQuantity,
			IntAtLeast(0, "Stock quantity must be a valid number greater than or equal to 0")).
		Errors()
}
