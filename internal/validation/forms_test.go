package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/target/catalog-admin/internal/domain/auth"
	"github.com/target/catalog-admin/internal/domain/model"
)

func TestLogin(t *testing.T) {
	tests := []struct {
		name  string
		creds domainauth.Credentials
		want  map[string]string
	}{
		{
			name:  "valid",
			creds: domainauth.Credentials{Username: "alice", Password: "secret1"},
			want:  map[string]string{},
		},
		{
			name:  "missing everything",
			creds: domainauth.Credentials{},
			want: map[string]string{
				"username": "Username is required",
				"password": "Password is required",
			},
		},
		{
			name:  "short username, any password length",
			creds: domainauth.Credentials{Username: "al", Password: "x"},
			want:  map[string]string{"username": "Username must be at least 3 characters"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Login(tt.creds))
		})
	}
}

func TestRegister(t *testing.T) {
	valid := domainauth.Registration{
		Username:        "carol",
		Email:           "carol@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}
	assert.Empty(t, Register(valid))

	tests := []struct {
		name   string
		mutate func(*domainauth.Registration)
		field  string
		want   string
	}{
		{name: "bad email", mutate: func(r *domainauth.Registration) { r.Email = "carol@example" }, field: "email", want: "Please enter a valid email"},
		{name: "email with space", mutate: func(r *domainauth.Registration) { r.Email = "ca rol@example.com" }, field: "email", want: "Please enter a valid email"},
		{name: "missing email", mutate: func(r *domainauth.Registration) { r.Email = "" }, field: "email", want: "Email is required"},
		{name: "short password", mutate: func(r *domainauth.Registration) { r.Password = "abc"; r.ConfirmPassword = "abc" }, field: "password", want: "Password must be at least 6 characters"},
		{name: "missing confirmation", mutate: func(r *domainauth.Registration) { r.ConfirmPassword = "" }, field: "confirmPassword", want: "Please confirm your password"},
		{name: "mismatch", mutate: func(r *domainauth.Registration) { r.ConfirmPassword = "secret2" }, field: "confirmPassword", want: "Passwords do not match"},
		{name: "short first name", mutate: func(r *domainauth.Registration) { r.FirstName = "C" }, field: "firstName", want: "First name must be at least 2 characters"},
		{name: "short last name", mutate: func(r *domainauth.Registration) { r.LastName = "D" }, field: "lastName", want: "Last name must be at least 2 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := valid
			tt.mutate(&reg)
			errs := Register(reg)
			assert.Equal(t, tt.want, errs[tt.field])
			assert.Len(t, errs, 1)
		})
	}
}

func TestProfile(t *testing.T) {
	assert.Empty(t, Profile(model.UserUpdate{Username: "alice", Email: "alice@example.com"}))
	errs := Profile(model.UserUpdate{Username: "al", Email: "nope", FirstName: "A"})
	assert.Equal(t, "Username must be at least 3 characters", errs["username"])
	assert.Equal(t, "Please enter a valid email", errs["email"])
	assert.Equal(t, "First name must be at least 2 characters", errs["firstName"])
}

func TestProduct(t *testing.T) {
	tests := []struct {
		name string
		form model.ProductForm
		want map[string]string
	}{
		{
			name: "valid without stock",
			form: model.ProductForm{Name: "Lamp", Price: "12.50", Category: "Home & Garden"},
			want: map[string]string{},
		},
		{
			name: "free product",
			form: model.ProductForm{Name: "Sample", Price: "0", Category: "Other", StockQuantity: "3"},
			want: map[string]string{},
		},
		{
			name: "missing required fields",
			form: model.ProductForm{},
			want: map[string]string{
				"name":     "Product name is required",
				"price":    "Price is required",
				"category": "Category is required",
			},
		},
		{
			name: "negative numbers",
			form: model.ProductForm{Name: "Lamp", Price: "-1", Category: "Books", StockQuantity: "-2"},
			want: map[string]string{
				"price":         "Price must be a valid number greater than or equal to 0",
				"stockQuantity": "Stock quantity must be a valid number greater than or equal to 0",
			},
		},
		{
			name: "non numeric",
			form: model.ProductForm{Name: "Lamp", Price: "cheap", Category: "Books", StockQuantity: "lots"},
			want: map[string]string{
				"price":         "Price must be a valid number greater than or equal to 0",
				"stockQuantity": "Stock quantity must be a valid number greater than or equal to 0",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Product(tt.form))
		})
	}
}
