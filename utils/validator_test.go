package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validatorFixture struct {
	Email string `validate:"required,email"`
	Phone string `validate:"required,phone"`
	Level string `validate:"omitempty,oneof=low medium high"`
}

func TestValidateStruct(t *testing.T) {
	vs := NewValidationService()

	t.Run("valid struct passes", func(t *testing.T) {
		errs := vs.ValidateStruct(validatorFixture{
			Email: "asha@example.com",
			Phone: "+91 98765 43210",
			Level: "high",
		})
		assert.Empty(t, errs)
	})

	t.Run("missing fields reported with messages", func(t *testing.T) {
		errs := vs.ValidateStruct(validatorFixture{})
		require.Len(t, errs, 2)
		assert.Equal(t, "Email is required", errs[0].Message)
		assert.Equal(t, "required", errs[0].Tag)
	})

	t.Run("bad email", func(t *testing.T) {
		errs := vs.ValidateStruct(validatorFixture{Email: "nope", Phone: "+919876543210"})
		require.Len(t, errs, 1)
		assert.Equal(t, "Invalid email format", errs[0].Message)
	})

	t.Run("oneof violation names the choices", func(t *testing.T) {
		errs := vs.ValidateStruct(validatorFixture{
			Email: "asha@example.com",
			Phone: "+919876543210",
			Level: "extreme",
		})
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Message, "low medium high")
	})
}

func TestPhoneValidation(t *testing.T) {
	vs := NewValidationService()

	valid := []string{
		"+919876543210",
		"+91 98765 43210",
		"9876543210",
		"+1 (555) 123-4567",
	}
	for _, phone := range valid {
		errs := vs.ValidateStruct(validatorFixture{Email: "a@b.com", Phone: phone})
		assert.Empty(t, errs, "expected %q to be valid", phone)
	}

	invalid := []string{
		"12345",
		"not-a-phone",
		"++919876543210",
		"98765432101234567890123",
	}
	for _, phone := range invalid {
		errs := vs.ValidateStruct(validatorFixture{Email: "a@b.com", Phone: phone})
		assert.NotEmpty(t, errs, "expected %q to be rejected", phone)
	}
}
