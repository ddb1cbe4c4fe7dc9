package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Comment string `json:"-"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name   string
		input  sample
		fields []string
	}{
		{"valid", sample{Name: "An", Email: "an@example.com"}, nil},
		{"missing name", sample{Email: "an@example.com"}, []string{"name"}},
		{"missing both", sample{}, []string{"name", "email"}},
		{"bad email", sample{Name: "An", Email: "not-an-email"}, []string{"email"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Struct(tt.input)
			if tt.fields == nil {
				assert.Nil(t, errs)
				return
			}
			assert.Len(t, errs, len(tt.fields))
			for _, f := range tt.fields {
				assert.Contains(t, errs, f)
			}
		})
	}
}

func TestStruct_RequiredMessage(t *testing.T) {
	errs := Struct(sample{Email: "an@example.com"})
	assert.Equal(t, "name là bắt buộc", errs["name"])
}
