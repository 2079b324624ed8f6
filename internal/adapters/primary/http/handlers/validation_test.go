package handlers

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

func TestRegisterValidation_Duration(t *testing.T) {
	registerValidation()

	type banBody struct {
		Duration string `json:"duration" binding:"omitempty,duration"`
	}

	tests := []struct {
		value string
		valid bool
	}{
		{"", true},
		{"24h", true},
		{"90m", true},
		{"-1h", false},
		{"forever", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(&banBody{Duration: tt.value})
			assert.Equal(t, tt.valid, err == nil, err)
		})
	}
}
