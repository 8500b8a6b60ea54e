package handlers

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type bindTarget struct {
	AccountNumber string  `json:"account_number"`
	Amount        float64 `json:"amount"`
}

func TestBindNestedOrFlat(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		key         string
		body        string
		expected    bindTarget
		expectError bool
	}{
		{
			name:        "Nested Structure",
			key:         "offer",
			body:        `{"offer": {"account_number": "ACC-1001", "amount": 70.5}}`,
			expected:    bindTarget{AccountNumber: "ACC-1001", Amount: 70.5},
			expectError: false,
		},
		{
			name:        "Flat Structure",
			key:         "offer",
			body:        `{"account_number": "ACC-1002", "amount": 25}`,
			expected:    bindTarget{AccountNumber: "ACC-1002", Amount: 25},
			expectError: false,
		},
		{
			name:        "Nested Structure with Missing Key Fallback",
			key:         "offer",
			body:        `{"other": "value", "account_number": "ACC-1003", "amount": 40}`,
			expected:    bindTarget{AccountNumber: "ACC-1003", Amount: 40},
			expectError: false,
		},
		{
			name:        "Nested Structure with Different Key",
			key:         "consumer",
			body:        `{"consumer": {"account_number": "ACC-1004", "amount": 35}}`,
			expected:    bindTarget{AccountNumber: "ACC-1004", Amount: 35},
			expectError: false,
		},
		{
			name:        "Invalid JSON",
			key:         "offer",
			body:        `{"account_number": "ACC-1005", "amount": "invalid"}`, // amount is a number
			expected:    bindTarget{},
			expectError: true,
		},
		{
			name:        "Nested but Invalid Content",
			key:         "offer",
			body:        `{"offer": {"account_number": "ACC-1006", "amount": "invalid"}}`,
			expected:    bindTarget{},
			expectError: true,
		},
		{
			name:        "Nested Key Present but Invalid Type",
			key:         "offer",
			body:        `{"offer": "some string"}`,
			expected:    bindTarget{},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("POST", "/", bytes.NewBufferString(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var result bindTarget
			err := BindNestedOrFlat(c, tt.key, &result)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}
