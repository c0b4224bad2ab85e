package models_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vaultn8n/vaultn8n/internal/models"
)

func TestSecretValidate(t *testing.T) {
	tests := []struct {
		name    string
		secret  models.Secret
		wantErr bool
	}{
		{
			name:   "valid",
			secret: models.Secret{Key: "service-A-token", Value: "s3cret"},
		},
		{
			name:   "empty value allowed",
			secret: models.Secret{Key: "empty", Value: ""},
		},
		{
			name:   "key at limit",
			secret: models.Secret{Key: strings.Repeat("k", models.MaxKeyLength), Value: "v"},
		},
		{
			// Limits count characters, not bytes: 100 two-byte runes fit.
			name:   "multibyte value at limit",
			secret: models.Secret{Key: "k", Value: strings.Repeat("ш", models.MaxValueLength)},
		},
		{
			name:   "multibyte key at limit",
			secret: models.Secret{Key: strings.Repeat("ш", models.MaxKeyLength), Value: "v"},
		},
		{
			name:    "empty key",
			secret:  models.Secret{Key: "", Value: "v"},
			wantErr: true,
		},
		{
			name:    "key too long",
			secret:  models.Secret{Key: strings.Repeat("k", models.MaxKeyLength+1), Value: "v"},
			wantErr: true,
		},
		{
			name:    "value too long",
			secret:  models.Secret{Key: "k", Value: strings.Repeat("v", models.MaxValueLength+1)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.secret.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrInvalidSecret)
				return
			}
			assert.NoError(t, err)
		})
	}
}
