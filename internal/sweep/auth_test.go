package sweep

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		secrets []string
		want    Decision
	}{
		{name: "no secret configured", header: "", secrets: nil, want: NoSecretConfigured},
		{name: "empty secrets ignored", header: "Bearer x", secrets: []string{"", ""}, want: NoSecretConfigured},
		{name: "matching token", header: "Bearer s3cret", secrets: []string{"s3cret"}, want: Authorized},
		{name: "matches second secret", header: "Bearer admin-key", secrets: []string{"cron-key", "admin-key"}, want: Authorized},
		{name: "wrong token", header: "Bearer nope", secrets: []string{"s3cret"}, want: Unauthorized},
		{name: "missing header", header: "", secrets: []string{"s3cret"}, want: Unauthorized},
		{name: "missing bearer prefix", header: "s3cret", secrets: []string{"s3cret"}, want: Unauthorized},
		{name: "empty bearer token", header: "Bearer ", secrets: []string{"s3cret"}, want: Unauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Authorize(tc.header, tc.secrets...))
		})
	}
}
