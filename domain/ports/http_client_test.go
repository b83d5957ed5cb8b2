package ports

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPResponse_IsSuccess(t *testing.T) {
	tests := []struct {
		name string
		resp *HTTPResponse
		want bool
	}{
		{"nil", nil, false},
		{"ok", &HTTPResponse{StatusCode: 200}, true},
		{"no content", &HTTPResponse{StatusCode: 204}, true},
		{"redirect", &HTTPResponse{StatusCode: 302}, false},
		{"not found", &HTTPResponse{StatusCode: 404}, false},
		{"server error", &HTTPResponse{StatusCode: 503}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.resp.IsSuccess())
		})
	}
}
