package token_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aelexs/tokenkit/internal/token"
)

func TestParseTokenFromAuthorization(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"bearer token", "Bearer abcd.efgh.ijkl", "abcd.efgh.ijkl"},
		{"empty header", "", ""},
		{"single field", "onlyonepart", ""},
		{"scheme is not checked", "Basic dXNlcjpwYXNz", "dXNlcjpwYXNz"},
		{"lowercase scheme", "bearer abc", "abc"},
		{"extra fields are ignored", "Bearer abc extra", "abc"},
		{"double space yields empty field", "Bearer  abc", ""},
		{"trailing space only", "Bearer ", ""},
		{"leading space shifts fields", " Bearer abc", "Bearer"},
		{"tabs are not separators", "Bearer\tabc", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := token.ParseTokenFromAuthorization(tt.header)
			assert.Equal(t, tt.want, got)
		})
	}
}
