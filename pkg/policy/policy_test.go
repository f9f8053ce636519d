package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLPolicy_Check(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		denied  []string
		url     string
		wantErr bool
	}{
		{
			name: "empty policy allows http",
			url:  "https://example.com/page",
		},
		{
			name: "about:blank always allowed",
			allowed: []string{
				"example.com",
			},
			url: "about:blank",
		},
		{
			name:    "file scheme refused",
			url:     "file:///etc/passwd",
			wantErr: true,
		},
		{
			name:    "host allowed by exact pattern",
			allowed: []string{"example.com"},
			url:     "https://example.com/anything",
		},
		{
			name:    "host allowed by wildcard pattern",
			allowed: []string{"*.example.com"},
			url:     "https://docs.example.com/",
		},
		{
			name:    "host outside allow list refused",
			allowed: []string{"*.example.com"},
			url:     "https://evil.com/",
			wantErr: true,
		},
		{
			name:   "denied host refused",
			denied: []string{"internal.example.com"},
			url:    "https://internal.example.com/",

			wantErr: true,
		},
		{
			name:    "deny wins over allow",
			allowed: []string{"*.example.com"},
			denied:  []string{"internal.example.com"},
			url:     "https://internal.example.com/",
			wantErr: true,
		},
		{
			name:    "full URL pattern matches path",
			denied:  []string{"example.com/admin/*"},
			url:     "https://example.com/admin/users",
			wantErr: true,
		},
		{
			name:   "full URL pattern leaves other paths alone",
			denied: []string{"example.com/admin/*"},
			url:    "https://example.com/public",
		},
		{
			name:    "URL without host refused",
			url:     "https://",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.allowed, tt.denied)
			require.NoError(t, err)

			err = p.Check(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNew_InvalidPattern(t *testing.T) {
	_, err := New([]string{"[unclosed"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid allowed pattern")

	_, err = New(nil, []string{"[unclosed"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid blocked pattern")
}
