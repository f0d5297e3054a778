package config

import "testing"

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "already canonical",
			in:   "https://portainer.example.com",
			want: "https://portainer.example.com",
		},
		{
			name: "trailing slash",
			in:   "https://portainer.example.com/",
			want: "https://portainer.example.com",
		},
		{
			name: "multiple trailing slashes",
			in:   "https://portainer.example.com///",
			want: "https://portainer.example.com",
		},
		{
			name: "api suffix",
			in:   "https://portainer.example.com/api",
			want: "https://portainer.example.com",
		},
		{
			name: "api suffix with trailing slash",
			in:   "https://portainer.example.com/api/",
			want: "https://portainer.example.com",
		},
		{
			name: "api sub-path",
			in:   "https://portainer.example.com/api/stacks",
			want: "https://portainer.example.com",
		},
		{
			name: "query string",
			in:   "https://portainer.example.com?token=x",
			want: "https://portainer.example.com",
		},
		{
			name: "query string after api",
			in:   "https://portainer.example.com/api/stacks?endpointId=2",
			want: "https://portainer.example.com",
		},
		{
			name: "fragment",
			in:   "https://portainer.example.com/#home",
			want: "https://portainer.example.com",
		},
		{
			name: "port and path prefix",
			in:   "https://host:9443/portainer/api/",
			want: "https://host:9443/portainer",
		},
		{
			name: "everything combined",
			in:   "https://host:9443/portainer/api/stacks/?filters=x",
			want: "https://host:9443/portainer",
		},
		{
			name: "api in hostname untouched",
			in:   "https://api.example.com",
			want: "https://api.example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeBaseURL(tt.in)
			if got != tt.want {
				t.Errorf("NormalizeBaseURL(%q) = %q, want %q", tt.in, got, tt.want)
			}

			// Normalizing the canonical form must be a no-op.
			again := NormalizeBaseURL(got)
			if again != got {
				t.Errorf("NormalizeBaseURL not idempotent: %q -> %q", got, again)
			}
		})
	}
}
