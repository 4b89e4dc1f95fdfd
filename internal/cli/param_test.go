package cli

import "testing"

func TestResolveParamName(t *testing.T) {
	tests := []struct {
		project string
		name    string
		want    string
	}{
		{"boxstrap", "tailscale/auth-key", "/boxstrap/tailscale/auth-key"},
		{"sandbox", "state/bucket", "/sandbox/state/bucket"},
		{"boxstrap", "/absolute/path", "/absolute/path"},
	}

	for _, tt := range tests {
		if got := resolveParamName(tt.project, tt.name); got != tt.want {
			t.Errorf("resolveParamName(%q, %q) = %q, want %q", tt.project, tt.name, got, tt.want)
		}
	}
}
