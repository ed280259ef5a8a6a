// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package rewrite

import "testing"

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in   string
		want Version
	}{
		{"300 es", VersionES300},
		{"310 es", VersionES310},
		{" 320   es ", VersionES320},
		{"100 es", VersionES100},
		{"330", Version330},
		{"330 core", Version330},
		{"410 compatibility", Version410},
	}
	for _, tt := range tests {
		got, err := ParseVersion(tt.in)
		if err != nil {
			t.Fatalf("ParseVersion(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseVersion(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "es", "31 es", "3100", "310 es extra", "310 webgl"} {
		if _, err := ParseVersion(bad); err == nil {
			t.Errorf("ParseVersion(%q) should fail", bad)
		}
	}
}

func TestVersion_String(t *testing.T) {
	tests := []struct {
		v      Version
		str    string
		number string
	}{
		{VersionES300, "300 es", "300"},
		{VersionES310, "310 es", "310"},
		{VersionES100, "100 es", "100"},
		{Version330, "330 core", "330"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.str {
			t.Errorf("String() = %q, want %q", got, tt.str)
		}
		if got := tt.v.VersionNumber(); got != tt.number {
			t.Errorf("VersionNumber() = %q, want %q", got, tt.number)
		}
	}
	if !(Version{}).IsZero() || VersionES300.IsZero() {
		t.Error("IsZero() is wrong")
	}
}
