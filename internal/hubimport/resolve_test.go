package hubimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSptVersionFromLabel(t *testing.T) {
	tests := []struct {
		label string
		want  string
		ok    bool
	}{
		{"SPT 3.9.0", "3.9.0", true},
		{"spt 3.10", "3.10.0", true},
		{"SPT-AKI 3.7.6", "3.7.6", true},
		{" SPT v3.8.3 ", "3.8.3", true},
		{"SPT 4.0.0-beta.2", "4.0.0-beta.2", true},
		{"Outdated", "", false},
		{"SPT Latest", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := SptVersionFromLabel(tt.label)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConstraintFromLabels(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		want   string
	}{
		{"none", nil, ""},
		{"not versions", []string{"Client", "Server"}, ""},
		{"single", []string{"SPT 3.9.0"}, "~3.9.0"},
		{"single patch", []string{"SPT 3.8.3"}, "~3.8.0"},
		{"range", []string{"SPT 3.9.0", "SPT 3.8.0", "SPT 3.8.3"}, ">=3.8.0 <=3.9.0"},
		{"duplicates", []string{"SPT 3.9.0", "SPT 3.9.0"}, "~3.9.0"},
		{"mixed", []string{"Server", "SPT 3.10.0", "SPT 3.9.0"}, ">=3.9.0 <=3.10.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConstraintFromLabels(tt.labels))
		})
	}
}

func TestLicenseResolver(t *testing.T) {
	r := NewLicenseResolver()
	r.Add(1, 11, "MIT License")
	r.Add(2, 12, "CC BY-NC-SA 4.0")

	assert.Equal(t, int64(11), *r.Resolve(1, ""))
	assert.Equal(t, int64(12), *r.Resolve(99, "cc  by-nc-sa 4.0"))
	assert.Nil(t, r.Resolve(99, "Proprietary"))
	assert.Nil(t, r.Resolve(0, ""))
}

func TestStripPasswordPrefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Bcrypt:$2y$10$abcdefghijklmnopqrstuv", "$2y$10$abcdefghijklmnopqrstuv"},
		{"$2y$10$abcdefghijklmnopqrstuv", "$2y$10$abcdefghijklmnopqrstuv"},
		{"wcf1:deadbeef", ""},
		{"plain", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripPasswordPrefix(tt.in), tt.in)
	}
}
