package hub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestImagePaths(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"avatar", AvatarPath(12, "ab34ef", "png"), "images/avatars/ab/12-ab34ef.png"},
		{"avatar without id", AvatarPath(0, "ab34ef", "png"), ""},
		{"cover", CoverPhotoPath(7, "ffee00", "jpg"), "images/coverPhotos/ff/7-ffee00.jpg"},
		{"cover without hash", CoverPhotoPath(7, "", "jpg"), ""},
		{"icon", FileIconPath(99, "c0ffee", "webp"), "files/images/file/c0/99.webp"},
		{"icon short hash", FileIconPath(99, "c", "webp"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?,?,?", placeholders(3))
}

func TestInt64Args(t *testing.T) {
	assert.Equal(t, []interface{}{int64(1), int64(2)}, int64Args([]int64{1, 2}))
}

func TestUnixTime(t *testing.T) {
	assert.True(t, unixTime(0).IsZero())
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), unixTime(1704067200))
}

func TestTruthy(t *testing.T) {
	for _, v := range []string{"1", "true", " Yes ", "ON"} {
		assert.True(t, truthy(v), v)
	}
	for _, v := range []string{"", "0", "no", "off"} {
		assert.False(t, truthy(v), v)
	}
}
