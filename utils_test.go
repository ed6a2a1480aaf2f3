package edgeserve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sagarc03/edgeserve"
)

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "", edgeserve.ObjectKey("/"))
	assert.Equal(t, "abc123.zip", edgeserve.ObjectKey("/abc123.zip"))
	assert.Equal(t, "dir/file.txt", edgeserve.ObjectKey("/dir/file.txt"))
}

func TestHashID(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"abc123.zip", "abc123"},
		{"abc123.tar.gz", "abc123"},
		{"abc123", "abc123"},
		{".hidden", ""},
		{"dir/abc.zip", "dir/abc"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, edgeserve.HashID(tt.key))
		})
	}
}

func TestIsValidKey(t *testing.T) {
	tests := []struct {
		key   string
		valid bool
	}{
		{"abc123.zip", true},
		{"dir/sub/file.txt", true},
		{"my song.zip", true},
		{"v1..2.zip", true},
		{"a..b/c...d", true},
		{"", false},
		{".", false},
		{"/abs", false},
		{"dir/", false},
		{"../secret", false},
		{"a/../b", false},
		{"a/..", false},
		{"a//b", false},
		{"a/./b", false},
		{"./a", false},
		{"a/.", false},
		{`a\b`, false},
		{"a\x00b", false},
		{"a\tb", false},
		{"a\x7fb", false},
		{"\xff", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.valid, edgeserve.IsValidKey(tt.key))
		})
	}
}

func TestNewDownloadEvent(t *testing.T) {
	ev := edgeserve.NewDownloadEvent("abc123.zip", "203.0.113.7")

	assert.Equal(t, "abc123", ev.Hash)
	assert.Equal(t, "HASH", ev.Type)
	assert.Equal(t, "203.0.113.7", ev.Remote)
}

func TestCachedResponse_OK(t *testing.T) {
	assert.True(t, edgeserve.CachedResponse{Status: 200}.OK())
	assert.False(t, edgeserve.CachedResponse{Status: 404}.OK())
	assert.False(t, edgeserve.CachedResponse{}.OK())
}

func TestTables_Validate(t *testing.T) {
	assert.NoError(t, edgeserve.Tables{Names: "display_names"}.Validate())
	assert.Error(t, edgeserve.Tables{}.Validate())
	assert.Error(t, edgeserve.Tables{Names: "Bad-Name"}.Validate())
}
