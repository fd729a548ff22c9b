package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeJoin(t *testing.T) {
	root := filepath.Join(t.TempDir(), "root")

	tests := []struct {
		name    string
		rel     string
		want    string
		wantErr bool
	}{
		{name: "single segment", rel: "alice", want: filepath.Join(root, "alice")},
		{name: "nested", rel: "alice/abc.png", want: filepath.Join(root, "alice", "abc.png")},
		{name: "inner dot-dot stays inside", rel: "alice/../bob/x.png", want: filepath.Join(root, "bob", "x.png")},
		{name: "parent escape", rel: "../outside.png", wantErr: true},
		{name: "deep escape", rel: "alice/../../outside.png", wantErr: true},
		{name: "bare dot-dot", rel: "..", wantErr: true},
		{name: "absolute", rel: "/etc/passwd", wantErr: true},
		{name: "empty", rel: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SafeJoin(root, tt.rel)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrPathEscape)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCleanKey(t *testing.T) {
	got, err := CleanKey("alice//./abc.png")
	require.NoError(t, err)
	assert.Equal(t, "alice/abc.png", got)

	for _, key := range []string{"", ".", "..", "../x", "a/../../x", "/abs", `..\x`} {
		_, err := CleanKey(key)
		assert.ErrorIs(t, err, ErrPathEscape, "key %q", key)
	}
}
