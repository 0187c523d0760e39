package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/razorcore/internal/trash"
)

func TestPathFromURI(t *testing.T) {
	tests := []struct {
		uri, want string
		ok        bool
	}{
		{"file:///home/user/Pictures", "/home/user/Pictures", true},
		{"file://localhost/tmp/a%20b.txt", "/tmp/a b.txt", true},
		{"/tmp/plain/", "/tmp/plain", true},
		{"trash:///", trash.Location, true},
		{"file://server/share", "", false},
		{"smb://server/share", "", false},
		{"trash:///deep/item", "", false},
	}
	for _, tt := range tests {
		got, err := pathFromURI(tt.uri)
		if !tt.ok {
			assert.Error(t, err, tt.uri)
			continue
		}
		require.NoError(t, err, tt.uri)
		assert.Equal(t, tt.want, got, tt.uri)
	}
}

func TestFileManagerShowRequests(t *testing.T) {
	s := newFileManagerService()
	obj := fileManagerObject{s}

	assert.Nil(t, obj.ShowFolders([]string{"file:///tmp", "smb://x/y"}, ""))
	assert.Nil(t, obj.ShowItems([]string{"file:///tmp/a.txt", "file:///"}, ""))
	assert.Nil(t, obj.ShowItemProperties([]string{"file:///tmp/b.txt"}, ""))

	var got []ShowRequest
	for len(s.Requests()) > 0 {
		got = append(got, <-s.Requests())
	}
	assert.Equal(t, []ShowRequest{
		{Kind: ShowFolder, Folder: "/tmp"},
		{Kind: ShowItem, Folder: "/tmp", Item: "/tmp/a.txt"},
		{Kind: ShowProperties, Folder: "/tmp", Item: "/tmp/b.txt"},
	}, got)
	assert.NoError(t, s.Close())
}
