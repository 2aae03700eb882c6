package collectionfs

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathError(t *testing.T) {
	t.Parallel()

	parts := Parts{[]byte("dir"), {0xff}}
	err := NewPathError("rmdir", parts, ErrNotEmpty)
	parts[0][0] = 'X'

	assert.Equal(t, "rmdir /dir/\uFFFD: directory not empty", err.Error())
	assert.ErrorIs(t, err, ErrNotEmpty)

	var pathErr *PathError
	require.ErrorAs(t, error(err), &pathErr)
	assert.Equal(t, "rmdir", pathErr.Op)
}

func TestErrorKinds_MatchStdlib(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, NewPathError("open", ParseParts("x"), ErrNotFound), fs.ErrNotExist)
	assert.ErrorIs(t, NewPathError("mkdir", ParseParts("x"), ErrExist), fs.ErrExist)
	assert.ErrorIs(t, NewPathError("touch", nil, ErrUnsupported), errors.ErrUnsupported)
	assert.NotErrorIs(t, NewPathError("unlink", nil, ErrIsDir), ErrNotDir)
}
