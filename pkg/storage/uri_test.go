package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURI(t *testing.T) {
	u, err := ParseURI("s3://bucket/a/b")
	require.NoError(t, err)
	assert.True(t, u.HasScheme(S3Scheme))
	assert.Equal(t, "bucket", u.Host)
	assert.Equal(t, "a/b", u.Key())
	assert.Equal(t, "s3://bucket/a/b/c", u.AppendPath("c").String())

	u, err = ParseURI("mem://idx")
	require.NoError(t, err)
	assert.Equal(t, "mem://idx/HEAD", u.AppendPath("HEAD").String())

	u, err = ParseURI("relative/dir")
	require.NoError(t, err)
	assert.True(t, u.HasScheme(FileScheme))

	u, err = ParseURI("")
	require.NoError(t, err)
	assert.True(t, u.IsZero())
}

func TestURIText(t *testing.T) {
	var u URI
	require.NoError(t, u.UnmarshalText([]byte("mem://a/b")))
	b, err := u.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "mem://a/b", string(b))
}
