package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	info := Info()
	assert.Contains(t, info, "kestrel")
	assert.Contains(t, info, Version)
	assert.Contains(t, info, runtime.GOOS+"/"+runtime.GOARCH)
}

func TestInfoTruncatesCommit(t *testing.T) {
	orig := Commit
	t.Cleanup(func() { Commit = orig })

	Commit = "abc1234567890"
	info := Info()
	assert.Contains(t, info, "abc1234")
	assert.NotContains(t, info, "abc12345")
}

func TestShortCommit(t *testing.T) {
	assert.Equal(t, "abcdefg", shortCommit("abcdefghij"))
	assert.Equal(t, "abc", shortCommit("abc"))
	assert.Equal(t, "", shortCommit(""))
	assert.Equal(t, "1234567", shortCommit("1234567"))
}
