package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitRepository(t *testing.T) {
	owner, repo, ok := SplitRepository("octocat/hello-world")
	assert.True(t, ok)
	assert.Equal(t, "octocat", owner)
	assert.Equal(t, "hello-world", repo)

	for _, bad := range []string{"", "octocat", "/hello", "octocat/", "a/b/c"} {
		assert.False(t, IsRepository(bad), bad)
	}
}
