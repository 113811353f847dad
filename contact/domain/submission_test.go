package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveIdentity(t *testing.T) {
	assert.Equal(t, "1.2.3.4", ResolveIdentity("1.2.3.4", "uid-1"))
	assert.Equal(t, "uid-1", ResolveIdentity("", "uid-1"))
	assert.Equal(t, "uid-1", ResolveIdentity(UnknownIdentity, "uid-1"))
	assert.Equal(t, UnknownIdentity, ResolveIdentity("", ""))
}
