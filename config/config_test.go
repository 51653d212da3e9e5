package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAPIKeys(t *testing.T) {
	keys := parseAPIKeys("admin-key:ADMIN, books-key:books,:MEMBERS,broken,")
	assert.Equal(t, map[string]string{
		"admin-key": "ADMIN",
		"books-key": "BOOKS",
	}, keys)
}

func TestDefaultAPIKeys(t *testing.T) {
	keys := parseAPIKeys(defaultAPIKeys)
	assert.Equal(t, "ADMIN", keys["admin-api-key-123"])
	assert.Equal(t, "BOOKS", keys["books-api-key-456"])
	assert.Equal(t, "AUTHORS", keys["authors-api-key-789"])
	assert.Equal(t, "BORROWED_BOOKS", keys["borrowed-books-api-key-101"])
}
