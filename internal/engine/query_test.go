package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnakeToCamel(t *testing.T) {
	assert.Equal(t, "helloWorld", snakeToCamel("hello_world"))
	assert.Equal(t, "getUserById", snakeToCamel("get_user_by_id"))
}

func TestCamelToSnake(t *testing.T) {
	assert.Equal(t, "hello_world", camelToSnake("helloWorld"))
	assert.Equal(t, "get_user_by_id", camelToSnake("getUserById"))
}

func TestSnakeToPascal(t *testing.T) {
	assert.Equal(t, "HelloWorld", snakeToPascal("hello_world"))
	assert.Equal(t, "GetUser", snakeToPascal("get_user"))
}

func TestKebabToCamel(t *testing.T) {
	assert.Equal(t, "helloWorld", kebabToCamel("hello-world"))
	assert.Equal(t, "getUserById", kebabToCamel("get-user-by-id"))
}

func TestCaseDetection(t *testing.T) {
	assert.True(t, isCamelCase("helloWorld"))
	assert.False(t, isCamelCase("HelloWorld"))
	assert.False(t, isCamelCase("hello"))
	assert.False(t, isCamelCase("HELLO"))

	assert.True(t, isPascalCase("HelloWorld"))
	assert.True(t, isPascalCase("GetUser"))
	assert.False(t, isPascalCase("helloWorld"))
}

func TestExpandQuerySnakeCase(t *testing.T) {
	expanded := expandQuery("get_user_token")
	assert.Contains(t, expanded, "getUserToken")
	assert.Contains(t, expanded, "GetUserToken")
}

func TestExpandQueryCamelCase(t *testing.T) {
	expanded := expandQuery("getUserToken")
	assert.Contains(t, expanded, "get_user_token")
}

func TestExpandQueryKebab(t *testing.T) {
	expanded := expandQuery("get-user-token")
	assert.Contains(t, expanded, "get_user_token")
	assert.Contains(t, expanded, "getUserToken")
}

func TestExpandQuerySynonyms(t *testing.T) {
	expanded := expandQuery("rate limit")
	assert.Contains(t, expanded, "throttle")
	assert.Contains(t, expanded, "quota")

	expanded = expandQuery("throttle")
	assert.Contains(t, expanded, "rate limit")
	assert.Contains(t, expanded, "quota")
}

func TestExpandQueryNoDuplicatesOrOriginal(t *testing.T) {
	expanded := expandQuery("get_user")
	seen := make(map[string]bool)
	for _, term := range expanded {
		lower := term
		assert.False(t, seen[lower], "duplicate %q", term)
		seen[lower] = true
		assert.NotEqual(t, "get_user", term)
	}
}
