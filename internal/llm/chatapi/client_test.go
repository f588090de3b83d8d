package chatapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "bad key", ErrorMessage([]byte(`{"error":{"message":"bad key"}}`), "401"))
	assert.Equal(t, "model missing", ErrorMessage([]byte(`{"error":"model missing"}`), "404"))
	assert.Equal(t, "502 Bad Gateway", ErrorMessage([]byte(`<html/>`), "502 Bad Gateway"))
	assert.Equal(t, "request failed", ErrorMessage(nil, ""))
}
