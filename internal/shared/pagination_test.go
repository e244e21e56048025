package shared

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePageParamsDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/users/", nil)
	p := ParsePageParams(r)
	assert.Equal(t, 0, p.Skip)
	assert.Equal(t, DefaultLimit, p.Limit)
}

func TestParsePageParamsExplicit(t *testing.T) {
	r := httptest.NewRequest("GET", "/users/?skip=20&limit=5", nil)
	p := ParsePageParams(r)
	assert.Equal(t, 20, p.Skip)
	assert.Equal(t, 5, p.Limit)
}

func TestParsePageParamsBadInput(t *testing.T) {
	r := httptest.NewRequest("GET", "/users/?skip=-3&limit=abc", nil)
	p := ParsePageParams(r)
	assert.Equal(t, 0, p.Skip)
	assert.Equal(t, DefaultLimit, p.Limit)

	r = httptest.NewRequest("GET", "/users/?limit=999999", nil)
	assert.Equal(t, MaxLimit, ParsePageParams(r).Limit)
}
