package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/0xweirdlabs/fastapi.prod.starter/pkg/errors"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/pagination"
)

type samplePayload struct {
	Title string `json:"title" validate:"required,min=1,max=10"`
	Email string `json:"email" validate:"omitempty,email"`
}

func TestDecodeJSONBody(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"title":"hello"}`))
	var dest samplePayload

	require.NoError(t, DecodeJSONBody(r, &dest))
	assert.Equal(t, "hello", dest.Title)
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"title":"hello","bogus":1}`))
	var dest samplePayload

	err := DecodeJSONBody(r, &dest)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDecodeJSONBodyReportsFieldsByJSONName(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"not-an-email"}`))
	var dest samplePayload

	err := DecodeJSONBody(r, &dest)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	details, ok := pkgerrors.As(err).Details().(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "title")
	assert.Contains(t, details, "email")
}

func TestParsePagination(t *testing.T) {
	r := httptest.NewRequest("GET", "/items?skip=5&limit=20", nil)

	page, err := ParsePagination(r)

	require.NoError(t, err)
	assert.Equal(t, pagination.Params{Skip: 5, Limit: 20}, page)
}

func TestParsePaginationRejectsOversizedLimit(t *testing.T) {
	r := httptest.NewRequest("GET", "/items?limit=5000", nil)

	_, err := ParsePagination(r)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestParsePaginationDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/items", nil)

	page, err := ParsePagination(r)

	require.NoError(t, err)
	assert.Equal(t, pagination.Params{Skip: 0, Limit: pagination.DefaultLimit}, page)
}
