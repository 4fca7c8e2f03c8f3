package dl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crgimenes/wry/internal/nativetest"
)

func TestCamelToSnake(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"TestSimple", "test_simple"},
		{"TestWithParam", "test_with_param"},
		{"CreateAndRun", "create_and_run"},
		{"AddOne", "add_one"},
		{"GetUserByID", "get_user_by_id"},
		{"ID", "id"},
		{"HTMLParser", "html_parser"},
		{"Simple", "simple"},
		{"A", "a"},
		{"getUser", "get_user"},
		{"Int32Add", "int32_add"},
		{"SetURL", "set_url"},
		{"", ""},
		{"ABCDef", "abc_def"},
		{"XMLHTTPRequest", "xmlhttp_request"},
		{"aB", "a_b"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, camelToSnake(tt.input))
		})
	}
}

func TestSymbolName(t *testing.T) {
	assert.Equal(t, "wry_test_simple", symbolName("wry", "TestSimple"))
	assert.Equal(t, "add_one", symbolName("", "AddOne"))
}

type fixtureAPI struct {
	Answer  func() (int32, error)
	AddOne  func(x int32) int32
	LastURL func() (string, error) `dl:"fixture_last_url"`
	Ignored func()                 `dl:"-"`
	Runs    func() int32           `dl:"fixture_runs"`

	hidden func() int32
}

func TestBindStruct(t *testing.T) {
	lib, err := Open(nativetest.Library(t))
	require.NoError(t, err)
	defer lib.Close()

	var api fixtureAPI
	names, err := BindStruct(lib, "", &api)
	require.NoError(t, err)
	assert.Equal(t, []string{"answer", "add_one", "fixture_last_url", "fixture_runs"}, names)
	assert.Nil(t, api.Ignored)
	assert.Nil(t, api.hidden)

	got, err := api.Answer()
	require.NoError(t, err)
	assert.Equal(t, int32(42), got)
	assert.Equal(t, int32(42), api.AddOne(41))
	assert.Equal(t, int32(0), api.AddOne(-1))
	assert.Equal(t, int32(0), api.Runs())

	url, err := api.LastURL()
	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestBindStructPrefix(t *testing.T) {
	lib, err := Open(nativetest.Library(t))
	require.NoError(t, err)
	defer lib.Close()

	var api struct {
		TestSimple    func() int32
		TestWithParam func(int32) (int32, error)
	}
	names, err := BindStruct(lib, "wry", &api)
	require.NoError(t, err)
	assert.Equal(t, []string{"wry_test_simple", "wry_test_with_param"}, names)

	assert.Equal(t, int32(42), api.TestSimple())
	got, err := api.TestWithParam(1)
	require.NoError(t, err)
	assert.Equal(t, int32(2), got)
}

func TestBindStructAfterClose(t *testing.T) {
	lib, err := Open(nativetest.Library(t))
	require.NoError(t, err)

	var api fixtureAPI
	_, err = BindStruct(lib, "", &api)
	require.NoError(t, err)
	require.NoError(t, lib.Close())

	got, err := api.Answer()
	assert.ErrorIs(t, err, ErrInvalidHandle)
	assert.Zero(t, got)

	url, err := api.LastURL()
	assert.ErrorIs(t, err, ErrInvalidHandle)
	assert.Empty(t, url)

	err = recoverError(func() { api.AddOne(1) })
	assert.ErrorIs(t, err, ErrInvalidHandle)

	_, err = BindStruct(lib, "", &fixtureAPI{})
	assert.ErrorIs(t, err, ErrInvalidHandle)
}

func recoverError(fn func()) (err error) {
	defer func() {
		r := recover()
		if e, ok := r.(error); ok {
			err = e
		}
	}()
	fn()
	return nil
}

func TestBindStructMissingSymbol(t *testing.T) {
	lib, err := Open(nativetest.Library(t))
	require.NoError(t, err)
	defer lib.Close()

	var api struct {
		Answer  func() int32
		Missing func() int32
	}
	names, err := BindStruct(lib, "", &api)
	require.ErrorIs(t, err, ErrSymbolNotFound)
	assert.Equal(t, []string{"answer"}, names)
}

func TestBindStructUnsupportedField(t *testing.T) {
	lib, err := Open(nativetest.Library(t))
	require.NoError(t, err)
	defer lib.Close()

	tests := []struct {
		name string
		dst  any
	}{
		{name: "two results", dst: &struct{ Answer func() (int32, int32) }{}},
		{name: "slice argument", dst: &struct{ AddOne func([]int32) int32 }{}},
		{name: "variadic", dst: &struct{ AddOne func(...int32) int32 }{}},
		{name: "error only in the middle", dst: &struct{ Answer func() (error, int32) }{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BindStruct(lib, "", tt.dst)
			assert.ErrorIs(t, err, ErrSignature)
		})
	}
}

func TestBindStructInvalidDestination(t *testing.T) {
	lib, err := Open(nativetest.Library(t))
	require.NoError(t, err)
	defer lib.Close()

	var nilPtr *fixtureAPI
	for _, dst := range []any{nil, fixtureAPI{}, nilPtr, new(int)} {
		_, err := BindStruct(lib, "", dst)
		assert.ErrorIs(t, err, ErrSignature)
	}
}

func TestBindStructNilLibrary(t *testing.T) {
	_, err := BindStruct(nil, "", &fixtureAPI{})
	assert.True(t, errors.Is(err, ErrInvalidHandle))
}
