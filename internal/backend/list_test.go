package backend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestDecodeListShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []row
	}{
		{name: "bare array", body: `[{"id":1,"name":"Rice"}]`, want: []row{{1, "Rice"}}},
		{name: "data envelope", body: `{"data":[{"id":2,"name":"Oil"}],"total":1}`, want: []row{{2, "Oil"}}},
		{name: "items envelope", body: `{"items":[{"id":3,"name":"Salt"}]}`, want: []row{{3, "Salt"}}},
		{name: "nested envelope", body: `{"data":{"items":[{"id":4,"name":"Tea"}]}}`, want: []row{{4, "Tea"}}},
		{name: "null data", body: `{"data":null}`, want: []row{}},
		{name: "null", body: `null`, want: []row{}},
		{name: "empty body", body: ``, want: []row{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeList[row]([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeListRejectsUnknownShape(t *testing.T) {
	_, err := DecodeList[row]([]byte(`{"count":3}`))
	require.ErrorIs(t, err, ErrUnexpectedShape)

	_, err = DecodeList[row]([]byte(`{not json`))
	require.ErrorIs(t, err, ErrUnexpectedShape)
}

func TestFetchListUsesAPI(t *testing.T) {
	api := &MockAPI{Bodies: map[string]string{"/items": `{"data":[{"id":5,"name":"Sugar"}]}`}}

	got, err := FetchList[row](context.Background(), api, "/items", map[string]string{"type": "unit"})
	require.NoError(t, err)
	assert.Equal(t, []row{{5, "Sugar"}}, got)

	calls := api.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "unit", calls[0].Query["type"])
}

func TestFetchListPropagatesErrors(t *testing.T) {
	boom := errors.New("connection refused")
	api := &MockAPI{Errors: map[string]error{"GET /items": boom}}

	_, err := FetchList[row](context.Background(), api, "/items", nil)
	require.ErrorIs(t, err, boom)
}
