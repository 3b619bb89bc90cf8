package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmActionAcceptsYes(t *testing.T) {
	h, streams := newTestHelper(t, context.Background())
	streams.In = bytes.NewBufferString("YES\n")

	require.NoError(t, ConfirmAction(h, "delete", "item 42"))
	assert.Contains(t, streams.Out.(*bytes.Buffer).String(), "You are about to delete item 42")
}

func TestConfirmActionRejectsAnythingElse(t *testing.T) {
	h, streams := newTestHelper(t, context.Background())
	streams.In = bytes.NewBufferString("y\n")

	err := ConfirmAction(h, "reject", "user 7")
	require.Error(t, err)
	assert.Equal(t, "reject cancelled", err.Error())
}

func TestConfirmActionEOFCancels(t *testing.T) {
	h, streams := newTestHelper(t, context.Background())
	streams.In = &bytes.Buffer{}

	require.Error(t, ConfirmAction(h, "delete", "item 42"))
}

func TestConfirmActionAutoApprove(t *testing.T) {
	h, streams := newTestHelper(t, context.Background())
	SetAutoApprove(h.GetCmd(), true)

	require.NoError(t, ConfirmAction(h, "delete", "item 42", "This cannot be undone."))
	assert.Empty(t, streams.Out.(*bytes.Buffer).String())
}
