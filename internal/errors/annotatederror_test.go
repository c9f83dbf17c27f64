package errors

import (
	"github.com/stretchr/testify/require"
	"log/slog"
	"slices"
	"testing"
)

func TestAnnotatedError(t *testing.T) {
	err := New("test error", slog.String("id", "123"))
	require.Equal(t, "test error", err.Error())

	// Assert that wrapping sentinel errors work as expected.
	sentinel := NewSentinel("test error")
	require.NotErrorIs(t, err, NewSentinel("test error"))
	wrapped := err.Wrap(sentinel)
	require.ErrorIs(t, wrapped, sentinel)

	// Ensure log values are coming through.
	group := err.LogValue().Group()
	require.Contains(t, group, slog.String("id", "123"))

	// Assert there's a valid source
	sourceIdx := slices.IndexFunc(group, func(attr slog.Attr) bool {
		return attr.Key == "source"
	})
	source := group[sourceIdx]
	require.Contains(t, source.Value.String(), "annotatederror_test.go")
}

func TestWrap(t *testing.T) {
	sentinel := NewSentinel("not found")
	wrapped := Wrap(sentinel, "load case", slog.String("case_id", "abc"))

	require.ErrorIs(t, wrapped, sentinel)
	require.Equal(t, "load case: not found", wrapped.Error())

	var annotated AnnotatedError
	require.True(t, As(wrapped, &annotated))
	require.Contains(t, annotated.LogValue().Group(), slog.String("case_id", "abc"))
}

func TestSlogError(t *testing.T) {
	attr := SlogError(Wrap(NewSentinel("boom"), "run command"))
	require.Equal(t, "error", attr.Key)

	group := attr.Value.Group()
	messageIdx := slices.IndexFunc(group, func(attr slog.Attr) bool {
		return attr.Key == "message"
	})
	require.NotEqual(t, -1, messageIdx)
	require.Equal(t, "run command: boom", group[messageIdx].Value.String())

	// Plain errors format without annotations.
	plain := SlogError(NewSentinel("plain")).Value.Group()
	require.Len(t, plain, 1)
}
