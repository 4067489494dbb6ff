package prompt

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPickerFunc(t *testing.T) {
	t.Parallel()

	var picker Picker = PickerFunc(func(_ context.Context, message string, options []string) (string, error) {
		return message + ":" + options[len(options)-1], nil
	})
	got, err := picker.Pick(context.Background(), "Template", []string{"#a", "#b"})
	require.NoError(t, err)
	require.Equal(t, "Template:#b", got)
}

func TestSurveyPickerGuards(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Survey().Pick(ctx, "Template", []string{"#a"})
	require.True(t, errors.Is(err, context.Canceled))

	_, err = Survey().Pick(context.Background(), "Template", nil)
	require.Error(t, err)
}
