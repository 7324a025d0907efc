package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestISODate(t *testing.T) {
	cases := map[string]string{
		"2024-03-05":           "2024-03-05",
		"2024.03.05":           "2024-03-05",
		"2024. 3. 5.":          "2024-03-05",
		"2024/03/05":           "2024-03-05",
		"2024-03-05T10:00:00Z": "2024-03-05",
		"":                     "",
		"someday":              "",
	}
	for in, want := range cases {
		require.Equal(t, want, ISODate(in), in)
	}
}
