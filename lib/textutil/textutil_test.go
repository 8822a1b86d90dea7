package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanFragment(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{
			input:    `<p>Наиграно: <b>120</b> часов</p>`,
			expected: "Наиграно: 120 часов",
		},
		{
			input:    `<p><span class="material-symbols-rounded">schedule</span> Время : 15</p>`,
			expected: "Время: 15",
		},
		{
			input:    "  lots\n\tof\t\twhitespace  ",
			expected: "lots of whitespace",
		},
		{
			input:    "",
			expected: "",
		},
		{
			input:    "<div><span>nested , tags !</span></div>",
			expected: "nested, tags!",
		},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, CleanFragment(test.input))
	}
}

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "steve", NormalizeName("  Steve \n"))
	require.Equal(t, "herobrine", NormalizeName("Hero brine"))
}
