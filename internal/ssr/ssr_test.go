package ssr_test

import (
	"bytes"
	"github.com/myrjola/triage/internal/ssr"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

func TestExpandCustomElements(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "styles primary button marked with as",
			input: `<button as="button-primary">Examine</button>`,
			want:  []string{`class="btn-primary"`, `>Examine</button>`},
		},
		{
			name:  "styles primary button element",
			input: `<button-primary class="test">Examine</button-primary>`,
			want:  []string{`class="test btn-primary"`},
		},
		{
			name:  "expands stamina bar into a meter",
			input: `<stamina-bar value="65"></stamina-bar>`,
			want:  []string{`<meter`, `max="100"`, `value="65"`, `class="stat-bar"`},
		},
		{
			name:  "stamina bar without value defaults to zero",
			input: `<stamina-bar></stamina-bar>`,
			want:  []string{`value="0"`},
		},
		{
			name:  "leaves regular markup alone",
			input: `<p>The patient is waiting.</p>`,
			want:  []string{`<p>The patient is waiting.</p>`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			err := ssr.ExpandCustomElements(&buf, strings.NewReader(tt.input))
			require.NoError(t, err)
			for _, want := range tt.want {
				require.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestExpandFragment(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	err := ssr.ExpandFragment(&buf, strings.NewReader(`<button-primary>Ask</button-primary>`))
	require.NoError(t, err)
	require.Equal(t, `<button-primary class="btn-primary">Ask</button-primary>`, buf.String())
}
