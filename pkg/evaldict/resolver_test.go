package evaldict_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/251207-go-pkg-evaldict/pkg/evaldict"
)

func TestUsedVariables(t *testing.T) {
	tests := []struct {
		name     string
		template string
		seen     evaldict.Set
		want     []string
	}{
		{name: "no fields", template: "plain", want: []string{}},
		{name: "escaped braces", template: "{{a}}", want: []string{}},
		{name: "flat", template: "{a} and {b}", want: []string{"a", "b"}},
		{name: "duplicates collapse", template: "{a}{a}{a}", want: []string{"a"}},
		{name: "nested spec", template: "{message:{fill}{align}{pad}}", want: []string{"align", "fill", "message", "pad"}},
		{name: "deeply nested", template: "{a:{b:{c:{d}}}}", want: []string{"a", "b", "c", "d"}},
		{name: "siblings do not share seen", template: "{a:{b}}{c:{a}}", want: []string{"a", "b", "c"}},
		{name: "unrelated seen", template: "{a}", seen: evaldict.NewSet("z"), want: []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evaldict.UsedVariables(tt.template, evaldict.DefaultFormatter{}, tt.seen)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got.Sorted()); diff != "" {
				t.Errorf("UsedVariables(%q) mismatch (-want +got):\n%s", tt.template, diff)
			}
		})
	}
}

func TestUsedVariables_Cyclic(t *testing.T) {
	tests := []struct {
		name     string
		template string
		seen     evaldict.Set
		wantVars []string
	}{
		{name: "self in spec", template: "{a:{a}}", wantVars: []string{"a"}},
		{name: "deep self in spec", template: "{a:{b:{a}}}", wantVars: []string{"a"}},
		{name: "seen from caller", template: "x{a}y", seen: evaldict.NewSet("a"), wantVars: []string{"a"}},
		{name: "seen reached through spec", template: "{a:{k}}", seen: evaldict.NewSet("k"), wantVars: []string{"k"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := evaldict.UsedVariables(tt.template, evaldict.DefaultFormatter{}, tt.seen)
			require.Error(t, err)
			assert.ErrorIs(t, err, evaldict.ErrCyclicDependency)

			var cyclic *evaldict.CyclicDependencyError
			require.ErrorAs(t, err, &cyclic)
			if diff := cmp.Diff(tt.wantVars, cyclic.Vars); diff != "" {
				t.Errorf("cyclic vars mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUsedVariables_ParseErrorPropagates(t *testing.T) {
	_, err := evaldict.UsedVariables("{a:{b}", evaldict.DefaultFormatter{}, nil)
	assert.ErrorIs(t, err, evaldict.ErrMalformedTemplate)
}

func TestSet(t *testing.T) {
	s := evaldict.NewSet("b", "a")
	ext := s.With("c")

	assert.False(t, s.Has("c"), "With must not modify the receiver")
	assert.True(t, ext.Has("c"))
	assert.Equal(t, []string{"a", "b", "c"}, ext.Sorted())
	assert.Equal(t, []string{"a"}, s.Intersect(evaldict.NewSet("a", "z")).Sorted())

	var empty evaldict.Set
	assert.False(t, empty.Has("a"))
	assert.Equal(t, 0, empty.Intersect(s).Len())
	assert.Equal(t, []string{"x"}, empty.With("x").Sorted())
}
