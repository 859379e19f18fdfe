package evaldict_test

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/251207-go-pkg-evaldict/pkg/evaldict"
)

// upperFormatter 复用默认语法，结果转为大写。
type upperFormatter struct{ evaldict.DefaultFormatter }

func (f upperFormatter) Format(template string, values map[string]any) (string, error) {
	out, err := f.DefaultFormatter.Format(template, values)
	return strings.ToUpper(out), err
}

// bracketFormatter 复用默认语法，结果加方括号。
type bracketFormatter struct{ evaldict.DefaultFormatter }

func (f bracketFormatter) Format(template string, values map[string]any) (string, error) {
	out, err := f.DefaultFormatter.Format(template, values)
	return "[" + out + "]", err
}

var errBadSpec = errors.New("bad spec")

type failingValue struct{}

func (failingValue) FormatSpec(string) (string, error) { return "", errBadSpec }

func TestDict_NestedFormatSpec(t *testing.T) {
	d := evaldict.New()
	d.Set("fill", " ")
	d.Set("align", ">")
	d.Set("pad", "20")
	d.Set("message", "Hello World!")
	d.Set("val", "{message:{fill}{align}{pad}}")

	got, err := d.Get("val")
	require.NoError(t, err)
	assert.Equal(t, "        Hello World!", got)
	assert.Len(t, got, 20)
}

func TestDict_CyclicDependency(t *testing.T) {
	tests := []struct {
		name    string
		entries [][2]string
		key     string
	}{
		{name: "self reference", entries: [][2]string{{"a", "{a}"}}, key: "a"},
		{name: "mutual reference a", entries: [][2]string{{"a", "{b}"}, {"b", "{a}"}}, key: "a"},
		{name: "mutual reference b", entries: [][2]string{{"a", "{b}"}, {"b", "{a}"}}, key: "b"},
		{name: "three step loop", entries: [][2]string{{"a", "{b}"}, {"b", "x{c}"}, {"c", "{a}"}}, key: "b"},
		{name: "self reference in format spec", entries: [][2]string{{"a", "1"}, {"b", "{a:{a}}"}}, key: "b"},
		{name: "loop through format spec", entries: [][2]string{{"w", "{x:>{w}}"}, {"x", "1"}}, key: "w"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := evaldict.New()
			for _, e := range tt.entries {
				d.Set(e[0], e[1])
			}

			_, err := d.Get(tt.key)
			require.Error(t, err)
			assert.ErrorIs(t, err, evaldict.ErrCyclicDependency)
			assert.Contains(t, err.Error(), "cyclic")

			var cyclic *evaldict.CyclicDependencyError
			require.ErrorAs(t, err, &cyclic)
			assert.NotEmpty(t, cyclic.Vars)
		})
	}
}

func TestDict_AcyclicGraphFullySubstituted(t *testing.T) {
	d := evaldict.New()
	d.Set("root", "/srv")
	d.Set("app", "{root}/app")
	d.Set("logs", "{app}/logs")
	d.Set("both", "{app}|{logs}|{root}")

	got, err := d.Get("both")
	require.NoError(t, err)
	assert.Equal(t, "/srv/app|/srv/app/logs|/srv", got)
	assert.NotContains(t, got, "{")
	assert.NotContains(t, got, "}")
}

func TestDict_CacheIdempotence(t *testing.T) {
	d := evaldict.New()
	d.Set("x", "{y}")
	d.Set("y", "1")

	first, err := d.Get("x")
	require.NoError(t, err)
	second, err := d.Get("x")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	stats := d.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
	assert.Equal(t, 2, stats.Entries)

	d.Reset()
	fresh, err := d.Get("x")
	require.NoError(t, err)
	assert.Equal(t, first, fresh)
}

func TestDict_InvalidationOnSet(t *testing.T) {
	for _, policy := range []evaldict.Invalidation{evaldict.InvalidateDependents, evaldict.InvalidateAll} {
		t.Run(policy.String(), func(t *testing.T) {
			d := evaldict.New(evaldict.WithInvalidation(policy))
			d.Set("x", "{y}")
			d.Set("y", "1")

			got, err := d.Get("x")
			require.NoError(t, err)
			assert.Equal(t, "1", got)

			d.Set("y", "2")
			got, err = d.Get("x")
			require.NoError(t, err)
			assert.Equal(t, "2", got)
		})
	}
}

func TestDict_InvalidationTransitive(t *testing.T) {
	d := evaldict.New()
	d.Set("a", "{b}!")
	d.Set("b", "<{c}>")
	d.Set("c", "v1")

	got, err := d.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "<v1>!", got)

	d.Set("c", "v2")
	got, err = d.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "<v2>!", got)
}

func TestDict_InvalidateDependentsKeepsUnrelated(t *testing.T) {
	d := evaldict.New()
	d.Set("x", "{y}")
	d.Set("y", "1")
	d.Set("z", "{w}")
	d.Set("w", "a")

	_, err := d.Get("x")
	require.NoError(t, err)
	_, err = d.Get("z")
	require.NoError(t, err)
	require.Equal(t, 4, d.Stats().Entries)

	d.Set("y", "2")
	stats := d.Stats()
	assert.Equal(t, 3, stats.Entries)
	assert.Equal(t, int64(1), stats.Invalidations)

	hits := stats.Hits
	_, err = d.Get("z")
	require.NoError(t, err)
	assert.Equal(t, hits+1, d.Stats().Hits, "unrelated template should stay cached")
}

func TestDict_InvalidateAllClearsEverything(t *testing.T) {
	d := evaldict.New(evaldict.WithInvalidation(evaldict.InvalidateAll))
	d.Set("x", "{y}")
	d.Set("y", "1")
	d.Set("z", "zz")

	_, err := d.Get("x")
	require.NoError(t, err)
	_, err = d.Get("z")
	require.NoError(t, err)
	require.Equal(t, 3, d.Stats().Entries)

	d.Set("unrelated", "u")
	assert.Equal(t, 0, d.Stats().Entries)
}

func TestDict_SharedTemplateText(t *testing.T) {
	d := evaldict.New()
	d.Set("a", "{c}")
	d.Set("b", "{c}")
	d.Set("c", "v")

	_, err := d.Get("a")
	require.NoError(t, err)
	got, err := d.Get("b")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
	assert.Equal(t, int64(1), d.Stats().Hits)
}

func TestDict_Delete(t *testing.T) {
	d := evaldict.New()
	d.Set("x", "{y}")
	d.Set("y", "1")

	_, err := d.Get("x")
	require.NoError(t, err)

	require.NoError(t, d.Delete("y"))
	assert.False(t, d.Contains("y"))
	assert.Equal(t, 1, d.Len())

	_, err = d.Get("y")
	assert.ErrorIs(t, err, evaldict.ErrKeyNotFound)

	_, err = d.Get("x")
	assert.ErrorIs(t, err, evaldict.ErrKeyNotFound, "dependent must not return a stale value")

	err = d.Delete("missing")
	assert.ErrorIs(t, err, evaldict.ErrKeyNotFound)

	var notFound *evaldict.KeyNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.Key)
}

func TestDict_FormatterPrecedence(t *testing.T) {
	d := evaldict.New(evaldict.WithFormatter(bracketFormatter{}))
	d.Set("name", "world")
	d.Set("plain", "hi {name}")
	d.Set("greet", evaldict.Expr{Text: "hello {name}", Fmt: upperFormatter{}})

	got, err := d.Get("plain")
	require.NoError(t, err)
	assert.Equal(t, "[hi [world]]", got)

	got, err = d.Get("greet")
	require.NoError(t, err)
	assert.Equal(t, "HELLO [WORLD]", got)

	assert.IsType(t, upperFormatter{}, d.Formatter(evaldict.Expr{Text: "x", Fmt: upperFormatter{}}))
	assert.IsType(t, bracketFormatter{}, d.Formatter(evaldict.Expr{Text: "x"}))
	assert.IsType(t, evaldict.DefaultFormatter{}, evaldict.New().Formatter("x"))
}

func TestDict_ValueLevelFormatterNotCached(t *testing.T) {
	d := evaldict.New()
	d.Set("name", "world")
	d.Set("greet", evaldict.Expr{Text: "{name}", Fmt: upperFormatter{}})
	d.Set("other", "{name}")

	got, err := d.Get("greet")
	require.NoError(t, err)
	assert.Equal(t, "WORLD", got)

	got, err = d.Get("other")
	require.NoError(t, err)
	assert.Equal(t, "world", got, "same text with another formatter must not share a cache slot")
}

func TestDict_SetFormatterKeepsCache(t *testing.T) {
	d := evaldict.New()
	d.Set("x", "v")

	got, err := d.Get("x")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	d.SetFormatter(bracketFormatter{})
	got, err = d.Get("x")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	d.Reset()
	got, err = d.Get("x")
	require.NoError(t, err)
	assert.Equal(t, "[v]", got)
}

func TestDict_PlainValues(t *testing.T) {
	d := evaldict.New()
	d.Set("pi", 3.14159)
	d.Set("port", 8080)
	d.Set("debug", true)
	d.Set("msg", "pi={pi:.2f} port={port:>6} debug={debug}")

	got, err := d.Get("msg")
	require.NoError(t, err)
	assert.Equal(t, "pi=3.14 port=  8080 debug=true", got)

	val, err := d.Value("pi")
	require.NoError(t, err)
	assert.InDelta(t, 3.14159, val, 1e-12)

	s, err := d.Get("port")
	require.NoError(t, err)
	assert.Equal(t, "8080", s)

	raw, err := d.GetRaw("msg")
	require.NoError(t, err)
	assert.Equal(t, "pi={pi:.2f} port={port:>6} debug={debug}", raw)
}

func TestDict_FormattingErrorsPropagate(t *testing.T) {
	d := evaldict.New()
	d.Set("unterminated", "{oops")
	d.Set("conversion", "{x!q}")
	d.Set("code", "{x:d}")
	d.Set("x", "text")
	d.Set("custom", failingValue{})
	d.Set("usesCustom", "{custom:>3}")

	for _, key := range []string{"unterminated", "conversion", "code"} {
		_, err := d.Get(key)
		assert.ErrorIs(t, err, evaldict.ErrMalformedTemplate, key)
	}

	_, err := d.Get("usesCustom")
	assert.ErrorIs(t, err, errBadSpec)
}

func TestDict_EvalExprAndUsedVariables(t *testing.T) {
	d := evaldict.New()
	d.Set("host", "localhost")
	d.Set("port", 40117)

	got, err := d.EvalExpr("http://{host}:{port}")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:40117", got)

	vars, err := d.UsedVariables("{host}:{port:>{width}}")
	require.NoError(t, err)
	assert.Equal(t, []string{"host", "port", "width"}, vars.Sorted())

	vars, err = d.UsedVariables(42)
	require.NoError(t, err)
	assert.Equal(t, 0, vars.Len())
}

func TestDict_KeysAndMembership(t *testing.T) {
	d := evaldict.New()
	d.Set("b", "{a}")
	d.Set("a", "1")
	d.Set("c", "{missing}")
	d.Set("b", "2")

	assert.Equal(t, []string{"b", "a", "c"}, slices.Collect(d.Keys()))
	assert.Equal(t, 3, d.Len())
	assert.True(t, d.Contains("c"))
	assert.False(t, d.Contains("missing"))
	assert.Equal(t, int64(0), d.Stats().Misses+d.Stats().Hits, "inspection must not evaluate")
}

func TestParseInvalidation(t *testing.T) {
	p, err := evaldict.ParseInvalidation("ALL")
	require.NoError(t, err)
	assert.Equal(t, evaldict.InvalidateAll, p)

	p, err = evaldict.ParseInvalidation("")
	require.NoError(t, err)
	assert.Equal(t, evaldict.InvalidateDependents, p)

	_, err = evaldict.ParseInvalidation("sometimes")
	assert.Error(t, err)
}

func TestDict_HugeWidthIsAnError(t *testing.T) {
	d := evaldict.New()
	d.Set("a", "x")
	d.Set("b", "{a:>99999999999999999}")

	var err error
	require.NotPanics(t, func() { _, err = d.Get("b") })
	require.ErrorIs(t, err, evaldict.ErrMalformedTemplate)
	assert.Contains(t, err.Error(), "too many decimal digits")
}
