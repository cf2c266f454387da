package generation

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBraceExtractorStripsFences(t *testing.T) {
	inputs := []string{
		"```json\n{\"name\":\"Alice\",\"skills\":[\"Go\"]}\n```",
		"```\n{\"name\":\"Alice\",\"skills\":[\"Go\"]}\n```",
		"Here is the data:\n```json\n{\"name\":\"Alice\",\"skills\":[\"Go\"]}\n```\nLet me know!",
		"Sure! {\"name\":\"Alice\",\"skills\":[\"Go\"]} Hope this helps.",
		"  {\"name\":\"Alice\",\"skills\":[\"Go\"]}  ",
	}
	for _, in := range inputs {
		var got CVData
		require.NoErrorf(t, BraceExtractor{}.Extract(in, &got), "input %q", in)
		assert.Equal(t, "Alice", got.Name)
		assert.Equal(t, []string{"Go"}, got.Skills)
	}
}

func TestBraceExtractorNoObject(t *testing.T) {
	for _, in := range []string{"", "no json here", "only open {", "only close }", "} backwards {"} {
		var v map[string]any
		err := BraceExtractor{}.Extract(in, &v)
		assert.ErrorIsf(t, err, ErrNoJSONObjectFound, "input %q", in)
	}
}

func TestBraceExtractorMalformed(t *testing.T) {
	raw := "```json\n{\"name\": \"Alice\",}\n```" + strings.Repeat("x", 1000)
	var v map[string]any
	err := BraceExtractor{}.Extract(raw, &v)
	require.ErrorIs(t, err, ErrMalformedJSON)

	var mErr *MalformedJSONError
	require.True(t, errors.As(err, &mErr))
	assert.Equal(t, maxRawPrefixRunes, utf8.RuneCountInString(mErr.Raw))
	assert.True(t, strings.HasPrefix(mErr.Raw, "```json"))

	var syntaxErr *json.SyntaxError
	assert.True(t, errors.As(err, &syntaxErr))
}

func TestBraceExtractorIsIdempotent(t *testing.T) {
	raw := "Result:\n```json\n{\"theme\":{\"primaryColor\":\"#112233\"},\"sections\":[{\"id\":\"s1\",\"type\":\"hero\",\"title\":\"Hi\",\"order\":0,\"visible\":true,\"content\":{\"text\":\"{braces} in strings\"}}]}\n```"
	var first PortfolioConfig
	require.NoError(t, BraceExtractor{}.Extract(raw, &first))

	again, err := json.Marshal(first)
	require.NoError(t, err)
	var second PortfolioConfig
	require.NoError(t, BraceExtractor{}.Extract(string(again), &second))
	assert.Equal(t, first, second)
}

func TestBraceExtractorNeverPanics(t *testing.T) {
	inputs := []string{"```", "```json", "```json```", "{", "}", "{}", "\x00{\x00}", "```json\n}\n{```", strings.Repeat("{", 100)}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			var v map[string]any
			_ = BraceExtractor{}.Extract(in, &v)
			_ = BraceExtractor{}.Extract(in, nil)
		}, "input %q", in)
	}
}

func TestBraceExtractorSchema(t *testing.T) {
	schemas, err := CompileSchemas()
	require.NoError(t, err)

	valid := `{"sections":[{"id":"a","type":"projects","title":"Work","order":1,"visible":true,"content":{"items":[]}}]}`
	var cfg PortfolioConfig
	require.NoError(t, BraceExtractor{Schema: schemas.PortfolioConfig}.Extract(valid, &cfg))
	require.Len(t, cfg.Sections, 1)
	assert.JSONEq(t, `{"items":[]}`, string(cfg.Sections[0].Content))

	badType := `{"sections":[{"id":"a","type":"spaceship","title":"Work"}]}`
	err = BraceExtractor{Schema: schemas.PortfolioConfig}.Extract(badType, &cfg)
	assert.ErrorIs(t, err, ErrMalformedJSON)

	missingSections := `{"theme":{"primaryColor":"#000000"}}`
	err = BraceExtractor{Schema: schemas.PortfolioConfig}.Extract(missingSections, &cfg)
	assert.ErrorIs(t, err, ErrMalformedJSON)

	var cv CVData
	err = BraceExtractor{Schema: schemas.CVData}.Extract(`{"name":"Alice","skills":"Go, SQL"}`, &cv)
	assert.ErrorIs(t, err, ErrMalformedJSON)
}
