package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doc = "[SCHEMA]\n- Score: numeric\n- score_2: numeric (Score copy)\n"

func TestFindLiteral(t *testing.T) {
	ms, err := Find(doc, "score", Options{})
	require.NoError(t, err)
	require.Len(t, ms, 3)
	assert.Equal(t, Match{Line: 2, Col: 3, Start: 11, End: 16, Text: "Score"}, ms[0])
	assert.Equal(t, 3, ms[1].Line)
	assert.Equal(t, "score", ms[1].Text)
	assert.Equal(t, "Score", ms[2].Text)
	for _, m := range ms {
		assert.Equal(t, m.Text, doc[m.Start:m.End])
	}
}

func TestFindNormalizesWidthAndCase(t *testing.T) {
	ms, err := Find("Total COUNT: 3", "ｃｏｕｎｔ", Options{})
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, "COUNT", ms[0].Text)

	ms, err = Find("Strasse und STRASSE", "strasse", Options{})
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, "Strasse", ms[0].Text)
	assert.Equal(t, "STRASSE", ms[1].Text)
	assert.Equal(t, 13, ms[1].Col)
}

func TestFindMultibyteColumns(t *testing.T) {
	ms, err := Find("ÄÖ max |z|≈3.20", "≈3", Options{})
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, 11, ms[0].Col)
	assert.Equal(t, "≈3", ms[0].Text)
}

func TestFindRegex(t *testing.T) {
	ms, err := Find(doc, `sc\w*re`, Options{Regex: true})
	require.NoError(t, err)
	assert.Len(t, ms, 3)

	ms, err = Find("aaa", "x*", Options{Regex: true})
	require.NoError(t, err)
	assert.Empty(t, ms)

	_, err = Find(doc, "(", Options{Regex: true})
	assert.Error(t, err)
}

func TestFindBlankTerm(t *testing.T) {
	for _, term := range []string{"", "   "} {
		ms, err := Find(doc, term, Options{})
		require.NoError(t, err)
		assert.Nil(t, ms)
	}
}

func TestHighlight(t *testing.T) {
	ms, _ := Find("a Score and a score", "score", Options{})
	got := Highlight("a Score and a score", ms, BracketMarker)
	assert.Equal(t, "a [[Score]] and a [[score]]", got)

	assert.Equal(t, "plain", Highlight("plain", nil, ANSIMarker))
	overlapping := []Match{{Start: 0, End: 3}, {Start: 1, End: 4}, {Start: 2, End: 99}}
	assert.Equal(t, "[[abc]]de", Highlight("abcde", overlapping, BracketMarker))
}

func TestNavigatorWraps(t *testing.T) {
	ms := []Match{{Line: 1}, {Line: 2}, {Line: 3}}
	n := NewNavigator(ms)
	cur, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, 1, cur.Line)

	m, _ := n.Prev()
	assert.Equal(t, 3, m.Line)
	m, _ = n.Next()
	assert.Equal(t, 1, m.Line)
	n.Next()
	m, _ = n.Next()
	assert.Equal(t, 3, m.Line)
	m, _ = n.Next()
	assert.Equal(t, 1, m.Line)
	assert.Equal(t, 0, n.Index())

	n.Reset()
	_, ok = n.Next()
	assert.False(t, ok)
	assert.Equal(t, -1, n.Index())

	empty := NewNavigator(nil)
	_, ok = empty.Current()
	assert.False(t, ok)
	_, ok = empty.Prev()
	assert.False(t, ok)
}
