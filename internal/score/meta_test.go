package score_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mscx/internal/score"
	"mscx/internal/testsupport"
)

func TestVBoxTextReadsHeaderFrame(t *testing.T) {
	s := openScore(t, testsupport.WriteScore(t, t.TempDir(), "song.mscx", v3Fixture()))

	title, ok := s.VBoxText(score.VBoxTitle)
	require.True(t, ok)
	assert.Equal(t, "Yesterday", title)

	_, ok = s.VBoxText(score.VBoxLyricist)
	assert.False(t, ok)
}

func TestSetVBoxTextEmptyRemovesEntry(t *testing.T) {
	s := openScore(t, testsupport.WriteScore(t, t.TempDir(), "song.mscx", v3Fixture()))

	require.NoError(t, s.SetVBoxText(score.VBoxComposer, ""))
	_, ok := s.VBoxText(score.VBoxComposer)
	assert.False(t, ok)
	assert.NotContains(t, s.Document().String(), "<style>Composer</style>")

	require.NoError(t, s.SetVBoxText(score.VBoxLyricist, ""))
}

func TestSetVBoxTextCreatesFrame(t *testing.T) {
	fx := v4Fixture()
	fx.NoVBox = true
	s := openScore(t, testsupport.WriteScore(t, t.TempDir(), "song.mscx", fx))

	_, ok := s.VBoxText(score.VBoxTitle)
	require.False(t, ok)

	require.NoError(t, s.SetVBoxText(score.VBoxTitle, "New Title"))
	require.NoError(t, s.SetVBoxText(score.VBoxSubtitle, "Sub"))

	out := s.Document().String()
	assert.Contains(t, out, "<VBox><height>10</height><Text><style>title</style><text>New Title</text></Text>")
	assert.Contains(t, out, "<style>subtitle</style><text>Sub</text>")

	title, ok := s.VBoxText(score.VBoxTitle)
	require.True(t, ok)
	assert.Equal(t, "New Title", title)
}

func TestSetVBoxTextSameValueKeepsBytes(t *testing.T) {
	s := openScore(t, testsupport.WriteScore(t, t.TempDir(), "song.mscx", v3Fixture()))
	require.NoError(t, s.SetVBoxText(score.VBoxTitle, "Yesterday"))
	require.NoError(t, s.SetMetaTag("arranger", ""))
	assert.False(t, s.Changed())
}

func TestMetaTags(t *testing.T) {
	path := testsupport.WriteScore(t, t.TempDir(), "song.mscx", v3Fixture())
	s := openScore(t, path)

	v, ok := s.MetaTag("workTitle")
	require.True(t, ok)
	assert.Equal(t, "Yesterday", v)
	_, ok = s.MetaTag("poet")
	assert.False(t, ok)

	require.NoError(t, s.SetMetaTag("poet", "Someone & Co"))
	assert.Equal(t, map[string]string{
		"arranger":  "",
		"poet":      "Someone & Co",
		"workTitle": "Yesterday",
	}, s.MetaTags())
	assert.Equal(t, []string{"arranger", "poet", "workTitle"}, s.MetaTagNames())

	out := s.Document().String()
	poet := strings.Index(out, `name="poet"`)
	work := strings.Index(out, `name="workTitle"`)
	division := strings.Index(out, "<Division>")
	assert.Greater(t, poet, work, "new tags follow the existing ones")
	assert.Greater(t, poet, division)

	require.NoError(t, s.Save(context.Background(), "", false))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<metaTag name="poet">Someone &amp; Co</metaTag>`)
}

func TestProgramVersion(t *testing.T) {
	s := openScore(t, testsupport.WriteScore(t, t.TempDir(), "song.mscx", v3Fixture()))
	v, ok := s.ProgramVersion()
	require.True(t, ok)
	assert.Equal(t, "3.6.2", v)
	rev, ok := s.ProgramRevision()
	require.True(t, ok)
	assert.Equal(t, "3543170", rev)
}
