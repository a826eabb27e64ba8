package container_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mscx/internal/container"
	"mscx/internal/testsupport"
)

func v4Score() testsupport.Score {
	return testsupport.Score{
		Version:  "4.20",
		Title:    "Yesterday",
		Composer: "Lennon",
		Style:    testsupport.DefaultStyle(),
	}
}

func TestOpenClassifiesMembers(t *testing.T) {
	dir := t.TempDir()
	bundle := testsupport.WriteBundle(t, dir, "Song.mscz", v4Score())

	c, err := container.Open(bundle)
	require.NoError(t, err)
	defer c.Close()

	for role, member := range map[container.Role]string{
		container.RolePrimary:       "Song.mscx",
		container.RoleStyle:         "score_style.mss",
		container.RoleThumbnail:     "Thumbnails/thumbnail.png",
		container.RoleAudioSettings: "audiosettings.json",
		container.RoleViewSettings:  "viewsettings.json",
	} {
		p, ok := c.Path(role)
		require.True(t, ok, role)
		assert.Equal(t, filepath.Join(c.ScratchDir(), filepath.FromSlash(member)), p)
	}
}

func TestOpenFallsBackToMemberList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nomanifest.mscz")
	testsupport.WriteZip(t, path, map[string][]byte{
		"nested/deep/other.mscx": []byte("<museScore/>\n"),
		"top.mscx":               []byte("<museScore version=\"3.01\"/>\n"),
	})

	c, err := container.Open(path)
	require.NoError(t, err)
	defer c.Close()

	primary, ok := c.Path(container.RolePrimary)
	require.True(t, ok)
	assert.Equal(t, "top.mscx", filepath.Base(primary))
	_, ok = c.Path(container.RoleStyle)
	assert.False(t, ok)
}

func TestOpenWithoutPrimaryFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.mscz")
	testsupport.WriteZip(t, path, map[string][]byte{"readme.txt": []byte("hi")})

	_, err := container.Open(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, container.ErrManifest)
}

func TestOpenRejectsTraversal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evil.mscz")
	testsupport.WriteZip(t, path, map[string][]byte{
		"score.mscx":    []byte("<museScore/>\n"),
		"../escape.txt": []byte("nope"),
	})

	_, err := container.Open(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, container.ErrManifest)
}

func TestSaveRoundTripKeepsMembers(t *testing.T) {
	dir := t.TempDir()
	bundle := testsupport.WriteBundle(t, dir, "Song.mscz", v4Score())
	original := testsupport.ReadZip(t, bundle)

	c, err := container.Open(bundle)
	require.NoError(t, err)
	out := filepath.Join(dir, "out", "Copy.mscz")
	require.NoError(t, c.Save(out))
	require.NoError(t, c.Close())

	repacked := testsupport.ReadZip(t, out)
	assert.Equal(t, original, repacked)

	again, err := container.Open(out)
	require.NoError(t, err)
	defer again.Close()
	primary, ok := again.Path(container.RolePrimary)
	require.True(t, ok)
	data, err := os.ReadFile(primary)
	require.NoError(t, err)
	assert.Equal(t, original["Song.mscx"], data)
}

func TestRepeatedSavesAreByteIdentical(t *testing.T) {
	dir := t.TempDir()
	bundle := testsupport.WriteBundle(t, dir, "Song.mscz", v4Score())

	c, err := container.Open(bundle)
	require.NoError(t, err)
	defer c.Close()

	first := filepath.Join(dir, "a.mscz")
	second := filepath.Join(dir, "b.mscz")
	require.NoError(t, c.Save(first))
	require.NoError(t, c.Save(second))

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSetMemberRegistersRoleAndIsPacked(t *testing.T) {
	dir := t.TempDir()
	score := v4Score()
	score.Version = "3.01"
	bundle := testsupport.WriteBundle(t, dir, "Old.mscz", score)

	c, err := container.Open(bundle)
	require.NoError(t, err)
	defer c.Close()

	_, ok := c.Path(container.RoleStyle)
	require.False(t, ok)

	target, err := c.SetMember("score_style.mss", []byte("<museScore/>\n"))
	require.NoError(t, err)
	p, ok := c.Path(container.RoleStyle)
	require.True(t, ok)
	assert.Equal(t, target, p)

	_, err = c.SetMember("../outside.mss", nil)
	require.ErrorIs(t, err, container.ErrManifest)

	out := filepath.Join(dir, "new.mscz")
	require.NoError(t, c.Save(out))
	members := testsupport.ReadZip(t, out)
	assert.Equal(t, []byte("<museScore/>\n"), members["score_style.mss"])

	data, err := c.ReadMember("score_style.mss")
	require.NoError(t, err)
	assert.Equal(t, []byte("<museScore/>\n"), data)
}

func TestCloseRemovesScratchDir(t *testing.T) {
	bundle := testsupport.WriteBundle(t, t.TempDir(), "Song.mscz", v4Score())
	c, err := container.Open(bundle)
	require.NoError(t, err)

	scratch := c.ScratchDir()
	require.DirExists(t, scratch)
	require.NoError(t, c.Close())
	assert.NoDirExists(t, scratch)
	require.NoError(t, c.Close())
}
