package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/klog/v2"

	"git.srvlab.io/whiskey/attach-nas/pkg/utils"
)

const sampleConfig = `
[DEFAULT]
username = family

[NAS]
ip = 192.168.1.10
username = bob
password = pw
shares = docs,media
letters = J,K

[Backup]
ip = 192.168.1.20     # basement box
password = s3cret # trailing comment
shares = a, b ,c
letters = x:, , z

[Empty]
ip =
shares =

[Duplicate IP]
ip = 192.168.1.10
username = alice
password = pw2
shares = photos
`

func parseSample(t *testing.T) *File {
	t.Helper()
	f, err := Parse(klog.Background(), []byte(sampleConfig))
	require.NoError(t, err)
	return f
}

func TestParse_SectionNames(t *testing.T) {
	f := parseSample(t)
	assert.Equal(t, []string{"NAS", "Backup", "Empty", "Duplicate IP"}, f.SectionNames())
}

func TestParse_Section(t *testing.T) {
	f := parseSample(t)

	nas, err := f.Section("NAS")
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.10", nas.IP)
	assert.Equal(t, "bob", nas.Username)
	assert.Equal(t, "pw", nas.Password)
	assert.Equal(t, []string{"docs", "media"}, nas.Shares)
	assert.Equal(t, []string{"J", "K"}, nas.Letters)
	assert.True(t, nas.IsMountReady())
	assert.Empty(t, nas.MissingFields())
	assert.Empty(t, nas.Problems())
}

func TestParse_CommentsAndWhitespace(t *testing.T) {
	f := parseSample(t)

	backup, err := f.Section("Backup")
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.20", backup.IP)
	assert.Equal(t, "s3cret", backup.Password)
	assert.Equal(t, []string{"a", "b", "c"}, backup.Shares, "list items should be trimmed")
}

func TestParse_DefaultSectionInherited(t *testing.T) {
	f := parseSample(t)

	backup, err := f.Section("Backup")
	require.NoError(t, err)
	assert.Equal(t, "family", backup.Username)
	assert.True(t, backup.IsMountReady())

	nas, err := f.Section("NAS")
	require.NoError(t, err)
	assert.Equal(t, "bob", nas.Username, "section value should override DEFAULT")
}

func TestParse_PreferredLetters(t *testing.T) {
	f := parseSample(t)

	backup, err := f.Section("Backup")
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "", "Z"}, backup.Letters)
	assert.Equal(t, "X", backup.PreferredLetter(0))
	assert.Equal(t, "", backup.PreferredLetter(1))
	assert.Equal(t, "Z", backup.PreferredLetter(2))
	assert.Equal(t, "", backup.PreferredLetter(3), "index past the letters list has no preference")
}

func TestParse_MissingFields(t *testing.T) {
	f := parseSample(t)

	empty, err := f.Section("Empty")
	require.NoError(t, err)
	assert.False(t, empty.IsMountReady())
	// username comes from DEFAULT
	assert.Equal(t, []string{"ip", "password", "shares"}, empty.MissingFields())
	assert.Empty(t, empty.Shares)
}

func TestIsMountReady(t *testing.T) {
	base := "[S]\nip = 10.0.0.1\nusername = u\npassword = p\nshares = s\n"
	tests := []struct {
		name    string
		content string
		ready   bool
		missing []string
	}{
		{name: "all fields", content: base, ready: true},
		{name: "no ip", content: "[S]\nusername = u\npassword = p\nshares = s\n", missing: []string{"ip"}},
		{name: "no username", content: "[S]\nip = 10.0.0.1\npassword = p\nshares = s\n", missing: []string{"username"}},
		{name: "no password", content: "[S]\nip = 10.0.0.1\nusername = u\nshares = s\n", missing: []string{"password"}},
		{name: "no shares", content: "[S]\nip = 10.0.0.1\nusername = u\npassword = p\n", missing: []string{"shares"}},
		{name: "comment-only value", content: "[S]\nip = # todo\nusername = u\npassword = p\nshares = s\n", missing: []string{"ip"}},
		{name: "nothing", content: "[S]\n", missing: []string{"ip", "username", "password", "shares"}},
		{name: "invalid letter still ready", content: base + "letters = 1\n", ready: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse(klog.Background(), []byte(tt.content))
			require.NoError(t, err)
			s, err := f.Section("S")
			require.NoError(t, err)
			assert.Equal(t, tt.ready, s.IsMountReady())
			assert.Equal(t, tt.missing, s.MissingFields())
		})
	}
}

func TestParse_Problems(t *testing.T) {
	content := `[S]
ip = not a host
username = u
password = /delete
shares = ok, bad/share
letters = A, K, 12
`
	f, err := Parse(klog.Background(), []byte(content))
	require.NoError(t, err)
	s, err := f.Section("S")
	require.NoError(t, err)

	assert.Equal(t, []string{"", "K", ""}, s.Letters, "invalid letters are dropped")
	assert.Len(t, s.Problems(), 5)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList("a, b ,c"))
	assert.Equal(t, []string{"one"}, splitList("one"))
	assert.Nil(t, splitList(""))
}

func TestStripComment(t *testing.T) {
	assert.Equal(t, "value", stripComment("  value  # comment"))
	assert.Equal(t, "", stripComment("# only comment"))
	assert.Equal(t, "a;b", stripComment("a;b"))
}

func TestSection_ShareLookup(t *testing.T) {
	s := Section{Name: "NAS", Shares: []string{"docs", "Media"}}

	share, err := s.Share(1)
	require.NoError(t, err)
	assert.Equal(t, "Media", share)

	_, err = s.Share(2)
	assert.Error(t, err)
	_, err = s.Share(-1)
	assert.Error(t, err)

	assert.Equal(t, 1, s.ShareIndex("media"))
	assert.Equal(t, -1, s.ShareIndex("photos"))
}

func TestSection_Summary(t *testing.T) {
	s := Section{
		Name:     "NAS",
		IP:       "192.168.1.10",
		Username: "bob",
		Password: "pw",
		Shares:   []string{"docs", "media", "photos"},
		Letters:  []string{"J", ""},
	}

	want := "IP: 192.168.1.10 - [NAS]\nUsername: bob\nShares: [J]: docs, [None]: media, [None]: photos\n"
	assert.Equal(t, want, s.Summary())
	assert.NotContains(t, s.Summary(), "pw")
}

func TestFile_HostIPs(t *testing.T) {
	f := parseSample(t)
	assert.Equal(t, []string{"192.168.1.10", "192.168.1.20"}, f.HostIPs())
}

func TestFile_SectionNotFound(t *testing.T) {
	f := parseSample(t)
	_, err := f.Section("Missing")
	assert.True(t, errors.Is(err, utils.ErrSectionNotFound))
}

func TestFile_AnyReady(t *testing.T) {
	assert.True(t, parseSample(t).AnyReady())

	f, err := Parse(klog.Background(), []byte("[S]\nip = 1.2.3.4\n"))
	require.NoError(t, err)
	assert.False(t, f.AnyReady())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "App.conf")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0600))

	f, err := Load(klog.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, f.Path())
	assert.Len(t, f.Sections(), 4)
}

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.conf")

	f, err := Load(klog.Background(), path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrConfigNotFound))
	require.NotNil(t, f, "a usable empty file is returned")
	assert.Empty(t, f.SectionNames())
	assert.False(t, f.AnyReady())
	assert.Empty(t, f.HostIPs())
}

func TestLoad_InvalidSyntax(t *testing.T) {
	path := filepath.Join(t.TempDir(), "App.conf")
	require.NoError(t, os.WriteFile(path, []byte("[broken\nip = 1\n"), 0600))

	f, err := Load(klog.Background(), path)
	require.Error(t, err)
	require.NotNil(t, f)
	assert.Empty(t, f.SectionNames())
}
