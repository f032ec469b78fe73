package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tartampluch/go-manse/internal/almanac/almanactest"
	"github.com/tartampluch/go-manse/internal/config"
	"github.com/tartampluch/go-manse/internal/engine"
	"github.com/tartampluch/go-manse/internal/printout"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var clock2026 = fixedClock{time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)}

type fakeKeyring struct {
	secrets map[string]string
}

func (k *fakeKeyring) Get(service, user string) (string, error) {
	p, ok := k.secrets[service+"/"+user]
	if !ok {
		return "", errors.New("secret not found")
	}
	return p, nil
}

func (k *fakeKeyring) Set(service, user, password string) error {
	k.secrets[service+"/"+user] = password
	return nil
}

type fakeFetcher struct {
	body           string
	url, user, pwd string
}

func (f *fakeFetcher) Fetch(_ context.Context, url, user, pass string) (io.ReadCloser, error) {
	f.url, f.user, f.pwd = url, user, pass
	return io.NopCloser(strings.NewReader(f.body)), nil
}

const addressBook = `BEGIN:VCARD
VERSION:4.0
FN:Kim Minsu
BDAY:1973-08-19
END:VCARD
BEGIN:VCARD
VERSION:3.0
FN:Old Timer
BDAY:18500101
END:VCARD
`

// testEnv isolates a command run from the user's configuration.
type testEnv struct {
	app      *App
	keyring  *fakeKeyring
	fetcher  *fakeFetcher
	dir      string
	baseArgs []string
}

func newTestEnv(t *testing.T, clock engine.Clock) *testEnv {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	for _, key := range []string{config.EnvTable, config.EnvPort, config.EnvLanguage, config.EnvFeedback, config.EnvRegion} {
		t.Setenv(key, "")
	}

	db := almanactest.WriteDB(t, dir, almanactest.Entries())
	env := &testEnv{
		keyring: &fakeKeyring{secrets: map[string]string{}},
		fetcher: &fakeFetcher{body: addressBook},
		dir:     dir,
		baseArgs: []string{
			"--" + config.FlagTable, db,
			"--" + config.FlagConfig, filepath.Join(dir, config.SettingsFileName),
			"--" + config.FlagLang, "en",
		},
	}
	env.app = &App{Clock: clock, Fetcher: env.fetcher, Passwords: env.keyring}
	return env
}

// run executes one command on a fresh tree sharing the env's App.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd(e.app)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(append(args, e.baseArgs...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestResolve_Text(t *testing.T) {
	env := newTestEnv(t, clock2026)

	out, err := env.run(t, "resolve", "19730819", "--time", "1430", "--region", "seoul", "--blood", "AB", "--rh-minus")
	require.NoError(t, err)

	assert.Contains(t, out, "Birth date: 73.08.19 (Solar)")
	assert.Contains(t, out, "Lunar date: 1973-07-22")
	assert.Contains(t, out, "Hour: 丁未 (정미)")
	assert.Contains(t, out, "Day: 丁亥 (정해)")
	assert.Contains(t, out, "Month: 庚申 (경신)")
	assert.Contains(t, out, "Year: 癸丑 (계축)")
	assert.Contains(t, out, "Age: 54 (Korean age)")
	assert.Contains(t, out, "Zodiac: Ox")
	assert.Contains(t, out, "Blood type: AB(Rh-)")
	assert.Contains(t, out, "True solar time: 1973-08-19 13:58")

	hour := strings.Index(out, "Hour:")
	year := strings.Index(out, "Year:")
	assert.Less(t, hour, year, "hour pillar is printed first")
}

func TestResolve_LunarLeapNoTime(t *testing.T) {
	env := newTestEnv(t, clock2026)

	out, err := env.run(t, "resolve", "20230201", "--calendar", "lunar-leap")
	require.NoError(t, err)

	assert.Contains(t, out, "Solar date: 2023-03-22")
	assert.Contains(t, out, "Lunar date: 2023-02-01 Lunar (leap month)")
	assert.Contains(t, out, "Day: 己卯 (기묘)")
	assert.NotContains(t, out, "Hour:")
	assert.NotContains(t, out, "True solar time")
}

func TestResolve_JSON(t *testing.T) {
	env := newTestEnv(t, clock2026)

	out, err := env.run(t, "resolve", "19730819", "--json")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "73.08.19", got["birth_date"])
	assert.EqualValues(t, 54, got["age"])
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
		wantMsg string
	}{
		{
			name:    "bad format",
			args:    []string{"resolve", "1973-08-19"},
			wantErr: engine.ErrInvalidFormat,
		},
		{
			name:    "impossible date",
			args:    []string{"resolve", "19730230"},
			wantErr: engine.ErrInvalidDate,
			wantMsg: "does not exist",
		},
		{
			name:    "bad time",
			args:    []string{"resolve", "19730819", "--time", "2460"},
			wantErr: engine.ErrInvalidTime,
		},
		{
			name:    "outside table",
			args:    []string{"resolve", "18500101"},
			wantErr: engine.ErrNotFound,
			wantMsg: "1900 to 2050",
		},
		{
			name:    "unknown region",
			args:    []string{"resolve", "19730819", "--region", "atlantis"},
			wantErr: engine.ErrInvalidOption,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, clock2026)
			_, err := env.run(t, tt.args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestResolve_MissingTable(t *testing.T) {
	env := newTestEnv(t, clock2026)
	env.baseArgs[1] = filepath.Join(env.dir, "missing.sqlite")

	_, err := env.run(t, "resolve", "19730819")
	assert.Error(t, err)
}

func TestPrint_File(t *testing.T) {
	env := newTestEnv(t, clock2026)
	path := filepath.Join(env.dir, "page.html")

	_, err := env.run(t, "print", "19730819", "--time", "1430", "-o", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	page := html.UnescapeString(string(data))
	assert.Contains(t, page, "73.08.19(+)")
	assert.Contains(t, page, "<div>未</div>")
}

func TestICS_Date(t *testing.T) {
	env := newTestEnv(t, fixedClock{time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)})

	out, err := env.run(t, "ics", "20230220", "--name", "Kim")
	require.NoError(t, err)
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20230220")
	assert.Contains(t, out, "Kim")
}

func TestICS_RequiresInput(t *testing.T) {
	env := newTestEnv(t, clock2026)
	_, err := env.run(t, "ics")
	assert.Error(t, err)
}

func TestContacts_Local(t *testing.T) {
	env := newTestEnv(t, clock2026)
	path := filepath.Join(env.dir, "book.vcf")
	require.NoError(t, os.WriteFile(path, []byte(addressBook), config.FilePermUserRW))

	out, err := env.run(t, "contacts", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Kim Minsu")
	assert.Contains(t, out, "癸丑 庚申 丁亥")
	assert.Contains(t, out, "Old Timer")
	assert.Empty(t, env.fetcher.url, "local files are not fetched")
}

func TestContacts_WebUsesKeyring(t *testing.T) {
	env := newTestEnv(t, clock2026)
	env.keyring.secrets[config.KeyringService+"/alice"] = "s3cret"

	out, err := env.run(t, "contacts", "https://dav.example.com/book.vcf", "--user", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Kim Minsu")
	assert.Equal(t, "https://dav.example.com/book.vcf", env.fetcher.url)
	assert.Equal(t, "alice", env.fetcher.user)
	assert.Equal(t, "s3cret", env.fetcher.pwd)
}

func TestContacts_Password(t *testing.T) {
	env := newTestEnv(t, clock2026)

	var out bytes.Buffer
	root := NewRootCmd(env.app)
	root.SetOut(&out)
	root.SetIn(strings.NewReader("hunter2\n"))
	root.SetArgs(append([]string{"contacts", "password", "bob"}, env.baseArgs...))
	require.NoError(t, root.ExecuteContext(context.Background()))

	assert.Equal(t, "hunter2", env.keyring.secrets[config.KeyringService+"/bob"])
}

func TestFeedback_Flow(t *testing.T) {
	env := newTestEnv(t, clock2026)

	out, err := env.run(t, "feedback", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No feedback yet.")

	out, err = env.run(t, "feedback", "submit", "the", "hour", "pillar", "looks", "off")
	require.NoError(t, err)
	assert.Contains(t, out, "Thank you for your feedback.")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	id := lines[len(lines)-1]

	out, err = env.run(t, "feedback", "list")
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "open")
	assert.Contains(t, out, "the hour pillar looks off")

	_, err = env.run(t, "feedback", "resolve", id)
	require.NoError(t, err)
	out, err = env.run(t, "feedback", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "resolved")

	_, err = env.run(t, "feedback", "reopen", id)
	require.NoError(t, err)
}

func TestFeedback_Errors(t *testing.T) {
	env := newTestEnv(t, clock2026)

	_, err := env.run(t, "feedback", "submit", "   ")
	assert.Error(t, err)

	_, err = env.run(t, "feedback", "resolve", "not-a-uuid")
	assert.Error(t, err)

	_, err = env.run(t, "feedback", "resolve", "6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestRegionsAndSlots(t *testing.T) {
	env := newTestEnv(t, clock2026)

	out, err := env.run(t, "regions")
	require.NoError(t, err)
	assert.Contains(t, out, "seoul")
	assert.Contains(t, out, "-32")

	out, err = env.run(t, "slots")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 12)
}

func TestSettings_SetAndShow(t *testing.T) {
	env := newTestEnv(t, clock2026)

	_, err := env.run(t, "settings", "set", "region", "busan")
	require.NoError(t, err)

	out, err := env.run(t, "settings", "show")
	require.NoError(t, err)
	var s config.Settings
	require.NoError(t, toml.Unmarshal([]byte(out), &s))
	assert.Equal(t, "busan", s.Region)

	_, err = env.run(t, "settings", "set", "colour", "blue")
	assert.ErrorContains(t, err, config.ErrSettingKey)

	_, err = env.run(t, "settings", "set", "server_port", "99999")
	assert.ErrorContains(t, err, config.ErrPortRange)

	_, err = env.run(t, "settings", "set", "region", "atlantis")
	assert.ErrorIs(t, err, engine.ErrInvalidOption)
}

func TestLayout_SetResetShow(t *testing.T) {
	env := newTestEnv(t, clock2026)

	_, err := env.run(t, "layout", "set", "grid.top", "120.5")
	require.NoError(t, err)
	assert.Equal(t, 120.5, printout.LoadLayout(env.app.Settings.LayoutPath).Grid.Top)

	out, err := env.run(t, "layout", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "120.5")

	_, err = env.run(t, "layout", "set", "grid.colour", "1")
	assert.ErrorContains(t, err, config.ErrLayoutField)
	_, err = env.run(t, "layout", "set", "info.left", "wide")
	assert.ErrorContains(t, err, config.ErrLayoutField)

	_, err = env.run(t, "layout", "reset")
	require.NoError(t, err)
	assert.Equal(t, printout.DefaultLayout(), printout.LoadLayout(env.app.Settings.LayoutPath))
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t, clock2026)

	out, err := env.run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, config.BinaryName+" version "+config.Version))
}

func TestServe_InvalidPort(t *testing.T) {
	env := newTestEnv(t, clock2026)

	_, err := env.run(t, "serve", "--port", "abc")
	assert.ErrorContains(t, err, config.ErrPortNumber)
}
