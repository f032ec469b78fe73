package engine_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-manse/internal/almanac"
	"github.com/tartampluch/go-manse/internal/almanac/almanactest"
	"github.com/tartampluch/go-manse/internal/config"
	"github.com/tartampluch/go-manse/internal/engine"
)

const addressBook = `BEGIN:VCARD
VERSION:4.0
FN:Kim Minsu
BDAY:1973-08-19
END:VCARD
BEGIN:VCARD
VERSION:3.0
N:Lee;Jiwoo;;;
BDAY;CALSCALE=chinese:1999-11-25
END:VCARD
BEGIN:VCARD
VERSION:3.0
FN:Old Timer
BDAY:18500101
END:VCARD
BEGIN:VCARD
VERSION:3.0
FN:No Year
BDAY:--08-19
END:VCARD
BEGIN:VCARD
VERSION:3.0
FN:No Birthday
END:VCARD
`

func newContactResolver(t *testing.T, f engine.VCardFetcher) *engine.ContactResolver {
	t.Helper()
	return &engine.ContactResolver{
		Resolver: engine.NewResolver(almanactest.Table(t), fixedNow),
		Fetcher:  f,
	}
}

func TestContactResolver_Local(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts"+config.ExtVCF)
	require.NoError(t, os.WriteFile(path, []byte(addressBook), config.FilePermUserRW))

	results, err := newContactResolver(t, nil).Run(context.Background(), engine.SourceConfig{
		Mode:      config.SourceModeLocal,
		LocalPath: path,
	})

	require.NoError(t, err)
	require.Len(t, results, 3, "cards without a full BDAY are skipped")

	kim := results[0]
	assert.Equal(t, "Kim Minsu", kim.Name)
	assert.Equal(t, "19730819", kim.BirthDate)
	require.NotNil(t, kim.Record)
	assert.Equal(t, "丁亥", kim.Record.Pillars.Day.Hanja())
	assert.NotEmpty(t, kim.UID)
	assert.Empty(t, kim.Err)

	lee := results[1]
	assert.Equal(t, almanac.LunarCommon, lee.Calendar)
	require.NotNil(t, lee.Record)
	assert.Equal(t, almanac.Date{Year: 2000, Month: 1, Day: 1}, lee.Record.Entry.Solar)

	old := results[2]
	assert.Nil(t, old.Record)
	assert.Contains(t, old.Err, "1900")

	birthdays := engine.LunarBirthdays(results)
	require.Len(t, birthdays, 2)
	assert.Equal(t, almanac.Date{Year: 1973, Month: 7, Day: 22}, birthdays[0].Lunar)
}

func TestContactResolver_Web(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, "https://dav.example.com/book", "alice", "secret").
		Return(io.NopCloser(strings.NewReader(addressBook)), nil)

	results, err := newContactResolver(t, fetcher).Run(context.Background(), engine.SourceConfig{
		Mode:    config.SourceModeWeb,
		WebURL:  "https://dav.example.com/book",
		WebUser: "alice",
		WebPass: "secret",
	})

	require.NoError(t, err)
	assert.Len(t, results, 3)
	fetcher.AssertExpectations(t)
}

func TestContactResolver_UIDStable(t *testing.T) {
	run := func() string {
		fetcher := new(MockFetcher)
		fetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(io.NopCloser(strings.NewReader(addressBook)), nil)
		results, err := newContactResolver(t, fetcher).Run(context.Background(),
			engine.SourceConfig{Mode: config.SourceModeWeb, WebURL: "https://x"})
		require.NoError(t, err)
		return results[0].UID
	}

	assert.Equal(t, run(), run())
}

func TestContactResolver_SourceErrors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     engine.SourceConfig
		fetcher engine.VCardFetcher
		wantErr string
	}{
		{"EmptyPath", engine.SourceConfig{Mode: config.SourceModeLocal}, nil, config.ErrLocalPathEmpty},
		{"EmptyURL", engine.SourceConfig{Mode: config.SourceModeWeb}, nil, config.ErrWebURLEmpty},
		{"NoFetcher", engine.SourceConfig{Mode: config.SourceModeWeb, WebURL: "https://x"}, nil, config.ErrFetcherMissing},
		{"BadMode", engine.SourceConfig{Mode: "carrier-pigeon"}, nil, config.ErrModeUnsupport},
		{"MissingFile", engine.SourceConfig{Mode: config.SourceModeLocal, LocalPath: "/nonexistent/x.vcf"}, nil, config.ErrVCardParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newContactResolver(t, tt.fetcher).Run(context.Background(), tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestContactResolver_FetchError(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	_, err := newContactResolver(t, fetcher).Run(context.Background(),
		engine.SourceConfig{Mode: config.SourceModeWeb, WebURL: "https://x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestContactResolver_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(io.NopCloser(strings.NewReader(addressBook)), nil)

	_, err := newContactResolver(t, fetcher).Run(ctx,
		engine.SourceConfig{Mode: config.SourceModeWeb, WebURL: "https://x"})

	assert.ErrorIs(t, err, context.Canceled)
}
