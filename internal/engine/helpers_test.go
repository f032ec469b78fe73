package engine_test

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/tartampluch/go-manse/internal/almanac"
)

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

// fixedNow is the reference "now" for age expectations.
var fixedNow = MockClock{CurrentTime: time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)}

// MockTable records lookups so tests can assert the table was never consulted.
type MockTable struct {
	mock.Mock
}

func (m *MockTable) Lookup(kind almanac.Kind, year, month, day int) (almanac.Entry, bool) {
	args := m.Called(kind, year, month, day)
	return args.Get(0).(almanac.Entry), args.Bool(1)
}

// MockFetcher simulates the network layer using `testify/mock`.
type MockFetcher struct {
	mock.Mock
}

// Fetch implements the engine.VCardFetcher interface.
func (m *MockFetcher) Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error) {
	args := m.Called(ctx, url, user, pass)
	if r := args.Get(0); r != nil {
		return r.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}
