package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDateHalfYearStrategy(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "first half", raw: "2024-03-15", want: "202410"},
		{name: "june boundary", raw: "2024-06-30", want: "202410"},
		{name: "second half", raw: "2024-08-01", want: "202420"},
		{name: "december", raw: "2023-12-31", want: "202320"},
		{name: "datetime cell", raw: "2024-02-01 00:00:00", want: "202410"},
		{name: "slash layout", raw: "02/01/2024", want: "202410"},
		{name: "padded", raw: "  2024-03-15  ", want: "202410"},
		{name: "empty", raw: "", want: ""},
		{name: "not a date", raw: "20241", want: ""},
		{name: "garbage", raw: "pending", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DateHalfYearStrategy{}.Derive(tt.raw))
		})
	}
}

func TestEncodedPeriodStrategy(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "five digit code", raw: "20241", want: "20240"},
		{name: "six digit code", raw: "202420", want: "202420"},
		{name: "numeric cell suffix", raw: "20241.0", want: "20240"},
		{name: "padded", raw: " 20242 ", want: "20240"},
		{name: "too short", raw: "2024", want: ""},
		{name: "too long", raw: "2024100", want: ""},
		{name: "non numeric", raw: "2024-1", want: ""},
		{name: "empty", raw: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EncodedPeriodStrategy{}.Derive(tt.raw))
		})
	}
}

func TestChainedStrategy(t *testing.T) {
	chained := DefaultCohortStrategy()

	assert.Equal(t, "date_half_year+encoded_period", chained.Name())

	// A literal date resolves through the first link.
	assert.Equal(t, "202410", chained.Derive("2024-03-15"))
	// An encoded period falls through to the second.
	assert.Equal(t, "20240", chained.Derive("20241"))
	// Nothing parseable stays empty.
	assert.Equal(t, "", chained.Derive("pendiente"))
}
