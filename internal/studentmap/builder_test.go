package studentmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aolcli/internal/dataset"
)

func admissionsFixture() *dataset.Table {
	t := dataset.New("Código", "Programa")
	t.AppendRow([]string{"1003", "M-MMBA"})
	t.AppendRow([]string{"1001", "E-AFIN"})
	t.AppendRow([]string{"1001", "M-MIMC"}) // duplicate student, first wins
	t.AppendRow([]string{"1002", "Z-UNKN"}) // unmapped code
	t.AppendRow([]string{"", "M-MADM"})     // no student id
	t.AppendRow([]string{"1004.0", "m-mgpd "})
	return t
}

func TestBuild(t *testing.T) {
	entries, err := NewBuilder(nil).Build(admissionsFixture())
	require.NoError(t, err)

	assert.Equal(t, []Entry{
		{StudentID: "1001", Program: "AFIN"},
		{StudentID: "1003", Program: "MBATP"},
		{StudentID: "1004", Program: "MGP"},
	}, entries)
}

func TestBuild_IsDeterministic(t *testing.T) {
	first, err := NewBuilder(nil).Build(admissionsFixture())
	require.NoError(t, err)
	second, err := NewBuilder(nil).Build(admissionsFixture())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuild_MissingColumns(t *testing.T) {
	noID := dataset.New("Programa")
	_, err := NewBuilder(nil).Build(noID)
	assert.Error(t, err)

	noProgram := dataset.New("Código")
	_, err = NewBuilder(nil).Build(noProgram)
	assert.Error(t, err)
}

func TestCanonicalProgram(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{raw: "E-AFIN", want: "AFIN", ok: true},
		{raw: "M-AFIN", want: "AFIN", ok: true},
		{raw: "M-MMBA", want: "MBATP", ok: true},
		{raw: "E-MBAE", want: "EMBA", ok: true},
		{raw: "m-mimc", want: "MIM", ok: true},
		{raw: " M-MGPD ", want: "MGP", ok: true},
		{raw: "M-MADM", want: "MADM", ok: true},
		{raw: "Z-UNKN", ok: false},
		{raw: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := CanonicalProgram(tt.raw)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
