package places

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeRecorder struct {
	texts []string
}

func (f *fakeRecorder) RecordUnrecognized(text string) {
	f.texts = append(f.texts, text)
}

func TestResolve_OfficialCodesAreIdempotent(t *testing.T) {
	r := NewResolver()
	for _, code := range DefaultOfficialCodes {
		got, ok := r.Resolve(code)
		require.True(t, ok, code)
		require.Equal(t, code, got)
	}
}

func TestResolve(t *testing.T) {
	r := NewResolver()
	cases := []struct {
		in   string
		want string
	}{
		{in: "gru", want: "GRU"},
		{in: "  Rec ", want: "REC"},
		{in: "XYZ", want: "XYZ"},
		{in: "Belo Horizonte", want: "CNF"},
		{in: "São Paulo", want: "SAO"},
		{in: "sampa", want: "SAO"},
		{in: "Rio de Janeiro", want: "RIO"},
		{in: "Galeão", want: "GIG"},
		{in: "Florianópolys", want: "FLN"},
		{in: "Recifi", want: "REC"},
		{in: "floripa!", want: "FLN"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := r.Resolve(tc.in)
			require.True(t, ok)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestResolve_RejectsFourLetters(t *testing.T) {
	rec := &fakeRecorder{}
	r := NewResolver(WithRecorder(rec))

	_, ok := r.Resolve("SBGR")
	require.False(t, ok)
	require.Empty(t, rec.texts)
}

func TestResolve_RecordsUnrecognized(t *testing.T) {
	rec := &fakeRecorder{}
	r := NewResolver(WithRecorder(rec))

	_, ok := r.Resolve("Cidade Inexistente!")
	require.False(t, ok)
	require.Equal(t, []string{"cidade inexistente"}, rec.texts)
}

func TestResolve_MetroOnlyWhenNoSpecificAirportMatches(t *testing.T) {
	r := NewResolver(WithLexicon([]AirportAlias{
		{Code: "AAA", City: "metropole", Metro: true},
		{Code: "BBB", City: "metropolo"},
	}))

	got, ok := r.Resolve("metropole")
	require.True(t, ok)
	require.Equal(t, "BBB", got, "a fuzzy specific airport beats an exact metro entry")

	r = NewResolver(WithLexicon([]AirportAlias{
		{Code: "AAA", City: "metropole", Metro: true},
		{Code: "BBB", City: "aeroporto central"},
	}))
	got, ok = r.Resolve("metropole")
	require.True(t, ok)
	require.Equal(t, "AAA", got)
}

func TestIsOfficial(t *testing.T) {
	r := NewResolver()
	require.True(t, r.IsOfficial("gru"))
	require.True(t, r.IsOfficial("SAO"))
	require.False(t, r.IsOfficial("LIS"))
	require.True(t, r.IsKnown("LIS"))

	r = NewResolver(WithOfficialCodes([]string{" lis "}))
	require.True(t, r.IsOfficial("LIS"))
	require.False(t, r.IsOfficial("GRU"))
}
