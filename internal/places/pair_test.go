package places

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractPair(t *testing.T) {
	r := NewResolver()
	cases := []struct {
		name     string
		in       string
		origin   string
		dest     string
		strategy string
	}{
		{
			name:     "from to with trailing clauses",
			in:       "de Belo Horizonte para São Paulo dia 15/03, 2 adultos e 1 criança",
			origin:   "CNF",
			dest:     "SAO",
			strategy: "from_to",
		},
		{
			name:     "from to with codes",
			in:       "quero ir de REC para o Rio",
			origin:   "REC",
			dest:     "RIO",
			strategy: "from_to",
		},
		{
			name:     "round trip clause before origin",
			in:       "passagem ida e volta de recife pra salvador",
			origin:   "REC",
			dest:     "SSA",
			strategy: "from_to",
		},
		{
			name:     "destination first",
			in:       "para o rio saindo de bh",
			origin:   "BHZ",
			dest:     "RIO",
			strategy: "to_from",
		},
		{
			name:     "labels",
			in:       "origem: Curitiba / destino: Natal",
			origin:   "CWB",
			dest:     "NAT",
			strategy: "origin_destination_labels",
		},
		{
			name:     "two bare codes",
			in:       "GRU GIG amanhã",
			origin:   "GRU",
			dest:     "GIG",
			strategy: "bare_codes",
		},
		{
			name:     "code and alias",
			in:       "voo CWB recife",
			origin:   "CWB",
			dest:     "REC",
			strategy: "code_and_alias",
		},
		{
			name:     "alias before code",
			in:       "salvador e POA",
			origin:   "SSA",
			dest:     "POA",
			strategy: "code_and_alias",
		},
		{
			name:     "alias scan",
			in:       "salvador recife 10/05",
			origin:   "SSA",
			dest:     "REC",
			strategy: "alias_scan",
		},
		{
			name:     "alias scan with misspelling",
			in:       "florianopolys, porto alegre",
			origin:   "FLN",
			dest:     "POA",
			strategy: "alias_scan",
		},
		{
			name:     "destination only",
			in:       "vou para fortaleza",
			dest:     "FOR",
			strategy: "destination_only",
		},
		{
			name:     "origin only",
			in:       "saindo de Manaus",
			origin:   "MAO",
			strategy: "origin_only",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.ExtractPair(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.origin, got.Origin)
			require.Equal(t, tc.dest, got.Destination)
			require.Equal(t, tc.strategy, got.Strategy)
		})
	}
}

func TestExtractPair_SpecificAirportBeatsMetro(t *testing.T) {
	got, err := NewResolver().ExtractPair("de confins para sao paulo")
	require.NoError(t, err)
	require.Equal(t, "CNF", got.Origin)
	require.Equal(t, "SAO", got.Destination)
}

func TestExtractPair_IgnoresLowercaseLookalikes(t *testing.T) {
	r := NewResolver()

	_, err := r.ExtractPair("for the win")
	require.ErrorIs(t, err, ErrNoPlace)

	_, err = r.ExtractPair("2 adultos e 1 bebe")
	require.ErrorIs(t, err, ErrNoPlace)

	_, err = r.ExtractPair("")
	require.ErrorIs(t, err, ErrNoPlace)
}

func TestExtractPair_Unrecognized(t *testing.T) {
	rec := &fakeRecorder{}
	r := NewResolver(WithRecorder(rec))

	_, err := r.ExtractPair("de zzzzzzz para qqqqqqqq")
	var unrecognized *UnrecognizedError
	require.True(t, errors.As(err, &unrecognized))
	require.Equal(t, "zzzzzzz", unrecognized.Text)
	require.Equal(t, []string{"zzzzzzz", "qqqqqqqq"}, rec.texts)
}

func TestExtractPair_UnknownCityKeepsResolvedSide(t *testing.T) {
	cases := []struct {
		name         string
		in           string
		origin       string
		dest         string
		unrecognized string
	}{
		{name: "unknown origin", in: "de Xique-Xique para Salvador", dest: "SSA", unrecognized: "xique xique"},
		{name: "unknown destination", in: "de Salvador para Xique Xique", origin: "SSA", unrecognized: "xique xique"},
		{name: "word inside unknown name", in: "de Montes Claros para Recife", dest: "REC", unrecognized: "montes claros"},
		{name: "three letter word inside unknown name", in: "de Caxias do Sul para Recife", dest: "REC", unrecognized: "caxias do sul"},
		{name: "connector inside unknown name", in: "de Juiz de Fora para Salvador dia 10/02", dest: "SSA", unrecognized: "juiz de fora"},
		{name: "unknown single word", in: "de Uberaba para Recife, 2 adultos", dest: "REC", unrecognized: "uberaba"},
		{name: "unknown destination with trailing clause", in: "saindo de recife para petrolina amanhã", origin: "REC", unrecognized: "petrolina"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &fakeRecorder{}
			got, err := NewResolver(WithRecorder(rec)).ExtractPair(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.origin, got.Origin)
			require.Equal(t, tc.dest, got.Destination)
			require.Equal(t, tc.unrecognized, got.Unrecognized)
			require.Equal(t, []string{tc.unrecognized}, rec.texts)
		})
	}
}

func TestExtractPair_ResolvedPairHasNoMiss(t *testing.T) {
	rec := &fakeRecorder{}
	got, err := NewResolver(WithRecorder(rec)).ExtractPair("de Belo Horizonte para São Paulo")
	require.NoError(t, err)
	require.Empty(t, got.Unrecognized)
	require.Empty(t, rec.texts)
}

func TestResolvePhrase_WholeSegmentOnly(t *testing.T) {
	r := NewResolver()
	cases := []struct {
		phrase string
		tail   bool
		code   string
		ok     bool
	}{
		{phrase: "rec", tail: true, code: "REC", ok: true},
		{phrase: "o rio dia 10", code: "RIO", ok: true},
		{phrase: "caxias do sul", tail: true},
		{phrase: "montes claros", tail: true},
		{phrase: "sbgr"},
	}
	for _, tc := range cases {
		t.Run(tc.phrase, func(t *testing.T) {
			code, ok, _ := r.resolvePhrase(tc.phrase, tc.tail)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.code, code)
		})
	}
}

func TestPickSegment(t *testing.T) {
	words := []string{"ida", "e", "volta", "de", "recife"}
	require.Equal(t, []string{"recife"}, pickSegment(words, true))

	words = []string{"o", "rio", "dia", "10", "com", "2", "adultos"}
	require.Equal(t, []string{"rio"}, pickSegment(words, false))

	require.Nil(t, pickSegment([]string{"dia", "10"}, false))
}
