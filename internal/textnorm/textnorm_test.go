package textnorm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"São Paulo", "sao paulo"},
		{"  Belo   Horizonte!! ", "belo horizonte"},
		{"Florianópolis/SC", "florianopolis sc"},
		{"dia 15/03, 2 adultos e 1 criança", "dia 15 03 2 adultos e 1 crianca"},
		{"CONFIRMAÇÃO", "confirmacao"},
		{"Ñandú—ok?", "nandu ok"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Normalize(tc.in), "in=%q", tc.in)
	}
}

func TestFold_KeepsPunctuation(t *testing.T) {
	require.Equal(t, "15/03 ate 2025-04-01, amanha", Fold("15/03 até 2025-04-01, Amanhã"))
	require.Equal(t, "", Fold(""))
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, s := range []string{"Goiânia", "são josé dos campos", "Ida e VOLTA!!"} {
		once := Normalize(s)
		require.Equal(t, once, Normalize(once))
	}
}

func TestContainsPhrase(t *testing.T) {
	text := Normalize("Quero ir de São Paulo para o Rio")
	require.True(t, ContainsPhrase(text, "sao paulo"))
	require.True(t, ContainsPhrase(text, "rio"))
	require.False(t, ContainsPhrase(text, "paul"))
	require.False(t, ContainsPhrase(text, ""))
}

func TestTokens(t *testing.T) {
	require.Equal(t, []string{"de", "recife", "para", "natal"}, Tokens("De Recife, para Natal."))
	require.Empty(t, Tokens(""))
}

func TestStripAccents_PreservesCase(t *testing.T) {
	require.Equal(t, "Sao Paulo - GRU", StripAccents("São Paulo - GRU"))
}

func TestParseCount(t *testing.T) {
	cases := map[string]int{"um": 1, "uma": 1, "duas": 2, "tres": 3, "nove": 9, "dez": 10, "7": 7, "12": 12}
	for in, want := range cases {
		got, ok := ParseCount(in)
		require.True(t, ok, in)
		require.Equal(t, want, got, in)
	}
	_, ok := ParseCount("muitos")
	require.False(t, ok)
	_, ok = ParseCount("-1")
	require.False(t, ok)
}
