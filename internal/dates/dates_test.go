package dates

import (
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/require"

	"trip-quote-agent/internal/domain"
	"trip-quote-agent/internal/textnorm"
)

func fixedExtractor(y int, m time.Month, d int) *Extractor {
	return NewExtractor(WithClock(func() time.Time {
		return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
	}))
}

func date(y int, m time.Month, d int) civil.Date {
	return civil.Date{Year: y, Month: m, Day: d}
}

func TestExtract(t *testing.T) {
	e := fixedExtractor(2025, time.January, 1)
	cases := []struct {
		name string
		in   string
		want Range
	}{
		{
			name: "day month",
			in:   "de Belo Horizonte para São Paulo dia 15/03, 2 adultos e 1 criança",
			want: Range{Outbound: date(2025, time.March, 15), IsOneWay: true},
		},
		{
			name: "iso pair",
			in:   "ida 2025-02-10 volta 2025-02-20",
			want: Range{Outbound: date(2025, time.February, 10), Return: date(2025, time.February, 20)},
		},
		{
			name: "explicit short year",
			in:   "10/06/25",
			want: Range{Outbound: date(2025, time.June, 10), IsOneWay: true},
		},
		{
			name: "month names",
			in:   "Dia 5 de março até 12 de Março",
			want: Range{Outbound: date(2025, time.March, 5), Return: date(2025, time.March, 12)},
		},
		{
			name: "month abbreviation with year",
			in:   "saio 1º jun 2025",
			want: Range{Outbound: date(2025, time.June, 1), IsOneWay: true},
		},
		{
			name: "relative words",
			in:   "vou amanhã e volto semana que vem",
			want: Range{Outbound: date(2025, time.January, 2), Return: date(2025, time.January, 8)},
		},
		{
			name: "depois de amanha",
			in:   "depois de amanhã",
			want: Range{Outbound: date(2025, time.January, 3), IsOneWay: true},
		},
		{
			name: "in n days",
			in:   "daqui a dez dias",
			want: Range{Outbound: date(2025, time.January, 11), IsOneWay: true},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := e.Extract(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestExtract_YearRollsForward(t *testing.T) {
	e := fixedExtractor(2025, time.June, 15)

	got, err := e.Extract("10/03")
	require.NoError(t, err)
	require.Equal(t, date(2026, time.March, 10), got.Outbound)

	got, err = e.Extract("15/06")
	require.NoError(t, err)
	require.Equal(t, date(2025, time.June, 15), got.Outbound, "today is not rolled")
}

func TestExtract_WindowBoundaries(t *testing.T) {
	e := fixedExtractor(2025, time.January, 1)
	today := date(2025, time.January, 1)

	got, err := e.Extract(today.AddDays(360).String())
	require.NoError(t, err)
	require.Equal(t, today.AddDays(360), got.Outbound)

	_, err = e.Extract(today.AddDays(361).String())
	require.ErrorIs(t, err, &domain.ValidationError{Code: domain.CodeDateOutOfWindow})

	_, err = e.Extract("2024-12-31")
	require.ErrorIs(t, err, &domain.ValidationError{Code: domain.CodeDateOutOfWindow})
}

func TestExtract_ReturnRules(t *testing.T) {
	e := fixedExtractor(2025, time.January, 1)

	_, err := e.Extract("ida 20/03 volta 10/03")
	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	require.Equal(t, domain.CodeReturnBeforeOutbound, vErr.Code)

	_, err = e.Extract("ida 20/03/2025 volta 20/03/2026")
	require.ErrorIs(t, err, &domain.ValidationError{Code: domain.CodeDateOutOfWindow})

	_, err = e.Extract("volta 20/02, ida amanhã")
	require.ErrorIs(t, err, &domain.ValidationError{Code: domain.CodeReturnBeforeOutbound}, "mentions keep text order")

	got, err := e.Extract("ida 20/03 volta 20/03")
	require.NoError(t, err)
	require.False(t, got.IsOneWay)
}

func TestExtract_NoDate(t *testing.T) {
	e := fixedExtractor(2025, time.January, 1)
	for _, in := range []string{"", "2 adultos", "31/02", "de recife para natal", "15 de brumario"} {
		_, err := e.Extract(in)
		require.ErrorIs(t, err, ErrNoDate, in)
	}
}

func TestParse_RoundTripsNormalizedISO(t *testing.T) {
	e := fixedExtractor(2025, time.January, 1)
	start := date(2024, time.February, 27)
	for i := 0; i < 800; i += 7 {
		d := start.AddDays(i)
		got, ok := e.Parse(textnorm.Normalize(d.String()))
		require.True(t, ok, d.String())
		require.Equal(t, d, got)
	}
}

func TestToday_UsesLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	e := NewExtractor(
		WithClock(func() time.Time { return time.Date(2025, time.January, 2, 1, 0, 0, 0, time.UTC) }),
		WithLocation(loc),
	)
	require.Equal(t, date(2025, time.January, 1), e.Today())
}
