package places

// AirportAlias is one entry of the alias lexicon. Metro entries stand for an
// urban area served by several airports.
type AirportAlias struct {
	Code    string
	City    string
	Aliases []string
	Metro   bool
}

// DefaultLexicon is the broad resolution lexicon. It includes metro
// pseudo-codes and international airports the business does not serve.
var DefaultLexicon = []AirportAlias{
	{Code: "SAO", City: "sao paulo", Aliases: []string{"sp", "sampa", "sao paulo capital"}, Metro: true},
	{Code: "RIO", City: "rio de janeiro", Aliases: []string{"rio", "rj"}, Metro: true},
	{Code: "BHZ", City: "belo horizonte", Aliases: []string{"bh", "beaga"}, Metro: true},

	{Code: "GRU", City: "guarulhos", Aliases: []string{"aeroporto de guarulhos", "cumbica"}},
	{Code: "CGH", City: "congonhas", Aliases: []string{"aeroporto de congonhas"}},
	{Code: "VCP", City: "campinas", Aliases: []string{"viracopos"}},
	{Code: "GIG", City: "galeao", Aliases: []string{"rio galeao", "aeroporto do galeao", "tom jobim"}},
	{Code: "SDU", City: "santos dumont", Aliases: []string{"aeroporto santos dumont"}},
	{Code: "CNF", City: "belo horizonte", Aliases: []string{"confins", "aeroporto de confins"}},
	{Code: "PLU", City: "pampulha", Aliases: []string{"aeroporto da pampulha"}},
	{Code: "BSB", City: "brasilia", Aliases: []string{"distrito federal", "df"}},
	{Code: "SSA", City: "salvador", Aliases: []string{"bahia"}},
	{Code: "REC", City: "recife", Aliases: []string{"pernambuco"}},
	{Code: "FOR", City: "fortaleza", Aliases: []string{"ceara"}},
	{Code: "POA", City: "porto alegre", Aliases: []string{"rio grande do sul"}},
	{Code: "CWB", City: "curitiba", Aliases: []string{"parana"}},
	{Code: "FLN", City: "florianopolis", Aliases: []string{"floripa", "santa catarina"}},
	{Code: "NAT", City: "natal", Aliases: []string{"rio grande do norte"}},
	{Code: "MCZ", City: "maceio", Aliases: []string{"alagoas"}},
	{Code: "JPA", City: "joao pessoa", Aliases: []string{"paraiba"}},
	{Code: "AJU", City: "aracaju", Aliases: []string{"sergipe"}},
	{Code: "SLZ", City: "sao luis", Aliases: []string{"maranhao"}},
	{Code: "THE", City: "teresina", Aliases: []string{"piaui"}},
	{Code: "BEL", City: "belem", Aliases: []string{"aeroporto de belem"}},
	{Code: "MAO", City: "manaus", Aliases: []string{"amazonas"}},
	{Code: "GYN", City: "goiania", Aliases: []string{"goias"}},
	{Code: "CGB", City: "cuiaba", Aliases: []string{"mato grosso"}},
	{Code: "CGR", City: "campo grande", Aliases: []string{"mato grosso do sul"}},
	{Code: "VIX", City: "vitoria", Aliases: []string{"espirito santo"}},
	{Code: "IGU", City: "foz do iguacu", Aliases: []string{"foz", "cataratas"}},
	{Code: "NVT", City: "navegantes", Aliases: []string{"balneario camboriu", "camboriu"}},
	{Code: "BPS", City: "porto seguro", Aliases: nil},
	{Code: "PMW", City: "palmas", Aliases: []string{"tocantins"}},
	{Code: "PVH", City: "porto velho", Aliases: []string{"rondonia"}},
	{Code: "IOS", City: "ilheus", Aliases: nil},
	{Code: "JOI", City: "joinville", Aliases: nil},
	{Code: "LDB", City: "londrina", Aliases: nil},
	{Code: "UDI", City: "uberlandia", Aliases: nil},
	{Code: "RAO", City: "ribeirao preto", Aliases: nil},
	{Code: "FEN", City: "fernando de noronha", Aliases: []string{"noronha"}},

	{Code: "LIS", City: "lisboa", Aliases: []string{"lisbon", "portugal"}},
	{Code: "MIA", City: "miami", Aliases: nil},
	{Code: "MCO", City: "orlando", Aliases: []string{"disney"}},
	{Code: "JFK", City: "nova york", Aliases: []string{"nova iorque", "new york"}},
	{Code: "EZE", City: "buenos aires", Aliases: []string{"argentina"}},
	{Code: "SCL", City: "santiago", Aliases: []string{"chile"}},
	{Code: "CDG", City: "paris", Aliases: []string{"franca"}},
	{Code: "MAD", City: "madri", Aliases: []string{"madrid", "espanha"}},
}

// DefaultOfficialCodes is the allow-list of codes accepted as a final origin
// or destination.
var DefaultOfficialCodes = []string{
	"SAO", "RIO", "BHZ",
	"GRU", "CGH", "VCP", "GIG", "SDU", "CNF", "PLU",
	"BSB", "SSA", "REC", "FOR", "POA", "CWB", "FLN", "NAT", "MCZ", "JPA",
	"AJU", "SLZ", "THE", "BEL", "MAO", "GYN", "CGB", "CGR", "VIX", "IGU",
	"NVT", "BPS", "PMW", "PVH", "IOS", "JOI", "LDB", "UDI", "RAO", "FEN",
}
