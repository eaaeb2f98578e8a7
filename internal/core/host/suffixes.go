package host

// compoundSuffixes lists the two-label public suffixes a registrable domain
// can sit under. The list is curated for the markets the portal serves and is
// not a full public suffix list.
var compoundSuffixes = map[string]struct{}{}

func init() {
	for _, s := range []string{
		// Latin America
		"com.co", "org.co", "net.co", "edu.co", "gov.co", "mil.co", "info.co", "biz.co", "name.co",
		"com.mx", "com.ar", "com.br", "com.pe", "com.cl", "com.uy", "com.ve", "com.ec",
		"com.bo", "com.py", "com.cr", "com.pa", "com.gt", "com.sv", "com.hn", "com.ni",
		"com.do", "com.cu", "com.pr", "com.jm",
		// Asia-Pacific
		"com.au", "com.sg", "com.hk", "com.tw", "com.my", "com.ph", "com.in", "com.pk",
		"com.bd", "com.lk", "com.np", "com.kh", "com.vn", "com.th", "com.id", "com.kr",
		"com.jp", "com.cn", "com.nz",
		// Africa and Middle East
		"com.za", "com.ng", "com.eg", "com.ae", "com.sa", "com.il", "com.tr",
		// Europe
		"co.uk", "com.ru", "com.ua", "com.pl", "com.cz", "com.sk", "com.hu", "com.ro",
		"com.bg", "com.gr", "com.pt", "com.es", "com.it", "com.fr", "com.de", "com.nl",
		"com.be", "com.ch", "com.at", "com.se", "com.no", "com.dk", "com.fi", "com.ie",
		// North America
		"com.ca", "com.us",
	} {
		compoundSuffixes[s] = struct{}{}
	}
}

// IsCompoundSuffix reports whether s (for example "com.co") is a known
// two-label public suffix.
func IsCompoundSuffix(s string) bool {
	_, ok := compoundSuffixes[s]
	return ok
}
