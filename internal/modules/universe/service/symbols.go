package service

import (
	"slices"
	"strings"
)

// DefaultSuffix is Yahoo's exchange suffix for Borsa Istanbul.
const DefaultSuffix = ".IS"

// NormalizeBIST upper-cases a share code and appends the exchange suffix.
// Codes that already carry a suffix, indices (^XU100) and FX pairs (USDTRY=X) are kept as is.
func NormalizeBIST(raw string) string {
	return NormalizeSymbol(raw, DefaultSuffix)
}

func NormalizeSymbol(raw, suffix string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, ".^=") || suffix == "" {
		return s
	}
	return s + strings.ToUpper(suffix)
}

// Code strips the exchange suffix back off ("THYAO.IS" -> "THYAO").
func Code(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if i := strings.LastIndexByte(s, '.'); i > 0 {
		return s[:i]
	}
	return s
}

var bistList = []string{
	"AEFES", "AGHOL", "AKBNK", "AKFYE", "AKSA", "AKSEN", "ALARK", "ALBRK", "ALFAS", "ANSGR",
	"ARCLK", "ASELS", "ASTOR", "AYDEM", "BERA", "BIMAS", "BRSAN", "BRYAT", "BTCIM", "BUCIM",
	"CANTE", "CCOLA", "CEMTS", "CIMSA", "CWENE", "DEVA", "DOAS", "DOHOL", "ECILC", "EGEEN",
	"EKGYO", "ENJSA", "ENKAI", "EREGL", "EUPWR", "EUREN", "FROTO", "GARAN", "GENIL", "GESAN",
	"GLYHO", "GUBRF", "HALKB", "HEKTS", "IPEKE", "ISCTR", "ISDMR", "ISGYO", "ISMEN", "KARSN",
	"KAYSE", "KCAER", "KCHOL", "KONTR", "KONYA", "KOZAA", "KOZAL", "KRDMD", "LOGO", "MAVI",
	"MGROS", "MIATK", "NETAS", "ODAS", "OTKAR", "OYAKC", "PENTA", "PETKM", "PGSUS", "QUAGR",
	"SAHOL", "SASA", "SAYAS", "SDTTR", "SELEC", "SISE", "SKBNK", "SMRTG", "SOKM", "TABGD",
	"TAVHL", "TCELL", "THYAO", "TKFEN", "TMSN", "TOASO", "TSKB", "TTKOM", "TTRAK", "TUKAS",
	"TUPRS", "ULKER", "VAKBN", "VESBE", "VESTL", "YEOTK", "YKBNK", "ZOREN",
}

// BuiltIn returns a copy of the bundled BIST universe.
func BuiltIn() []string {
	return slices.Clone(bistList)
}
