// Package lookup holds the fixed code tables that turn raw import codes into
// the categorical vocabulary of the model. The tables are built once at
// package initialisation and never mutated, so they are safe to share across
// goroutines without locking.
package lookup

import "strings"

// Customs groups
const (
	GroupMaritime = "Maritima y Fluvial"
	GroupAirLand  = "Aereas y Terrestres"
)

// Origin areas
const (
	AreaAmerica    = "América"
	AreaAsia       = "Asia"
	AreaAfrica     = "África"
	AreaEurope     = "Europa"
	AreaOceania    = "Oceanía"
	AreaAntarctica = "Antártida"
	AreaUndeclared = "No declarado"
)

// Import types, keyed by the first two characters of the regime code
const (
	ImportOrdinary        = "Importación ordinaria"
	ImportFranchise       = "Importación con franquicia"
	ImportReimport        = "Reimportación"
	ImportTemporaryReexp  = "Importación temporal para reexportación en el mismo estado"
	ImportTemporaryActive = "Importación temporal para perfeccionamiento activo"
	ImportTransformation  = "Importación para transformación y/o ensamble"

	// ImportOther is assigned when the regime prefix has no entry
	ImportOther = "Otros"
)

// SentinelCustomsOffice is an office code that marks an unusable record
const SentinelCustomsOffice = 24

// SentinelDeclarantCountry is the declarant country code that marks an unusable record
const SentinelDeclarantCountry = 216

var sentinelOriginCountries = map[int]struct{}{
	216: {}, 217: {}, 226: {}, 654: {},
}

var officeNames = map[int]string{
	1: "Armenia", 3: "Bogota", 4: "Bucaramanga", 10: "Manizalez", 16: "Pereira",
	19: "Santa Marta", 25: "Riohacha", 27: "San Andres", 34: "Arauca", 35: "Buenaventura",
	36: "Cartago", 37: "Ipiales", 38: "Leticia", 39: "Maicao", 40: "Tumaco", 41: "Uraba",
	42: "Puerto Carreño", 43: "Inirida", 44: "Yopal", 46: "Puerto Asis", 48: "Cartagena",
	49: "Valledupar", 86: "Pamplona", 87: "Barranquilla", 88: "Cali", 89: "Cucuta", 90: "Medellin",
}

var officeGroups = map[string]string{
	"Cartagena":    GroupMaritime,
	"Buenaventura": GroupMaritime,
	"Santa Marta":  GroupMaritime,
	"Barranquilla": GroupMaritime,
	"Uraba":        GroupMaritime,
	"Bogota":       GroupAirLand,
	"Medellin":     GroupAirLand,
	"Cali":         GroupAirLand,
	"Pereira":      GroupAirLand,
	"Bucaramanga":  GroupAirLand,
	"Manizales":    GroupAirLand,
	"Manizalez":    GroupAirLand,
	"Armenia":      GroupAirLand,
	"Yopal":        GroupAirLand,
	"Puerto Asis":  GroupAirLand,
	"Leticia":      GroupAirLand,
	"Maicao":       GroupAirLand,
	"Ipiales":      GroupAirLand,
	"Cucuta":       GroupAirLand,
	"Riohacha":     GroupAirLand,
}

var regimeTypes = map[string]string{
	"C1": ImportOrdinary,
	"C2": ImportFranchise,
	"C3": ImportReimport,
	"C4": ImportTemporaryReexp,
	"C5": ImportTemporaryActive,
	"C6": ImportTransformation,
}

var countryAreas = map[int]string{
	13: AreaAsia, 15: AreaEurope, 17: AreaEurope, 23: AreaEurope, 24: AreaAntarctica, 26: AreaAsia,
	27: AreaAmerica, 29: AreaEurope, 31: AreaAfrica, 37: AreaEurope, 40: AreaAfrica, 41: AreaAmerica,
	43: AreaAmerica, 53: AreaAsia, 59: AreaAfrica, 63: AreaAmerica, 69: AreaOceania, 72: AreaEurope,
	74: AreaAsia, 77: AreaAmerica, 80: AreaAsia, 81: AreaAsia, 83: AreaAmerica, 87: AreaEurope,
	88: AreaAmerica, 90: AreaAmerica, 91: AreaEurope, 93: AreaAsia, 97: AreaAmerica, 98: AreaAmerica,
	101: AreaAfrica, 102: AreaAntarctica, 105: AreaAmerica, 108: AreaAsia, 111: AreaEurope, 115: AreaAfrica,
	119: AreaAsia, 127: AreaAfrica, 129: AreaAmerica, 130: AreaAmerica, 131: AreaAmerica, 132: AreaAmerica,
	133: AreaAmerica, 134: AreaAmerica, 135: AreaAmerica, 137: AreaAmerica, 141: AreaAsia, 145: AreaAfrica,
	149: AreaAmerica, 159: AreaEurope, 165: AreaAsia, 169: AreaAmerica, 173: AreaAfrica, 177: AreaAfrica,
	183: AreaOceania, 187: AreaAsia, 190: AreaAsia, 193: AreaAfrica, 196: AreaAmerica, 198: AreaEurope,
	199: AreaAmerica, 200: AreaAmerica, 203: AreaAfrica, 211: AreaAmerica, 215: AreaAsia, 218: AreaAsia,
	221: AreaAsia, 229: AreaAfrica, 232: AreaEurope, 235: AreaAmerica, 239: AreaAmerica, 240: AreaAfrica,
	242: AreaAmerica, 243: AreaAfrica, 244: AreaAsia, 245: AreaEurope, 246: AreaEurope, 247: AreaEurope,
	249: AreaAmerica, 251: AreaEurope, 253: AreaAfrica, 259: AreaEurope, 267: AreaAsia, 271: AreaEurope,
	275: AreaEurope, 281: AreaAfrica, 285: AreaAfrica, 287: AreaAsia, 289: AreaAfrica, 293: AreaEurope,
	297: AreaAmerica, 301: AreaEurope, 305: AreaAmerica, 309: AreaAmerica, 313: AreaOceania, 317: AreaAmerica,
	325: AreaAmerica, 327: AreaEurope, 329: AreaAfrica, 331: AreaAfrica, 334: AreaAfrica, 337: AreaAmerica,
	341: AreaAmerica, 343: AreaAntarctica, 345: AreaAmerica, 351: AreaAsia, 355: AreaEurope, 361: AreaAsia,
	365: AreaAsia, 369: AreaAsia, 372: AreaAsia, 375: AreaEurope, 379: AreaEurope, 383: AreaAsia,
	386: AreaEurope, 391: AreaAmerica, 399: AreaAsia, 401: AreaEurope, 403: AreaAsia, 406: AreaAsia,
	410: AreaAfrica, 411: AreaOceania, 412: AreaAsia, 413: AreaAsia, 420: AreaAsia, 426: AreaAfrica,
	429: AreaEurope, 431: AreaAsia, 434: AreaAfrica, 438: AreaAfrica, 440: AreaEurope, 443: AreaEurope,
	445: AreaEurope, 447: AreaAsia, 448: AreaEurope, 450: AreaAfrica, 455: AreaAsia, 458: AreaAfrica,
	461: AreaAsia, 464: AreaAfrica, 467: AreaEurope, 468: AreaEurope, 469: AreaOceania, 472: AreaOceania,
	474: AreaAfrica, 477: AreaAmerica, 485: AreaAfrica, 488: AreaAfrica, 489: AreaAfrica, 493: AreaAmerica,
	494: AreaOceania, 496: AreaEurope, 497: AreaAsia, 498: AreaEurope, 500: AreaEurope, 501: AreaAmerica,
	505: AreaAfrica, 507: AreaAfrica, 508: AreaOceania, 511: AreaOceania, 517: AreaAsia, 521: AreaAmerica,
	525: AreaAfrica, 528: AreaAfrica, 531: AreaOceania, 535: AreaOceania, 538: AreaEurope, 542: AreaOceania,
	545: AreaOceania, 548: AreaOceania, 551: AreaOceania, 556: AreaAsia, 566: AreaAmerica, 573: AreaEurope,
	576: AreaAsia, 578: AreaOceania, 579: AreaAsia, 580: AreaAmerica, 586: AreaAmerica, 589: AreaAmerica,
	593: AreaOceania, 599: AreaOceania, 603: AreaEurope, 607: AreaEurope, 611: AreaAmerica, 618: AreaAsia,
	620: AreaAmerica, 621: AreaAmerica, 622: AreaAmerica, 623: AreaAmerica, 624: AreaAmerica, 625: AreaAmerica,
	626: AreaAmerica, 628: AreaEurope, 631: AreaAmerica, 633: AreaAmerica, 634: AreaAmerica, 635: AreaAmerica,
	636: AreaAmerica, 637: AreaAmerica, 638: AreaAmerica, 640: AreaAfrica, 644: AreaEurope, 647: AreaAmerica,
	650: AreaAmerica, 651: AreaAmerica, 653: AreaAmerica, 655: AreaAmerica, 660: AreaAfrica, 665: AreaAfrica,
	670: AreaEurope, 675: AreaAfrica, 676: AreaEurope, 677: AreaOceania, 685: AreaAfrica, 687: AreaOceania,
	690: AreaOceania, 693: AreaAmerica, 695: AreaAmerica, 697: AreaEurope, 698: AreaAmerica, 699: AreaAmerica,
	700: AreaAmerica, 705: AreaAmerica, 710: AreaAfrica, 715: AreaAmerica, 720: AreaAfrica, 728: AreaAfrica,
	729: AreaEurope, 731: AreaAfrica, 735: AreaAfrica, 741: AreaAsia, 744: AreaAsia, 748: AreaAfrica,
	750: AreaAsia, 756: AreaAfrica, 759: AreaAfrica, 760: AreaAfrica, 764: AreaEurope, 767: AreaEurope,
	770: AreaAmerica, 772: AreaEurope, 773: AreaAfrica, 774: AreaAsia, 776: AreaAsia, 780: AreaAfrica,
	783: AreaAfrica, 786: AreaAntarctica, 787: AreaAsia, 788: AreaAsia, 800: AreaAfrica, 805: AreaOceania,
	810: AreaOceania, 815: AreaAmerica, 820: AreaAfrica, 823: AreaAmerica, 825: AreaAsia, 827: AreaAsia,
	828: AreaOceania, 830: AreaEurope, 833: AreaAfrica, 845: AreaAmerica, 847: AreaAsia, 850: AreaAmerica,
	855: AreaAsia, 863: AreaAmerica, 866: AreaAmerica, 870: AreaOceania, 875: AreaOceania, 880: AreaAsia,
	888: AreaAfrica, 890: AreaAfrica, 902: AreaAmerica, 903: AreaAmerica, 904: AreaAmerica, 905: AreaAmerica,
	907: AreaAmerica, 911: AreaAmerica, 913: AreaAmerica, 914: AreaAmerica, 915: AreaAmerica, 916: AreaAmerica,
	917: AreaAmerica, 918: AreaAmerica, 919: AreaAmerica, 920: AreaAmerica, 924: AreaAmerica, 925: AreaAmerica,
	926: AreaAmerica, 928: AreaAmerica, 929: AreaAmerica, 930: AreaAmerica, 931: AreaAmerica, 933: AreaAmerica,
	934: AreaAmerica, 935: AreaAmerica, 936: AreaAmerica, 937: AreaAmerica, 939: AreaAmerica, 940: AreaAmerica,
	941: AreaAmerica, 942: AreaAmerica, 943: AreaAmerica, 944: AreaAmerica, 945: AreaAmerica, 948: AreaAmerica,
	950: AreaAmerica, 951: AreaAmerica, 953: AreaAmerica, 954: AreaAmerica, 955: AreaAmerica, 956: AreaAmerica,
	957: AreaAmerica, 958: AreaAmerica, 959: AreaAmerica, 960: AreaAmerica, 961: AreaAmerica, 962: AreaAmerica,
	963: AreaAmerica, 964: AreaAmerica, 965: AreaAmerica, 966: AreaAmerica, 967: AreaAmerica, 968: AreaAmerica,
	969: AreaAmerica, 972: AreaAmerica, 973: AreaAmerica, 974: AreaAmerica, 976: AreaAmerica, 977: AreaAmerica,
	979: AreaAmerica, 980: AreaAmerica, 981: AreaAmerica, 982: AreaAmerica, 983: AreaAmerica, 984: AreaAmerica,
	985: AreaAmerica, 987: AreaAmerica, 988: AreaAmerica, 989: AreaAmerica, 991: AreaAmerica, 996: AreaAmerica,
	997: AreaAmerica, 998: AreaAmerica, 999: AreaUndeclared,
}

// Month recovers the month of year from a coded year-month period such as 2405
func Month(period int) (int, bool) {
	if period <= 0 {
		return 0, false
	}
	m := period % 100
	if m < 1 || m > 12 {
		return 0, false
	}
	return m, true
}

// OfficeName returns the physical customs office for a code
func OfficeName(code int) (string, bool) {
	name, ok := officeNames[code]
	return name, ok
}

// GroupForOffice returns the logistics group of an office name
func GroupForOffice(name string) (string, bool) {
	g, ok := officeGroups[name]
	return g, ok
}

// IsSentinelOriginCountry reports whether an origin code marks an invalid record
func IsSentinelOriginCountry(code int) bool {
	_, ok := sentinelOriginCountries[code]
	return ok
}

// OriginArea returns the continent-level area of a country code
func OriginArea(code int) (string, bool) {
	a, ok := countryAreas[code]
	return a, ok
}

// ImportType maps a regime code to its import type label. The boolean is false
// when the prefix is unknown and the fallback label was used.
func ImportType(regime string) (string, bool) {
	r := strings.ToUpper(strings.TrimSpace(regime))
	if len(r) >= 2 {
		if t, ok := regimeTypes[r[:2]]; ok {
			return t, true
		}
	}
	return ImportOther, false
}
