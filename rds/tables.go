package rds

import "fmt"

// PTYName is the program type of the station in the standard selected at
// New (RDS and RBDS number their program types differently).
func (s *Station) PTYName() string {
	return PTYName(s.PTY, s.rbds)
}

func PTYName(pty uint8, rbds bool) string {
	if rbds {
		return ptyRBDS[pty&0x1f]
	}
	return ptyRDS[pty&0x1f]
}

// LanguageName is the spoken language announced in 1A variant 3.
func (s *Station) LanguageName() string {
	return LanguageName(s.LC)
}

func LanguageName(lc uint8) string {
	if int(lc) < len(languages) && languages[lc] != "" {
		return languages[lc]
	}
	return "Unknown"
}

// CountryName combines the country nibble of the PI with the Extended
// Country Code.
func (s *Station) CountryName() string {
	if s.rbds && s.Valid&FieldECC == 0 {
		// North American stations rarely send an ECC
		if s.PI>>12 >= 0x1 && s.PI>>12 <= 0xe {
			return "United States"
		}
	}
	return CountryName(s.PI, s.ECC)
}

func CountryName(pi uint16, ecc uint8) string {
	row, ok := countries[ecc]
	if !ok {
		return "Unknown"
	}
	if name := row[pi>>12]; name != "" {
		return name
	}
	return "Unknown"
}

// CoverageName is the area coverage code of the PI, second nibble.
func (s *Station) CoverageName() string {
	return CoverageName(s.PI)
}

func CoverageName(pi uint16) string {
	switch c := (pi >> 8) & 0xf; c {
	case 0:
		return "Local"
	case 1:
		return "International"
	case 2:
		return "National"
	case 3:
		return "Supra-Regional"
	default:
		return fmt.Sprintf("Regional %d", c-3)
	}
}

// CallSign derives the four letter call sign of a North American station
// from its PI code.  See the U.S. RBDS Standard - April 1998, pg 80-90.  An
// empty string means the PI doesn't encode a call sign.
func (s *Station) CallSign() string {
	if !s.rbds {
		return ""
	}
	return CallSign(s.PI)
}

func CallSign(pi uint16) string {
	const (
		kBase = 4096  // KAAA
		wBase = 21672 // WAAA
		wLast = 39247 // WZZZ
	)
	if pi < kBase || pi > wLast {
		return ""
	}
	var cs [4]byte
	n := pi - kBase
	cs[0] = 'K'
	if pi >= wBase {
		n = pi - wBase
		cs[0] = 'W'
	}
	cs[1] = 'A' + byte(n/676)
	n %= 676
	cs[2] = 'A' + byte(n/26)
	cs[3] = 'A' + byte(n%26)
	return string(cs[:])
}

var ptyRBDS = [32]string{
	"No program type",
	"News",
	"Information",
	"Sports",
	"Talk",
	"Rock",
	"Classic Rock",
	"Adult Hits",
	"Soft Rock",
	"Top 40",
	"Country",
	"Oldies",
	"Soft",
	"Nostalgia",
	"Jazz",
	"Classical",
	"Rhythm and Blues",
	"Soft Rhythm and Blues",
	"Language",
	"Religious Music",
	"Religious Talk",
	"Personality",
	"Public",
	"College",
	"Unassigned 24",
	"Unassigned 25",
	"Unassigned 26",
	"Unassigned 27",
	"Unassigned 28",
	"Weather",
	"Emergency Test",
	"Emergency",
}

var ptyRDS = [32]string{
	"No program type",
	"News",
	"Current Affairs",
	"Information",
	"Sport",
	"Education",
	"Drama",
	"Culture",
	"Science",
	"Varied",
	"Pop Music",
	"Rock Music",
	"M.O.R. Music",
	"Light Classical",
	"Serious Classical",
	"Other Music",
	"Weather",
	"Finance",
	"Children's Programs",
	"Social Affairs",
	"Religion",
	"Phone-In",
	"Travel",
	"Leisure",
	"Jazz Music",
	"Country Music",
	"National Music",
	"Oldies Music",
	"Folk Music",
	"Documentary",
	"Alarm test",
	"Alarm",
}

// languages is indexed by language code, gaps are unassigned.
var languages = [128]string{
	0x00: "Unknown",
	0x01: "Albanian",
	0x02: "Breton",
	0x03: "Catalan",
	0x04: "Croatian",
	0x05: "Welsh",
	0x06: "Czech",
	0x07: "Danish",
	0x08: "German",
	0x09: "English",
	0x0a: "Spanish",
	0x0b: "Esperanto",
	0x0c: "Estonian",
	0x0d: "Basque",
	0x0e: "Faroese",
	0x0f: "French",
	0x10: "Frisian",
	0x11: "Irish",
	0x12: "Gaelic",
	0x13: "Galician",
	0x14: "Icelandic",
	0x15: "Italian",
	0x16: "Lappish",
	0x17: "Latin",
	0x18: "Latvian",
	0x19: "Luxembourgian",
	0x1a: "Lithuanian",
	0x1b: "Hungarian",
	0x1c: "Maltese",
	0x1d: "Dutch",
	0x1e: "Norwegian",
	0x1f: "Occitan",
	0x20: "Polish",
	0x21: "Portuguese",
	0x22: "Romanian",
	0x23: "Romansh",
	0x24: "Serbian",
	0x25: "Slovak",
	0x26: "Slovene",
	0x27: "Finnish",
	0x28: "Swedish",
	0x29: "Turkish",
	0x2a: "Flemish",
	0x2b: "Walloon",
	0x40: "Background",
	0x45: "Zulu",
	0x46: "Vietnamese",
	0x47: "Uzbek",
	0x48: "Urdu",
	0x49: "Ukrainian",
	0x4a: "Thai",
	0x4b: "Telugu",
	0x4c: "Tatar",
	0x4d: "Tamil",
	0x4e: "Tadzhik",
	0x4f: "Swahili",
	0x50: "Sranan Tongo",
	0x51: "Somali",
	0x52: "Sinhalese",
	0x53: "Shona",
	0x54: "Serbo-Croat",
	0x55: "Ruthenian",
	0x56: "Russian",
	0x57: "Quechua",
	0x58: "Pushtu",
	0x59: "Punjabi",
	0x5a: "Persian",
	0x5b: "Papamiento",
	0x5c: "Oriya",
	0x5d: "Nepali",
	0x5e: "Ndebele",
	0x5f: "Marathi",
	0x60: "Moldavian",
	0x61: "Malaysian",
	0x62: "Malagasay",
	0x63: "Macedonian",
	0x64: "Laotian",
	0x65: "Korean",
	0x66: "Khmer",
	0x67: "Kazakh",
	0x68: "Kannada",
	0x69: "Japanese",
	0x6a: "Indonesian",
	0x6b: "Hindi",
	0x6c: "Hebrew",
	0x6d: "Hausa",
	0x6e: "Gurani",
	0x6f: "Gujurati",
	0x70: "Greek",
	0x71: "Georgian",
	0x72: "Fulani",
	0x73: "Dari",
	0x74: "Chuvash",
	0x75: "Chinese",
	0x76: "Burmese",
	0x77: "Bulgarian",
	0x78: "Bengali",
	0x79: "Belorussian",
	0x7a: "Bambora",
	0x7b: "Azerbaijan",
	0x7c: "Assamese",
	0x7d: "Armenian",
	0x7e: "Arabic",
	0x7f: "Amharic",
}

// countries maps an ECC to the country names of PI country nibbles 1..F.
var countries = map[uint8][16]string{
	0xa0: {1: "United States", 2: "United States", 3: "United States", 4: "United States",
		5: "United States", 6: "United States", 7: "United States", 8: "United States",
		9: "United States", 0xa: "United States", 0xb: "United States", 0xd: "United States",
		0xe: "United States"},
	0xa1: {0xb: "Canada", 0xc: "Canada", 0xd: "Canada", 0xe: "Canada", 0xf: "Greenland"},
	0xa2: {1: "Anguilla", 2: "Antigua and Barbuda", 3: "Ecuador", 4: "Falkland Islands",
		5: "Barbados", 6: "Belize", 7: "Cayman Islands", 8: "Costa Rica", 9: "Cuba",
		0xa: "Argentina", 0xb: "Brazil", 0xc: "Bermuda", 0xd: "Netherlands Antilles",
		0xe: "Guadeloupe", 0xf: "Bahamas"},
	0xe0: {1: "Germany", 2: "Algeria", 3: "Andorra", 4: "Israel", 5: "Italy", 6: "Belgium",
		7: "Russia", 8: "Palestine", 9: "Albania", 0xa: "Austria", 0xb: "Hungary",
		0xc: "Malta", 0xd: "Germany", 0xf: "Egypt"},
	0xe1: {1: "Greece", 2: "Cyprus", 3: "San Marino", 4: "Switzerland", 5: "Jordan",
		6: "Finland", 7: "Luxembourg", 8: "Bulgaria", 9: "Denmark", 0xa: "Gibraltar",
		0xb: "Iraq", 0xc: "United Kingdom", 0xd: "Libya", 0xe: "Romania", 0xf: "France"},
	0xe2: {1: "Morocco", 2: "Czech Republic", 3: "Poland", 4: "Vatican", 5: "Slovakia",
		6: "Syria", 7: "Tunisia", 9: "Liechtenstein", 0xa: "Iceland", 0xb: "Monaco",
		0xc: "Lithuania", 0xd: "Serbia", 0xe: "Spain", 0xf: "Norway"},
	0xe3: {1: "Montenegro", 2: "Ireland", 3: "Turkey", 4: "Macedonia", 8: "Netherlands",
		9: "Latvia", 0xa: "Lebanon", 0xb: "Azerbaijan", 0xc: "Croatia", 0xd: "Kazakhstan",
		0xe: "Sweden", 0xf: "Belarus"},
	0xe4: {1: "Moldova", 2: "Estonia", 3: "Kyrgyzstan", 6: "Ukraine", 7: "Kosovo",
		8: "Portugal", 9: "Slovenia", 0xa: "Armenia", 0xb: "Uzbekistan", 0xc: "Georgia",
		0xe: "Turkmenistan", 0xf: "Bosnia Herzegovina"},
}
