package models

import "fmt"

// FloorLevel is the ordinal floor of a flat. The domain is fixed and totally
// ordered: basement < ground < mezzanine < 1 < ... < 9 < 10+. No other value
// is legal; an unknown token in the input is a structural error, not a
// missing value.
type FloorLevel int

const (
	FloorBasement  FloorLevel = iota // szuterén
	FloorGround                      // földszint
	FloorMezzanine                   // félemelet
	Floor1
	Floor2
	Floor3
	Floor4
	Floor5
	Floor6
	Floor7
	Floor8
	Floor9
	FloorTenPlus // "10 felett"
)

var floorNames = map[FloorLevel]string{
	FloorBasement:  "basement",
	FloorGround:    "ground",
	FloorMezzanine: "mezzanine",
	Floor1:         "1",
	Floor2:         "2",
	Floor3:         "3",
	Floor4:         "4",
	Floor5:         "5",
	Floor6:         "6",
	Floor7:         "7",
	Floor8:         "8",
	Floor9:         "9",
	FloorTenPlus:   "10+",
}

// floorTokens maps every accepted input spelling onto the ordinal domain.
// The Hungarian tokens are what the scraped source pages use.
var floorTokens = map[string]FloorLevel{
	"szuterén":  FloorBasement,
	"basement":  FloorBasement,
	"földszint": FloorGround,
	"ground":    FloorGround,
	"félemelet": FloorMezzanine,
	"mezzanine": FloorMezzanine,
	"1":         Floor1,
	"2":         Floor2,
	"3":         Floor3,
	"4":         Floor4,
	"5":         Floor5,
	"6":         Floor6,
	"7":         Floor7,
	"8":         Floor8,
	"9":         Floor9,
	"10 felett": FloorTenPlus,
	"10+":       FloorTenPlus,
}

// ParseFloorLevel maps an input token onto the ordinal domain.
func ParseFloorLevel(token string) (FloorLevel, error) {
	if f, ok := floorTokens[token]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("unknown floor token %q", token)
}

func (f FloorLevel) String() string {
	if name, ok := floorNames[f]; ok {
		return name
	}
	return fmt.Sprintf("FloorLevel(%d)", int(f))
}

// Rank returns the level's position in the total order, basement being 0.
func (f FloorLevel) Rank() int { return int(f) }
