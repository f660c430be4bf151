package ml

import "strings"

// RawPassengerInput is one form submission. It lives for a single prediction.
type RawPassengerInput struct {
	TicketClass     int     `json:"pclass" yaml:"pclass" validate:"oneof=1 2 3"`
	FullName        string  `json:"name" yaml:"name" validate:"required"`
	Sex             string  `json:"sex" yaml:"sex" validate:"oneof=male female"`
	Age             int     `json:"age" yaml:"age" validate:"gte=0,lte=100"`
	SiblingsSpouses int     `json:"sibsp" yaml:"sibsp" validate:"gte=0,lte=10"`
	ParentsChildren int     `json:"parch" yaml:"parch" validate:"gte=0,lte=10"`
	Fare            float64 `json:"fare" yaml:"fare" validate:"gte=0,lte=600"`
	EmbarkationPort string  `json:"embarked" yaml:"embarked" validate:"oneof=S C Q"`
}

type Sex int

const (
	SexMale Sex = iota
	SexFemale
	SexUnknown
)

func ParseSex(s string) Sex {
	switch s {
	case "male":
		return SexMale
	case "female":
		return SexFemale
	default:
		return SexUnknown
	}
}

// Code follows the training mapping: only "male" encodes as 0.
func (s Sex) Code() int {
	switch s {
	case SexMale:
		return 0
	case SexFemale:
		return 1
	case SexUnknown:
		return 1
	default:
		return 1
	}
}

func (s Sex) String() string {
	switch s {
	case SexMale:
		return "male"
	case SexFemale:
		return "female"
	default:
		return "unknown"
	}
}

type Port int

const (
	PortSouthampton Port = iota
	PortCherbourg
	PortQueenstown
	PortUnknown
)

func ParsePort(s string) Port {
	switch s {
	case "S":
		return PortSouthampton
	case "C":
		return PortCherbourg
	case "Q":
		return PortQueenstown
	default:
		return PortUnknown
	}
}

// Code maps unrecognized ports to Southampton.
func (p Port) Code() int {
	switch p {
	case PortSouthampton:
		return 0
	case PortCherbourg:
		return 1
	case PortQueenstown:
		return 2
	case PortUnknown:
		return 0
	default:
		return 0
	}
}

func (p Port) String() string {
	switch p {
	case PortSouthampton:
		return "Southampton"
	case PortCherbourg:
		return "Cherbourg"
	case PortQueenstown:
		return "Queenstown"
	default:
		return "unknown"
	}
}

type Title int

const (
	TitleMr Title = iota
	TitleMrs
	TitleMiss
	TitleMaster
	TitleRare
)

const defaultTitle = "Mr"

// ExtractTitle returns the honorific of a "Surname, Title. Given" name, or "Mr"
// when the name lacks either delimiter.
func ExtractTitle(name string) string {
	if !strings.Contains(name, ",") || !strings.Contains(name, ".") {
		return defaultTitle
	}
	afterComma := strings.Split(name, ",")[1]
	title, _, _ := strings.Cut(afterComma, ".")
	return strings.TrimSpace(title)
}

func ClassifyTitle(token string) Title {
	switch token {
	case "Mr":
		return TitleMr
	case "Mrs":
		return TitleMrs
	case "Miss", "Mlle", "Mme", "Ms":
		return TitleMiss
	case "Master":
		return TitleMaster
	default:
		return TitleRare
	}
}

func (t Title) Code() int {
	return int(t)
}

func (t Title) String() string {
	switch t {
	case TitleMr:
		return "Mr"
	case TitleMrs:
		return "Mrs"
	case TitleMiss:
		return "Miss"
	case TitleMaster:
		return "Master"
	default:
		return "Rare"
	}
}
