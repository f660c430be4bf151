package ml

import (
	"encoding/json"
	"fmt"
)

// FeatureVector is the engineered row handed to the classifier. Field order
// mirrors FeatureNames and must match the column order the model was fit on.
type FeatureVector struct {
	Pclass     int
	Sex        int
	SibSp      int
	Parch      int
	Embarked   int
	Initial    int
	AgeBand    int
	FamilySize int
	Alone      int
	FareCat    int
}

const FeatureCount = 10

func FeatureNames() []string {
	return []string{
		"Pclass",
		"Sex",
		"SibSp",
		"Parch",
		"Embarked",
		"Initial",
		"Age_band",
		"Family_Size",
		"Alone",
		"Fare_cat",
	}
}

// Encode maps a raw submission to its feature vector. It never fails: unknown
// titles, sexes and ports fall into their default buckets.
func Encode(raw RawPassengerInput) FeatureVector {
	familySize := raw.SiblingsSpouses + raw.ParentsChildren
	alone := 0
	if familySize == 0 {
		alone = 1
	}

	return FeatureVector{
		Pclass:     raw.TicketClass,
		Sex:        ParseSex(raw.Sex).Code(),
		SibSp:      raw.SiblingsSpouses,
		Parch:      raw.ParentsChildren,
		Embarked:   ParsePort(raw.EmbarkationPort).Code(),
		Initial:    ClassifyTitle(ExtractTitle(raw.FullName)).Code(),
		AgeBand:    AgeBand(raw.Age),
		FamilySize: familySize,
		Alone:      alone,
		FareCat:    FareCategory(raw.Fare),
	}
}

func AgeBand(age int) int {
	switch {
	case age <= 16:
		return 0
	case age <= 32:
		return 1
	case age <= 48:
		return 2
	case age <= 64:
		return 3
	default:
		return 4
	}
}

func FareCategory(fare float64) int {
	switch {
	case fare <= 7.91:
		return 0
	case fare <= 14.454:
		return 1
	case fare <= 31:
		return 2
	default:
		return 3
	}
}

func (v FeatureVector) Ints() []int {
	return []int{
		v.Pclass,
		v.Sex,
		v.SibSp,
		v.Parch,
		v.Embarked,
		v.Initial,
		v.AgeBand,
		v.FamilySize,
		v.Alone,
		v.FareCat,
	}
}

func (v FeatureVector) Values() []float64 {
	ints := v.Ints()
	values := make([]float64, len(ints))
	for i, value := range ints {
		values[i] = float64(value)
	}
	return values
}

type Column struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func (v FeatureVector) Columns() []Column {
	names := FeatureNames()
	ints := v.Ints()
	columns := make([]Column, len(names))
	for i, name := range names {
		columns[i] = Column{Name: name, Value: ints[i]}
	}
	return columns
}

// table is the single-row wire form of a vector.
type table struct {
	Columns []string `json:"columns"`
	Values  []int    `json:"values"`
}

func (v FeatureVector) MarshalJSON() ([]byte, error) {
	return json.Marshal(table{Columns: FeatureNames(), Values: v.Ints()})
}

func (v *FeatureVector) UnmarshalJSON(data []byte) error {
	var t table
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	names := FeatureNames()
	if len(t.Columns) != len(names) || len(t.Values) != len(names) {
		return fmt.Errorf("%w: expected %d columns, got %d", ErrSchemaMismatch, len(names), len(t.Columns))
	}
	for i, name := range names {
		if t.Columns[i] != name {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrSchemaMismatch, i, t.Columns[i], name)
		}
	}
	*v = FeatureVector{
		Pclass:     t.Values[0],
		Sex:        t.Values[1],
		SibSp:      t.Values[2],
		Parch:      t.Values[3],
		Embarked:   t.Values[4],
		Initial:    t.Values[5],
		AgeBand:    t.Values[6],
		FamilySize: t.Values[7],
		Alone:      t.Values[8],
		FareCat:    t.Values[9],
	}
	return nil
}

func (v FeatureVector) String() string {
	return fmt.Sprint(v.Ints())
}
