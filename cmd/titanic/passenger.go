package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"titanic/ml"
)

// passengerFlags is the terminal counterpart of the web form.
type passengerFlags struct {
	input string
	raw   ml.RawPassengerInput
}

func (p *passengerFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&p.input, "input", "f", "", "read the passenger from a YAML file")
	f.IntVar(&p.raw.TicketClass, "pclass", 0, "ticket class (1, 2, 3)")
	f.StringVar(&p.raw.FullName, "name", "", `full name, e.g. "Braund, Mr. Owen Harris"`)
	f.StringVar(&p.raw.Sex, "sex", "", "male or female")
	f.IntVar(&p.raw.Age, "age", 0, "age in years")
	f.IntVar(&p.raw.SiblingsSpouses, "sibsp", 0, "siblings and spouses aboard")
	f.IntVar(&p.raw.ParentsChildren, "parch", 0, "parents and children aboard")
	f.Float64Var(&p.raw.Fare, "fare", 0, "ticket fare")
	f.StringVar(&p.raw.EmbarkationPort, "embarked", "", "port of embarkation (S, C, Q)")
}

// passenger returns the YAML file contents when --input is set, with any
// explicitly passed flags layered on top.
func (p *passengerFlags) passenger(cmd *cobra.Command) (ml.RawPassengerInput, error) {
	if p.input == "" {
		return p.raw, nil
	}
	data, err := os.ReadFile(p.input)
	if err != nil {
		return ml.RawPassengerInput{}, fmt.Errorf("failed to read passenger: %w", err)
	}
	var raw ml.RawPassengerInput
	if err := yaml.UnmarshalStrict(data, &raw); err != nil {
		return ml.RawPassengerInput{}, fmt.Errorf("failed to parse passenger: %w", err)
	}

	f := cmd.Flags()
	if f.Changed("pclass") {
		raw.TicketClass = p.raw.TicketClass
	}
	if f.Changed("name") {
		raw.FullName = p.raw.FullName
	}
	if f.Changed("sex") {
		raw.Sex = p.raw.Sex
	}
	if f.Changed("age") {
		raw.Age = p.raw.Age
	}
	if f.Changed("sibsp") {
		raw.SiblingsSpouses = p.raw.SiblingsSpouses
	}
	if f.Changed("parch") {
		raw.ParentsChildren = p.raw.ParentsChildren
	}
	if f.Changed("fare") {
		raw.Fare = p.raw.Fare
	}
	if f.Changed("embarked") {
		raw.EmbarkationPort = p.raw.EmbarkationPort
	}
	return raw, nil
}
