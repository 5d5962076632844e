package sim

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/drt/core/model"
)

// TaxiDef places a taxi at the start of the simulation.
type TaxiDef struct {
	ID   string `yaml:"id"`
	Link string `yaml:"link"`
}

// PassengerDef describes one trip. The origin and destination are given as
// links or as facilities. A passenger with prebook_at books the trip at
// that time, through trip infos when facilities are used.
type PassengerDef struct {
	ID           string   `yaml:"id"`
	Mode         string   `yaml:"mode,omitempty"`
	From         string   `yaml:"from,omitempty"`
	To           string   `yaml:"to,omitempty"`
	FromFacility string   `yaml:"from_facility,omitempty"`
	ToFacility   string   `yaml:"to_facility,omitempty"`
	Departure    float64  `yaml:"departure"`
	PrebookAt    *float64 `yaml:"prebook_at,omitempty"`
}

// Expected holds optional outcome checks of a scenario.
type Expected struct {
	PickedUp   *int `yaml:"picked_up,omitempty"`
	DroppedOff *int `yaml:"dropped_off,omitempty"`
	Stuck      *int `yaml:"stuck,omitempty"`
	Rejected   *int `yaml:"rejected,omitempty"`
}

// Scenario is a complete simulation input.
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description,omitempty"`
	Mode        string  `yaml:"mode,omitempty"`
	EndTime     float64 `yaml:"end_time,omitempty"`
	Network     struct {
		Nodes []NodeDef `yaml:"nodes,omitempty"`
		Links []LinkDef `yaml:"links"`
	} `yaml:"network"`
	Facilities []model.Facility `yaml:"facilities,omitempty"`
	Taxis      []TaxiDef        `yaml:"taxis"`
	Passengers []PassengerDef   `yaml:"passengers"`
	Expected   Expected         `yaml:"expected,omitempty"`
}

// LoadScenario reads and validates a YAML scenario.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// ParseScenario decodes and validates a YAML scenario.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks identifiers and times. Link references are resolved
// when the network is built.
func (sc *Scenario) Validate() error {
	var errs []error
	if len(sc.Network.Links) == 0 {
		errs = append(errs, errors.New("network has no links"))
	}
	taxis := make(map[string]bool, len(sc.Taxis))
	for _, t := range sc.Taxis {
		if t.ID == "" || t.Link == "" {
			errs = append(errs, fmt.Errorf("taxi %q: id and link are required", t.ID))
		}
		if taxis[t.ID] {
			errs = append(errs, fmt.Errorf("duplicate taxi %s", t.ID))
		}
		taxis[t.ID] = true
	}
	people := make(map[string]bool, len(sc.Passengers))
	for _, p := range sc.Passengers {
		if p.ID == "" {
			errs = append(errs, errors.New("passenger without id"))
		}
		if people[p.ID] {
			errs = append(errs, fmt.Errorf("duplicate passenger %s", p.ID))
		}
		people[p.ID] = true
		if (p.From == "") == (p.FromFacility == "") || (p.To == "") == (p.ToFacility == "") {
			errs = append(errs, fmt.Errorf("passenger %s: give either a link or a facility for origin and destination", p.ID))
		}
		if p.Departure < 0 {
			errs = append(errs, fmt.Errorf("passenger %s: negative departure", p.ID))
		}
		if p.PrebookAt != nil && (*p.PrebookAt < 0 || *p.PrebookAt >= p.Departure) {
			errs = append(errs, fmt.Errorf("passenger %s: prebook_at must be in [0, departure)", p.ID))
		}
	}
	if sc.EndTime < 0 {
		errs = append(errs, errors.New("negative end_time"))
	}
	return errors.Join(errs...)
}

// Check compares a run summary with the expected outcome.
func (e Expected) Check(s Summary) error {
	var errs []error
	check := func(name string, want *int, got int) {
		if want != nil && *want != got {
			errs = append(errs, fmt.Errorf("%s: expected %d, got %d", name, *want, got))
		}
	}
	check("picked_up", e.PickedUp, s.PickedUp)
	check("dropped_off", e.DroppedOff, s.DroppedOff)
	check("stuck", e.Stuck, s.Stuck)
	check("rejected", e.Rejected, s.Rejected)
	return errors.Join(errs...)
}
