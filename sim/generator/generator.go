// Package generator builds random but reproducible demand scenarios on a
// grid network.
package generator

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/kilianp07/drt/sim"
)

// Config describes the generated scenario. The same seed always yields the
// same scenario.
type Config struct {
	Name string `json:"name" yaml:"name"`
	Mode string `json:"mode" yaml:"mode"`
	Rows int    `json:"rows" yaml:"rows"`
	Cols int    `json:"cols" yaml:"cols"`
	// Spacing is the distance between neighbouring nodes in metres.
	Spacing float64 `json:"spacing" yaml:"spacing"`
	// MinLinkSeconds and MaxLinkSeconds bound the link travel times.
	MinLinkSeconds float64 `json:"min_link_seconds" yaml:"min_link_seconds"`
	MaxLinkSeconds float64 `json:"max_link_seconds" yaml:"max_link_seconds"`
	Taxis          int     `json:"taxis" yaml:"taxis"`
	Passengers     int     `json:"passengers" yaml:"passengers"`
	// HorizonSeconds spreads the departures over [0, horizon).
	HorizonSeconds float64 `json:"horizon_seconds" yaml:"horizon_seconds"`
	// PrebookShare is the fraction of passengers booking in advance.
	PrebookShare float64 `json:"prebook_share" yaml:"prebook_share"`
	// MaxLeadSeconds bounds how long before departure a booking is made.
	MaxLeadSeconds float64 `json:"max_lead_seconds" yaml:"max_lead_seconds"`
	Seed           int64   `json:"seed" yaml:"seed"`
}

// SetDefaults applies default values.
func (c *Config) SetDefaults() {
	if c.Name == "" {
		c.Name = "generated"
	}
	if c.Mode == "" {
		c.Mode = "taxi"
	}
	if c.Rows <= 0 {
		c.Rows = 4
	}
	if c.Cols <= 0 {
		c.Cols = 4
	}
	if c.Spacing <= 0 {
		c.Spacing = 500
	}
	if c.MinLinkSeconds <= 0 {
		c.MinLinkSeconds = 60
	}
	if c.MaxLinkSeconds <= 0 {
		c.MaxLinkSeconds = 2 * c.MinLinkSeconds
	}
	if c.HorizonSeconds <= 0 {
		c.HorizonSeconds = 3600
	}
	if c.MaxLeadSeconds <= 0 {
		c.MaxLeadSeconds = 1800
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	var errs []error
	if c.Rows*c.Cols < 2 {
		errs = append(errs, errors.New("grid needs at least two nodes"))
	}
	if c.MaxLinkSeconds < c.MinLinkSeconds {
		errs = append(errs, errors.New("max_link_seconds is below min_link_seconds"))
	}
	if c.Taxis < 0 || c.Passengers < 0 {
		errs = append(errs, errors.New("taxis and passengers must not be negative"))
	}
	if c.PrebookShare < 0 || c.PrebookShare > 1 {
		errs = append(errs, errors.New("prebook_share must be in [0, 1]"))
	}
	return errors.Join(errs...)
}

// Generator draws scenarios from a seeded source.
type Generator struct {
	cfg  Config
	rand *rand.Rand
}

// New creates a Generator.
func New(cfg Config) (*Generator, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{cfg: cfg, rand: rand.New(rand.NewSource(cfg.Seed))}, nil
}

// Generate builds the scenario.
func (g *Generator) Generate() *sim.Scenario {
	c := g.cfg
	sc := &sim.Scenario{
		Name:        c.Name,
		Description: fmt.Sprintf("%dx%d grid, %d taxis, %d passengers, seed %d", c.Rows, c.Cols, c.Taxis, c.Passengers, c.Seed),
		Mode:        c.Mode,
	}
	for r := 0; r < c.Rows; r++ {
		for col := 0; col < c.Cols; col++ {
			sc.Network.Nodes = append(sc.Network.Nodes, sim.NodeDef{ID: node(r, col), X: float64(col) * c.Spacing, Y: float64(r) * c.Spacing})
		}
	}
	link := func(a, b string) {
		sc.Network.Links = append(sc.Network.Links, sim.LinkDef{ID: "l_" + a + "_" + b, From: a, To: b, TravelTime: g.linkTime()})
	}
	for r := 0; r < c.Rows; r++ {
		for col := 0; col < c.Cols; col++ {
			if col+1 < c.Cols {
				link(node(r, col), node(r, col+1))
				link(node(r, col+1), node(r, col))
			}
			if r+1 < c.Rows {
				link(node(r, col), node(r+1, col))
				link(node(r+1, col), node(r, col))
			}
		}
	}
	links := sc.Network.Links
	for i := 0; i < c.Taxis; i++ {
		sc.Taxis = append(sc.Taxis, sim.TaxiDef{ID: fmt.Sprintf("t%d", i), Link: links[g.rand.Intn(len(links))].ID})
	}
	for i := 0; i < c.Passengers; i++ {
		from := g.rand.Intn(len(links))
		to := g.rand.Intn(len(links) - 1)
		if to >= from {
			to++
		}
		p := sim.PassengerDef{
			ID:        fmt.Sprintf("p%d", i),
			From:      links[from].ID,
			To:        links[to].ID,
			Departure: math.Round(g.rand.Float64() * c.HorizonSeconds),
		}
		if p.Departure > 0 && g.rand.Float64() < c.PrebookShare {
			lead := math.Min(math.Round(1+g.rand.Float64()*c.MaxLeadSeconds), p.Departure)
			at := p.Departure - lead
			p.PrebookAt = &at
		}
		sc.Passengers = append(sc.Passengers, p)
	}
	return sc
}

func (g *Generator) linkTime() float64 {
	c := g.cfg
	return math.Round(c.MinLinkSeconds + g.rand.Float64()*(c.MaxLinkSeconds-c.MinLinkSeconds))
}

func node(r, c int) string { return fmt.Sprintf("n%d_%d", r, c) }
