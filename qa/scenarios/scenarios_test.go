package scenarios

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kilianp07/drt/sim"
)

func TestScenario(t *testing.T) {
	files, err := filepath.Glob("*.yaml")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no scenarios found")
	}
	for _, f := range files {
		sc, err := sim.LoadScenario(f)
		if err != nil {
			t.Fatalf("load %s: %v", f, err)
		}
		t.Run(sc.Name, func(t *testing.T) {
			RunScenario(t, sc)
		})
	}
}

func TestVehicleWaitsForLatePassenger(t *testing.T) {
	sc, err := sim.LoadScenario("vehicle_early.yaml")
	if err != nil {
		t.Fatal(err)
	}
	sum := RunScenario(t, sc)
	// the taxi is on the pickup link at 200, the passenger leaves at 210
	if sum.MaxWait != 0 {
		t.Fatalf("expected pickup at the departure, waited %.0fs", sum.MaxWait)
	}
}

func TestLoadInvalid(t *testing.T) {
	if _, err := sim.LoadScenario("no-file.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
	tmp, err := os.CreateTemp(t.TempDir(), "bad*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmp.WriteString(":"); err != nil {
		t.Fatal(err)
	}
	if err := tmp.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := sim.LoadScenario(tmp.Name()); err == nil {
		t.Fatal("expected unmarshal error")
	}
}
