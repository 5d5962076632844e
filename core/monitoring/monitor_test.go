package monitoring

import (
	"errors"
	"testing"
	"time"
)

type captureMonitor struct {
	errs []error
	tags []map[string]string
}

func (c *captureMonitor) CaptureException(err error, tags map[string]string) {
	c.errs = append(c.errs, err)
	c.tags = append(c.tags, tags)
}
func (c *captureMonitor) Recover()            {}
func (c *captureMonitor) Flush(time.Duration) {}

func TestInitAndCapture(t *testing.T) {
	m := &captureMonitor{}
	Init(m)
	defer Init(nil)
	CaptureException(errors.New("boom"), map[string]string{"mode": "taxi"})
	if len(m.errs) != 1 || m.tags[0]["mode"] != "taxi" {
		t.Fatalf("capture not forwarded: %#v", m)
	}
	if Current() != Monitor(m) {
		t.Fatalf("current monitor not installed")
	}
}

func TestInitNilResets(t *testing.T) {
	Init(nil)
	if _, ok := Current().(NopMonitor); !ok {
		t.Fatalf("expected NopMonitor after Init(nil)")
	}
	Flush(time.Millisecond)
}
