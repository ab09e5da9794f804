package lunohod

import (
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestKerbinConstants(t *testing.T) {
	c := KerbinConstants()
	if err := c.Validate(); err != nil {
		t.Fatalf("default constants are invalid: %s", err)
	}
	if !scalar.EqualWithinAbs(c.ReferenceArea, 27.339710, 1e-6) {
		t.Fatalf("reference area is %f", c.ReferenceArea)
	}
	if !scalar.EqualWithinAbs(c.SurfaceGravity(), 9.81, 1e-12) {
		t.Fatalf("surface gravity is %f", c.SurfaceGravity())
	}
	if e := c.Engine(); e.Thrust != c.Thrust || e.Isp != c.Isp {
		t.Fatalf("engine %+v does not match the constants", e)
	}
}

func TestConstantsValidate(t *testing.T) {
	for _, tc := range []struct {
		name   string
		mutate func(*PhysicalConstants)
	}{
		{"mu", func(c *PhysicalConstants) { c.Mu = 0 }},
		{"radius", func(c *PhysicalConstants) { c.Radius = -1 }},
		{"scale_height", func(c *PhysicalConstants) { c.ScaleHeight = math.NaN() }},
		{"thrust", func(c *PhysicalConstants) { c.Thrust = math.Inf(1) }},
		{"dry_mass", func(c *PhysicalConstants) { c.DryMass = 0 }},
	} {
		c := KerbinConstants()
		tc.mutate(&c)
		err := c.Validate()
		if err == nil {
			t.Fatalf("invalid %s accepted", tc.name)
		}
		if !strings.Contains(err.Error(), tc.name) {
			t.Fatalf("error `%s` does not name %s", err, tc.name)
		}
	}
}
