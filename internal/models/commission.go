package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// CommissionKind tags which variant a Commission holds.
type CommissionKind string

const (
	// CommissionUnknown means no package data is available yet.
	CommissionUnknown CommissionKind = "unknown"
	// CommissionUniform means every package carries the same rate.
	CommissionUniform CommissionKind = "uniform"
	// CommissionPerPackage means packages carry different rates.
	CommissionPerPackage CommissionKind = "per_package"
)

// CommissionDetail is the markup computed for a single package.
type CommissionDetail struct {
	FaceValue      float64 `json:"faceValue"`
	CommissionRate float64 `json:"commissionRate"`
	CostInLocal    float64 `json:"costInLocal"`
}

// Commission is the markup a product charges over face value. Exactly one of
// the variants is meaningful, selected by Kind: Rate for CommissionUniform and
// Packages (ordered by ascending face value) for CommissionPerPackage.
type Commission struct {
	Kind     CommissionKind
	Rate     float64
	Packages []CommissionDetail
}

// UnknownCommission is the "no data yet" value. It is distinct from a 0% rate.
func UnknownCommission() Commission {
	return Commission{Kind: CommissionUnknown}
}

// UniformCommission returns a single-rate commission.
func UniformCommission(rate float64) Commission {
	return Commission{Kind: CommissionUniform, Rate: rate}
}

// PerPackageCommission returns a per-package commission. The slice is copied.
func PerPackageCommission(details []CommissionDetail) Commission {
	return Commission{Kind: CommissionPerPackage, Packages: append([]CommissionDetail(nil), details...)}
}

// IsKnown reports whether the commission has been computed.
func (c Commission) IsKnown() bool {
	return c.Kind == CommissionUniform || c.Kind == CommissionPerPackage
}

// Mean returns the representative rate: the uniform rate, or the arithmetic
// mean of all package rates. ok is false for an unknown commission.
func (c Commission) Mean() (rate float64, ok bool) {
	switch c.Kind {
	case CommissionUniform:
		return c.Rate, true
	case CommissionPerPackage:
		if len(c.Packages) == 0 {
			return 0, false
		}
		var sum float64
		for _, p := range c.Packages {
			sum += p.CommissionRate
		}
		return sum / float64(len(c.Packages)), true
	default:
		return 0, false
	}
}

// String renders the commission for display, e.g. "N/A", "1.2%" or
// "100: 1.2%, 500: 0%".
func (c Commission) String() string {
	switch c.Kind {
	case CommissionUniform:
		return formatPercent(c.Rate)
	case CommissionPerPackage:
		if len(c.Packages) == 0 {
			return "N/A"
		}
		parts := make([]string, len(c.Packages))
		for i, p := range c.Packages {
			parts[i] = strconv.FormatFloat(p.FaceValue, 'f', -1, 64) + ": " + formatPercent(p.CommissionRate)
		}
		return strings.Join(parts, ", ")
	default:
		return "N/A"
	}
}

func formatPercent(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64) + "%"
}

type commissionJSON struct {
	Kind     CommissionKind     `json:"kind"`
	Display  string             `json:"display"`
	Rate     *float64           `json:"rate,omitempty"`
	Packages []CommissionDetail `json:"packages,omitempty"`
}

// MarshalJSON encodes the variant with an explicit kind tag.
func (c Commission) MarshalJSON() ([]byte, error) {
	out := commissionJSON{Kind: c.Kind, Display: c.String()}
	if out.Kind == "" {
		out.Kind = CommissionUnknown
	}
	switch c.Kind {
	case CommissionUniform:
		rate := c.Rate
		out.Rate = &rate
	case CommissionPerPackage:
		out.Packages = c.Packages
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the tagged form produced by MarshalJSON.
func (c *Commission) UnmarshalJSON(data []byte) error {
	var in commissionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch in.Kind {
	case CommissionUnknown, "":
		*c = UnknownCommission()
	case CommissionUniform:
		if in.Rate == nil {
			return fmt.Errorf("uniform commission without rate")
		}
		*c = UniformCommission(*in.Rate)
	case CommissionPerPackage:
		*c = PerPackageCommission(in.Packages)
	default:
		return fmt.Errorf("unknown commission kind %q", in.Kind)
	}
	return nil
}
