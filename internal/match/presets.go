package match

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Preset is a selectable base time budget, applied to both sides.
type Preset struct {
	Label  string
	Budget time.Duration
}

var TimePresets = []Preset{
	{Label: "1:00", Budget: 1 * time.Minute},
	{Label: "3:00", Budget: 3 * time.Minute},
	{Label: "5:00", Budget: 5 * time.Minute},
	{Label: "10:00", Budget: 10 * time.Minute},
}

const (
	DefaultBudget       = 5 * time.Minute
	DefaultTickInterval = 200 * time.Millisecond
	DefaultBotDelay     = 5 * time.Second
)

// ParseBudget accepts a preset label ("3:00"), bare minutes ("3") or a Go
// duration ("3m"). The result must be one of TimePresets.
func ParseBudget(s string) (time.Duration, error) {
	v := strings.TrimSpace(strings.ToLower(s))
	if v == "" {
		return 0, fmt.Errorf("empty time budget")
	}
	var d time.Duration
	switch {
	case strings.Contains(v, ":"):
		for _, p := range TimePresets {
			if p.Label == v {
				return p.Budget, nil
			}
		}
		return 0, fmt.Errorf("unknown time budget %q", s)
	default:
		if n, err := strconv.Atoi(v); err == nil {
			d = time.Duration(n) * time.Minute
		} else if pd, err := time.ParseDuration(v); err == nil {
			d = pd
		} else {
			return 0, fmt.Errorf("unknown time budget %q", s)
		}
	}
	for _, p := range TimePresets {
		if p.Budget == d {
			return d, nil
		}
	}
	return 0, fmt.Errorf("time budget %s is not a preset", d)
}

// BudgetLabel renders a budget like the preset menu does ("5:00").
func BudgetLabel(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// PresetLabels lists the menu labels in order.
func PresetLabels() []string {
	out := make([]string, 0, len(TimePresets))
	for _, p := range TimePresets {
		out = append(out, p.Label)
	}
	return out
}
