package interp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fogleman/ease"
)

var easings = map[string]func(float64) float64{
	"linear":     ease.Linear,
	"smooth":     Smoothstep,
	"inquad":     ease.InQuad,
	"outquad":    ease.OutQuad,
	"inoutquad":  ease.InOutQuad,
	"incubic":    ease.InCubic,
	"outcubic":   ease.OutCubic,
	"inoutcubic": ease.InOutCubic,
	"inquart":    ease.InQuart,
	"outquart":   ease.OutQuart,
	"inoutquart": ease.InOutQuart,
	"insine":     ease.InSine,
	"outsine":    ease.OutSine,
	"inoutsine":  ease.InOutSine,
	"inexpo":     ease.InExpo,
	"outexpo":    ease.OutExpo,
	"inoutexpo":  ease.InOutExpo,
	"inback":     ease.InBack,
	"outback":    ease.OutBack,
	"inoutback":  ease.InOutBack,
	"outbounce":  ease.OutBounce,
	"outelastic": ease.OutElastic,
}

// Ease returns the easing curve registered under name.
// Names are case-insensitive, dashes and underscores are ignored;
// an empty name is linear.
func Ease(name string) (func(float64) float64, error) {
	key := strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(name))
	if key == "" {
		return ease.Linear, nil
	}
	fn, ok := easings[key]
	if !ok {
		return nil, fmt.Errorf("unknown easing %q (known: %s)", name, strings.Join(EaseNames(), ", "))
	}
	return fn, nil
}

// EaseNames lists the registered easing names.
func EaseNames() []string {
	names := make([]string, 0, len(easings))
	for k := range easings {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
