package cast

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/ivlev/picturebox/internal/actor"
	"github.com/ivlev/picturebox/internal/param"
)

var printer = message.NewPrinter(language.English)

func errMissing(name string) error {
	return fmt.Errorf("%w: %q", param.ErrMissing, name)
}

// format renders table cells; numbers get thousands separators.
func format(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return printer.Sprintf("%d", x)
	case int64:
		return printer.Sprintf("%d", x)
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return printer.Sprintf("%d", int64(x))
		}
		return printer.Sprint(number.Decimal(x, number.MaxFractionDigits(fractionDigits(x))))
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

// fractionDigits is the number of digits after the point in the shortest
// representation of x.
func fractionDigits(x float64) int {
	s := strconv.FormatFloat(x, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}

// TableColumn reveals a column of cells top to bottom. Text is never
// shadowed, it hurts legibility.
type TableColumn struct{}

func NewTableColumn() actor.Behavior { return actor.EnterOnly(TableColumn{}) }

func (TableColumn) Enter(cue actor.Cue) error {
	if cue.Shadow {
		return nil
	}
	v, err := floats(cue.Params, "x", "y0", "dy")
	if err != nil {
		return err
	}
	data, err := cue.Params.Items("data")
	if err != nil {
		return err
	}
	if h, ok := cue.Params.Lookup("header"); ok {
		data = append([]any{h}, data...)
	}
	if len(data) == 0 {
		return nil
	}
	st, err := styleOf(cue)
	if err != nil {
		return err
	}
	if st.Alpha == 0 {
		return nil
	}
	for i, item := range data {
		if float64(i)/float64(len(data)) < cue.T {
			cue.Canvas.DrawText(v[0], v[1]+v[2]*float64(i), format(item), st)
		}
	}
	return nil
}

// TableGrid draws a header rule from (x0,y0) to (x1,y0) and a vertical rule
// from yt to yb at every xs.
type TableGrid struct{}

func NewTableGrid() actor.Behavior { return TableGrid{} }

func (TableGrid) Act(cue actor.Cue) error {
	if cue.Shadow {
		return nil
	}
	v, err := floats(cue.Params, "x0", "x1", "y0", "yt", "yb")
	if err != nil {
		return err
	}
	xs, err := cue.Params.Floats("xs")
	if err != nil {
		return err
	}
	st, err := styleOf(cue)
	if err != nil {
		return err
	}
	if st.Alpha == 0 {
		return nil
	}
	cue.Canvas.Line(v[0], v[2], v[1], v[2], st)
	for _, x := range xs {
		cue.Canvas.Line(x, v[3], x, v[4], st)
	}
	return nil
}
