package canvas

// clip cuts poly to the rectangle [0,lim.x]x[0,lim.y] (Sutherland-Hodgman).
func clip(poly []point, lim point) []point {
	edges := []struct {
		inside func(p point) bool
		cross  func(a, b point) point
	}{
		{func(p point) bool { return p.x >= 0 }, func(a, b point) point { return atX(a, b, 0) }},
		{func(p point) bool { return p.x <= lim.x }, func(a, b point) point { return atX(a, b, lim.x) }},
		{func(p point) bool { return p.y >= 0 }, func(a, b point) point { return atY(a, b, 0) }},
		{func(p point) bool { return p.y <= lim.y }, func(a, b point) point { return atY(a, b, lim.y) }},
	}
	out := poly
	for _, e := range edges {
		if len(out) == 0 {
			return nil
		}
		in := out
		out = make([]point, 0, len(in)+4)
		prev := in[len(in)-1]
		for _, cur := range in {
			switch {
			case e.inside(cur) && e.inside(prev):
				out = append(out, cur)
			case e.inside(cur):
				out = append(out, e.cross(prev, cur), cur)
			case e.inside(prev):
				out = append(out, e.cross(prev, cur))
			}
			prev = cur
		}
	}
	return out
}

func atX(a, b point, x float64) point {
	t := (x - a.x) / (b.x - a.x)
	return point{x, a.y + t*(b.y-a.y)}
}

func atY(a, b point, y float64) point {
	t := (y - a.y) / (b.y - a.y)
	return point{a.x + t*(b.x-a.x), y}
}
