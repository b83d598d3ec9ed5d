package segment

import (
	"sort"

	"nanomeasurer/pkg/geometry"
)

// Particle is one ranked connected region of the similarity mask.
type Particle struct {
	Rank     int              `json:"rank"` // 1 = largest area
	Area     int              `json:"area"` // pixel count
	Centroid geometry.Point2D `json:"centroid"`
}

// LabelMap assigns each pixel its particle rank: 0 = background,
// 1..N = regions ordered by descending area.
type LabelMap struct {
	W, H   int
	Labels []int32
}

// At returns the rank at (x, y), 0 outside the map.
func (l *LabelMap) At(x, y int) int32 {
	if x < 0 || x >= l.W || y < 0 || y >= l.H {
		return 0
	}
	return l.Labels[y*l.W+x]
}

// Extract labels the 4-connected components of the mask, erases components
// smaller than minArea from the mask itself, and ranks the survivors by
// descending area (ties broken by discovery order, so results are stable).
// The returned label map is relabeled 1..N contiguously in rank order and
// particle centroids are in full-image pixel coordinates.
//
// An empty result (no surviving component) is a normal outcome, not an
// error: the label map is all zeros and the particle list is empty.
func Extract(mask *Mask, minArea int) (*LabelMap, []Particle) {
	w, h := mask.W, mask.H
	labels := &LabelMap{W: w, H: h, Labels: make([]int32, w*h)}

	type component struct {
		id         int32
		area       int
		sumX, sumY float64
	}

	// First pass: BFS flood fill assigning raw component ids 1..n.
	raw := make([]int32, w*h)
	var comps []component
	var queue []int

	for start, set := range mask.Bits {
		if !set || raw[start] != 0 {
			continue
		}

		id := int32(len(comps) + 1)
		comp := component{id: id}
		queue = queue[:0]
		queue = append(queue, start)
		raw[start] = id

		for len(queue) > 0 {
			idx := queue[0]
			queue = queue[1:]
			py, px := idx/w, idx%w
			comp.area++
			comp.sumX += float64(px)
			comp.sumY += float64(py)

			if px > 0 && mask.Bits[idx-1] && raw[idx-1] == 0 {
				raw[idx-1] = id
				queue = append(queue, idx-1)
			}
			if px < w-1 && mask.Bits[idx+1] && raw[idx+1] == 0 {
				raw[idx+1] = id
				queue = append(queue, idx+1)
			}
			if py > 0 && mask.Bits[idx-w] && raw[idx-w] == 0 {
				raw[idx-w] = id
				queue = append(queue, idx-w)
			}
			if py < h-1 && mask.Bits[idx+w] && raw[idx+w] == 0 {
				raw[idx+w] = id
				queue = append(queue, idx+w)
			}
		}

		comps = append(comps, comp)
	}

	if len(comps) == 0 {
		return labels, nil
	}

	// Rank survivors by descending area; equal areas keep raw id order.
	kept := comps[:0:0]
	for _, c := range comps {
		if c.area >= minArea || minArea <= 0 {
			kept = append(kept, c)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].area > kept[j].area
	})

	// Raw id → rank; 0 for removed components.
	remap := make([]int32, len(comps)+1)
	particles := make([]Particle, len(kept))
	for i, c := range kept {
		rank := int32(i + 1)
		remap[c.id] = rank
		particles[i] = Particle{
			Rank: i + 1,
			Area: c.area,
			Centroid: geometry.Point2D{
				X: c.sumX / float64(c.area),
				Y: c.sumY / float64(c.area),
			},
		}
	}

	// Second pass: write ranks into the label map and erase sub-minimum
	// components from the mask. The erasure is a deliberate side effect so
	// the mask callers observe matches the ranked output.
	for i, id := range raw {
		if id == 0 {
			continue
		}
		rank := remap[id]
		labels.Labels[i] = rank
		if rank == 0 {
			mask.Bits[i] = false
		}
	}

	if len(particles) == 0 {
		return labels, nil
	}
	return labels, particles
}
