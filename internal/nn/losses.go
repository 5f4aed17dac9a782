package nn

// Losses maps loss keys to raw scalar values for one forward pass.
//
// Layers report every enabled term under its own key ("gram", "mean", ...)
// without applying any weighting; weights live with the caller and are
// folded in through WeightedSum. A Pipeline namespaces child keys with
// "<index>.<name>." prefixes so the same layer kind can appear at several
// probe stages without collisions.
type Losses map[string]float64

// Merge copies every entry of other into l under the given key prefix.
func (l Losses) Merge(prefix string, other Losses) {
	for k, v := range other {
		l[prefix+k] = v
	}
}

// WeightedSum reduces the loss map to a single scalar. Keys missing from
// weights contribute with weight 1, so an empty map sums everything as-is.
func (l Losses) WeightedSum(weights map[string]float64) float64 {
	total := 0.0
	for k, v := range l {
		w, ok := weights[k]
		if !ok {
			w = 1
		}
		total += w * v
	}
	return total
}
