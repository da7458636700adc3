package gbt

// Node is one node of a regression tree in flat-array form. Leaf values
// already include the learning-rate shrinkage.
type Node struct {
	Leaf  bool    `json:"leaf,omitempty"`
	Value float64 `json:"value,omitempty"`

	Feature     int     `json:"feature,omitempty"`
	Categorical bool    `json:"categorical,omitempty"`
	Threshold   float64 `json:"threshold,omitempty"`
	LeftCats    []int   `json:"left_categories,omitempty"`
	// DefaultLeft routes rows whose category code was never seen in
	// training; it points at the child that received more samples.
	DefaultLeft bool `json:"default_left,omitempty"`

	Left  int `json:"left,omitempty"`
	Right int `json:"right,omitempty"`
}

type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Score walks the tree for one row. Numeric values route left when
// value <= threshold; categorical codes route left when the code is in the
// node's left set, and unseen codes (-1) follow DefaultLeft.
func (t *Tree) Score(numeric []float64, catCodes []int) float64 {
	i := 0
	for !t.Nodes[i].Leaf {
		n := &t.Nodes[i]
		if n.Categorical {
			code := catCodes[n.Feature]
			switch {
			case code < 0:
				if n.DefaultLeft {
					i = n.Left
				} else {
					i = n.Right
				}
			case containsInt(n.LeftCats, code):
				i = n.Left
			default:
				i = n.Right
			}
			continue
		}
		if numeric[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	return t.Nodes[i].Value
}

func (t *Tree) numLeaves() int {
	leaves := 0
	for i := range t.Nodes {
		if t.Nodes[i].Leaf {
			leaves++
		}
	}
	return leaves
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
