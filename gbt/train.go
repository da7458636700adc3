package gbt

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const probEps = 1e-12

// Train fits a boosted ensemble on the dataset. Labels must be 0 or 1.
func Train(ds *Dataset, labels []int, p Params) (*Classifier, error) {
	n := ds.NumRows()
	if n == 0 {
		return nil, fmt.Errorf("empty dataset")
	}
	if len(labels) != n {
		return nil, fmt.Errorf("got %d labels for %d rows", len(labels), n)
	}
	for i, y := range labels {
		if y != 0 && y != 1 {
			return nil, fmt.Errorf("label %d at row %d: want 0 or 1", y, i)
		}
	}
	if p.MaxIter <= 0 || p.MaxLeafNodes < 2 || p.MaxBins < 2 {
		return nil, fmt.Errorf("invalid params: MaxIter=%d MaxLeafNodes=%d MaxBins=%d",
			p.MaxIter, p.MaxLeafNodes, p.MaxBins)
	}

	t := newTrainer(ds, labels, p)
	return t.run()
}

type split struct {
	gain        float64
	feature     int
	categorical bool
	bin         int   // numeric: threshold is edges[feature][bin]
	leftCats    []int // categorical: codes routed left
}

type leafCand struct {
	node  int
	rows  []int
	depth int
	best  *split
}

type trainer struct {
	p   Params
	rng *rand.Rand
	ds  *Dataset

	nNum, nCat int
	binned     [][]int     // [numeric col][row]
	edges      [][]float64 // [numeric col] split thresholds
	nBins      []int
	levels     [][]string // [categorical col] code -> level
	rowCodes   [][]int    // [row][categorical col]

	y        []float64
	trainIdx []int
	valIdx   []int
	score    []float64
	g, h     []float64
}

func newTrainer(ds *Dataset, labels []int, p Params) *trainer {
	n := ds.NumRows()
	t := &trainer{
		p:     p,
		rng:   rand.New(rand.NewSource(p.Seed)),
		ds:    ds,
		nNum:  len(ds.NumericNames),
		nCat:  len(ds.CategoricalNames),
		y:     make([]float64, n),
		score: make([]float64, n),
		g:     make([]float64, n),
		h:     make([]float64, n),
	}
	for i, y := range labels {
		t.y[i] = float64(y)
	}

	t.binNumeric()
	t.encodeCategorical()

	// Carve the classifier-internal validation slice used for early
	// stopping. This is separate from any caller-side test partition.
	idx := t.rng.Perm(n)
	if p.EarlyStopping && p.ValidationFraction > 0 && n >= 10 {
		nVal := int(math.Round(p.ValidationFraction * float64(n)))
		if nVal < 1 {
			nVal = 1
		}
		t.valIdx = idx[:nVal]
		t.trainIdx = idx[nVal:]
	} else {
		t.trainIdx = idx
	}

	return t
}

// binNumeric maps every numeric column onto at most MaxBins ordered bins.
// A row's bin b satisfies value <= edges[b] for b < len(edges), so a split
// "bin <= b" is exactly "value <= edges[b]".
func (t *trainer) binNumeric() {
	n := t.ds.NumRows()
	t.binned = make([][]int, t.nNum)
	t.edges = make([][]float64, t.nNum)
	t.nBins = make([]int, t.nNum)

	for f := 0; f < t.nNum; f++ {
		vals := make([]float64, n)
		for i := 0; i < n; i++ {
			vals[i] = t.ds.Numeric[i][f]
		}
		sorted := append([]float64(nil), vals...)
		sort.Float64s(sorted)

		distinct := sorted[:0:0]
		for i, v := range sorted {
			if i == 0 || v != sorted[i-1] {
				distinct = append(distinct, v)
			}
		}

		var edges []float64
		if len(distinct) <= t.p.MaxBins {
			for k := 0; k+1 < len(distinct); k++ {
				edges = append(edges, (distinct[k]+distinct[k+1])/2)
			}
		} else {
			prev := math.Inf(-1)
			for b := 1; b < t.p.MaxBins; b++ {
				v := sorted[b*len(sorted)/t.p.MaxBins]
				if v > prev {
					edges = append(edges, v)
					prev = v
				}
			}
		}

		bins := make([]int, n)
		for i, v := range vals {
			bins[i] = sort.SearchFloat64s(edges, v)
		}
		t.binned[f] = bins
		t.edges[f] = edges
		t.nBins[f] = len(edges) + 1
	}
}

func (t *trainer) encodeCategorical() {
	n := t.ds.NumRows()
	t.levels = make([][]string, t.nCat)
	t.rowCodes = make([][]int, n)
	codeOf := make([]map[string]int, t.nCat)
	for f := 0; f < t.nCat; f++ {
		codeOf[f] = make(map[string]int)
	}
	for i := 0; i < n; i++ {
		t.rowCodes[i] = make([]int, t.nCat)
		for f := 0; f < t.nCat; f++ {
			v := t.ds.Categorical[i][f]
			code, ok := codeOf[f][v]
			if !ok {
				code = len(t.levels[f])
				codeOf[f][v] = code
				t.levels[f] = append(t.levels[f], v)
			}
			t.rowCodes[i][f] = code
		}
	}
}

func (t *trainer) run() (*Classifier, error) {
	yTrain := make([]float64, len(t.trainIdx))
	for k, i := range t.trainIdx {
		yTrain[k] = t.y[i]
	}
	p0 := clamp(stat.Mean(yTrain, nil), probEps, 1-probEps)
	base := math.Log(p0 / (1 - p0))
	for i := range t.score {
		t.score[i] = base
	}

	c := &Classifier{
		BaseScore:        base,
		LearningRate:     t.p.LearningRate,
		NumericNames:     t.ds.NumericNames,
		CategoricalNames: t.ds.CategoricalNames,
		Categories:       t.levels,
	}

	bestLoss := math.Inf(1)
	bestIter := 0
	sinceBest := 0

	for iter := 0; iter < t.p.MaxIter; iter++ {
		for _, i := range t.trainIdx {
			pi := sigmoid(t.score[i])
			t.g[i] = pi - t.y[i]
			t.h[i] = pi * (1 - pi)
		}

		tree := t.growTree()
		if tree == nil {
			if iter == 0 {
				return nil, fmt.Errorf("no usable split found; is the target constant?")
			}
			break
		}
		c.Trees = append(c.Trees, tree)

		for i := range t.score {
			t.score[i] += tree.Score(t.ds.Numeric[i], t.rowCodes[i])
		}

		if len(t.valIdx) > 0 {
			loss := t.validationLoss()
			if loss < bestLoss-t.p.Tol {
				bestLoss = loss
				bestIter = len(c.Trees)
				sinceBest = 0
			} else {
				sinceBest++
				if sinceBest >= t.p.NIterNoChange {
					c.Trees = c.Trees[:bestIter]
					break
				}
			}
		}
	}

	if len(c.Trees) == 0 {
		return nil, fmt.Errorf("training produced no trees")
	}
	c.buildIndex()
	return c, nil
}

func (t *trainer) validationLoss() float64 {
	loss := 0.0
	for _, i := range t.valIdx {
		p := clamp(sigmoid(t.score[i]), probEps, 1-probEps)
		if t.y[i] == 1 {
			loss -= math.Log(p)
		} else {
			loss -= math.Log(1 - p)
		}
	}
	return loss / float64(len(t.valIdx))
}

// growTree grows one regression tree leaf-wise: the open leaf with the best
// gain splits first, until MaxLeafNodes or no split clears the gain bar.
// Returns nil when even the root cannot be split.
func (t *trainer) growTree() *Tree {
	nodes := []Node{{}}
	root := &leafCand{node: 0, rows: t.trainIdx, depth: 0}
	t.findBestSplit(root)
	if root.best == nil {
		return nil
	}

	open := []*leafCand{root}
	leaves := 1
	for leaves < t.p.MaxLeafNodes {
		bi := -1
		for i, l := range open {
			if l.best != nil && (bi < 0 || l.best.gain > open[bi].best.gain) {
				bi = i
			}
		}
		if bi < 0 {
			break
		}
		l := open[bi]
		open = append(open[:bi], open[bi+1:]...)

		left, right := t.partition(l.rows, l.best)

		leftID := len(nodes)
		nodes = append(nodes, Node{})
		rightID := len(nodes)
		nodes = append(nodes, Node{})

		n := Node{
			Feature:     l.best.feature,
			Left:        leftID,
			Right:       rightID,
			DefaultLeft: len(left) >= len(right),
		}
		if l.best.categorical {
			n.Categorical = true
			n.LeftCats = l.best.leftCats
		} else {
			n.Threshold = t.edges[l.best.feature][l.best.bin]
		}
		nodes[l.node] = n

		childL := &leafCand{node: leftID, rows: left, depth: l.depth + 1}
		childR := &leafCand{node: rightID, rows: right, depth: l.depth + 1}
		t.findBestSplit(childL)
		t.findBestSplit(childR)
		open = append(open, childL, childR)
		leaves++
	}

	for _, l := range open {
		nodes[l.node] = Node{Leaf: true, Value: t.leafValue(l.rows)}
	}

	return &Tree{Nodes: nodes}
}

// leafValue is the L2-regularized Newton step, shrunk by the learning rate.
func (t *trainer) leafValue(rows []int) float64 {
	var G, H float64
	for _, i := range rows {
		G += t.g[i]
		H += t.h[i]
	}
	return -t.p.LearningRate * G / (H + t.p.L2Regularization)
}

func (t *trainer) findBestSplit(l *leafCand) {
	l.best = nil
	if l.depth >= t.p.MaxDepth || len(l.rows) < 2*t.p.MinSamplesLeaf {
		return
	}

	total := t.nNum + t.nCat
	k := int(math.Round(t.p.MaxFeatures * float64(total)))
	if k < 1 {
		k = 1
	}
	if k > total {
		k = total
	}

	for _, f := range t.rng.Perm(total)[:k] {
		var s *split
		if f < t.nNum {
			s = t.bestNumericSplit(f, l.rows)
		} else {
			s = t.bestCategoricalSplit(f-t.nNum, l.rows)
		}
		if s != nil && (l.best == nil || s.gain > l.best.gain) {
			l.best = s
		}
	}
}

func (t *trainer) bestNumericSplit(f int, rows []int) *split {
	nb := t.nBins[f]
	if nb < 2 {
		return nil
	}

	histG := make([]float64, nb)
	histH := make([]float64, nb)
	histN := make([]int, nb)
	for _, i := range rows {
		b := t.binned[f][i]
		histG[b] += t.g[i]
		histH[b] += t.h[i]
		histN[b]++
	}

	G := floats.Sum(histG)
	H := floats.Sum(histH)
	parent := G * G / (H + t.p.L2Regularization)

	var best *split
	var GL, HL float64
	NL := 0
	for b := 0; b+1 < nb; b++ {
		GL += histG[b]
		HL += histH[b]
		NL += histN[b]
		if NL < t.p.MinSamplesLeaf {
			continue
		}
		NR := len(rows) - NL
		if NR < t.p.MinSamplesLeaf {
			break
		}
		GR := G - GL
		HR := H - HL
		gain := GL*GL/(HL+t.p.L2Regularization) + GR*GR/(HR+t.p.L2Regularization) - parent
		if gain > 1e-12 && (best == nil || gain > best.gain) {
			best = &split{gain: gain, feature: f, bin: b}
		}
	}
	return best
}

// bestCategoricalSplit orders the leaf's categories by gradient ratio and
// scans prefixes of that ordering, which finds the optimal binary partition
// for second-order losses without trying all subsets.
func (t *trainer) bestCategoricalSplit(f int, rows []int) *split {
	nc := len(t.levels[f])
	if nc < 2 {
		return nil
	}

	catG := make([]float64, nc)
	catH := make([]float64, nc)
	catN := make([]int, nc)
	for _, i := range rows {
		c := t.rowCodes[i][f]
		catG[c] += t.g[i]
		catH[c] += t.h[i]
		catN[c]++
	}

	present := make([]int, 0, nc)
	for c := 0; c < nc; c++ {
		if catN[c] > 0 {
			present = append(present, c)
		}
	}
	if len(present) < 2 {
		return nil
	}
	sort.Slice(present, func(a, b int) bool {
		ra := catG[present[a]] / (catH[present[a]] + t.p.L2Regularization)
		rb := catG[present[b]] / (catH[present[b]] + t.p.L2Regularization)
		return ra < rb
	})

	G := floats.Sum(catG)
	H := floats.Sum(catH)
	parent := G * G / (H + t.p.L2Regularization)

	var best *split
	bestPrefix := 0
	var GL, HL float64
	NL := 0
	for k := 0; k+1 < len(present); k++ {
		c := present[k]
		GL += catG[c]
		HL += catH[c]
		NL += catN[c]
		if NL < t.p.MinSamplesLeaf {
			continue
		}
		NR := len(rows) - NL
		if NR < t.p.MinSamplesLeaf {
			break
		}
		GR := G - GL
		HR := H - HL
		gain := GL*GL/(HL+t.p.L2Regularization) + GR*GR/(HR+t.p.L2Regularization) - parent
		if gain > 1e-12 && (best == nil || gain > best.gain) {
			best = &split{gain: gain, feature: f, categorical: true}
			bestPrefix = k + 1
		}
	}
	if best == nil {
		return nil
	}
	best.leftCats = append([]int(nil), present[:bestPrefix]...)
	sort.Ints(best.leftCats)
	return best
}

func (t *trainer) partition(rows []int, s *split) (left, right []int) {
	if s.categorical {
		inLeft := make([]bool, len(t.levels[s.feature]))
		for _, c := range s.leftCats {
			inLeft[c] = true
		}
		for _, i := range rows {
			if inLeft[t.rowCodes[i][s.feature]] {
				left = append(left, i)
			} else {
				right = append(right, i)
			}
		}
		return left, right
	}
	for _, i := range rows {
		if t.binned[s.feature][i] <= s.bin {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return left, right
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
