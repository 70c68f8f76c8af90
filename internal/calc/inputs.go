package calc

import (
	"math"

	"github.com/karim5623/hazcurve/internal/eq"
	"github.com/karim5623/hazcurve/internal/gmm"
)

// InputList is the stage-1 product for one source: one ground-motion
// model input per rupture, in declared rupture order, plus the minimum
// rJB used when selecting distance-dependent gmm weights.
type InputList struct {
	SourceName string
	Inputs     []gmm.Input
	minR       float64
}

// MinDistance returns the minimum rJB across inputs, or +Inf for an
// empty list.
func (l *InputList) MinDistance() float64 { return l.minR }

// ClusterInputs is the stage-1 product for a cluster source: one
// InputList per fault segment, in declared order.
type ClusterInputs struct {
	Parent *eq.ClusterSource
	Lists  []*InputList
}

// MinDistance returns the minimum rJB across all segment inputs.
func (c *ClusterInputs) MinDistance() float64 {
	min := math.Inf(1)
	for _, l := range c.Lists {
		if l.minR < min {
			min = l.minR
		}
	}
	return min
}
