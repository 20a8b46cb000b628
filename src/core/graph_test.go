package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddAndRetrieveNode(t *testing.T) {
	graph := NewBuildGraph()
	node := graph.AddNode(&Node{Label: ParseBuildLabel("//hello:lib")})
	assert.Equal(t, node, graph.Node(ParseBuildLabel("//hello:lib")))
	assert.Nil(t, graph.Node(ParseBuildLabel("//missing:lib")))
	assert.Equal(t, 1, graph.Len())
}

func TestReAddNodePanics(t *testing.T) {
	graph := NewBuildGraph()
	graph.AddNode(&Node{Label: ParseBuildLabel("//hello:lib")})
	assert.Panics(t, func() {
		graph.AddNode(&Node{Label: ParseBuildLabel("//hello:lib")})
	})
}

func TestLabelsAreCanonicallyOrdered(t *testing.T) {
	graph := NewBuildGraph()
	graph.AddNode(&Node{Label: ParseBuildLabel("//zebra:lib")})
	graph.AddNode(&Node{Label: ParseBuildLabel("//apple:lib")})
	graph.AddNode(&Node{Label: ParseBuildLabel("//mango:lib")})
	assert.Equal(t, []BuildLabel{
		ParseBuildLabel("//apple:lib"),
		ParseBuildLabel("//mango:lib"),
		ParseBuildLabel("//zebra:lib"),
	}, graph.Labels())
}

func TestDepInfoMemoisedOnce(t *testing.T) {
	node := &Node{Label: ParseBuildLabel("//hello:lib")}
	assert.Nil(t, node.DepInfo())
	deps := &DepInfo{}
	node.SetDepInfo(deps)
	assert.Equal(t, deps, node.DepInfo())
	assert.Panics(t, func() { node.SetDepInfo(&DepInfo{}) })
}
