// Package analysis builds read-only views over story IR. Analyses keep
// their results in their own structures, never as annotations on the
// tree: an operation cloned or moved after the fact does not drag stale
// analysis state with it.
package analysis

import (
	"github.com/calliope-vn/calliope/internal/ir"
	"github.com/calliope-vn/calliope/internal/vnmodel"
)

// EdgeKind classifies how control moves between blocks.
type EdgeKind int

const (
	// EdgeFall is the implicit fall-through from a block with no
	// terminator into the next block in body order.
	EdgeFall EdgeKind = iota
	// EdgeJump is an unconditional branch.
	EdgeJump
	// EdgeChoice is one option of a player choice; Label carries the
	// option text.
	EdgeChoice
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeFall:
		return "fall"
	case EdgeJump:
		return "jump"
	case EdgeChoice:
		return "choice"
	default:
		return "?"
	}
}

// Graph is the control flow graph of one function body.
type Graph struct {
	fn      *vnmodel.FunctionOp
	nodes   []*Node
	byBlock map[*ir.Block]*Node
}

// Node wraps one block with its flow edges.
type Node struct {
	block *ir.Block
	succs []*Edge
	preds []*Edge
}

// Edge is one directed flow edge.
type Edge struct {
	From  *Node
	To    *Node
	Kind  EdgeKind
	Label string
}

// BuildCFG walks fn's body once and returns its flow graph. Choice and
// jump targets that degraded to Undef produce no edge; the graph only
// records flow that still exists.
func BuildCFG(fn *vnmodel.FunctionOp) *Graph {
	g := &Graph{fn: fn, byBlock: make(map[*ir.Block]*Node)}
	fn.Body().ForEachBlock(func(b *ir.Block) {
		n := &Node{block: b}
		g.nodes = append(g.nodes, n)
		g.byBlock[b] = n
	})

	for i, n := range g.nodes {
		terminated := false
		n.block.ForEachOp(func(op ir.Op) {
			switch instr := op.(type) {
			case *vnmodel.JumpInstr:
				terminated = true
				if t := instr.Target(); t != nil {
					g.addEdge(n, t, EdgeJump, "")
				}
			case *vnmodel.ChoiceInstr:
				terminated = true
				for j := 0; j < instr.NumOptions(); j++ {
					text, target := instr.Option(j)
					if target != nil {
						g.addEdge(n, target, EdgeChoice, text.PlainText())
					}
				}
			case *vnmodel.ReturnInstr:
				terminated = true
			}
		})
		if !terminated && i+1 < len(g.nodes) {
			g.addEdge(n, g.nodes[i+1].block, EdgeFall, "")
		}
	}
	return g
}

func (g *Graph) addEdge(from *Node, to *ir.Block, kind EdgeKind, label string) {
	toNode := g.byBlock[to]
	if toNode == nil {
		// Target outside this body; flow that leaves the function is not
		// an edge of its graph.
		return
	}
	e := &Edge{From: from, To: toNode, Kind: kind, Label: label}
	from.succs = append(from.succs, e)
	toNode.preds = append(toNode.preds, e)
}

// Function returns the analyzed function.
func (g *Graph) Function() *vnmodel.FunctionOp { return g.fn }

// Nodes returns the nodes in body block order.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Entry returns the entry node, or nil for an empty body.
func (g *Graph) Entry() *Node {
	if len(g.nodes) == 0 {
		return nil
	}
	return g.nodes[0]
}

// NodeFor returns the node wrapping b, or nil when b is not in this
// body.
func (g *Graph) NodeFor(b *ir.Block) *Node { return g.byBlock[b] }

// Unreachable returns the blocks no path from the entry reaches, in
// body order.
func (g *Graph) Unreachable() []*ir.Block {
	seen := make(map[*Node]bool, len(g.nodes))
	var visit func(*Node)
	visit = func(n *Node) {
		if n == nil || seen[n] {
			return
		}
		seen[n] = true
		for _, e := range n.succs {
			visit(e.To)
		}
	}
	visit(g.Entry())

	var out []*ir.Block
	for _, n := range g.nodes {
		if !seen[n] {
			out = append(out, n.block)
		}
	}
	return out
}

func (n *Node) Block() *ir.Block { return n.block }
func (n *Node) Succs() []*Edge   { return n.succs }
func (n *Node) Preds() []*Edge   { return n.preds }
