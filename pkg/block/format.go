package block

import (
	"fmt"
	"strings"

	"github.com/xlab/treeprint"
)

// FormatValue renders the physical value at pos for debug output. The
// rendering follows the physical layout, not any logical type, so a
// 64-bit slot always prints as an integer.
func FormatValue(b Block, pos int) string {
	checkReadablePosition(b, pos)
	if b.IsNull(pos) {
		return "null"
	}
	switch s := b.(type) {
	case *ByteBlock:
		return fmt.Sprintf("%d", s.GetByte(pos, 0))
	case *ShortBlock:
		return fmt.Sprintf("%d", s.GetShort(pos, 0))
	case *IntBlock:
		return fmt.Sprintf("%d", s.GetInt(pos, 0))
	case *LongBlock:
		return fmt.Sprintf("%d", s.GetLong(pos, 0))
	case *Int128Block:
		return s.GetInt128(pos).String()
	case *VarWidthBlock:
		return fmt.Sprintf("%q", s.GetSlice(pos, 0, s.SliceLength(pos)))
	case *DictionaryBlock:
		return FormatValue(s.Dict, int(s.idAt(pos)))
	case *RunLengthBlock:
		return FormatValue(s.Val, 0)
	case *ArrayBlock:
		elems := s.Array(pos)
		parts := make([]string, elems.PositionCount())
		for i := range parts {
			parts[i] = FormatValue(elems, i)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *MapBlock:
		keys, values := s.Entries(pos)
		parts := make([]string, keys.PositionCount())
		for i := range parts {
			parts[i] = FormatValue(keys, i) + ": " + FormatValue(values, i)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *RowBlock:
		parts := make([]string, s.FieldCount())
		for f := range parts {
			parts[f] = FormatValue(s.Field(f), pos)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *LazyBlock:
		return FormatValue(s.Loaded(), pos)
	default:
		return "?"
	}
}

func describeInto(node treeprint.Tree, b Block) {
	label := fmt.Sprintf("%s positions=%d size=%d",
		b.EncodingName(), b.PositionCount(), b.SizeInBytes())
	switch s := b.(type) {
	case *DictionaryBlock:
		child := node.AddBranch(label + fmt.Sprintf(" unique=%d compact=%v", s.UniqueIds(), s.IsCompact()))
		describeInto(child, s.Dict)
	case *RunLengthBlock:
		child := node.AddBranch(label)
		describeInto(child, s.Val)
	case *ArrayBlock:
		child := node.AddBranch(label)
		describeInto(child, s.Elems)
	case *MapBlock:
		child := node.AddBranch(label)
		describeInto(child, s.Keys)
		describeInto(child, s.Values)
	case *RowBlock:
		child := node.AddBranch(label)
		for _, f := range s.Fields {
			describeInto(child, f)
		}
	case *LazyBlock:
		describeInto(node, s.Loaded())
	default:
		node.AddNode(label)
	}
}

// Describe renders the nested encoding structure of a block as a tree.
func Describe(b Block) string {
	tree := treeprint.New()
	describeInto(tree, b)
	return tree.String()
}

// DescribePage renders every column of a page under one tree.
func DescribePage(p *Page) string {
	tree := treeprint.New()
	root := tree.AddBranch(fmt.Sprintf("page positions=%d columns=%d", p.PositionCount(), p.ColumnCount()))
	for _, b := range p.Columns() {
		describeInto(root, b)
	}
	return tree.String()
}
