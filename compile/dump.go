package compile

import (
	"fmt"
	"strings"

	"github.com/dekarrin/neotoma/grammar"
	"github.com/dekarrin/rosed"
)

// file dump.go contains the human-readable rendition of compiled
// modules. It is rendered whenever Dump is called; the grammar's debug
// option is carried on Module.Debug and does not gate it. The format
// is stable: it is safe to diff dumps across compiler runs.

// Dump renders the whole module: a summary table of the compiled
// parsers followed by each parser's op listing.
func (m *Module) Dump() string {
	var sb strings.Builder

	data := [][]string{
		{"PARSER", "RETURNS", "MEMO", "DEPENDS"},
	}
	for _, impl := range m.Parsers {
		deps := make([]string, len(impl.Depends))
		for i, d := range impl.Depends {
			deps[i] = d.Name
		}
		data = append(data, []string{
			impl.Name,
			impl.RetType.Text,
			impl.Memo.String(),
			strings.Join(deps, ", "),
		})
	}

	sb.WriteString(rosed.Edit("").
		InsertTableOpts(0, data, 80, rosed.Options{
			TableBorders: true,
		}).
		String())
	sb.WriteString("\n")

	for _, impl := range m.Parsers {
		sb.WriteString(impl.Dump())
		sb.WriteString("\n")
	}

	if len(m.Returns) > 0 {
		sb.WriteString("return ")
		sb.WriteString(strings.Join(m.Returns, ", "))
		sb.WriteString("\n")
	}

	return sb.String()
}

// Dump renders one compiled parser's op listing.
func (impl *ParserImpl) Dump() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s%s -> %s [%s]:\n", visPrefix(impl), impl.Name, impl.RetType.Text, impl.Memo)
	writeParsing(&sb, impl.Body, 1)
	return sb.String()
}

func visPrefix(impl *ParserImpl) string {
	if impl.Vis == grammar.VisPublic {
		return "pub "
	}
	return ""
}

func writeParsing(sb *strings.Builder, p *Parsing, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, ent := range p.Ops {
		switch ent.Op.Kind {
		case OpJust:
			fmt.Fprintf(sb, "%s%s = Just %s\n", indent, ent.Val, ent.Op.Lit)
		case OpPat:
			fmt.Fprintf(sb, "%s%s = Pat %s (%s)\n", indent, ent.Val, ent.Op.Pat, strings.Join(ent.Op.Binds, ", "))
		case OpCall:
			deps := make([]string, len(ent.Op.Depends))
			for i, d := range ent.Op.Depends {
				deps[i] = d.Name
			}
			fmt.Fprintf(sb, "%s%s = Call %s (%s)\n", indent, ent.Val, ent.Op.Parser, strings.Join(deps, ", "))
		case OpMap:
			pat, err := ent.Op.Cap.Pattern()
			if err != nil {
				pat = "<invalid>"
			}
			fmt.Fprintf(sb, "%s%s = Map %s |%s| %s\n", indent, ent.Val, ent.Op.Src, pat, ent.Op.Action)
		case OpThen, OpThenIgnore, OpIgnoreThen:
			fmt.Fprintf(sb, "%s%s = %s %s:\n", indent, ent.Val, ent.Op.Kind, ent.Op.Prev)
			writeParsing(sb, ent.Op.Next, depth+1)
		case OpRepeat:
			fmt.Fprintf(sb, "%s%s = Repeat >=%d:\n", indent, ent.Val, ent.Op.AtLeast)
			writeParsing(sb, ent.Op.Body, depth+1)
		case OpOptional, OpLookAhead, OpLookAheadNot:
			fmt.Fprintf(sb, "%s%s = %s:\n", indent, ent.Val, ent.Op.Kind)
			writeParsing(sb, ent.Op.Body, depth+1)
		case OpChoice:
			fmt.Fprintf(sb, "%s%s = Choice:\n", indent, ent.Val)
			for _, alt := range ent.Op.Alts {
				fmt.Fprintf(sb, "%salt:\n", strings.Repeat("  ", depth+1))
				writeParsing(sb, alt, depth+2)
			}
		}
	}
}
