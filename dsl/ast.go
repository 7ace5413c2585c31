package dsl

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Error is a semantic error tied to a source position.
type Error struct {
	Pos lexer.Position
	Msg string
}

func (e *Error) Error() string {
	if e.Pos.Line == 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// Errorf creates a positioned error.
func Errorf(pos lexer.Position, format string, args ...any) error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Page returns the first page section.
func (d *Document) Page() *PageSection {
	for _, s := range d.Sections {
		if s.Page != nil {
			return s.Page
		}
	}
	return nil
}

// Meta merges the assignments of all meta sections; later ones win.
func (d *Document) Meta() map[string]*Value {
	out := map[string]*Value{}
	for _, s := range d.Sections {
		if s.Meta != nil {
			for k, v := range s.Meta.Block.Assignments() {
				out[k] = v
			}
		}
	}
	return out
}

// Declarations returns the commands named name ("family", "style") of the fonts or styles sections.
func (d *Document) Declarations(name string) []*Command {
	var out []*Command
	for _, s := range d.Sections {
		var b *Block
		switch {
		case s.Fonts != nil:
			b = s.Fonts.Block
		case s.Styles != nil:
			b = s.Styles.Block
		default:
			continue
		}
		for _, c := range b.Commands() {
			if c.Name == name {
				out = append(out, c)
			}
		}
	}
	return out
}

// Assignments returns the block's assignments keyed by lower-case name.
func (b *Block) Assignments() map[string]*Value {
	out := map[string]*Value{}
	if b == nil {
		return out
	}
	for _, st := range b.Statements {
		if st.Assignment != nil {
			out[strings.ToLower(st.Assignment.Key)] = st.Assignment.Value
		}
	}
	return out
}

// Commands returns the block's commands.
func (b *Block) Commands() []*Command {
	if b == nil {
		return nil
	}
	var out []*Command
	for _, st := range b.Statements {
		if st.Command != nil {
			out = append(out, st.Command)
		}
	}
	return out
}

// Text joins the text literals directly inside the command's block.
func (c *Command) Text() string {
	if c.Block == nil {
		return ""
	}
	var b strings.Builder
	for _, st := range c.Block.Statements {
		if st.Text != nil {
			b.WriteString(string(st.Text.Value))
		}
	}
	return b.String()
}

// Statements returns the command's block statements, if any.
func (c *Command) Statements() []*Statement {
	if c.Block == nil {
		return nil
	}
	return c.Block.Statements
}

// Text returns the scalar text of the value; arrays yield "".
func (v *Value) Text() string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		return *v.Number
	case v.Color != nil:
		return *v.Color
	case v.Ident != nil:
		return *v.Ident
	default:
		return ""
	}
}

// Strings flattens an array into strings; a scalar counts as a one-element array.
func (v *Value) Strings() []string {
	if v == nil {
		return nil
	}
	if v.Array == nil {
		if s := v.Text(); s != "" {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(v.Array.Values))
	for _, item := range v.Array.Values {
		if s := item.Text(); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Bool treats true/yes/on as true.
func (v *Value) Bool() bool {
	switch strings.ToLower(v.Text()) {
	case "true", "yes", "on":
		return true
	}
	return false
}

func (l *Lexeme) String() string { return l.Value }

// IsNumber reports whether the lexeme is a number, optionally with a unit.
func (l *Lexeme) IsNumber() bool { return l.Type == "Number" }
