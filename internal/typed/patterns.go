package typed

import (
	"github.com/ril-lang/ril/internal/token"
	"github.com/ril-lang/ril/internal/typesystem"
)

// Pattern is a checked match pattern. Bind sites carry the type of the
// sub-value they capture so codegen can size the local.
type Pattern interface {
	GetToken() token.Token
	patternNode()
}

type WildcardPat struct {
	Token token.Token
}

func (p *WildcardPat) patternNode()          {}
func (p *WildcardPat) GetToken() token.Token { return p.Token }

type BindPat struct {
	Token token.Token
	Name  string
	Typ   typesystem.Type
}

func (p *BindPat) patternNode()          {}
func (p *BindPat) GetToken() token.Token { return p.Token }

// LiteralPat matches one literal value of the scrutinee's type.
type LiteralPat struct {
	Token token.Token
	Value Expr
}

func (p *LiteralPat) patternNode()          {}
func (p *LiteralPat) GetToken() token.Token { return p.Token }

type SomePat struct {
	Token token.Token
	Inner Pattern
	Elem  typesystem.Type
}

func (p *SomePat) patternNode()          {}
func (p *SomePat) GetToken() token.Token { return p.Token }

type NonePat struct {
	Token token.Token
}

func (p *NonePat) patternNode()          {}
func (p *NonePat) GetToken() token.Token { return p.Token }

type EmptyListPat struct {
	Token token.Token
}

func (p *EmptyListPat) patternNode()          {}
func (p *EmptyListPat) GetToken() token.Token { return p.Token }

type ConsPat struct {
	Token token.Token
	Head  Pattern
	Tail  Pattern
	Elem  typesystem.Type
}

func (p *ConsPat) patternNode()          {}
func (p *ConsPat) GetToken() token.Token { return p.Token }

type ExactListPat struct {
	Token token.Token
	Elems []Pattern
	Elem  typesystem.Type
}

func (p *ExactListPat) patternNode()          {}
func (p *ExactListPat) GetToken() token.Token { return p.Token }

// RecordFieldPat pairs a declaration-order field index with its sub-pattern.
type RecordFieldPat struct {
	Index   int
	Pattern Pattern
}

type RecordPat struct {
	Token  token.Token
	Rec    typesystem.TRecord
	Fields []RecordFieldPat
}

func (p *RecordPat) patternNode()          {}
func (p *RecordPat) GetToken() token.Token { return p.Token }
