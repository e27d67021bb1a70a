package dsl

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// 模板语法：
//
//	legenda Promo v1 {
//	  size: 64px
//	  style weight light { color: #fff }
//	  format story
//	  text { "Olá, ${cliente.nome}!" }
//	}
//
// 注释使用 // 或 /* */；# 只用于颜色。
var (
	captionLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Comment", Pattern: `//[^\n]*|/\*(?:[^*]|\*+[^*/])*\*+/`},
		{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
		{Name: "Color", Pattern: `#[0-9A-Fa-f]{6}\b|#[0-9A-Fa-f]{3}\b`},
		{Name: "Number", Pattern: `\d+(?:\.\d+)?(?:px|pt|%)?`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Punct", Pattern: `[{}\[\]:;,]`},
		{Name: "EOL", Pattern: `\n+`},
		{Name: "Space", Pattern: `[ \t\r]+`},
	})

	// argKinds 列出可以作为命令参数的 token 类型
	argKinds = func() map[lexer.TokenType]string {
		symbols := captionLexer.Symbols()
		kinds := make(map[lexer.TokenType]string, 4)
		for _, name := range []string{"String", "Color", "Number", "Ident"} {
			kinds[symbols[name]] = name
		}
		return kinds
	}()

	templateParser = participle.MustBuild[Document](
		participle.Lexer(captionLexer),
		participle.Elide("Space", "Comment"),
	)
)

// Document 是一个模板文件的根节点。
type Document struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Name    string         `parser:"EOL* 'legenda' @Ident"`
	Version string         `parser:"@Ident"`
	Body    *Block         `parser:"@@ EOL*"`
}

type Block struct {
	Statements []*Statement `parser:"'{' EOL* ( @@ ( ';' | EOL )* )* '}'"`
}

// Statement 为块中的一条语句：属性、命令或裸文本。
type Statement struct {
	Property *Property `parser:"  @@"`
	Command  *Command  `parser:"| @@"`
	Text     *Literal  `parser:"| @@"`
}

// Property 形如 key: value。
type Property struct {
	Key   string `parser:"@Ident ':' EOL*"`
	Value *Value `parser:"@@"`
}

// Command 形如 name arg arg ... { ... }，块可省略。
type Command struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Name  string         `parser:"@Ident"`
	Args  []*Arg         `parser:"@@*"`
	Block *Block         `parser:"( EOL* @@ )?"`
}

type Literal struct {
	Value StringLiteral `parser:"@String"`
}

// Value 为属性取值。
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	List   *List          `parser:"| @@"`
	Ident  *string        `parser:"| @Ident"`
}

// List 允许逗号、分号或换行分隔。
type List struct {
	Items []*Value `parser:"'[' EOL* ( @@ ( ( ',' | ';' | EOL ) EOL* @@ )* )? EOL* ']'"`
}

// Arg 是命令的一个参数。Kind 为 String、Color、Number 或 Ident；
// 字符串参数的 Value 已去掉引号，Raw 保留源码原文。
type Arg struct {
	Kind  string         `json:"kind"`
	Value string         `json:"value"`
	Raw   string         `json:"raw"`
	Pos   lexer.Position `json:"-"`
}

// Parse 只接受参数类 token，遇到标点、换行或文件结尾即结束参数列表。
func (a *Arg) Parse(lex *lexer.PeekingLexer) error {
	tok := lex.Peek()
	kind, ok := argKinds[tok.Type]
	if !ok {
		return participle.NextMatch
	}
	lex.Next()

	value := tok.Value
	if kind == "String" {
		s, err := unquote(tok.Value)
		if err != nil {
			return participle.Errorf(tok.Pos, "%v", err)
		}
		value = s
	}
	*a = Arg{Kind: kind, Value: value, Raw: tok.Value, Pos: tok.Pos}
	return nil
}

type StringLiteral string

func (s *StringLiteral) Capture(values []string) error {
	if len(values) != 1 {
		return fmt.Errorf("字符串字面量应只有一个取值，实际 %d", len(values))
	}
	v, err := unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(v)
	return nil
}

func unquote(raw string) (string, error) {
	v, err := strconv.Unquote(raw)
	if err != nil {
		return "", fmt.Errorf("无效的字符串 %s: %w", raw, err)
	}
	return v, nil
}

// Parse 从 r 读取并解析模板。
func Parse(r io.Reader) (*Document, error) {
	return templateParser.Parse("", r)
}

func ParseString(input string) (*Document, error) {
	return templateParser.ParseString("", input)
}

// ParseFile 解析模板文件，错误信息中带有文件名与行列号。
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return templateParser.Parse(path, f)
}
