package layout

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultMaxChars 是每行字符预算的默认值。
const DefaultMaxChars = 30

const (
	spaceClass    = `[\s\v\p{Z}\x{FEFF}]`
	trailingClass = `[.,;:!?»)}\]"']`
	leadingClass  = `[«({\["']`
)

var (
	tokenPattern    = regexp.MustCompile(spaceClass + `+|` + trailingClass + `+|` + leadingClass + `+`)
	spacePattern    = regexp.MustCompile(`^` + spaceClass + `+$`)
	trailingPattern = regexp.MustCompile(`^` + trailingClass + `+$`)
	leadingPattern  = regexp.MustCompile(`^` + leadingClass + `+$`)
)

// Measurer 返回文本在当前字体状态下的像素宽度。
type Measurer interface {
	MeasureText(text string) (float64, error)
}

// MeasureFunc adapts a plain function to Measurer.
type MeasureFunc func(text string) (float64, error)

func (f MeasureFunc) MeasureText(text string) (float64, error) { return f(text) }

// Tokenize 将文本切分为空白、后附标点、前附标点与普通单词，拼接结果与原文完全一致。
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	var tokens []string
	last := 0
	for _, loc := range tokenPattern.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			tokens = append(tokens, text[last:loc[0]])
		}
		tokens = append(tokens, text[loc[0]:loc[1]])
		last = loc[1]
	}
	if last < len(text) {
		tokens = append(tokens, text[last:])
	}
	return tokens
}

func isSpace(token string) bool    { return spacePattern.MatchString(token) }
func isTrailing(token string) bool { return trailingPattern.MatchString(token) }
func isLeading(token string) bool  { return leadingPattern.MatchString(token) }

func runeCount(s string) int { return utf8.RuneCountInString(s) }

func trimSpace(s string) string {
	return strings.TrimFunc(s, func(r rune) bool { return isSpace(string(r)) })
}

// Wrap 按像素宽度与每行字符数折行。
// 单个超宽 token 整体独占一行，不在词内拆分；结果至少包含一个元素。
func Wrap(text string, maxWidth float64, maxChars int, m Measurer) ([]string, error) {
	if text == "" {
		return []string{""}, nil
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	tokens := Tokenize(text)
	var lines []string
	current := ""
	count := 0

	// 行按原样提交，行尾空白保留，只跳过全空白的行
	commit := func() {
		if trimSpace(current) != "" {
			lines = append(lines, current)
		}
	}

	for i := 0; i < len(tokens); i++ {
		token := tokens[i]
		space := isSpace(token)
		if space && current == "" {
			continue
		}

		// 句末标点与闭合括号始终粘在前一个词上
		if isTrailing(token) && current != "" {
			current += token
			count += runeCount(token)
			continue
		}

		// 开括号与开引号尽量与后一个 token 同行
		if isLeading(token) && i+1 < len(tokens) {
			unit := token + tokens[i+1]
			width, err := m.MeasureText(current + unit)
			if err != nil {
				return nil, err
			}
			if next := count + runeCount(unit); width <= maxWidth && next <= maxChars {
				current += unit
				count = next
				i++
				continue
			}
		}

		candidate := current + token
		width, err := m.MeasureText(candidate)
		if err != nil {
			return nil, err
		}
		next := count + runeCount(token)
		if width > maxWidth || (!space && next > maxChars) {
			commit()
			if space {
				current = ""
			} else {
				current = token
			}
			count = runeCount(trimSpace(token))
			continue
		}
		current = candidate
		count = next
	}
	commit()

	if len(lines) == 0 {
		return []string{""}, nil
	}
	return lines, nil
}
