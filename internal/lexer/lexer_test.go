package lexer

import (
	"strings"
	"testing"

	"github.com/curria-lang/curria/internal/errs"
	"github.com/curria-lang/curria/internal/token"
)

func collectKinds(t *testing.T, input string) ([]token.Kind, *errs.Sink) {
	t.Helper()
	sink := errs.NewSink(input, "test.cur")
	l := New(input, sink)
	var kinds []token.Kind
	for {
		tok := l.Next()
		kinds = append(kinds, tok.Kind)
		if tok.Kind == token.EOF {
			break
		}
	}
	return kinds, sink
}

func TestLexIdentifiersKeywordsBooleans(t *testing.T) {
	kinds, sink := collectKinds(t, "if else while foo true false")
	want := []token.Kind{token.IF, token.ELSE, token.WHILE, token.IDENT, token.TRUE, token.FALSE, token.EOF}
	if len(kinds) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(kinds), len(want), kinds)
	}
	for i, k := range want {
		if kinds[i] != k {
			t.Errorf("token %d: got %s, want %s", i, kinds[i], k)
		}
	}
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %s", sink.Format())
	}
}

func TestLexOperators(t *testing.T) {
	input := "== != >= <= && || -> = > < ! + - * / ^"
	kinds, sink := collectKinds(t, input)
	want := []token.Kind{
		token.EQ, token.NOT_EQ, token.GT_EQ, token.LT_EQ, token.AND, token.OR, token.ARROW,
		token.ASSIGN, token.GT, token.LT, token.NOT, token.PLUS, token.MINUS, token.STAR, token.SLASH, token.CARET,
		token.EOF,
	}
	if len(kinds) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(kinds), len(want), kinds)
	}
	for i, k := range want {
		if kinds[i] != k {
			t.Errorf("token %d: got %s, want %s", i, kinds[i], k)
		}
	}
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %s", sink.Format())
	}
}

func TestLexInteger(t *testing.T) {
	sink := errs.NewSink("42", "")
	l := New("42", sink)
	tok := l.Next()
	if tok.Kind != token.INT || tok.Value.(int64) != 42 {
		t.Fatalf("got %v %v, want INT 42", tok.Kind, tok.Value)
	}
}

func TestLexFloat(t *testing.T) {
	sink := errs.NewSink("3.25", "")
	l := New("3.25", sink)
	tok := l.Next()
	if tok.Kind != token.FLOAT {
		t.Fatalf("got %v, want FLOAT", tok.Kind)
	}
	if tok.Value.(float64) != 3.25 {
		t.Fatalf("got %v, want 3.25", tok.Value)
	}
}

func TestLexCurrencyAfterInt(t *testing.T) {
	sink := errs.NewSink("100USD", "")
	l := New("100USD", sink)
	tok := l.Next()
	if tok.Kind != token.CURR {
		t.Fatalf("got %v, want CURR", tok.Kind)
	}
	if tok.Value.(string) != "100USD" {
		t.Fatalf("got %q, want %q", tok.Value, "100USD")
	}
}

func TestLexCurrencyAfterFloat(t *testing.T) {
	sink := errs.NewSink("19.99EUR", "")
	l := New("19.99EUR", sink)
	tok := l.Next()
	if tok.Kind != token.CURR {
		t.Fatalf("got %v, want CURR", tok.Kind)
	}
	if tok.Value.(string) != "19.99EUR" {
		t.Fatalf("got %q, want %q", tok.Value, "19.99EUR")
	}
}

func TestLexBareCurrencyCodeIsIdentifier(t *testing.T) {
	sink := errs.NewSink("EUR", "")
	l := New("EUR", sink)
	tok := l.Next()
	if tok.Kind != token.IDENT {
		t.Fatalf("got %v, want IDENT (bare currency codes are not CURR tokens)", tok.Kind)
	}
	if tok.Value.(string) != "EUR" {
		t.Fatalf("got %q, want %q", tok.Value, "EUR")
	}
}

func TestLexIntegerOverflow(t *testing.T) {
	input := "99999999999999999999999"
	sink := errs.NewSink(input, "")
	l := New(input, sink)
	tok := l.Next()
	if tok.Kind != token.ERROR {
		t.Fatalf("got %v, want ERROR on overflow", tok.Kind)
	}
	if !sink.HasErrors() {
		t.Fatal("expected an overflow diagnostic")
	}
	if sink.Diagnostics()[0].Kind != errs.KindOverflow {
		t.Errorf("got kind %v, want KindOverflow", sink.Diagnostics()[0].Kind)
	}
}

func TestLexIntegerBoundaryDoesNotOverflow(t *testing.T) {
	input := "9223372036854775807" // math.MaxInt64
	sink := errs.NewSink(input, "")
	l := New(input, sink)
	tok := l.Next()
	if tok.Kind != token.INT {
		t.Fatalf("got %v, want INT at the int64 boundary", tok.Kind)
	}
	if sink.HasErrors() {
		t.Fatalf("unexpected errors at boundary: %s", sink.Format())
	}
}

func TestLexString(t *testing.T) {
	sink := errs.NewSink(`'hello'`, "")
	l := New(`'hello'`, sink)
	tok := l.Next()
	if tok.Kind != token.STR {
		t.Fatalf("got %v, want STR", tok.Kind)
	}
	if string(tok.Value.([]byte)) != "hello" {
		t.Fatalf("got %q, want %q", tok.Value, "hello")
	}
}

func TestLexStringEscapes(t *testing.T) {
	sink := errs.NewSink(`'a\nb\tc\\d'`, "")
	l := New(`'a\nb\tc\\d'`, sink)
	tok := l.Next()
	if tok.Kind != token.STR {
		t.Fatalf("got %v, want STR", tok.Kind)
	}
	want := "a\nb\tc\\d"
	if string(tok.Value.([]byte)) != want {
		t.Fatalf("got %q, want %q", tok.Value, want)
	}
}

func TestLexUnterminatedString(t *testing.T) {
	sink := errs.NewSink(`'oops`, "")
	l := New(`'oops`, sink)
	tok := l.Next()
	if tok.Kind != token.ERROR {
		t.Fatalf("got %v, want ERROR", tok.Kind)
	}
	if !sink.HasErrors() || sink.Diagnostics()[0].Kind != errs.KindInfiniteString {
		t.Fatalf("expected KindInfiniteString diagnostic, got %v", sink.Diagnostics())
	}
}

func TestLexComment(t *testing.T) {
	sink := errs.NewSink("# a comment\n42", "")
	l := New("# a comment\n42", sink)
	tok := l.Next()
	if tok.Kind != token.COMMENT {
		t.Fatalf("got %v, want COMMENT", tok.Kind)
	}
	tok = l.Next()
	if tok.Kind != token.INT {
		t.Fatalf("got %v, want INT after comment", tok.Kind)
	}
}

func TestLexOverlongIdentifierStillEmitsIdent(t *testing.T) {
	name := strings.Repeat("a", 300)
	sink := errs.NewSink(name, "")
	l := New(name, sink)
	tok := l.Next()
	if tok.Kind != token.IDENT {
		t.Fatalf("got %v, want IDENT (a truncated identifier must still be usable as one)", tok.Kind)
	}
	if tok.Value.(string) != name[:255] {
		t.Fatalf("expected the truncated 255-byte prefix as the token value, got %d bytes", len(tok.Value.(string)))
	}
	if !sink.HasErrors() || sink.Diagnostics()[0].Kind != errs.KindNameTooLong {
		t.Fatalf("expected KindNameTooLong diagnostic, got %v", sink.Diagnostics())
	}
}

func TestLexOverlongIdentifierThatIsAKeywordPrefixStaysIdent(t *testing.T) {
	// A truncated run can't coincide with any real keyword (they're all
	// short), so it must always fall back to IDENT.
	name := strings.Repeat("w", 300)
	sink := errs.NewSink(name, "")
	l := New(name, sink)
	tok := l.Next()
	if tok.Kind != token.IDENT {
		t.Fatalf("got %v, want IDENT", tok.Kind)
	}
}

func TestLexUnknownCharacter(t *testing.T) {
	sink := errs.NewSink("@", "")
	l := New("@", sink)
	tok := l.Next()
	if tok.Kind != token.ERROR {
		t.Fatalf("got %v, want ERROR", tok.Kind)
	}
	if !sink.HasErrors() || sink.Diagnostics()[0].Kind != errs.KindUnknownToken {
		t.Fatalf("expected KindUnknownToken diagnostic, got %v", sink.Diagnostics())
	}
}

func TestLexPositionTracking(t *testing.T) {
	input := "a\nbb ccc"
	sink := errs.NewSink(input, "")
	l := New(input, sink)

	tok := l.Next() // "a" at line 1, col 1
	if tok.Pos.Line != 1 || tok.Pos.Column != 1 {
		t.Errorf("token 'a' position = %v, want 1:1", tok.Pos)
	}
	tok = l.Next() // "bb" at line 2, col 1
	if tok.Pos.Line != 2 || tok.Pos.Column != 1 {
		t.Errorf("token 'bb' position = %v, want 2:1", tok.Pos)
	}
	tok = l.Next() // "ccc" at line 2, col 4
	if tok.Pos.Line != 2 || tok.Pos.Column != 4 {
		t.Errorf("token 'ccc' position = %v, want 2:4", tok.Pos)
	}
}

func TestLexCRLFNewline(t *testing.T) {
	input := "a\r\nb"
	sink := errs.NewSink(input, "")
	l := New(input, sink)
	l.Next() // a
	tok := l.Next()
	if tok.Pos.Line != 2 {
		t.Errorf("after CRLF, line = %d, want 2", tok.Pos.Line)
	}
}

func TestLexAmpersandAlonePairsOnlyAsAnd(t *testing.T) {
	sink := errs.NewSink("&", "")
	l := New("&", sink)
	tok := l.Next()
	if tok.Kind != token.ERROR {
		t.Fatalf("got %v, want ERROR for a lone '&'", tok.Kind)
	}
	if !sink.HasErrors() {
		t.Fatal("expected a diagnostic for a lone '&'")
	}
}
