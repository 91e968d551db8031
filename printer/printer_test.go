package printer

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/mattn/go-runewidth"
	"github.com/robinvdvleuten/beancount-validate/ast"
	"github.com/robinvdvleuten/beancount-validate/parser"
	"github.com/robinvdvleuten/beancount-validate/validation"
)

func parse(t *testing.T, source string) *ast.AST {
	t.Helper()
	tree, err := parser.ParseString(context.Background(), source)
	assert.NoError(t, err)
	return tree
}

func TestEscapeString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "NoEscaping", input: "simple string", expected: "simple string"},
		{name: "DoubleQuote", input: `string with "quotes"`, expected: `string with \"quotes\"`},
		{name: "Backslash", input: `path\to\file`, expected: `path\\to\\file`},
		{name: "Whitespace", input: "a\tb\nc\r", expected: `a\tb\nc\r`},
		{name: "Empty", input: "", expected: ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, escapeString(test.input))
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("DefaultOptions", func(t *testing.T) {
		p := New()
		assert.Equal(t, 0, p.CurrencyColumn)
		assert.Equal(t, DefaultIndentation, p.Indentation)
	})

	t.Run("WithOptions", func(t *testing.T) {
		p := New(WithCurrencyColumn(60), WithIndentation(4))
		assert.Equal(t, 60, p.CurrencyColumn)
		assert.Equal(t, 4, p.Indentation)
	})
}

func TestPrintEntries(t *testing.T) {
	tree := parse(t, `option "title" "Test"

2024-01-02 * "Shop" "Groceries" #food
  Expenses:Food  10.00 USD
  Assets:Cash

2024-01-01 open Assets:Cash USD
2024-01-01 open Expenses:Food
`)

	var buf bytes.Buffer
	assert.NoError(t, New().PrintEntries(&buf, tree))

	expected := `option "title" "Test"

2024-01-01 open Assets:Cash USD
2024-01-01 open Expenses:Food

2024-01-02 * "Shop" "Groceries" #food
  Expenses:Food` + strings.Repeat(" ", 28) + `10.00 USD
  Assets:Cash
`
	assert.Equal(t, expected, buf.String())
}

func TestPrintEntriesEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, New().PrintEntries(&buf, &ast.AST{}))
	assert.Equal(t, "", buf.String())

	assert.Equal(t, "", New().String(nil))
}

func TestCurrencyColumn(t *testing.T) {
	t.Run("Derived", func(t *testing.T) {
		tree := parse(t, `2024-01-01 * "Long"
  Expenses:Some:Really:Long:Account:Name:That:Goes:On  1234567.89 USD
  Assets:Cash
`)
		out := New().String(tree)
		lines := strings.Split(out, "\n")
		// 2 + 51 account + 2 spacing + 14 amount
		assert.Equal(t, 69, runewidth.StringWidth(lines[1]))
	})

	t.Run("Fixed", func(t *testing.T) {
		tree := parse(t, `2024-01-01 balance Assets:Cash 10.00 USD
2024-01-01 price HOOL 5.00 USD
`)
		out := New(WithCurrencyColumn(45)).String(tree)
		for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
			if line == "" {
				continue
			}
			assert.Equal(t, 45, runewidth.StringWidth(line), "%q", line)
		}
	})

	t.Run("TooNarrow", func(t *testing.T) {
		tree := parse(t, `2024-01-01 balance Assets:Cash 10.00 USD
`)
		out := New(WithCurrencyColumn(10)).String(tree)
		assert.Equal(t, "2024-01-01 balance Assets:Cash  10.00 USD\n", out)
	})

	t.Run("WideCharacters", func(t *testing.T) {
		tree := parse(t, `2024-01-01 * "Lunch"
  Expenses:食費  12.00 JPY
  Assets:Cash  -12.00 JPY
`)
		out := New().String(tree)
		lines := strings.Split(out, "\n")
		assert.Equal(t, DefaultCurrencyColumn, runewidth.StringWidth(lines[1]))
		assert.Equal(t, DefaultCurrencyColumn, runewidth.StringWidth(lines[2]))
	})
}

func TestPrintCostAndPrice(t *testing.T) {
	tree := parse(t, `2024-01-15 * "Trade"
  Assets:Broker  10 HOOL {518.73 USD, 2024-01-10, "lot-1"}
  Assets:Broker  5 HOOL {{2500.00 USD}}
  Assets:Broker  1 HOOL {}
  Assets:Cash  200 EUR @ 1.35 USD
  Assets:Cash  100 EUR @@ 135.00 USD
  Assets:Cash
`)
	out := New(WithCurrencyColumn(30)).String(tree)

	assert.Contains(t, out, `10 HOOL {518.73 USD, 2024-01-10, "lot-1"}`)
	assert.Contains(t, out, "5 HOOL {{2500.00 USD}}")
	assert.Contains(t, out, "1 HOOL {}")
	assert.Contains(t, out, "200 EUR @ 1.35 USD")
	assert.Contains(t, out, "100 EUR @@ 135.00 USD")
	assert.True(t, strings.HasSuffix(out, "\n  Assets:Cash\n"))
}

func TestPrintMetadata(t *testing.T) {
	tree := parse(t, `2024-01-01 open Assets:Cash
  str: "say \"hi\""
  num: 42
  amt: 10.00 USD
  day: 2024-02-01
  flag: TRUE
  tg: #trip
  empty:
`)
	out := New().String(tree)

	expected := `2024-01-01 open Assets:Cash
  str: "say \"hi\""
  num: 42
  amt: 10.00 USD
  day: 2024-02-01
  flag: TRUE
  tg: #trip
  empty:
`
	assert.Equal(t, expected, out)
}

func TestPrintPostingMetadataAndFlags(t *testing.T) {
	tree := parse(t, `2024-01-01 ! "Pending" ^inv-1
  invoice: "INV-1"
  ! Expenses:Food  5 USD
    memo: "lunch"
  Assets:Cash
`)
	out := New(WithCurrencyColumn(30)).String(tree)

	expected := `2024-01-01 ! "Pending" ^inv-1
  invoice: "INV-1"
  ! Expenses:Food        5 USD
    memo: "lunch"
  Assets:Cash
`
	assert.Equal(t, expected, out)
	assert.Equal(t, expected, New(WithCurrencyColumn(30)).String(parse(t, out)))
}

func TestEntry(t *testing.T) {
	tree := parse(t, `2024-01-01 close Assets:Cash
`)
	assert.Equal(t, "2024-01-01 close Assets:Cash", New().Entry(tree.Directives[0]))
}

const roundTrip = `option "title" "Round \"trip\""
option "operating_currency" "USD"
plugin "beancount.plugins.check_commodity" "USD"
include "prices.beancount"

2024-01-01 open Assets:Cash USD,EUR "FIFO"
2024-01-01 open Assets:Broker
2024-01-01 open Equity:Opening
2024-01-01 open Expenses:Food
2024-01-01 commodity HOOL
  name: "Hooli"
2024-01-02 pad Assets:Cash Equity:Opening
2024-01-03 balance Assets:Cash 100.00 ~ 0.01 USD
2024-01-04 * "Cafe" "Lunch\twith\nfriends" #food ^r-1
  receipt: "r-1"
  Expenses:Food  12.50 USD
  Assets:Cash
2024-01-05 * "Buy"
  Assets:Broker  2 HOOL {50.00 USD}
  Assets:Cash  -100.00 USD
2024-01-06 note Assets:Cash "Called the bank"
2024-01-06 document Assets:Cash "/docs/statement.pdf"
2024-01-07 price HOOL 52.00 USD
2024-01-07 event "location" "Paris"
2024-12-31 close Expenses:Food
`

func TestRoundTrip(t *testing.T) {
	first := parse(t, roundTrip)
	printed := New().String(first)

	second := parse(t, printed)
	assert.Equal(t, printed, New().String(second), "printing is idempotent")

	assert.Equal(t, len(first.Directives), len(second.Directives))
	assert.Equal(t, first.Options.Lines()[0].Value, second.Options.Lines()[0].Value)
	assert.Equal(t, len(first.Plugins), len(second.Plugins))
	assert.Equal(t, len(first.Includes), len(second.Includes))

	for i := range first.Directives {
		assert.Equal(t, first.Directives[i].Kind(), second.Directives[i].Kind())
	}

	narration := func(tree *ast.AST) string {
		return ast.Transactions(tree.Directives)[0].Narration
	}
	assert.Equal(t, "Lunch\twith\nfriends", narration(second))
	assert.Equal(t, 1, strings.Count(printed, "receipt:"))
	assert.Equal(t, 1, len(ast.Transactions(second.Directives)[0].Metadata))
}

func TestRoundTripValidates(t *testing.T) {
	count := func(tree *ast.AST) int {
		n := 0
		for _, pass := range validation.Default() {
			n += len(pass.Exec(tree.Directives, tree.Options))
		}
		return n
	}

	first := parse(t, roundTrip)
	second := parse(t, New().String(first))
	assert.Equal(t, count(first), count(second))
	assert.Equal(t, 0, count(second))
}
