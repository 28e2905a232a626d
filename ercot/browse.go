package ercot

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

type rowState int

const (
	outsideRow rowState = iota
	inHeaderRow
	inDataRow
)

// Browse holds one parsed HTML price table: the header names and the
// data rows, in document order.
type Browse struct {
	ColNames []string
	Rows     [][]string
}

// ParseTable walks the markup with a small explicit state machine instead
// of shared mutable counters: a row is either a header row or a data row,
// and cell text only counts while inside a cell.
func ParseTable(r io.Reader) (*Browse, error) {
	b := &Browse{}
	tok := html.NewTokenizer(r)

	state := outsideRow
	inCell := false
	var currow []string

	for {
		switch tok.Next() {
		case html.ErrorToken:
			if tok.Err() == io.EOF {
				return b, nil
			}
			return nil, tok.Err()

		case html.StartTagToken:
			name, _ := tok.TagName()
			switch string(name) {
			case "tr":
				state = inDataRow
				currow = nil
			case "th":
				if state != outsideRow {
					state = inHeaderRow
					inCell = true
				}
			case "td":
				if state != outsideRow {
					state = inDataRow
					inCell = true
				}
			}

		case html.EndTagToken:
			name, _ := tok.TagName()
			switch string(name) {
			case "tr":
				if state == inDataRow && len(currow) > 0 {
					b.Rows = append(b.Rows, currow)
				}
				state = outsideRow
				inCell = false
			case "th", "td":
				inCell = false
			}

		case html.TextToken:
			if !inCell {
				continue
			}
			text := strings.TrimSpace(string(tok.Text()))
			if text == "" {
				continue
			}
			if state == inHeaderRow {
				b.ColNames = append(b.ColNames, text)
			} else {
				currow = append(currow, text)
			}
		}
	}
}
