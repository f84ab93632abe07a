package parsers

import (
	"bytes"
	"strings"

	"ltl-tracker/internal/features/tracking/classifier"
	"ltl-tracker/internal/features/tracking/domain"

	"github.com/PuerkitoBio/goquery"
)

const tabularConfidence = 0.8

// Tabular scans row-like structures for a row carrying both a status keyword
// and a date-like token. Carrier history tables list events oldest-first, so
// the last qualifying row is treated as the most recent.
type Tabular struct{}

// NewTabular builds the tabular parser.
func NewTabular() *Tabular {
	return &Tabular{}
}

// ID implements ports.Parser.
func (p *Tabular) ID() domain.ParserID {
	return domain.ParserTabular
}

// TryExtract implements ports.Parser.
func (p *Tabular) TryExtract(payload []byte, tn domain.TrackingNumber) (*domain.Extraction, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(payload))
	if err != nil {
		return nil, false
	}

	var best *domain.Extraction

	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		var cells []string
		row.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			if text := strings.TrimSpace(cell.Text()); text != "" {
				cells = append(cells, text)
			}
		})
		if len(cells) == 0 {
			return
		}
		rowText := strings.Join(cells, " ")

		keyword := findStatusKeyword(rowText)
		if keyword == "" {
			return
		}
		eventTime := findDateToken(rowText)
		if eventTime == nil {
			return
		}
		if classifier.LooksLikeCode(rowText) {
			return
		}

		status := statusCellText(cells, keyword)
		location := findLocation(rowText)
		if classifier.LooksLikeCode(status) || classifier.LooksLikeCode(location) {
			return
		}

		// Later rows overwrite earlier ones: last qualifying row wins.
		best = &domain.Extraction{
			StatusText: status,
			Location:   location,
			Event:      rowText,
			EventTime:  eventTime,
			Parser:     domain.ParserTabular,
			Confidence: tabularConfidence,
		}
	})

	if best == nil {
		return nil, false
	}
	return best, true
}

// statusCellText prefers the whole cell that carried the keyword, so
// "Delivered to consignee" survives instead of the bare keyword.
func statusCellText(cells []string, keyword string) string {
	for _, cell := range cells {
		if strings.Contains(strings.ToLower(cell), keyword) {
			return cell
		}
	}
	return keyword
}
