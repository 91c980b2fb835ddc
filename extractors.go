package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
)

// extractedTable is what an HTML export gives back: table attributes and
// one field map per row.
type extractedTable struct {
	kind      string
	name      string
	listUUID  string
	createdAt string
	rows      []extractedRow
}

type extractedRow struct {
	id     string
	fields map[string]string
}

// extractHTMLTable reads the first skymarks table of an HTML export. Rows
// without a UUID (hand-written files) get a fresh one.
func extractHTMLTable(path string) (extractedTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return extractedTable{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return extractedTable{}, fmt.Errorf("parse %s: %w", path, err)
	}

	tbl := doc.Find("table.skymarks").First()
	if tbl.Length() == 0 {
		return extractedTable{}, fmt.Errorf("%s: no exported table: %w", path, ErrUnknownFormat)
	}

	out := extractedTable{
		kind:      tbl.AttrOr("data-kind", ""),
		name:      strings.TrimSpace(tbl.AttrOr("data-name", "")),
		listUUID:  tbl.AttrOr("data-list-uuid", ""),
		createdAt: tbl.AttrOr("data-created", ""),
	}
	if out.name == "" {
		out.name = strings.TrimSpace(doc.Find("title").First().Text())
	}

	tbl.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		fields := map[string]string{}
		tr.Find("td[data-key]").Each(func(_ int, td *goquery.Selection) {
			key, _ := td.Attr("data-key")
			fields[key] = strings.TrimSpace(td.Text())
		})
		if len(fields) == 0 {
			return
		}
		id := strings.TrimSpace(tr.AttrOr("data-uuid", ""))
		if id == "" {
			id = uuid.NewString()
		}
		out.rows = append(out.rows, extractedRow{id: id, fields: fields})
	})

	return out, nil
}
