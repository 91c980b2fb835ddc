package main

import (
	"fmt"
	"html"
	"maps"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/bubbles/table"
)

type exchangeFormat int

const (
	formatJSON exchangeFormat = iota
	formatHTML
)

func formatFor(path string) (exchangeFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return formatJSON, nil
	case ".html", ".htm":
		return formatHTML, nil
	default:
		return 0, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
}

// cell is one exported value. key names the JSON field it came from so an
// HTML export can be read back.
type cell struct {
	key   string
	value string
}

func bookmarkCells(rec BookmarkRecord) []cell {
	return []cell{
		{"name", rec.Name},
		{"jd", rec.JD},
		{"latitude", rec.Latitude},
		{"longitude", rec.Longitude},
	}
}

func bookmarkFromCells(fields map[string]string) BookmarkRecord {
	return BookmarkRecord{
		Name:      fields["name"],
		JD:        fields["jd"],
		Latitude:  fields["latitude"],
		Longitude: fields["longitude"],
	}
}

var obsListHTMLHeaders = []string{
	"Object name", "Localized name", "Type", "Right ascension", "Declination",
	"Magnitude", "Constellation", "Date and time", "Location", "Field of view", "Marker",
}

func obsListCells(rec ObservingListRecord) []cell {
	fov := ""
	if rec.FOV > 0 {
		fov = formatNumber(rec.FOV)
	}
	marker := ""
	if rec.IsVisibleMarker {
		marker = "true"
	}
	return []cell{
		{"name", rec.Name},
		{"nameI18n", rec.NameI18n},
		{"type", rec.Type},
		{"ra", rec.RA},
		{"dec", rec.Dec},
		{"magnitude", rec.Magnitude},
		{"constellation", rec.Constellation},
		{"jd", rec.JD},
		{"location", rec.Location},
		{"fov", fov},
		{"isVisibleMarker", marker},
	}
}

func obsListFromCells(fields map[string]string) ObservingListRecord {
	rec := ObservingListRecord{
		Name:          fields["name"],
		NameI18n:      fields["nameI18n"],
		Type:          fields["type"],
		RA:            fields["ra"],
		Dec:           fields["dec"],
		Magnitude:     fields["magnitude"],
		Constellation: fields["constellation"],
		JD:            fields["jd"],
		Location:      fields["location"],
	}
	if fov, err := strconv.ParseFloat(fields["fov"], 64); err == nil {
		rec.FOV = fov
	}
	rec.IsVisibleMarker, _ = strconv.ParseBool(fields["isVisibleMarker"])
	return rec.normalized()
}

func exportBookmarks(path string, cols []table.Column, records map[string]BookmarkRecord, rows []table.Row) error {
	format, err := formatFor(path)
	if err != nil {
		return err
	}
	if format == formatJSON {
		return writeJSONFile(path, bookmarksDocument{bookmarksRootKey: records})
	}

	headers := make([]string, 0, len(cols))
	for _, col := range cols[1:] {
		headers = append(headers, col.Title)
	}
	// Rows follow the on-screen order.
	body := make([]htmlRow, 0, len(rows))
	for _, row := range rows {
		id := row[uuidColumn]
		body = append(body, htmlRow{id: id, cells: bookmarkCells(records[id])})
	}
	page, err := renderHTMLTable(htmlTable{
		title:   "Bookmarked locations",
		kind:    "bookmarks",
		headers: headers,
		rows:    body,
	})
	if err != nil {
		return err
	}
	return writeFileReplace(path, []byte(page))
}

func exportObsList(path, name string, doc obsListDocument, t *recordTable) error {
	format, err := formatFor(path)
	if err != nil {
		return err
	}
	if format == formatJSON {
		return writeJSONFile(path, map[string]obsListDocument{name: doc})
	}

	body := make([]htmlRow, 0, t.count())
	for _, row := range t.Rows() {
		id := row[uuidColumn]
		body = append(body, htmlRow{id: id, cells: obsListCells(doc.Records[id])})
	}
	page, err := renderHTMLTable(htmlTable{
		title:     name,
		kind:      "observing-list",
		listUUID:  doc.UUID,
		createdAt: doc.CreatedAt,
		headers:   obsListHTMLHeaders,
		rows:      body,
	})
	if err != nil {
		return err
	}
	return writeFileReplace(path, []byte(page))
}

type htmlRow struct {
	id    string
	cells []cell
}

type htmlTable struct {
	title     string
	kind      string
	listUUID  string
	createdAt string
	headers   []string
	rows      []htmlRow
}

const htmlSkeleton = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title></title></head>
<body><h1></h1><table class="skymarks"><thead><tr></tr></thead><tbody></tbody></table></body></html>`

// renderHTMLTable fills the skeleton page through goquery. Each cell carries
// a data-key attribute and each row its UUID, which is what the importer reads.
func renderHTMLTable(t htmlTable) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlSkeleton))
	if err != nil {
		return "", err
	}
	doc.Find("title").SetText(t.title)
	doc.Find("h1").SetText(t.title)

	tbl := doc.Find("table.skymarks")
	tbl.SetAttr("data-kind", t.kind)
	tbl.SetAttr("data-name", t.title)
	if t.listUUID != "" {
		tbl.SetAttr("data-list-uuid", t.listUUID)
	}
	if t.createdAt != "" {
		tbl.SetAttr("data-created", t.createdAt)
	}

	var head strings.Builder
	for _, h := range t.headers {
		head.WriteString("<th>" + html.EscapeString(h) + "</th>")
	}
	tbl.Find("thead tr").AppendHtml(head.String())

	var body strings.Builder
	for _, row := range t.rows {
		body.WriteString(`<tr data-uuid="` + html.EscapeString(row.id) + `">`)
		for _, c := range row.cells {
			body.WriteString(`<td data-key="` + c.key + `">` + html.EscapeString(c.value) + "</td>")
		}
		body.WriteString("</tr>\n")
	}
	tbl.Find("tbody").AppendHtml(body.String())

	return doc.Html()
}

func importBookmarks(path string) (map[string]BookmarkRecord, error) {
	format, err := formatFor(path)
	if err != nil {
		return nil, err
	}
	if format == formatJSON {
		return readBookmarksFile(path)
	}

	page, err := extractHTMLTable(path)
	if err != nil {
		return nil, err
	}
	if page.kind != "" && page.kind != "bookmarks" {
		return nil, fmt.Errorf("%s holds %s, not bookmarks: %w", path, page.kind, ErrUnknownFormat)
	}
	records := make(map[string]BookmarkRecord, len(page.rows))
	for _, row := range page.rows {
		records[row.id] = bookmarkFromCells(row.fields)
	}
	return records, nil
}

// importObsList reads one list from an export. With several lists in a JSON
// file, the one named preferred wins, otherwise the first name in order.
func importObsList(path, preferred string) (string, obsListDocument, error) {
	format, err := formatFor(path)
	if err != nil {
		return "", obsListDocument{}, err
	}

	if format == formatHTML {
		page, err := extractHTMLTable(path)
		if err != nil {
			return "", obsListDocument{}, err
		}
		if page.kind != "" && page.kind != "observing-list" {
			return "", obsListDocument{}, fmt.Errorf("%s holds %s, not an observing list: %w", path, page.kind, ErrUnknownFormat)
		}
		doc := obsListDocument{
			UUID:      page.listUUID,
			CreatedAt: page.createdAt,
			Records:   make(map[string]ObservingListRecord, len(page.rows)),
		}
		for _, row := range page.rows {
			doc.Records[row.id] = obsListFromCells(row.fields)
		}
		return page.name, doc, nil
	}

	lists, err := readObsListFile(path)
	if err != nil {
		return "", obsListDocument{}, err
	}
	if len(lists) == 0 {
		return "", obsListDocument{}, fmt.Errorf("%s: no observing list: %w", path, ErrNotFound)
	}
	name := preferred
	if _, ok := lists[name]; !ok {
		name = slices.Sorted(maps.Keys(lists))[0]
	}
	var doc obsListDocument
	if err := doc.UnmarshalJSON(lists[name]); err != nil {
		return "", obsListDocument{}, fmt.Errorf("decode observing list %q: %w", name, err)
	}
	return name, doc, nil
}
