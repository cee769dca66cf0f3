package timetable

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	facultyIDRe = regexp.MustCompile(`fak=(\d+)`)
	hasDigitRe  = regexp.MustCompile(`\d`)
)

// ParseFaculties extracts faculty name -> ID pairs from the landing page.
// Anchors without a recognizable fak parameter are skipped and a duplicate
// name overwrites the earlier entry. An empty map means the layout was not
// recognized or the page is empty; callers treat that as "no data", not an
// error.
func ParseFaculties(page []byte) (map[string]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse faculty index: %w", err)
	}

	faculties := make(map[string]string)
	doc.Find("div.col-md-4 a.btn, div.col-md-3 a.btn").Each(func(_ int, link *goquery.Selection) {
		name := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		if name == "" || href == "" {
			return
		}
		if m := facultyIDRe.FindStringSubmatch(href); m != nil {
			faculties[name] = m[1]
		}
	})
	return faculties, nil
}

// ParseGroups extracts group names from a faculty page, sorted. Groups
// live in <h3> tags; a heading without a digit is not a group name.
func ParseGroups(page []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse faculty page: %w", err)
	}

	var groups []string
	doc.Find("h3").Each(func(_ int, tag *goquery.Selection) {
		name := strings.TrimSpace(tag.Text())
		if name != "" && hasDigitRe.MatchString(name) {
			groups = append(groups, name)
		}
	})
	sort.Strings(groups)
	return groups, nil
}
