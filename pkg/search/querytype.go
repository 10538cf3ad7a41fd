// ABOUTME: Query classification for routing search requests
// ABOUTME: Section numbers and detail codes bypass full-text ranking

package search

import (
	"net/url"
	"regexp"
	"strings"
)

// QueryType classifies a raw search query.
type QueryType string

const (
	// QuerySection is a COP section number like "4.3.2".
	QuerySection QueryType = "section"
	// QueryCode is a detail code like "F07" or "V3".
	QueryCode QueryType = "code"
	// QueryText is anything else and gets full-text ranking.
	QueryText QueryType = "text"
)

var sectionQueryRe = regexp.MustCompile(`^\d+\.\d+(\.\d+)?$`)

var codeQueryRe = regexp.MustCompile(`^[A-Za-z]\d{1,3}$`)

// DetectQueryType reports how a query should be routed: straight to a
// section, to an exact code lookup, or into ranked text search.
func DetectQueryType(query string) QueryType {
	trimmed := strings.TrimSpace(query)
	if sectionQueryRe.MatchString(trimmed) {
		return QuerySection
	}
	if codeQueryRe.MatchString(trimmed) {
		return QueryCode
	}
	return QueryText
}

// SectionNavigationURL builds the navigation target for a section
// number query against the authoritative COP source.
func SectionNavigationURL(sectionNumber string) string {
	normalized := strings.TrimSpace(sectionNumber)
	return "/search?q=" + url.QueryEscape(normalized) + "&source=mrm-cop"
}
