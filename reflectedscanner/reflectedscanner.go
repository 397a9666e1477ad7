package reflectedscanner

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	ContextScript    = "script"
	ContextStyle     = "style"
	ContextAttribute = "attribute"
	ContextComment   = "comment"
	ContextText      = "text"
	// ContextMarkup means the marker is in the raw body but the HTML parser
	// consumed it as syntax (a reflected "<" usually opens a tag).
	ContextMarkup = "markup"
)

var contextOrder = []string{ContextScript, ContextStyle, ContextAttribute, ContextComment, ContextText, ContextMarkup}

// CheckBodyForReflection is a case-sensitive substring match, nothing more.
func CheckBodyForReflection(body, expected string) bool {
	return expected != "" && strings.Contains(body, expected)
}

// ReflectionContexts reports where in the parsed document the expected string
// shows up. It only describes a reflection already found by
// CheckBodyForReflection.
func ReflectionContexts(body, expected string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return []string{ContextMarkup}
	}

	found := make(map[string]bool)

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		for _, attr := range s.Nodes[0].Attr {
			if strings.Contains(attr.Val, expected) || strings.Contains(attr.Key, expected) {
				found[ContextAttribute] = true
			}
		}
	})

	doc.Find("*").Contents().Each(func(_ int, s *goquery.Selection) {
		node := s.Nodes[0]
		if !strings.Contains(node.Data, expected) {
			return
		}

		switch node.Type {
		case html.CommentNode:
			found[ContextComment] = true
		case html.TextNode:
			switch node.Parent.Data {
			case "script":
				found[ContextScript] = true
			case "style":
				found[ContextStyle] = true
			default:
				found[ContextText] = true
			}
		}
	})

	var contexts []string
	for _, context := range contextOrder {
		if found[context] {
			contexts = append(contexts, context)
		}
	}
	if len(contexts) == 0 {
		contexts = append(contexts, ContextMarkup)
	}

	return contexts
}
