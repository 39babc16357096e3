// Package importer parses Netscape bookmark HTML exports into a folder
// tree that can be inserted under any folder of a places database.
package importer

import (
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Item is one entry of a parsed bookmark file: a folder with children, or
// a single bookmark.
type Item struct {
	Folder   bool
	Title    string
	URL      string
	AddDate  int64 // microseconds
	Children []Item
}

// pendingRef points at a folder item waiting for its DL. Kept as list and
// index so it survives reallocation of the slice it lives in.
type pendingRef struct {
	list *[]Item
	idx  int
}

// Parse reads Netscape bookmark HTML and returns the top-level items in
// document order.
func Parse(r io.Reader) ([]Item, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var root []Item
	// Stack of the children slices being filled; new items go to the top.
	stack := []*[]Item{&root}
	var pending *pendingRef

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				// Folder definition - name from text content
				title := getTextContent(n)
				if title != "" {
					top := stack[len(stack)-1]
					*top = append(*top, Item{
						Folder:  true,
						Title:   title,
						AddDate: parseAddDate(getAttr(n, "add_date")),
					})
					pending = &pendingRef{list: top, idx: len(*top) - 1}
				}
				return // Don't recurse into H3

			case "a":
				href := getAttr(n, "href")
				if href == "" {
					// Skip bookmarks without URL
					return
				}
				title := getTextContent(n)
				if title == "" {
					title = href // fallback to URL as title
				}

				top := stack[len(stack)-1]
				*top = append(*top, Item{
					Title:   title,
					URL:     href,
					AddDate: parseAddDate(getAttr(n, "add_date")),
				})
				return // Don't recurse into A

			case "dl":
				// A DL right after an H3 holds that folder's contents.
				pushed := false
				if pending != nil {
					stack = append(stack, &(*pending.list)[pending.idx].Children)
					pending = nil
					pushed = true
				}

				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}

				if pushed {
					stack = stack[:len(stack)-1]
				}
				return // Children handled above
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	return root, nil
}

// Count walks the item tree and returns how many folders and bookmarks it
// holds.
func Count(items []Item) (folders, bookmarks int) {
	for _, item := range items {
		if item.Folder {
			folders++
			f, b := Count(item.Children)
			folders += f
			bookmarks += b
		} else {
			bookmarks++
		}
	}
	return folders, bookmarks
}

// parseAddDate converts an ADD_DATE attribute (unix seconds) to
// microseconds. Missing or malformed dates come back as zero.
func parseAddDate(s string) int64 {
	if s == "" {
		return 0
	}
	ts, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return ts * 1_000_000
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == key {
			return attr.Val
		}
	}
	return ""
}
