// Package board reads the markup the game server renders: the start page that
// opens a new game, and the notebook map that accompanies each turn.
package board

import (
	"io"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"github.com/samdwyer/wumpushunt/internal/protocol"
)

// Selectors used on the start page.
const (
	caveSelector    = "#cave_id option"
	messageSelector = "#status_messages li"
	notebookID      = "#notebook"
)

// Board is the initial state shown on the start page of a new game.
type Board struct {
	Caves    []protocol.CaveID
	Messages []protocol.Message
	Notes    protocol.Notes
}

// Parse extracts the offered caves, opening status messages and notebook from
// the start page. A page without a cave selector is not a game board.
func Parse(r io.Reader) (Board, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Board{}, errors.Wrap(err, "parse board page")
	}

	options := doc.Find(caveSelector)
	if options.Length() == 0 {
		return Board{}, errors.New("board page has no cave selector")
	}

	b := Board{Caves: make([]protocol.CaveID, 0, options.Length())}
	options.Each(func(_ int, s *goquery.Selection) {
		// The first option is the "Choose..." placeholder with an empty value.
		if v, ok := s.Attr("value"); ok && strings.TrimSpace(v) != "" {
			b.Caves = append(b.Caves, protocol.CaveID(strings.TrimSpace(v)))
		}
	})

	doc.Find(messageSelector).Each(func(_ int, s *goquery.Selection) {
		b.Messages = append(b.Messages, protocol.Message{
			Severity: severityFromClass(s),
			Content:  strings.TrimSpace(s.Text()),
		})
	})

	if nb := doc.Find(notebookID); nb.Length() > 0 {
		html, err := nb.Html()
		if err != nil {
			return Board{}, errors.Wrap(err, "read notebook")
		}
		b.Notes = protocol.Notes(strings.TrimSpace(html))
	}

	return b, nil
}

// severityFromClass maps the page's colour classes back to a severity.
func severityFromClass(s *goquery.Selection) protocol.Severity {
	switch {
	case s.HasClass("text-danger"):
		return protocol.SeverityTerminal
	case s.HasClass("text-warning"):
		return protocol.SeverityWarning
	default:
		return protocol.SeverityInfo
	}
}

// =============================================================================
// Notebook
// =============================================================================

// MappedCave is a cave recorded in the notebook.
type MappedCave struct {
	ID       string
	Current  bool     // hunter's present location
	Warnings []string // hazard sources sensed from this cave
}

// Tunnel joins two explored or neighbouring caves.
type Tunnel struct {
	From, To string
}

// Summary is a text-friendly reading of the notebook map.
type Summary struct {
	Caves   []MappedCave
	Tunnels []Tunnel
}

// Current returns the cave the hunter is in, if the notebook marks one.
func (s Summary) Current() (MappedCave, bool) {
	for _, c := range s.Caves {
		if c.Current {
			return c, true
		}
	}
	return MappedCave{}, false
}

// Summarize reads the graphviz SVG notebook: one node per explored cave (its
// label carries a "*" for the current cave and its tooltip lists warning
// sources) and one edge per known tunnel, titled "a--b".
func Summarize(notes protocol.Notes) (Summary, error) {
	if !notes.Present() {
		return Summary{}, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(notes)))
	if err != nil {
		return Summary{}, errors.Wrap(err, "parse notebook")
	}

	var sum Summary
	doc.Find("g.node").Each(func(_ int, s *goquery.Selection) {
		id := strings.TrimSpace(s.ChildrenFiltered("title").First().Text())
		if id == "" {
			return
		}
		cave := MappedCave{
			ID:      id,
			Current: strings.Contains(s.Find("text").Text(), "*"),
		}
		s.Find("a").Each(func(_ int, a *goquery.Selection) {
			for _, src := range strings.Split(tooltip(a), ",") {
				if src = strings.TrimSpace(src); src != "" {
					cave.Warnings = append(cave.Warnings, src)
				}
			}
		})
		sum.Caves = append(sum.Caves, cave)
	})

	doc.Find("g.edge").Each(func(_ int, s *goquery.Selection) {
		title := strings.TrimSpace(s.ChildrenFiltered("title").First().Text())
		from, to, ok := strings.Cut(title, "--")
		if !ok {
			return
		}
		sum.Tunnels = append(sum.Tunnels, Tunnel{From: strings.TrimSpace(from), To: strings.TrimSpace(to)})
	})

	sort.SliceStable(sum.Caves, func(i, j int) bool { return lessID(sum.Caves[i].ID, sum.Caves[j].ID) })
	return sum, nil
}

// tooltip returns the xlink:title of an anchor. Inside SVG the HTML parser
// moves the xlink prefix into the attribute namespace, so match on either form.
func tooltip(a *goquery.Selection) string {
	for _, n := range a.Nodes {
		for _, attr := range n.Attr {
			if attr.Key == "xlink:title" || (attr.Key == "title" && attr.Namespace == "xlink") {
				return attr.Val
			}
		}
	}
	return ""
}

// lessID orders numeric ids numerically and everything else lexically.
func lessID(a, b string) bool {
	if len(a) != len(b) && isDigits(a) && isDigits(b) {
		return len(a) < len(b)
	}
	return a < b
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
