package marketplace

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/komparator/backend/internal/domain"
)

// refLabelPattern matches the label that precedes a model reference in the
// product details table, in the languages the supported sites use.
var refLabelPattern = regexp.MustCompile(`\s*Item model number\s*|Manufacturer reference:|Modellnummer:`)

const (
	titleSelector       = "#productTitle"
	modelNumberSelector = ".item-model-number"
)

// fieldStrategy extracts one field from a parsed page. The boolean reports
// whether the strategy found a value; strategies are tried in order.
type fieldStrategy func(doc *goquery.Document) (string, bool)

// Extractor parses product pages into domain products
type Extractor struct {
	refStrategies []fieldStrategy
	logger        *zap.Logger
}

// NewExtractor creates a product extractor with the default reference strategies
func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		refStrategies: []fieldStrategy{
			refFromModelNumberElement,
			refFromLabeledText,
		},
		logger: logger.Named("extractor"),
	}
}

// ExtractProduct parses a product page. Empty content, or content that does
// not look like a product page, yields an empty product.
func (e *Extractor) ExtractProduct(pageURL string, page []byte) domain.Product {
	if len(bytes.TrimSpace(page)) == 0 {
		return domain.Product{}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		e.logger.Debug("unparseable page", zap.String("url", pageURL), zap.Error(err))
		return domain.Product{}
	}

	name, _ := titleText(doc)
	ref, _ := firstMatch(doc, e.refStrategies)
	metrics, hasMetrics := readMetrics(doc)

	if name == "" && ref == "" && !hasMetrics {
		e.logger.Debug("page has no product data", zap.String("url", pageURL))
		return domain.Product{}
	}

	return domain.Product{
		Hostname: BaseURL(pageURL),
		Name:     name,
		Ref:      ref,
		ASIN:     metrics.ASIN,
		Price:    metrics.Price,
		Currency: metrics.Currency,
	}
}

// firstMatch runs strategies in order and returns the first found value
func firstMatch(doc *goquery.Document, strategies []fieldStrategy) (string, bool) {
	for _, strategy := range strategies {
		if value, ok := strategy(doc); ok {
			return value, true
		}
	}
	return "", false
}

func titleText(doc *goquery.Document) (string, bool) {
	title := doc.Find(titleSelector).First()
	if title.Length() == 0 {
		return "", false
	}
	text := strings.TrimSpace(title.Text())
	return text, text != ""
}

// refFromModelNumberElement reads the value node that follows the label
// inside the dedicated model number element.
func refFromModelNumberElement(doc *goquery.Document) (string, bool) {
	element := doc.Find(modelNumberSelector).First()
	if element.Length() == 0 {
		return "", false
	}
	contents := element.Contents()
	if contents.Length() < 2 {
		return "", false
	}
	value := strings.TrimSpace(contents.Eq(1).Text())
	return value, value != ""
}

// refFromLabeledText finds the reference label anywhere in the page and takes
// the text that follows it. When that text is blank it falls back to the
// second text segment of the block containing the label.
func refFromLabeledText(doc *goquery.Document) (string, bool) {
	var label *html.Node
	for _, root := range doc.Nodes {
		if label = findText(root, refLabelPattern); label != nil {
			break
		}
	}
	if label == nil {
		return "", false
	}

	if next := nextInDocument(label); next != nil {
		if value := strings.TrimSpace(nodeText(next)); value != "" {
			return value, true
		}
	}

	if label.Parent == nil || label.Parent.Parent == nil {
		return "", false
	}
	segments := strippedStrings(label.Parent.Parent)
	if len(segments) < 2 {
		return "", false
	}
	return segments[1], true
}

// findText returns the first text node, in document order, matching pattern
func findText(n *html.Node, pattern *regexp.Regexp) *html.Node {
	if n.Type == html.TextNode && pattern.MatchString(n.Data) {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findText(child, pattern); found != nil {
			return found
		}
	}
	return nil
}

// nextInDocument returns the node parsed right after n, skipping its subtree
func nextInDocument(n *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for current := n; current != nil; current = current.Parent {
		if current.NextSibling != nil {
			return current.NextSibling
		}
	}
	return nil
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		sb.WriteString(nodeText(child))
	}
	return sb.String()
}

// strippedStrings lists the non-blank text nodes below n, trimmed
func strippedStrings(n *html.Node) []string {
	var segments []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			if text := strings.TrimSpace(node.Data); text != "" {
				segments = append(segments, text)
			}
			return
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return segments
}
