package parser

import (
	"fmt"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// ExtractPDFText returns the plain text of a PDF, pages separated by form
// feeds. It tries the Go library first and, when fallback is set, falls back
// to pdftotext if available.
func ExtractPDFText(path string, fallback bool) (string, error) {
	text, err := extractPDFText(path)
	if (err != nil || strings.TrimSpace(text) == "") && fallback {
		text, err = extractPdftotext(path)
	}
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	return text, nil
}

// FirstParagraph returns the first block of text of a PDF's first page that
// follows an "Abstract" line, or the first non-trivial block if there is none.
func FirstParagraph(text string, maxWords int) string {
	page, _, _ := strings.Cut(text, "\f")
	blocks := splitBlocks(page)

	pick := ""
	for i, b := range blocks {
		if strings.EqualFold(strings.TrimSuffix(strings.TrimSpace(b), "."), "abstract") && i+1 < len(blocks) {
			pick = blocks[i+1]
			break
		}
		if rest, ok := cutPrefixFold(b, "abstract"); ok && len(strings.Fields(rest)) > 5 {
			pick = strings.TrimLeft(rest, " .:—-")
			break
		}
	}
	if pick == "" {
		for _, b := range blocks {
			if len(strings.Fields(b)) >= 12 {
				pick = b
				break
			}
		}
	}

	words := strings.Fields(pick)
	if maxWords > 0 && len(words) > maxWords {
		return strings.Join(words[:maxWords], " ") + "…"
	}
	return strings.Join(words, " ")
}

func splitBlocks(page string) []string {
	var blocks []string
	var cur []string
	for _, line := range strings.Split(page, "\n") {
		if strings.TrimSpace(line) == "" {
			if len(cur) > 0 {
				blocks = append(blocks, strings.Join(cur, " "))
				cur = nil
			}
			continue
		}
		cur = append(cur, strings.TrimSpace(line))
	}
	if len(cur) > 0 {
		blocks = append(blocks, strings.Join(cur, " "))
	}
	return blocks
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if i > 1 {
			buf.WriteString("\f") // Form feed as page separator.
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}

func extractPdftotext(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}
