package devserver

import (
	"bytes"
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/wikismart/wikismart/internal/models"
	"github.com/wikismart/wikismart/internal/utils"
)

// articleTitle derives a title from a Wikipedia article URL.
func articleTitle(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || !strings.HasSuffix(u.Hostname(), "wikipedia.org") {
		return "", NewInvalidError("Invalid Wikipedia URL")
	}
	const prefix = "/wiki/"
	if !strings.HasPrefix(u.Path, prefix) || len(u.Path) == len(prefix) {
		return "", NewInvalidError("Invalid Wikipedia URL")
	}
	return strings.ReplaceAll(strings.TrimPrefix(u.Path, prefix), "_", " "), nil
}

// wikiLang is the language subdomain of a Wikipedia URL, "en" by default.
func wikiLang(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return utils.DefaultLang
	}
	if sub, _, ok := strings.Cut(u.Hostname(), "."); ok && utils.IsSupportedLang(sub) {
		return sub
	}
	return utils.DefaultLang
}

func summarize(title, lang string) string {
	return fmt.Sprintf("%s: %s. (%s)", utils.T(lang, "summary.prefix"), title, utils.T(lang, "lang.name"))
}

func translate(title, target string) string {
	note := "Translated to " + target
	if utils.IsSupportedLang(target) {
		note = utils.T(strings.ToLower(target), "translation.note")
	}
	return fmt.Sprintf("[%s] %s", note, title)
}

// generateQuiz returns a fixed three-question quiz about title.
func generateQuiz(title, lang string) []models.Question {
	return []models.Question{
		{
			Question: fmt.Sprintf(utils.T(lang, "quiz.which"), title),
			Options:  []string{title + " has a Wikipedia article", title + " was never documented"},
			Answer:   title + " has a Wikipedia article",
		},
		{
			Question: "What is the subject of the source?",
			Options:  []string{"Astronomy", title, "Cooking"},
			Answer:   title,
		},
		{
			Question: fmt.Sprintf("How many words are in the title %q?", title),
			Options:  []string{"1", "2", "3", "4 or more"},
			Answer:   wordBucket(title),
		},
	}
}

func wordBucket(title string) string {
	n := len(strings.Fields(title))
	if n >= 4 {
		return "4 or more"
	}
	if n < 1 {
		n = 1
	}
	return fmt.Sprint(n)
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

func exportTXT(title, content string) []byte {
	return []byte(fmt.Sprintf("Title: %s\n\n%s", title, content))
}

// exportPDF lays title and content out on a single Helvetica page.
func exportPDF(title, content string) []byte {
	var stream bytes.Buffer
	stream.WriteString("BT /F1 16 Tf 72 720 Td (" + pdfEscape(title) + ") Tj ET\n")
	y := 690
	for _, line := range wrap(content, 80) {
		if y < 72 {
			break
		}
		fmt.Fprintf(&stream, "BT /F1 11 Tf 72 %d Td (%s) Tj ET\n", y, pdfEscape(line))
		y -= 14
	}

	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", stream.Len(), stream.String()),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}
	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&out, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return out.Bytes()
}

func pdfEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`)
	return r.Replace(s)
}

func wrap(text string, width int) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if len(line)+1+len(w) > width {
				lines = append(lines, line)
				line = w
				continue
			}
			line += " " + w
		}
		lines = append(lines, line, "")
	}
	return lines
}
