package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/atelier-edu/reparto/internal/activity"
	"github.com/atelier-edu/reparto/internal/normalize"
	"github.com/atelier-edu/reparto/internal/util"
)

// Field vocabulary. Labels are matched case-insensitively after stripping
// list and emphasis markers, so "**Description:**" and "description:" both
// resolve. Aliases cover the wording older generations used.
var fieldAliases = map[string]string{
	"description":  "description",
	"competencies": "competencies",
	"competences":  "competencies",
	"skills":       "competencies",
	"complexity":   "complexity",
	"difficulty":   "complexity",
	"type":         "type",
	"mode":         "type",
	"dependencies": "dependencies",
	"depends on":   "dependencies",
	"duration":     "duration",
	"time":         "duration",
}

var (
	// itemHeaderRe matches "ITEM 3:", "Task 12:" and their bold variants.
	// Trailing match stays on the header line so the block body starts at
	// the next line.
	itemHeaderRe = regexp.MustCompile(`(?mi)^[ \t]*(?:\*\*)?[ \t]*(?:item|task)[ \t]+(\d{1,3})[ \t]*(?:\*\*)?[ \t]*[:.][ \t]*`)

	// numberedHeaderRe matches bare numbered block headers like "3." or "3)".
	numberedHeaderRe = regexp.MustCompile(`(?m)^[ \t]*(\d{1,3})[ \t]*[.)][ \t]*`)

	// fieldLineRe captures "Label: value" lines, tolerating bold markers
	// around the label.
	fieldLineRe = regexp.MustCompile(`^\s*[-*_#]*\s*([A-Za-z][A-Za-z ]{0,20}?)\s*[*_]*\s*:\s*(.*)$`)

	firstNumberRe = regexp.MustCompile(`\d+`)
)

// block is one item-shaped chunk of the raw text: the number its header
// declared plus the lines after the header.
type block struct {
	declared int
	first    string // text on the header line after the marker, if any
	body     []string
}

// splitBlocks cuts raw text into item blocks. Explicit "ITEM n:" headers
// are preferred; when none exist, bare numbered headers are accepted as
// long as at least one resulting block carries a recognized field line.
func splitBlocks(raw string) []block {
	if blocks := splitOn(itemHeaderRe, raw); len(blocks) > 0 {
		return blocks
	}
	blocks := splitOn(numberedHeaderRe, raw)
	for _, b := range blocks {
		for _, line := range b.body {
			if _, _, ok := matchField(line); ok {
				return blocks
			}
		}
	}
	return nil
}

func splitOn(re *regexp.Regexp, raw string) []block {
	matches := re.FindAllStringSubmatchIndex(raw, -1)
	if len(matches) == 0 {
		return nil
	}

	blocks := make([]block, 0, len(matches))
	for i, m := range matches {
		declared, err := strconv.Atoi(raw[m[2]:m[3]])
		if err != nil {
			continue
		}

		end := len(raw)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		chunk := raw[m[1]:end]

		var b block
		b.declared = declared
		lines := strings.Split(chunk, "\n")
		if len(lines) > 0 {
			b.first = strings.TrimSpace(lines[0])
			b.body = lines[1:]
		}
		blocks = append(blocks, b)
	}
	return blocks
}

// matchField resolves a line against the field vocabulary. Returns the
// canonical field name, the trimmed value, and whether the line matched.
func matchField(line string) (field, value string, ok bool) {
	m := fieldLineRe.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	canonical, known := fieldAliases[strings.ToLower(strings.TrimSpace(m[1]))]
	if !known {
		return "", "", false
	}
	return canonical, strings.Trim(m[2], " \t*_"), true
}

// parseBlock reads one block's field lines into a draft item. Dependency
// values are kept raw here; the caller resolves them once every block's
// declared number is known. The header line's trailing text is scanned
// too, so "ITEM 1: Description: ..." still reads.
func parseBlock(b block) (item activity.WorkItem, deps string) {
	lines := make([]string, 0, len(b.body)+1)
	lines = append(lines, b.first)
	lines = append(lines, b.body...)
	for _, line := range lines {
		field, value, ok := matchField(line)
		if !ok {
			continue
		}
		switch field {
		case "description":
			item.Description = cleanValue(value)
		case "competencies":
			item.Competencies = parseCompetencies(value)
		case "complexity":
			item.Complexity = parseFirstNumber(value)
		case "type":
			item.Mode = parseModeValue(value)
		case "duration":
			item.DurationMinutes = parseDuration(value)
		case "dependencies":
			deps = value
		}
	}

	// An inline header description ("ITEM 1: prepare the stations") fills
	// in when the block has no Description line of its own.
	if item.Description == "" {
		if first := cleanValue(b.first); first != "" {
			if _, _, isField := matchField(b.first); !isField {
				item.Description = first
			}
		}
	}
	return item, deps
}

// cleanValue collapses whitespace and strips placeholder brackets and
// emphasis markers.
func cleanValue(v string) string {
	return util.CollapseSpaces(strings.Trim(v, " \t[]*_"))
}

// parseCompetencies splits a comma-separated tag list.
func parseCompetencies(value string) []string {
	value = strings.Trim(value, " \t[]")
	if value == "" || strings.EqualFold(value, "none") {
		return nil
	}
	var tags []string
	for _, part := range strings.Split(value, ",") {
		tag := strings.ToLower(util.CollapseSpaces(part))
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// parseFirstNumber extracts the first integer in a value, so "3 (moderate)"
// reads as 3. Returns 0 when the value has no number.
func parseFirstNumber(value string) int {
	m := firstNumberRe.FindString(value)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// parseDuration reads a duration value as minutes. Values phrased in
// hours are converted.
func parseDuration(value string) int {
	n := parseFirstNumber(value)
	if n == 0 {
		return 0
	}
	lower := strings.ToLower(value)
	if strings.Contains(lower, "hour") || strings.Contains(lower, "hr") {
		return n * 60
	}
	return n
}

// parseModeValue maps a free-text type value onto a collaboration mode.
// Unknown values return the empty mode and the normalizer infers one.
func parseModeValue(value string) activity.CollaborationMode {
	lower := strings.ToLower(value)
	switch {
	case strings.Contains(lower, "individual"), strings.Contains(lower, "alone"), strings.Contains(lower, "solo"):
		return activity.ModeIndividual
	case strings.Contains(lower, "pair"), strings.Contains(lower, "duo"), strings.Contains(lower, "partner"):
		return activity.ModePair
	case strings.Contains(lower, "group"), strings.Contains(lower, "team"), strings.Contains(lower, "collab"), strings.Contains(lower, "collective"):
		return activity.ModeGroup
	}
	return ""
}

// resolveDependencies turns a raw dependency value into item ids using the
// declared-number index. "none" and empty values clear the list; numeric
// references resolve through the index; anything else passes through raw
// so batch validation can flag it.
func resolveDependencies(value string, numToID map[int]string) []string {
	value = strings.Trim(value, " \t[]")
	if value == "" {
		return nil
	}
	lower := strings.ToLower(value)
	if lower == "none" || lower == "ninguna" || lower == "-" || lower == "n/a" {
		return nil
	}

	var deps []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(value, ",") {
		token := util.CollapseSpaces(part)
		if token == "" || strings.EqualFold(token, "none") {
			continue
		}
		resolved := token
		if m := firstNumberRe.FindString(token); m != "" {
			if n, err := strconv.Atoi(m); err == nil {
				if id, ok := numToID[n]; ok {
					resolved = id
				} else {
					resolved = normalize.ItemID(n)
				}
			}
		}
		if !seen[resolved] {
			seen[resolved] = true
			deps = append(deps, resolved)
		}
	}
	return deps
}
