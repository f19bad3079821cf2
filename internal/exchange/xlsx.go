package exchange

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/benewagner/musicmapping/internal/content"
)

const (
	elementsSheet  = "Elements"
	answerKeySheet = "AnswerKey"
)

// Column headers of the elements sheet. Matching on import ignores case
// and surrounding space.
var headers = []string{
	"Key", "Type", "Label", "Card Type", "Text", "Source URL",
	"ABC Code", "Play MIDI", "Copyright Notice", "Answers",
}

// RowError reports a problem with one spreadsheet row.
type RowError struct {
	Row     int
	Message string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// RowErrors collects every row problem found during an import.
type RowErrors []RowError

func (e RowErrors) Error() string {
	msgs := make([]string, len(e))
	for i, re := range e {
		msgs[i] = re.Error()
	}
	return "spreadsheet import failed: " + strings.Join(msgs, "; ")
}

// DecodeXLSX reads an exercise from a workbook. The elements sheet (or the
// first sheet when none is named so) holds a header row and one row per
// card. Missing keys are generated. The Answers cell lists the correct
// answers of a question separated by ";", each given by key or by the
// label of an answer card. The answer key is projected from the cards.
func DecodeXLSX(data []byte) (content.Content, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return content.Content{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return content.Content{}, RowErrors{{Row: 0, Message: "workbook has no sheets"}}
	}
	sheet := sheets[0]
	for _, s := range sheets {
		if s == elementsSheet {
			sheet = s
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return content.Content{}, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) < 2 {
		return content.Content{}, RowErrors{{Row: len(rows), Message: "sheet needs a header row and at least one card"}}
	}

	col := make(map[string]int)
	for i, h := range rows[0] {
		col[normalizeHeader(h)] = i
	}
	if _, ok := col["type"]; !ok {
		return content.Content{}, RowErrors{{Row: 1, Message: `missing "Type" column`}}
	}

	var (
		errs     RowErrors
		elements []content.Element
		rowNums  []int
		refs     = make(map[int][]string)
	)
	for i, row := range rows[1:] {
		rowNum := i + 2
		cell := func(name string) string {
			idx, ok := col[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}
		if isBlank(row) {
			continue
		}

		e := content.DefaultElement()
		if k := cell("key"); k != "" {
			e.Key = k
		}
		e.Type = content.ElementType(strings.ToLower(cell("type")))
		if !e.Type.Valid() {
			errs = append(errs, RowError{Row: rowNum, Message: fmt.Sprintf("type must be question or answer, got %q", cell("type"))})
			continue
		}
		if ct := strings.ToLower(cell("card type")); ct != "" {
			e.CardType = content.CardType(ct)
		}
		e.Label = cell("label")
		e.Text = cell("text")
		e.SourceURL = cell("source url")
		e.ABCCode = cell("abc code")
		e.CopyrightNotice = cell("copyright notice")
		if v := cell("play midi"); v != "" {
			b, err := strconv.ParseBool(strings.ToLower(v))
			if err != nil {
				errs = append(errs, RowError{Row: rowNum, Message: fmt.Sprintf("play midi must be true or false, got %q", v)})
				continue
			}
			e.PlayMIDI = b
		}
		if e.IsQuestion() {
			refs[len(elements)] = splitList(cell("answers"))
		} else if cell("answers") != "" {
			errs = append(errs, RowError{Row: rowNum, Message: "only questions can list answers"})
			continue
		}
		elements = append(elements, e)
		rowNums = append(rowNums, rowNum)
	}
	if len(errs) > 0 {
		return content.Content{}, errs
	}

	resolve := answerResolver(elements)
	for idx := range elements {
		list, ok := refs[idx]
		if !ok {
			continue
		}
		keys := []string{}
		for _, ref := range list {
			key, ok := resolve(ref)
			if !ok {
				errs = append(errs, RowError{Row: rowNums[idx], Message: fmt.Sprintf("unknown or ambiguous answer %q", ref)})
				continue
			}
			keys = append(keys, key)
		}
		elements[idx].Answers = keys
	}
	if len(errs) > 0 {
		return content.Content{}, errs
	}

	c := content.Content{Elements: elements, Answers: content.ProjectAnswerKey(elements)}
	if err := content.Validate(c); err != nil {
		return content.Content{}, err
	}
	return c, nil
}

// EncodeXLSX writes c as a workbook with an elements sheet and a read-only
// answer key sheet.
func EncodeXLSX(c content.Content) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(elementsSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	if err := writeRow(f, elementsSheet, 1, toCells(headers)); err != nil {
		return nil, err
	}
	for i, e := range c.Elements {
		row := []any{
			e.Key, string(e.Type), e.Label, string(e.CardType), e.Text, e.SourceURL,
			e.ABCCode, e.PlayMIDI, e.CopyrightNotice, strings.Join(e.Answers, "; "),
		}
		if err := writeRow(f, elementsSheet, i+2, row); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(answerKeySheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := writeRow(f, answerKeySheet, 1, []any{"Key", "Label"}); err != nil {
		return nil, err
	}
	for i, a := range c.Answers {
		if err := writeRow(f, answerKeySheet, i+2, []any{a.Key, a.Label}); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func toCells(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// answerResolver maps an Answers cell reference to an answer key. Keys
// win over labels; a label only resolves when exactly one answer card
// carries it.
func answerResolver(elements []content.Element) func(string) (string, bool) {
	keys := make(map[string]bool)
	labels := make(map[string][]string)
	for _, e := range elements {
		if !e.IsAnswer() {
			continue
		}
		keys[e.Key] = true
		if e.Label != "" {
			labels[e.Label] = append(labels[e.Label], e.Key)
		}
	}
	return func(ref string) (string, bool) {
		if keys[ref] {
			return ref, true
		}
		if m := labels[ref]; len(m) == 1 {
			return m[0], true
		}
		return "", false
	}
}

func normalizeHeader(h string) string {
	return strings.Join(strings.Fields(strings.ToLower(h)), " ")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
