// Package export renders task lists to JSON, YAML, CSV and PDF, and
// writes clear backups.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/josephgoksu/tasklist/internal/todo"
	"github.com/jung-kurt/gofpdf"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Format is an output format name.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
)

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatJSON, FormatYAML, FormatCSV, FormatPDF}
}

// ParseFormat resolves a format name, accepting "yml" for YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "csv":
		return FormatCSV, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unknown export format %q (want json, yaml, csv or pdf)", s)
}

// Ext returns the file extension for the format, including the dot.
func (f Format) Ext() string {
	if f == FormatYAML {
		return ".yaml"
	}
	return "." + string(f)
}

// Report is a titled snapshot of tasks.
type Report struct {
	Title       string
	Filter      todo.FilterMode
	GeneratedAt time.Time
	Tasks       []todo.Task
}

// record mirrors todo.Task for YAML, which has no use for the JSON tags.
type record struct {
	ID          string  `yaml:"id"`
	Text        string  `yaml:"text"`
	Completed   bool    `yaml:"completed"`
	Priority    int     `yaml:"priority"`
	DueDate     *string `yaml:"dueDate"`
	IsImportant bool    `yaml:"isImportant"`
}

type yamlReport struct {
	Filter      string    `yaml:"filter"`
	GeneratedAt time.Time `yaml:"generatedAt"`
	Tasks       []record  `yaml:"tasks"`
}

// Render writes r to w in the given format.
func Render(w io.Writer, r Report, f Format) error {
	tasks := r.Tasks
	if tasks == nil {
		tasks = []todo.Task{}
	}
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tasks)
	case FormatYAML:
		out := yamlReport{Filter: string(r.Filter), GeneratedAt: r.GeneratedAt.UTC(), Tasks: make([]record, 0, len(tasks))}
		for _, t := range tasks {
			out.Tasks = append(out.Tasks, record(t))
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	case FormatCSV:
		return renderCSV(w, tasks)
	case FormatPDF:
		return renderPDF(w, r, tasks)
	}
	return fmt.Errorf("unknown export format %q", f)
}

func renderCSV(w io.Writer, tasks []todo.Task) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "text", "completed", "important", "priority", "due_date"})
	for _, t := range tasks {
		_ = cw.Write([]string{
			t.ID,
			t.Text,
			strconv.FormatBool(t.Completed),
			strconv.FormatBool(t.IsImportant),
			strconv.Itoa(t.Priority),
			t.DueLabel(),
		})
	}
	cw.Flush()
	return cw.Error()
}

func renderPDF(w io.Writer, r Report, tasks []todo.Task) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(r.Title, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(r.Title))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.Cell(0, 6, fmt.Sprintf("Filter: %s   Generated: %s   Tasks: %d",
		r.Filter.Label(), r.GeneratedAt.Format("2006-01-02 15:04"), len(tasks)))
	pdf.Ln(10)
	pdf.SetTextColor(0, 0, 0)

	if len(tasks) == 0 {
		pdf.SetFont("Arial", "I", 11)
		pdf.Cell(0, 8, "No tasks.")
		return pdf.Output(w)
	}

	widths := []float64{14, 14, 112, 30, 20}
	headers := []string{"Done", "Star", "Task", "Due", "Priority"}
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, t := range tasks {
		done, star := "", ""
		if t.Completed {
			done = "x"
		}
		if t.IsImportant {
			star = "*"
		}
		pdf.CellFormat(widths[0], 7, done, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 7, star, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 7, tr(fit(pdf, t.Text, widths[2]-2)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 7, tr(t.DueLabel()), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[4], 7, strconv.Itoa(t.Priority), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}
	return pdf.Output(w)
}

// fit shortens s with an ellipsis until it fits width.
func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

// WriteFile renders r and writes it to path on fsys, creating parent
// directories as needed.
func WriteFile(fsys afero.Fs, path string, r Report, f Format) error {
	var buf bytes.Buffer
	if err := Render(&buf, r, f); err != nil {
		return fmt.Errorf("render %s: %w", f, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
	}
	if err := afero.WriteFile(fsys, path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Backup writes tasks as JSON to dir/backups/clear_backup_<timestamp>.json
// and returns the path.
func Backup(fsys afero.Fs, dir string, tasks []todo.Task, now time.Time) (string, error) {
	path := filepath.Join(dir, "backups", fmt.Sprintf("clear_backup_%s.json", now.Format("2006-01-02T15-04-05")))
	if err := WriteFile(fsys, path, Report{Tasks: tasks, GeneratedAt: now}, FormatJSON); err != nil {
		return "", err
	}
	return path, nil
}
