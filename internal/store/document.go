package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/evanschultz/kanwow/internal/domain"
)

// ErrInvalidDocument reports an import payload without the board shape.
var ErrInvalidDocument = errors.New("invalid board document")

// dueLayout is the calendar-date layout used for task due dates.
const dueLayout = "2006-01-02"

// Document is the persisted JSON shape of a board.
type Document struct {
	Columns []ColumnDocument        `json:"columns"`
	Tasks   map[string]TaskDocument `json:"tasks"`
}

// ColumnDocument is one persisted column.
type ColumnDocument struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Icon    string   `json:"icon,omitempty"`
	Width   int      `json:"width"`
	TaskIDs []string `json:"taskIds"`
}

// TaskDocument is one persisted task.
type TaskDocument struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Desc      string            `json:"desc"`
	Labels    []string          `json:"labels"`
	Due       string            `json:"due"`
	Done      bool              `json:"done"`
	CreatedAt string            `json:"createdAt"`
	Comments  []CommentDocument `json:"comments"`
}

// CommentDocument is one persisted comment.
type CommentDocument struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
	Author    string `json:"author"`
}

// ToDocument converts a board to its persisted shape.
func ToDocument(b domain.Board) Document {
	doc := Document{
		Columns: make([]ColumnDocument, 0, len(b.Columns)),
		Tasks:   make(map[string]TaskDocument, len(b.Tasks)),
	}
	for _, c := range b.Columns {
		doc.Columns = append(doc.Columns, ColumnDocument{
			ID:      c.ID,
			Title:   c.Title,
			Icon:    c.Icon,
			Width:   c.Width,
			TaskIDs: append([]string{}, c.TaskIDs...),
		})
	}
	for id, t := range b.Tasks {
		td := TaskDocument{
			ID:        t.ID,
			Title:     t.Title,
			Desc:      t.Description,
			Labels:    append([]string{}, t.Labels...),
			Done:      t.Done,
			CreatedAt: formatTS(t.CreatedAt),
			Comments:  make([]CommentDocument, 0, len(t.Comments)),
		}
		if t.DueDate != nil {
			td.Due = t.DueDate.UTC().Format(dueLayout)
		}
		for _, c := range t.Comments {
			td.Comments = append(td.Comments, CommentDocument{
				ID:        c.ID,
				Text:      c.Text,
				Timestamp: formatTS(c.Timestamp),
				Author:    c.Author,
			})
		}
		doc.Tasks[id] = td
	}
	return doc
}

// Board converts the persisted shape back to a board. Tasks are keyed by their map key. Labels
// are normalized. Widths are taken as stored; the service applies its configured floor.
// Dangling task ids are kept and filtered at render time.
func (d Document) Board() domain.Board {
	b := domain.Board{
		Columns: make([]domain.Column, 0, len(d.Columns)),
		Tasks:   make(map[string]domain.Task, len(d.Tasks)),
	}
	for _, c := range d.Columns {
		b.Columns = append(b.Columns, domain.Column{
			ID:      c.ID,
			Title:   c.Title,
			Icon:    c.Icon,
			Width:   c.Width,
			TaskIDs: append([]string{}, c.TaskIDs...),
		})
	}
	for key, td := range d.Tasks {
		id := key
		if strings.TrimSpace(id) == "" {
			id = td.ID
		}
		t := domain.Task{
			ID:          id,
			Title:       td.Title,
			Description: td.Desc,
			Labels:      domain.NormalizeLabels(td.Labels),
			DueDate:     parseDue(td.Due),
			Done:        td.Done,
			CreatedAt:   parseTS(td.CreatedAt),
			Comments:    make([]domain.Comment, 0, len(td.Comments)),
		}
		for _, c := range td.Comments {
			t.Comments = append(t.Comments, domain.Comment{
				ID:        c.ID,
				Text:      c.Text,
				Timestamp: parseTS(c.Timestamp),
				Author:    c.Author,
			})
		}
		b.Tasks[id] = t
	}
	b.Normalize()
	return b
}

// Encode serializes a board compactly for storage and broadcast.
func Encode(b domain.Board) ([]byte, error) {
	return json.Marshal(ToDocument(b))
}

// Export serializes a board as indented JSON for a file download.
func Export(b domain.Board) ([]byte, error) {
	data, err := json.MarshalIndent(ToDocument(b), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// ExportFileName names an export file after the given day.
func ExportFileName(now time.Time) string {
	return "kanban-" + now.Format(dueLayout) + ".json"
}

// Decode parses a stored or imported document. Both top-level "columns" and "tasks" keys must
// be present, otherwise ErrInvalidDocument is returned.
func Decode(data []byte) (domain.Board, error) {
	data = bytes.TrimSpace(data)
	var shape map[string]json.RawMessage
	if err := json.Unmarshal(data, &shape); err != nil {
		return domain.Board{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if _, ok := shape["columns"]; !ok {
		return domain.Board{}, fmt.Errorf("%w: missing columns", ErrInvalidDocument)
	}
	if _, ok := shape["tasks"]; !ok {
		return domain.Board{}, fmt.Errorf("%w: missing tasks", ErrInvalidDocument)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.Board{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return doc.Board(), nil
}

func formatTS(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTS(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}

func parseDue(v string) *time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	due, err := time.Parse(dueLayout, v)
	if err != nil {
		// RFC 3339 timestamps are accepted too.
		ts := parseTS(v)
		if ts.IsZero() {
			return nil
		}
		return domain.NormalizeDueDate(&ts)
	}
	return &due
}
