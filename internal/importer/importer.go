// Package importer loads legacy agenda spreadsheet rows (exported as a JSON
// array) into the agenda.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"agendaapi/internal/calendar"
	"agendaapi/internal/model"
)

// LegacyRow is one spreadsheet row. Column names are kept as exported.
type LegacyRow struct {
	SEI         string `json:"sei"`
	Envio       string `json:"envio"`
	Assunto     string `json:"assunto"`
	Type        string `json:"type"`
	Solicitante string `json:"solicitante"`
	Local       string `json:"local"`
	PontoFocal  string `json:"pontoFocal"`
	Data        string `json:"data"`
	Situacao    string `json:"situacao"`
	SEIDiarias  string `json:"seiDiarias"`
}

const (
	emptyMarker     = "-"
	notAttendedMark = "Não atendido"
)

var submissionLayouts = []string{"2006-01-02 15:04:05", "02/01/2006", "2006-01-02"}

// Normalize converts a row into a create request. Warnings describe values
// that were dropped; they never prevent the import.
func Normalize(r LegacyRow, now time.Time) (model.CreateEventInput, []string) {
	var warnings []string
	in := model.CreateEventInput{
		Title:      strings.TrimSpace(r.Assunto),
		Requester:  strings.TrimSpace(r.Solicitante),
		Location:   strings.ReplaceAll(strings.TrimSpace(r.Local), "<br>", "\n"),
		FocalPoint: strings.TrimSpace(r.PontoFocal),
		Type:       strings.TrimSpace(r.Type),
	}

	if sei := joinList(r.SEI); sei != "" {
		in.SEINumber = &sei
	}
	if daily := strings.TrimSpace(r.SEIDiarias); daily != notAttendedMark {
		if daily = joinList(daily); daily != "" {
			in.DailySEINumber = &daily
		}
	}

	refYear, refMonth := now.Year(), now.Month()
	if sub, ok := parseSubmission(r.Envio); ok {
		in.SubmissionDate = &sub
		refYear, refMonth = sub.Year(), sub.Month()
	} else if v := strings.TrimSpace(r.Envio); v != "" && v != emptyMarker {
		warnings = append(warnings, fmt.Sprintf("unparseable submission date %q", v))
	}

	if start, end, ok := calendar.ParseScheduleText(r.Data, refYear, refMonth); ok {
		in.EventDate = &start
		if !end.Equal(start.Time) {
			in.EndDate = &end
		}
	} else if v := strings.TrimSpace(r.Data); v != "" && !calendar.IsUndefinedText(v) {
		warnings = append(warnings, fmt.Sprintf("unparseable event date %q, left unscheduled", v))
	}

	if s := strings.TrimSpace(r.Situacao); s != "" {
		s = strings.Replace(strings.ToUpper(s), "REALIZADA", model.SituationDone, 1)
		if canonical, ok := model.CanonicalSituation(s); ok {
			in.Situation = &canonical
		} else {
			warnings = append(warnings, fmt.Sprintf("unknown situation %q dropped", r.Situacao))
		}
	}

	return in, warnings
}

// joinList flattens multi-line SEI cells into "a, b". The "-" marker means empty.
func joinList(s string) string {
	s = strings.TrimSpace(s)
	if s == emptyMarker {
		return ""
	}
	s = strings.ReplaceAll(s, "<br>", ", ")
	s = strings.ReplaceAll(s, "\r\n", ", ")
	return strings.ReplaceAll(s, "\n", ", ")
}

func parseSubmission(s string) (model.Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == emptyMarker {
		return model.Date{}, false
	}
	for _, layout := range submissionLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.NewDate(t.Year(), t.Month(), t.Day()), true
		}
	}
	return model.Date{}, false
}

// EventCreator is the part of the agenda service the importer needs.
type EventCreator interface {
	Create(ctx context.Context, in model.CreateEventInput) (*model.AgendaEvent, error)
}

// Result summarizes an import run.
type Result struct {
	Imported int
	Failed   int
}

// Importer feeds legacy rows to an EventCreator.
type Importer struct {
	creator EventCreator
	logger  *zap.Logger
	now     func() time.Time
}

// New returns an Importer.
func New(creator EventCreator, logger *zap.Logger) *Importer {
	return &Importer{creator: creator, logger: logger, now: time.Now}
}

// Run decodes a JSON array of rows from r and creates one event per row.
// Row failures are collected and returned together; decoding stops at the
// first malformed element.
func (im *Importer) Run(ctx context.Context, r io.Reader) (Result, error) {
	var res Result
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return res, fmt.Errorf("read rows: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return res, errors.New("read rows: expected a JSON array")
	}

	var errs error
	for i := 0; dec.More(); i++ {
		if err := ctx.Err(); err != nil {
			return res, multierr.Append(errs, err)
		}

		var row LegacyRow
		if err := dec.Decode(&row); err != nil {
			return res, multierr.Append(errs, fmt.Errorf("row %d: %w", i, err))
		}

		in, warnings := Normalize(row, im.now())
		for _, w := range warnings {
			im.logger.Warn("import_row_warning", zap.Int("row", i), zap.String("sei", row.SEI), zap.String("warning", w))
		}

		e, err := im.creator.Create(ctx, in)
		if err != nil {
			res.Failed++
			im.logger.Error("import_row_failed", zap.Int("row", i), zap.String("sei", row.SEI), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("row %d: %w", i, err))
			continue
		}
		res.Imported++
		im.logger.Debug("import_row_created", zap.Int("row", i), zap.String("event_id", e.ID))
	}

	if _, err := dec.Token(); err != nil {
		return res, multierr.Append(errs, fmt.Errorf("read rows: %w", err))
	}
	return res, errs
}
