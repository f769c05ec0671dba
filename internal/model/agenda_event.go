package model

import (
	"strings"
	"time"
)

// Situations an agenda event can be in.
const (
	SituationArticulated = "ARTICULADO"
	SituationRequested   = "SOLICITADO"
	SituationDone        = "REALIZADO"
	SituationCancelled   = "CANCELADO PELO SOLICITANTE"
	SituationAttended    = "ATENDIDO"
)

// Situations lists every accepted situation in display order.
var Situations = []string{
	SituationArticulated,
	SituationRequested,
	SituationDone,
	SituationCancelled,
	SituationAttended,
}

// Action types. TypeJPSAndJPE is only produced by inference from titles.
const (
	TypeJPS          = "JPS"
	TypeJPE          = "JPE"
	TypeJPSAndJPE    = "JPS E JPE"
	TypeMeeting      = "REUNIÃO"
	TypeExternal     = "EVENTO EXTERNO"
	TypeInternal     = "EVENTO INTERNO"
	TypeTraining     = "CAPACITAÇÃO"
	TypeInspection   = "FISCALIZAÇÃO"
	TypeLegalService = "ATENDIMENTO JURÍDICO"
	TypeLecture      = "PALESTRA"
	TypeGovernment   = "AÇÃO DE GOVERNO"
	TypeOther        = "OUTRO"
)

// ActionTypes lists the action types offered for filtering.
var ActionTypes = []string{
	TypeJPS, TypeJPE, TypeMeeting, TypeExternal, TypeInternal, TypeTraining,
	TypeInspection, TypeLegalService, TypeLecture, TypeGovernment, TypeOther,
}

// CanonicalSituation returns the stored form of s and whether it is a known situation.
func CanonicalSituation(s string) (string, bool) {
	up := strings.ToUpper(strings.TrimSpace(s))
	for _, known := range Situations {
		if up == known {
			return known, true
		}
	}
	return "", false
}

// AgendaEvent is an institutional action on the agenda.
// StartTime/EndTime are nil for events whose date is still to be defined.
type AgendaEvent struct {
	ID             string     `json:"id"`
	SEINumber      *string    `json:"sei_number"`
	SubmissionDate *time.Time `json:"submission_date"`
	Title          string     `json:"title"`
	Requester      string     `json:"requester"`
	Location       string     `json:"location"`
	FocalPoint     string     `json:"focal_point"`
	StartTime      *time.Time `json:"start_time"`
	EndTime        *time.Time `json:"end_time"`
	Situation      *string    `json:"situation"`
	DailySEINumber *string    `json:"daily_sei_number"`
	Description    *string    `json:"description"`
	Participants   *string    `json:"participants"`
	Type           string     `json:"type"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Scheduled reports whether the event has a concrete start.
func (e AgendaEvent) Scheduled() bool { return e.StartTime != nil }

// EffectiveDate is the start time, else the submission date, else nil.
func (e AgendaEvent) EffectiveDate() *time.Time {
	if e.StartTime != nil {
		return e.StartTime
	}
	return e.SubmissionDate
}

// FilterCriteria narrows the agenda listing. Zero values do not filter.
type FilterCriteria struct {
	SEINumber  string
	Type       string
	Situation  string
	FocalPoint string
	Location   string
	From       *time.Time
	To         *time.Time
}

// CreateEventInput carries the fields accepted when creating an event.
type CreateEventInput struct {
	SEINumber      *string `json:"sei_number"`
	SubmissionDate *Date   `json:"submission_date"`
	Title          string  `json:"title"`
	Requester      string  `json:"requester"`
	Location       string  `json:"location"`
	FocalPoint     string  `json:"focal_point"`
	EventDate      *Date   `json:"event_date"`
	EndDate        *Date   `json:"end_date"`
	Situation      *string `json:"situation"`
	DailySEINumber *string `json:"daily_sei_number"`
	Description    *string `json:"description"`
	Participants   *string `json:"participants"`
	Type           string  `json:"type"`
}

// UpdateEventInput is a partial update. Absent fields are kept; explicit nulls clear.
type UpdateEventInput struct {
	SEINumber      Optional[string] `json:"sei_number"`
	SubmissionDate Optional[Date]   `json:"submission_date"`
	Title          Optional[string] `json:"title"`
	Requester      Optional[string] `json:"requester"`
	Location       Optional[string] `json:"location"`
	FocalPoint     Optional[string] `json:"focal_point"`
	EventDate      Optional[Date]   `json:"event_date"`
	EndDate        Optional[Date]   `json:"end_date"`
	Situation      Optional[string] `json:"situation"`
	DailySEINumber Optional[string] `json:"daily_sei_number"`
	Description    Optional[string] `json:"description"`
	Participants   Optional[string] `json:"participants"`
	Type           Optional[string] `json:"type"`
}
