// internal/domain/homework/homework.go
package homework

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// Status is the review outcome reported for a homework submission.
type Status string

const (
	StatusApproved  Status = "approved"
	StatusReviewing Status = "reviewing"
	StatusRejected  Status = "rejected"
)

var verdicts = map[Status]string{
	StatusApproved:  "Работа проверена: ревьюеру всё понравилось. Ура!",
	StatusReviewing: "Работа взята на проверку ревьюером.",
	StatusRejected:  "Работа проверена: у ревьюера есть замечания.",
}

// Verdict returns the human-readable sentence for a status.
func Verdict(s Status) (string, bool) {
	v, ok := verdicts[s]
	return v, ok
}

// Record is one homework submission as reported by the status API.
type Record struct {
	Name   string `json:"homework_name"`
	Status Status `json:"status"`
}

// Snapshot is the validated result of one status fetch.
type Snapshot struct {
	Records []Record
	// CurrentDate is the server cursor for the next fetch. Zero when the response carried none.
	CurrentDate int64
}

// Payload is the undecoded top-level object of a status response.
type Payload map[string]json.RawMessage

// StatusClient fetches homework statuses changed since a Unix timestamp.
type StatusClient interface {
	FetchStatuses(ctx context.Context, from int64) (Payload, error)
}

// Validate checks the response shape and extracts the snapshot.
// homeworks must be present and be a list; current_date, when present, must be an integer.
func Validate(p Payload) (Snapshot, error) {
	if p == nil {
		return Snapshot{}, NewError(KindValidation, "пустой ответ сервера")
	}

	raw, ok := p["homeworks"]
	if !ok {
		return Snapshot{}, NewError(KindValidation, "в ответе сервера нет ключа homeworks")
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return Snapshot{}, NewError(KindValidation, "ответ сервера пришёл не в виде списка: homeworks=%s", abbreviate(trimmed))
	}

	var records []Record
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return Snapshot{}, WrapError(KindValidation, err, "некорректные записи в homeworks")
	}

	snap := Snapshot{Records: records}
	if rawDate, ok := p["current_date"]; ok && !bytes.Equal(bytes.TrimSpace(rawDate), []byte("null")) {
		if err := json.Unmarshal(rawDate, &snap.CurrentDate); err != nil {
			return Snapshot{}, WrapError(KindValidation, err, "некорректное значение current_date")
		}
	}
	return snap, nil
}

// Message formats the notification text for a record.
func Message(r Record) (string, error) {
	if r.Name == "" {
		return "", NewError(KindValidation, "в ответе сервера нет ключа homework_name")
	}
	verdict, ok := Verdict(r.Status)
	if !ok {
		return "", NewError(KindUnknownStatus, "неизвестный статус домашней работы: %q", string(r.Status))
	}
	return fmt.Sprintf("Изменился статус проверки работы \"%s\". %s", r.Name, verdict), nil
}

func abbreviate(b []byte) string {
	const limit = 64
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
