// internal/app/status_report.go
package app

import (
	"fmt"
	"strings"
	"time"

	"homework_status_bot/internal/domain/journal"
)

const reportTimeFormat = "2006-01-02 15:04:05"

// FormatStatusReport renders the poller state and recent notifications for the /status command.
func FormatStatusReport(s PollerStatus, recent []*journal.Entry) string {
	var b strings.Builder

	b.WriteString("Состояние бота\n\n")
	fmt.Fprintf(&b, "Последний запрос: %s\n", formatTime(s.LastAttempt))
	fmt.Fprintf(&b, "Последний успешный запрос: %s\n", formatTime(s.LastSuccess))
	if s.Cursor != 0 {
		fmt.Fprintf(&b, "Курсор from_date: %d\n", s.Cursor)
	}
	if s.PreviousStatus != "" {
		fmt.Fprintf(&b, "Последний статус: %s (%s)\n", s.PreviousStatus, s.LastHomework)
	} else {
		b.WriteString("Последний статус: ещё не получен\n")
	}
	if s.ConsecutiveFailures > 0 {
		fmt.Fprintf(&b, "Ошибок подряд: %d\nПоследняя ошибка: %s\n", s.ConsecutiveFailures, s.LastError)
	}

	if len(recent) > 0 {
		b.WriteString("\nПоследние уведомления:\n")
		for _, e := range recent {
			mark := "✓"
			if !e.Delivered {
				mark = "✗"
			}
			fmt.Fprintf(&b, "%s %s [%s] %s\n", mark, e.CreatedAt.Format(reportTimeFormat), e.Kind, e.Message)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format(reportTimeFormat)
}
