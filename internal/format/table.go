package format

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/advising-app/advising-notify/internal/colors"
	"github.com/advising-app/advising-notify/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// TableFormatter renders notifications as a lipgloss table.
type TableFormatter struct {
	headerStyle lipgloss.Style
	unreadStyle lipgloss.Style
	cellStyle   lipgloss.Style
}

// NewTableFormatter creates a new TableFormatter.
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{
		headerStyle: lipgloss.NewStyle().Bold(true).Padding(0, 1).
			Foreground(lipgloss.Color(ansiColorNumber(colors.Blue))),
		unreadStyle: lipgloss.NewStyle().Bold(true).Padding(0, 1),
		cellStyle:   lipgloss.NewStyle().Padding(0, 1),
	}
}

var tableHeaders = []string{"ID", "DATE", "READ", "TYPE", "TITLE", "APPOINTMENT"}

// FormatNotifications formats notifications in table format. Nothing is
// written for an empty slice.
func (f *TableFormatter) FormatNotifications(notifications []domain.Notification, writer io.Writer) error {
	if len(notifications) == 0 {
		return nil
	}
	rows := make([][]string, len(notifications))
	for i, n := range notifications {
		read := "no"
		if n.Read {
			read = "yes"
		}
		rows[i] = []string{
			strconv.FormatInt(n.ID, 10),
			formatDate(n),
			read,
			n.Type,
			truncate(displayTitle(n), 40),
			n.AppointmentIDString(),
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(tableHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return f.headerStyle
			case row >= 0 && row < len(notifications) && !notifications[row].Read:
				return f.unreadStyle
			default:
				return f.cellStyle
			}
		})

	_, err := fmt.Fprintln(writer, t.String())
	return err
}

// ansiColorNumber extracts the color number from an ANSI SGR sequence
// such as "\033[0;34m".
func ansiColorNumber(ansi string) string {
	if len(ansi) < 2 {
		return ""
	}
	lastSemicolon := strings.LastIndex(ansi, ";")
	if lastSemicolon == -1 {
		return ""
	}
	return ansi[lastSemicolon+1 : len(ansi)-1]
}
