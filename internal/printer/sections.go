package printer

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/richardwooding/strscan/internal/binary"
)

// PrintSections writes the located sections of one input as a table.
func PrintSections(w io.Writer, filename string, format binary.Format, sections []binary.Section, color bool) error {
	title := fmt.Sprintf("%s: %v, %d sections", filename, format, len(sections))
	if _, err := fmt.Fprintf(w, "%s\n", ColorString(title, AnsiBold+AnsiCyan, color)); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "Offset", "Size", "Data"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoFormatHeaders(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_CENTER,
	})

	var dataBytes uint64
	for _, s := range sections {
		data := ""
		if s.Data {
			data = "yes"
			dataBytes += s.Size
		}
		table.Append([]string{
			s.Name,
			fmt.Sprintf("%#x", s.Offset),
			fmt.Sprintf("%d", s.Size),
			data,
		})
	}
	table.SetFooter([]string{"", "", fmt.Sprintf("%d", dataBytes), "data bytes"})
	table.Render()
	return nil
}
