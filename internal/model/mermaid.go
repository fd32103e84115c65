package model

import (
	"fmt"
	"strings"
)

// mermaidColumnCap limits columns per table in the diagram for readability.
const mermaidColumnCap = 10

// GenerateMermaidERD renders the model as a Mermaid erDiagram.
func GenerateMermaidERD(m *DataModel) string {
	var b strings.Builder
	b.WriteString("erDiagram\n\n")

	for _, t := range m.Tables {
		fmt.Fprintf(&b, "    %s {\n", t.Name)
		columns := t.Columns
		if len(columns) > mermaidColumnCap {
			columns = columns[:mermaidColumnCap]
		}
		for _, col := range columns {
			colType := strings.ReplaceAll(col.Type, TypeNumber, "INT")
			colType = strings.ReplaceAll(colType, TypeText, "STRING")
			marker := ""
			if col.IsPK {
				marker = " PK"
			} else if col.IsFK {
				marker = " FK"
			}
			fmt.Fprintf(&b, "        %s %s%s\n", col.Name, colType, marker)
		}
		b.WriteString("    }\n\n")
	}

	// many_to_one edges render with the dimension on the "one" side.
	for _, rel := range m.Relationships {
		fmt.Fprintf(&b, "    %s ||--o{ %s : %q\n", rel.ToTable, rel.FromTable, rel.FromColumn)
	}
	return b.String()
}
