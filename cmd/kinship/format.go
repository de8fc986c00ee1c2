package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ersonp/kinship/internal/domain/entities"
)

func formatPerson(p *entities.Person) string {
	if p.BirthDate != nil {
		return fmt.Sprintf("%s (b. %s) [%s]", p.Name, p.BirthDate, p.ID)
	}
	return fmt.Sprintf("%s [%s]", p.Name, p.ID)
}

func writePersonDetail(w io.Writer, p *entities.Person) {
	fmt.Fprintf(w, "ID:         %s\n", p.ID)
	fmt.Fprintf(w, "Name:       %s\n", p.Name)
	if p.BirthDate != nil {
		fmt.Fprintf(w, "Born:       %s\n", p.BirthDate)
	}
	fmt.Fprintf(w, "Created:    %s\n", p.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Updated:    %s\n", p.UpdatedAt.Format("2006-01-02 15:04:05"))
}

func writePersonTable(w io.Writer, persons []entities.Person) {
	fmt.Fprintf(w, "%-36s  %-30s  %s\n", "ID", "NAME", "BORN")
	for i := range persons {
		born := "-"
		if persons[i].BirthDate != nil {
			born = persons[i].BirthDate.String()
		}
		fmt.Fprintf(w, "%-36s  %-30s  %s\n", persons[i].ID, persons[i].Name, born)
	}
}

func writeRelations(w io.Writer, view *entities.PersonWithRelationships) {
	fmt.Fprintln(w, formatPerson(&view.Person))
	writeBucket(w, "  ", "Parents", view.Parents)
	writeBucket(w, "  ", "Children", view.Children)
	writeBucket(w, "  ", "Spouses", view.Spouses)
	writeBucket(w, "  ", "Siblings", view.Siblings)
}

func writeBucket(w io.Writer, indent, label string, persons []entities.Person) {
	if len(persons) == 0 {
		fmt.Fprintf(w, "%s%s: none\n", indent, label)
		return
	}
	fmt.Fprintf(w, "%s%s:\n", indent, label)
	for i := range persons {
		fmt.Fprintf(w, "%s  - %s\n", indent, formatPerson(&persons[i]))
	}
}

func writeRawRelationships(w io.Writer, rels []entities.Relationship) {
	if len(rels) == 0 {
		fmt.Fprintln(w, "No relationships found.")
		return
	}
	fmt.Fprintf(w, "%-36s  %-8s  %-36s  %s\n", "PERSON1", "KIND", "PERSON2", "ID")
	for i := range rels {
		fmt.Fprintf(w, "%-36s  %-8s  %-36s  %s\n", rels[i].Person1ID, rels[i].Kind, rels[i].Person2ID, rels[i].ID)
	}
}

// writeStats prints tree totals. Symmetric relationships count as two rows.
func writeStats(w io.Writer, tree string, persons, rows int) {
	fmt.Fprintf(w, "Tree:              %s\n", tree)
	fmt.Fprintf(w, "Persons:           %d\n", persons)
	fmt.Fprintf(w, "Relationship rows: %d\n", rows)
}

func writeTree(w io.Writer, format string, tree *entities.FamilyTreeData) error {
	switch format {
	case formatJSON:
		return writeTreeJSON(w, tree)
	case formatMarkdown:
		writeTreeMarkdown(w, tree)
		return nil
	case formatText, "":
		writeTreeText(w, tree)
		return nil
	default:
		return fmt.Errorf("invalid format %q, valid formats: %s", format, strings.Join(treeFormats, ", "))
	}
}

func writeTreeJSON(w io.Writer, tree *entities.FamilyTreeData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(tree)
}

func writeTreeText(w io.Writer, tree *entities.FamilyTreeData) {
	fmt.Fprintln(w, "Family tree of", formatPerson(&tree.CenterPerson.Person))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Grandparents (via parents):")
	writeGeneration(w, tree.Grandparents, func(v *entities.PersonWithRelationships) []entities.Person { return v.Parents })

	fmt.Fprintln(w)
	writeRelations(w, &tree.CenterPerson)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Grandchildren (via children):")
	writeGeneration(w, tree.Grandchildren, func(v *entities.PersonWithRelationships) []entities.Person { return v.Children })
}

func writeGeneration(w io.Writer, views []entities.PersonWithRelationships, next func(*entities.PersonWithRelationships) []entities.Person) {
	if len(views) == 0 {
		fmt.Fprintln(w, "  none")
		return
	}
	for i := range views {
		fmt.Fprintf(w, "  %s\n", formatPerson(&views[i].Person))
		persons := next(&views[i])
		if len(persons) == 0 {
			fmt.Fprintln(w, "    - none")
			continue
		}
		for j := range persons {
			fmt.Fprintf(w, "    - %s\n", formatPerson(&persons[j]))
		}
	}
}

func writeTreeMarkdown(w io.Writer, tree *entities.FamilyTreeData) {
	center := &tree.CenterPerson
	fmt.Fprintf(w, "# Family tree of %s\n\n", center.Name)

	writeMarkdownSection(w, "Grandparents", tree.Grandparents, func(v *entities.PersonWithRelationships) (string, []entities.Person) {
		return "parents", v.Parents
	})

	fmt.Fprintln(w, "## Immediate family")
	fmt.Fprintln(w)
	writeMarkdownList(w, "Parents", center.Parents)
	writeMarkdownList(w, "Spouses", center.Spouses)
	writeMarkdownList(w, "Siblings", center.Siblings)
	writeMarkdownList(w, "Children", center.Children)

	writeMarkdownSection(w, "Grandchildren", tree.Grandchildren, func(v *entities.PersonWithRelationships) (string, []entities.Person) {
		return "children", v.Children
	})
}

func writeMarkdownSection(w io.Writer, title string, views []entities.PersonWithRelationships, next func(*entities.PersonWithRelationships) (string, []entities.Person)) {
	fmt.Fprintf(w, "## %s\n\n", title)
	if len(views) == 0 {
		fmt.Fprint(w, "_None recorded._\n\n")
		return
	}
	for i := range views {
		label, persons := next(&views[i])
		fmt.Fprintf(w, "### Through %s\n\n", markdownPerson(&views[i].Person))
		if len(persons) == 0 {
			fmt.Fprintf(w, "_No %s recorded._\n\n", label)
			continue
		}
		for j := range persons {
			fmt.Fprintf(w, "- %s\n", markdownPerson(&persons[j]))
		}
		fmt.Fprintln(w)
	}
}

func writeMarkdownList(w io.Writer, label string, persons []entities.Person) {
	fmt.Fprintf(w, "**%s:**", label)
	if len(persons) == 0 {
		fmt.Fprint(w, " _none_\n\n")
		return
	}
	fmt.Fprintln(w)
	for i := range persons {
		fmt.Fprintf(w, "- %s\n", markdownPerson(&persons[i]))
	}
	fmt.Fprintln(w)
}

func markdownPerson(p *entities.Person) string {
	if p.BirthDate != nil {
		return fmt.Sprintf("**%s** (b. %s)", p.Name, p.BirthDate)
	}
	return fmt.Sprintf("**%s**", p.Name)
}
