package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/kinship/internal/application/handlers"
	"github.com/ersonp/kinship/internal/domain/entities"
)

func newPersonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "person",
		Aliases: []string{"persons"},
		Short:   "Manage persons",
	}

	cmd.AddCommand(
		newPersonAddCmd(),
		newPersonUpdateCmd(),
		newPersonGetCmd(),
		newPersonListCmd(),
		newPersonSearchCmd(),
	)

	return cmd
}

func newPersonAddCmd() *cobra.Command {
	var birthDate string

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a person",
		Example: `  kinship person add "Ada Lovelace" --birth-date 1815-12-10
  kinship person add Bob`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				person, err := d.Persons.HandleCreate(cmd.Context(), args[0], birthDate)
				if err != nil {
					return fmt.Errorf("adding person: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", formatPerson(person))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&birthDate, "birth-date", "b", "", "Birth date (YYYY-MM-DD)")

	return cmd
}

func newPersonUpdateCmd() *cobra.Command {
	var (
		name           string
		birthDate      string
		clearBirthDate bool
	)

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a person's name or birth date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts handlers.UpdateOptions
			if cmd.Flags().Changed("name") {
				opts.Name = &name
			}
			switch {
			case clearBirthDate && cmd.Flags().Changed("birth-date"):
				return errors.New("--birth-date and --clear-birth-date are mutually exclusive")
			case clearBirthDate:
				empty := ""
				opts.BirthDate = &empty
			case cmd.Flags().Changed("birth-date"):
				opts.BirthDate = &birthDate
			}

			return withDeps(cmd.Context(), func(d *Deps) error {
				person, err := d.Persons.HandleUpdate(cmd.Context(), args[0], opts)
				if err != nil {
					return fmt.Errorf("updating person: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", formatPerson(person))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "New name")
	cmd.Flags().StringVarP(&birthDate, "birth-date", "b", "", "New birth date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&clearBirthDate, "clear-birth-date", false, "Remove the birth date")

	return cmd
}

func newPersonGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show a person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				person, err := d.Persons.HandleGet(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("getting person: %w", err)
				}
				if person == nil {
					return fmt.Errorf("%w: %s", entities.ErrPersonNotFound, args[0])
				}
				writePersonDetail(cmd.OutOrStdout(), person)
				return nil
			})
		},
	}
}

func newPersonListCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List persons ordered by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				result, err := d.Persons.HandleList(cmd.Context(), limit, offset)
				if err != nil {
					return fmt.Errorf("listing persons: %w", err)
				}
				writePersonTable(cmd.OutOrStdout(), result.Persons)
				fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d persons\n", len(result.Persons), result.Total)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultListLimit, "Maximum number of persons (0 for all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of persons to skip")

	return cmd
}

func newPersonSearchCmd() *cobra.Command {
	var (
		semantic bool
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Find persons by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				persons, err := d.Persons.HandleSearch(cmd.Context(), args[0], semantic, limit)
				if err != nil {
					return fmt.Errorf("searching persons: %w", err)
				}
				if len(persons) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No persons found.")
					return nil
				}
				writePersonTable(cmd.OutOrStdout(), persons)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&semantic, "semantic", "s", false, "Rank by name similarity (requires search.semantic)")
	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultSearchLimit, "Maximum number of results")

	return cmd
}
